// Package options extracts single-character dump options from command arguments.
package options

import (
	"strings"
	"unicode"
)

// Recognized flag characters.
const (
	FlagAltDumper = 'a'
	FlagForce     = 'f'
	FlagBlacklist = 'b'
	FlagPrivate   = 'p'
)

// Options is the set of flags found in a command's arguments.
type Options struct {
	AltDumper bool
	Force     bool
	Blacklist bool
	Private   bool
}

// Parse drops the first token (the dump target), joins the rest, strips all
// whitespace and reports which flag characters occur anywhere in the result.
// Flags are matched as substrings, so "afb" sets three options at once and
// unknown characters are ignored.
func Parse(args []string) Options {
	remainder := Normalize(args)
	return Options{
		AltDumper: strings.ContainsRune(remainder, FlagAltDumper),
		Force:     strings.ContainsRune(remainder, FlagForce),
		Blacklist: strings.ContainsRune(remainder, FlagBlacklist),
		Private:   strings.ContainsRune(remainder, FlagPrivate),
	}
}

// Normalize returns every token after the first, concatenated, with all
// whitespace removed.
func Normalize(args []string) string {
	if len(args) < 2 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.Join(args[1:], ""))
}

// Has reports whether the named flag is set. Unknown flags are never set.
func (o Options) Has(flag rune) bool {
	switch flag {
	case FlagAltDumper:
		return o.AltDumper
	case FlagForce:
		return o.Force
	case FlagBlacklist:
		return o.Blacklist
	case FlagPrivate:
		return o.Private
	default:
		return false
	}
}

// Flags returns the set flags in canonical "afbp" order.
func (o Options) Flags() string {
	var sb strings.Builder
	for _, r := range []rune{FlagAltDumper, FlagForce, FlagBlacklist, FlagPrivate} {
		if o.Has(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
