package options

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func flagRunes() *rapid.Generator[string] {
	return rapid.StringMatching(`[afbpxyz0-9 \t]{0,12}`)
}

func TestParseOrderIndependent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		remainder := flagRunes().Draw(t, "remainder")
		shuffled := rapid.Permutation([]rune(remainder)).Draw(t, "shuffled")

		got := Parse([]string{"url", string(shuffled)})
		want := Parse([]string{"url", remainder})
		if got != want {
			t.Fatalf("Parse differs after permutation: %+v vs %+v", got, want)
		}
	})
}

func TestParseIgnoresWhitespaceTokens(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		tokens := rapid.SliceOf(flagRunes()).Draw(t, "tokens")
		args := append([]string{"url"}, tokens...)
		base := Parse(args)

		blank := rapid.StringMatching(`[ \t\n]{1,4}`).Draw(t, "blank")
		pos := rapid.IntRange(1, len(args)).Draw(t, "pos")
		padded := make([]string, 0, len(args)+1)
		padded = append(padded, args[:pos]...)
		padded = append(padded, blank)
		padded = append(padded, args[pos:]...)

		if got := Parse(padded); got != base {
			t.Fatalf("whitespace token changed result: %+v vs %+v", got, base)
		}
	})
}

func TestParseIgnoresPadding(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		tokens := rapid.SliceOf(flagRunes()).Draw(t, "tokens")
		args := append([]string{"url"}, tokens...)

		padded := make([]string, len(args))
		padded[0] = args[0]
		for i := 1; i < len(args); i++ {
			padded[i] = "  " + strings.Join(strings.Split(args[i], ""), " ") + "\t"
		}

		if got, want := Parse(padded), Parse(args); got != want {
			t.Fatalf("padding changed result: %+v vs %+v", got, want)
		}
	})
}

func TestParseSkipsFirstToken(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		first := rapid.String().Draw(t, "first")
		if got := Parse([]string{first}); got != (Options{}) {
			t.Fatalf("Parse(%q) = %+v, want no flags", first, got)
		}
	})
}

func TestParseMatchesNormalize(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		args := rapid.SliceOf(rapid.String()).Draw(t, "args")
		remainder := Normalize(args)
		opts := Parse(args)

		for _, flag := range "afbp" {
			if opts.Has(flag) != strings.ContainsRune(remainder, flag) {
				t.Fatalf("flag %q: Has=%t, remainder=%q", flag, opts.Has(flag), remainder)
			}
		}
	})
}
