package options

import (
	"fmt"
	"io"
)

// Report writes a human-readable breakdown of how args are parsed to w.
func Report(w io.Writer, args []string) error {
	opts := Parse(args)
	_, err := fmt.Fprintf(w,
		"\nTesting args: %q\nProcessed into: '%s'\n\nWould set:\na: %t\nf: %t\nb: %t\np: %t\n",
		args,
		Normalize(args),
		opts.AltDumper,
		opts.Force,
		opts.Blacklist,
		opts.Private,
	)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
