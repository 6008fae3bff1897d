package display

import (
	"fmt"
	"io"

	"github.com/backmassage/camstitch/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `                      _   _ _       _
  ___ __ _ _ __ ___  ___| |_(_) |_ ___| |__
 / __/ _`+"`"+` | '_ `+"`"+` _ \/ __| __| | __/ __| '_ \
| (_| (_| | | | | | \__ \ |_| | || (__| | | |
 \___\__,_|_| |_| |_|___/\__|_|\__\___|_| |_|
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
