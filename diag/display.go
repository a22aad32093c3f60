package diag

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG = pterm.FgRed
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	warnColorFG  = pterm.FgYellow
)

// Display pretty-prints a diagnostic to the terminal, with the offending
// source line and a caret when the source text is available.
func (d *Diagnostic) Display(source string) {
	switch d.Severity {
	case SevWarning:
		warnStyleBG.Print(" Warning ")
		warnColorFG.Println(" " + d.Message)
	case SevInternal:
		errorStyleBG.Print(" Internal Error ")
		errorColorFG.Println(" " + d.Message)
	default:
		errorStyleBG.Print(" Error ")
		errorColorFG.Println(" " + d.Message)
	}

	if d.Loc.Line == 0 {
		return
	}
	fmt.Printf("  --> %s\n", d.Loc)

	if source == "" {
		return
	}
	lines := strings.Split(source, "\n")
	if d.Loc.Line < 1 || d.Loc.Line > len(lines) {
		return
	}
	line := lines[d.Loc.Line-1]
	col := d.Loc.Col
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	fmt.Printf("%4d| %s\n", d.Loc.Line, line)
	fmt.Printf("    | %s^\n", strings.Repeat(" ", col-1))
}

// DisplayAll pretty-prints every diagnostic in the bag.
func (b *Bag) DisplayAll(source string) {
	for _, d := range b.All() {
		d.Display(source)
	}
}
