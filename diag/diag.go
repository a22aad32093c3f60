// Package diag accumulates compilation diagnostics.
//
// The front end is deliberately greedy about diagnostics: almost every
// problem is recorded here and compilation continues with a best-effort
// placeholder, so a single run over a unit surfaces as many independent
// errors as possible. Only internal failures abort a unit.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SevError is a user error; the unit fails if any were recorded.
	SevError Severity = iota
	// SevWarning does not affect the unit result.
	SevWarning
	// SevInternal marks a compiler bug or a broken collaborator. The
	// unit is abandoned when one is recorded.
	SevInternal
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Loc is a source location.
type Loc struct {
	File string
	Line int
	Col  int
}

func (l Loc) String() string {
	if l.Line == 0 {
		return l.File
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Loc      Loc
}

func (d *Diagnostic) Error() string {
	if d.Loc.Line == 0 && d.Loc.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Severity, d.Message)
}

// Bag collects diagnostics for one compilation unit.
// A Bag is owned by the unit's compiling goroutine and is not safe for
// concurrent use.
type Bag struct {
	diags      []*Diagnostic
	errorCount int
	internal   bool
}

// Add records a diagnostic.
func (b *Bag) Add(d *Diagnostic) {
	b.diags = append(b.diags, d)
	switch d.Severity {
	case SevError:
		b.errorCount++
	case SevInternal:
		b.errorCount++
		b.internal = true
	}
}

// Errorf records an error at loc.
func (b *Bag) Errorf(loc Loc, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SevError, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Warnf records a warning at loc.
func (b *Bag) Warnf(loc Loc, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SevWarning, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Internalf records an internal error. The unit cannot succeed afterwards.
func (b *Bag) Internalf(loc Loc, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SevInternal, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// All returns the recorded diagnostics in recording order.
func (b *Bag) All() []*Diagnostic { return b.diags }

// ErrorCount returns the number of error and internal diagnostics.
func (b *Bag) ErrorCount() int { return b.errorCount }

// HasErrors reports whether the unit has failed.
func (b *Bag) HasErrors() bool { return b.errorCount > 0 }

// Internal reports whether an internal diagnostic was recorded.
func (b *Bag) Internal() bool { return b.internal }

// Error implements error over the whole bag.
func (b *Bag) Error() string {
	if len(b.diags) == 0 {
		return "no diagnostics"
	}
	if len(b.diags) == 1 {
		return b.diags[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", b.diags[0].Error(), len(b.diags)-1)
}

// FormatAll returns every diagnostic, one per line.
func (b *Bag) FormatAll() string {
	var sb strings.Builder
	for i, d := range b.diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}
