package workplane

import (
	"fmt"
	"math"
)

// Severity indicates whether a validation finding makes the workplane
// unusable for building solids or is merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // profile cannot be built
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Edge     int      // index of the offending profile edge, -1 if none
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.Edge < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] edge %d: %s", e.Severity, e.Edge, e.Message)
}

// Validate checks the workplane's construction geometry and profile. It is
// read-only and an empty result means nothing was found.
func (wp *Workplane) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, wp.validateConstruction()...)
	errs = append(errs, wp.validateEdges()...)
	errs = append(errs, wp.validateClosure()...)
	return errs
}

func (wp *Workplane) validateConstruction() []ValidationError {
	var errs []ValidationError
	for i, l := range wp.reg.Lines() {
		if l.IsDegenerate() || math.IsNaN(l.A+l.B+l.C) || math.IsInf(l.C, 0) {
			errs = append(errs, ValidationError{
				Edge:     -1,
				Message:  fmt.Sprintf("construction line %d is degenerate", i),
				Severity: SeverityError,
			})
		}
	}
	border := wp.Border()
	for i, c := range wp.reg.Circles() {
		if c.Radius == 0 {
			errs = append(errs, ValidationError{
				Edge:     -1,
				Message:  fmt.Sprintf("construction circle %d has zero radius", i),
				Severity: SeverityWarning,
			})
		}
		if !border.Contains(c.Center) {
			errs = append(errs, ValidationError{
				Edge:     -1,
				Message:  fmt.Sprintf("construction circle %d is centred outside the border", i),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func (wp *Workplane) validateEdges() []ValidationError {
	var errs []ValidationError
	tol := wp.tol().Linear
	border := wp.Border()
	for i, e := range wp.edges {
		if e.Length() < tol {
			errs = append(errs, ValidationError{
				Edge:     i,
				Message:  fmt.Sprintf("%s edge has zero length", e.Kind),
				Severity: SeverityWarning,
			})
		}
		if !border.Contains(e.P0) || !border.Contains(e.P1) {
			errs = append(errs, ValidationError{
				Edge:     i,
				Message:  fmt.Sprintf("%s edge extends past the border", e.Kind),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func (wp *Workplane) validateClosure() []ValidationError {
	if len(wp.edges) == 0 || wp.IsClosed() {
		return nil
	}
	return []ValidationError{{
		Edge:     -1,
		Message:  "profile is open",
		Severity: SeverityWarning,
	}}
}
