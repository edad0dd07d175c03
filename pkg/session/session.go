// Package session holds the state an interactive sketching front end works
// against: the set of workplanes, which one is active, and the units user
// input is given in.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/workplane"
)

var (
	// ErrUnknownUnits is returned by SetUnits for a unit name it does not know.
	ErrUnknownUnits = errors.New("session: unknown units")
	// ErrNoWorkplane is returned when no workplane is active or an ID is not
	// found.
	ErrNoWorkplane = errors.New("session: no workplane")
)

// unitFactors maps unit names to millimetres per unit.
var unitFactors = map[string]float64{
	"mm": 1,
	"in": 25.4,
	"ft": 304.8,
}

// UnitNames returns the supported unit names in sorted order.
func UnitNames() []string {
	names := lo.Keys(unitFactors)
	sort.Strings(names)
	return names
}

// Session owns the workplanes of one sketching session. It is not safe for
// concurrent use.
type Session struct {
	opts       workplane.Options
	workplanes map[uuid.UUID]*workplane.Workplane
	order      []uuid.UUID
	active     uuid.UUID
	units      string
	factor     float64
}

// New returns an empty session in millimetres. opts is applied to every
// workplane the session creates.
func New(opts workplane.Options) *Session {
	return &Session{
		opts:       opts,
		workplanes: make(map[uuid.UUID]*workplane.Workplane),
		units:      "mm",
		factor:     1,
	}
}

// NewWorkplane creates a workplane on frame, adds it to the session and
// makes it active.
func (s *Session) NewWorkplane(frame workplane.Frame) *workplane.Workplane {
	wp := workplane.New(frame, s.opts)
	s.workplanes[wp.ID] = wp
	s.order = append(s.order, wp.ID)
	s.active = wp.ID
	return wp
}

// Activate makes the workplane with the given ID active.
func (s *Session) Activate(id uuid.UUID) error {
	if _, ok := s.workplanes[id]; !ok {
		return fmt.Errorf("activate %s: %w", id, ErrNoWorkplane)
	}
	s.active = id
	return nil
}

// Active returns the active workplane.
func (s *Session) Active() (*workplane.Workplane, error) {
	wp, ok := s.workplanes[s.active]
	if !ok {
		return nil, ErrNoWorkplane
	}
	return wp, nil
}

// Workplane looks up a workplane by ID.
func (s *Session) Workplane(id uuid.UUID) (*workplane.Workplane, error) {
	wp, ok := s.workplanes[id]
	if !ok {
		return nil, fmt.Errorf("workplane %s: %w", id, ErrNoWorkplane)
	}
	return wp, nil
}

// Workplanes returns the session's workplanes in creation order.
func (s *Session) Workplanes() []*workplane.Workplane {
	return lo.Map(s.order, func(id uuid.UUID, _ int) *workplane.Workplane {
		return s.workplanes[id]
	})
}

// Remove deletes a workplane. Removing the active workplane leaves the most
// recently created remaining one active.
func (s *Session) Remove(id uuid.UUID) error {
	if _, ok := s.workplanes[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNoWorkplane)
	}
	delete(s.workplanes, id)
	s.order = lo.Without(s.order, id)
	if s.active == id {
		s.active = uuid.Nil
		if n := len(s.order); n > 0 {
			s.active = s.order[n-1]
		}
	}
	return nil
}

// SetUnits selects the units user input is given in. Names are case
// insensitive.
func (s *Session) SetUnits(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	f, ok := unitFactors[key]
	if !ok {
		return fmt.Errorf("%q (want one of %s): %w", name, strings.Join(UnitNames(), ", "), ErrUnknownUnits)
	}
	s.units, s.factor = key, f
	return nil
}

// Units returns the current unit name.
func (s *Session) Units() string {
	return s.units
}

// ToMM converts a length in session units to millimetres.
func (s *Session) ToMM(v float64) float64 {
	return v * s.factor
}

// FromMM converts a length in millimetres to session units.
func (s *Session) FromMM(v float64) float64 {
	return v / s.factor
}

// PointToMM converts a point given in session units to millimetres.
func (s *Session) PointToMM(x, y float64) geom2d.Point {
	return geom2d.Point{X: s.ToMM(x), Y: s.ToMM(y)}
}
