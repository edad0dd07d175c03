// Package geom2d is the analytic 2D geometry kernel behind workplane
// construction geometry. Infinite construction lines are held in implicit
// form (ax + by + c = 0), construction circles as centre and radius.
//
// Every function is pure and deterministic. Degenerate inputs (coincident
// points, parallel lines, concentric circles) produce "no result" (a false
// ok flag or an empty slice) rather than an error, because the kernel runs
// continuously while the user drags the cursor and transient degenerate
// configurations are normal there.
package geom2d
