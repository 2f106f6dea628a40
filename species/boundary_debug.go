//go:build picdebug

package species

import "fmt"

// assertNoneBoundaryImpl panics the first time a particle egresses across
// a BoundaryNone axis. Built only with -tags picdebug; the default build
// falls back to clamping (see boundary_release.go) rather than aborting a
// long-running simulation over a configuration the caller opted into.
func assertNoneBoundaryImpl(axis int, cell int) {
	panic(fmt.Sprintf("species: particle crossed BoundaryNone axis %d at cell %d", axis, cell))
}
