package species

// ShiftWindow advects this species for one moving-window cell shift
// (spec.md §4.5): every particle's cell index shifts left by one, any
// particle whose ix becomes negative is dropped, and a fresh slab is
// loaded for the newly exposed right-edge column by resampling the
// density profile there.
func (s *Species) ShiftWindow() {
	nx0 := s.g.Nx[0]
	for _, slot := range s.activeList {
		if s.IX[slot] < 0 {
			continue
		}
		s.IX[slot]--
		if s.IX[slot] < 0 {
			s.removeAt(slot)
		}
	}
	s.compactActiveList()
	s.loadRegion(nx0-1, nx0)
}
