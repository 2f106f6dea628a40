package species

// Sort performs a stable bucket sort of the active particle list by
// linear cell index, run every cfg.SortEvery steps by the simulation
// driver. Keeping particles roughly cell-ordered is a cache-locality
// optimization only; it changes nothing about the physics, so ties break
// by original active-list order (stable) rather than slot number.
//
// Grounded on the teacher's own deliberate avoidance of an unstable sort
// in systems/particle_resource.go's compaction pass: a counting sort over
// linear cell index is O(n + cells) and naturally stable when buckets are
// filled in insertion order.
func (s *Species) Sort() {
	n := len(s.activeList)
	if n == 0 {
		return
	}
	cells := s.g.Nx[0] * s.g.Nx[1]
	counts := make([]int, cells+1)
	cellOf := make([]int, n)

	for k, slot := range s.activeList {
		c := int(s.IY[slot])*s.g.Nx[0] + int(s.IX[slot])
		cellOf[k] = c
		counts[c+1]++
	}
	for c := 0; c < cells; c++ {
		counts[c+1] += counts[c]
	}

	sorted := make([]int32, n)
	cursor := append([]int(nil), counts...)
	for k, slot := range s.activeList {
		c := cellOf[k]
		sorted[cursor[c]] = slot
		cursor[c]++
	}
	s.activeList = sorted
}
