package remap

// ToPhysical expands a logical buffer to exactly physicalCount cells,
// placing Blank at every ignored position. Logical cells are consumed in
// order; a short buffer is padded with Blank and surplus cells are dropped.
func ToPhysical(logical []Cell, physicalCount int, set IgnoredSet) []Cell {
	if physicalCount <= 0 {
		return []Cell{}
	}
	physical := make([]Cell, physicalCount)
	next := 0
	for p := range physical {
		if set.Contains(p) {
			physical[p] = Blank
			continue
		}
		if next < len(logical) {
			physical[p] = logical[next]
		} else {
			physical[p] = Blank
		}
		next++
	}
	return physical
}

// PhysicalIndex returns the physical position of logical index k on a
// display of physicalCount cells, or false when k has no physical slot.
func PhysicalIndex(k, physicalCount int, set IgnoredSet) (int, bool) {
	if k < 0 {
		return 0, false
	}
	rank := 0
	for p := 0; p < physicalCount; p++ {
		if set.Contains(p) {
			continue
		}
		if rank == k {
			return p, true
		}
		rank++
	}
	return 0, false
}
