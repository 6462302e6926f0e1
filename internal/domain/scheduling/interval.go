package scheduling

import "sort"

// SubtractBusy removes busy intervals from one owner's shift windows and
// returns the remaining free windows, sorted by start and non-overlapping.
// Zero-length shifts contribute nothing. Busy intervals outside the shift
// are ignored; overlapping busy intervals are handled by walking a cursor
// through the sorted list.
func SubtractBusy(shifts []WorkingShift, busy []BusyInterval) []TimeWindow {
	sorted := make([]BusyInterval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var free []TimeWindow
	for _, sh := range shifts {
		if !sh.Start.Before(sh.End) {
			continue
		}
		cursor := sh.Start
		for _, b := range sorted {
			if !b.Start.Before(b.End) {
				continue
			}
			if !b.End.After(cursor) || !b.Start.Before(sh.End) {
				continue
			}
			if b.Start.After(cursor) {
				free = append(free, TimeWindow{Start: cursor, End: b.Start})
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(sh.End) {
			free = append(free, TimeWindow{Start: cursor, End: sh.End})
		}
	}

	sort.Slice(free, func(i, j int) bool { return free[i].Start.Before(free[j].Start) })
	return free
}

// IntersectWindows computes the overlap of two sorted window lists using the
// standard two-pointer sweep: advance the pointer with the earlier end, emit
// the overlap whenever max(startA,startB) < min(endA,endB).
func IntersectWindows(a, b []TimeWindow) []TimeWindow {
	var out []TimeWindow
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, TimeWindow{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// FreeWindows computes the time windows in which every owner is
// simultaneously free: per-owner shift-minus-busy subtraction, then pairwise
// intersection across owners. The result is independent of owner order.
// Any owner with no free time short-circuits to an empty result. An empty
// owner set yields an empty result, not an error.
func FreeWindows(shiftsByOwner map[string][]WorkingShift, busyByOwner map[string][]BusyInterval) []TimeWindow {
	if len(shiftsByOwner) == 0 {
		return nil
	}

	// Iterate owners in a stable order so results are reproducible; the
	// intersection itself is commutative and associative.
	owners := make([]string, 0, len(shiftsByOwner))
	for owner := range shiftsByOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var acc []TimeWindow
	for i, owner := range owners {
		free := SubtractBusy(shiftsByOwner[owner], busyByOwner[owner])
		if len(free) == 0 {
			return nil
		}
		if i == 0 {
			acc = free
			continue
		}
		acc = IntersectWindows(acc, free)
		if len(acc) == 0 {
			return nil
		}
	}
	return acc
}
