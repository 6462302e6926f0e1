package scheduling

import (
	"sort"
	"time"
)

// SliceSlots cuts free windows into consecutive bookable slots of exactly
// durationMinutes, starting at each window start and stepping by the
// duration (no overlap, no gap). Remainders shorter than the duration are
// dropped. The earliest slot overall is flagged Suggested; an empty window
// list yields an empty slot list, which is a valid "no availability"
// outcome.
func SliceSlots(windows []TimeWindow, durationMinutes int) []TimeSlot {
	if durationMinutes <= 0 {
		return nil
	}
	step := time.Duration(durationMinutes) * time.Minute

	var slots []TimeSlot
	for _, w := range windows {
		for start := w.Start; !start.Add(step).After(w.End); start = start.Add(step) {
			slots = append(slots, TimeSlot{Start: start, End: start.Add(step)})
		}
	}
	if len(slots) == 0 {
		return nil
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	slots[0].Suggested = true
	return slots
}
