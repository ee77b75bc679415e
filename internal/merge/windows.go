package merge

import "sort"

// unionWindows merges schedule windows across records. Windows carrying both
// start and end are grouped per day and overlapping or touching intervals
// collapse into their union interval, anchored at the earlier start. Windows
// without a complete interval (day-only entries and the like) pass through
// deduplicated. Output lists merged intervals in (day, start, end) order,
// then passthrough windows in canonical serialization order.
func unionWindows(windows []map[string]any) []any {
	type interval struct {
		day        string
		start, end string
	}

	var intervals []interval
	var passthrough []map[string]any

	for _, w := range windows {
		start, hasStart := w["start"].(string)
		end, hasEnd := w["end"].(string)
		if hasStart && hasEnd {
			day, _ := w["day"].(string)
			intervals = append(intervals, interval{day: day, start: start, end: end})
			continue
		}
		passthrough = append(passthrough, w)
	}

	// Merge intervals per day. Sorting by (day, start, end) first makes the
	// scan linear and the result independent of input order.
	sort.Slice(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if a.day != b.day {
			return a.day < b.day
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end < b.end
	})

	var merged []interval
	for _, iv := range intervals {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.day == iv.day && iv.start <= last.end {
				if iv.end > last.end {
					last.end = iv.end
				}
				continue
			}
		}
		merged = append(merged, iv)
	}

	out := make([]any, 0, len(merged)+len(passthrough))
	for _, iv := range merged {
		w := map[string]any{"start": iv.start, "end": iv.end}
		if iv.day != "" {
			w["day"] = iv.day
		}
		out = append(out, w)
	}

	// Dedupe passthrough windows by their canonical serialization.
	seen := make(map[string]struct{}, len(passthrough))
	var kept []map[string]any
	for _, w := range passthrough {
		key := serializeWindow(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, w)
	}
	sort.Slice(kept, func(i, j int) bool {
		return serializeWindow(kept[i]) < serializeWindow(kept[j])
	})
	for _, w := range kept {
		out = append(out, w)
	}

	return out
}

func serializeWindow(w map[string]any) string {
	key := ""
	for _, k := range sortedKeys(w) {
		key += k + "="
		if s, ok := w[k].(string); ok {
			key += s
		}
		key += ";"
	}
	return key
}
