// Package unseen derives badge counts from acknowledgement rows: an item is
// unseen when its id has no matching acknowledgement for the viewer.
package unseen

// Set builds a membership set from ids.
func Set[K comparable](ids []K) map[K]struct{} {
	set := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Unseen returns the ids of all that are absent from acked, in the order of all.
// Duplicate ids in all are reported once.
func Unseen[K comparable](all, acked []K) []K {
	seen := Set(acked)
	out := make([]K, 0, len(all))
	emitted := make(map[K]struct{}, len(all))
	for _, id := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, dup := emitted[id]; dup {
			continue
		}
		emitted[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Count is the size of the unseen subset.
func Count[K comparable](all, acked []K) int {
	return len(Unseen(all, acked))
}

// Seen reports whether id is present in the acknowledged set.
func Seen[K comparable](acked map[K]struct{}, id K) bool {
	_, ok := acked[id]
	return ok
}
