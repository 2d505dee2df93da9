package pipeline

// BoomerangOrder builds the forward-then-backward play order for a frame list:
// the full sequence followed by the reverse of its interior frames. Endpoints
// are excluded from the mirrored tail so no frame ever repeats back-to-back,
// either mid-loop or across the loop boundary:
//
//	[A B C D] -> [A B C D C B]
//
// The result repeats path entries; no files are duplicated on disk.
func BoomerangOrder(frames []string) []string {
	if len(frames) < 3 {
		// Nothing to mirror: [A B] reversed interior is empty.
		return append([]string(nil), frames...)
	}

	order := make([]string, 0, 2*len(frames)-2)
	order = append(order, frames...)
	for i := len(frames) - 2; i >= 1; i-- {
		order = append(order, frames[i])
	}
	return order
}
