package dictionary

import "math"

const unset = math.MaxInt

// accumulator folds postings into the best distance seen so far. count is the
// number of postings that reached that distance, not the number of words.
type accumulator struct {
	distance int
	word     WordID
	count    int
}

func (a *accumulator) add(distance int, word WordID) {
	switch {
	case distance < a.distance:
		a.distance = distance
		a.word = word
		a.count = 1
	case distance == a.distance:
		a.count++
	}
}

// search walks the deletion variants of query and probes the index at each
// one. With stopAtFirst the walk ends as soon as any admissible match exists.
func (d *Dictionary) search(query string, maxDistance int, stopAtFirst bool) (accumulator, error) {
	best := accumulator{distance: unset, word: -1}
	found := func() bool { return stopAtFirst && best.distance <= maxDistance }

	_, err := Deletions(query, maxDistance, func(v *Variant) Action {
		if found() {
			return Stop
		}
		for _, p := range d.index.Lookup(v.Text) {
			s := int(p.Depth) + v.Depth - alignedDeletions(p.Deletions[:p.Depth], v.Deletions[:v.Depth])
			if s <= maxDistance {
				best.add(s, p.Word)
			}
			// The word itself is at this key: every other posting here
			// needs at least as many edits.
			if p.Depth == 0 {
				break
			}
		}
		if v.Depth+1 >= best.distance || v.Depth+1 > maxDistance {
			return Prune
		}
		if found() {
			return Stop
		}
		return Descend
	})
	return best, err
}

// alignedDeletions counts deletion pairs that sit at the same position of the
// shared variant. Each such pair is one substitution instead of two indels.
// Both slices are sorted.
func alignedDeletions(a, b []uint8) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}
