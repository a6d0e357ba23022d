package tutor

// Generation identifies one chat request among the requests issued by a
// single chat panel. Each new request takes the next generation; results
// tagged with any other generation are stale and must be discarded.
type Generation uint64

// Next returns the generation that follows g.
func (g Generation) Next() Generation {
	return g + 1
}
