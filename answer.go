package tutor

// Answer accumulates the events of one chat exchange. It is a value type:
// Apply returns the next Answer and never mutates the receiver, so callers
// hold exactly the state they folded so far.
type Answer struct {
	Status string // Latest status text, e.g. "Thinking...".
	Text   string // Concatenated content fragments.
	Final  bool   // EventFinal seen.
	Done   bool   // EventDone seen.
}

// Apply folds evt into the answer and returns the result.
func (a Answer) Apply(evt Event) Answer {
	switch e := evt.(type) {
	case EventStatus:
		a.Status = e.Text
	case EventContent:
		a.Text += e.Text
	case EventFinal:
		a.Final = true
	case EventDone:
		a.Done = true
	}
	return a
}
