package internal

// Progress is an immutable snapshot delivered from the scan worker to
// the observer. Intermediate events are best-effort; the terminal event
// is always delivered.
type Progress struct {
	Processed int
	Total     int
	Matches   int
	Errors    int
	Status    string
	State     State
	Terminal  bool
}

const progressBuffer = 64

// ProgressChannel is the one-directional, lossy-tolerant conduit
// between the worker and the observer. The worker posts without ever
// blocking; the observer receives on its own schedule.
type ProgressChannel struct {
	ch chan Progress
}

func NewProgressChannel() *ProgressChannel {
	return &ProgressChannel{ch: make(chan Progress, progressBuffer)}
}

// Post delivers an event without blocking the worker. When the buffer
// is full an intermediate event is dropped; a terminal event evicts the
// oldest queued events until it fits.
func (p *ProgressChannel) Post(ev Progress) {
	for {
		select {
		case p.ch <- ev:
			return
		default:
		}
		if !ev.Terminal {
			return // dropped
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

// Events is the observer's receive side.
func (p *ProgressChannel) Events() <-chan Progress { return p.ch }
