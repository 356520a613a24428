package internal

// ScanState holds one scan's bookkeeping counters. Owned exclusively by
// the scan worker while running; only immutable snapshots cross to the
// observer, so plain ints suffice.
type ScanState struct {
	Total     int
	Processed int
	Matches   int
	Errors    int
	Cancelled bool
}

func (s *ScanState) snapshot(status string, st State, terminal bool) Progress {
	return Progress{
		Processed: s.Processed,
		Total:     s.Total,
		Matches:   s.Matches,
		Errors:    s.Errors,
		Status:    status,
		State:     st,
		Terminal:  terminal,
	}
}
