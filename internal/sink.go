package internal

import (
	"encoding/csv"
	"fmt"
	"os"
)

// previewCap bounds the in-memory preview unless show-all is requested.
// The durable store is never capped.
const previewCap = 1000

// StoreHeader is the fixed first record of the durable result store.
var StoreHeader = []string{"Path", "Filename", "Line Number", "Line Content"}

// ResultSink persists every result row in arrival order to a temporary
// CSV store and keeps a bounded preview in memory. Appends are flushed
// synchronously so a crash mid-scan still leaves partial, consumable
// results. Store and preview never diverge in order, only in
// completeness.
type ResultSink struct {
	file    *os.File
	w       *csv.Writer
	preview []ResultRow
	showAll bool
	total   int
	final   bool
}

// NewResultSink creates a fresh temp store with the header row already
// written. Failure here is fatal to the scan.
func NewResultSink(showAll bool) (*ResultSink, error) {
	f, err := os.CreateTemp("", "foldersearch-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create result store: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(StoreHeader); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write store header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write store header: %w", err)
	}
	return &ResultSink{file: f, w: w, showAll: showAll}, nil
}

// Append writes the row durably and mirrors it into the preview while
// the cap allows.
func (s *ResultSink) Append(row ResultRow) error {
	if err := s.w.Write(row.Record()); err != nil {
		return err
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	s.total++
	if s.showAll || len(s.preview) < previewCap {
		s.preview = append(s.preview, row)
	}
	return nil
}

// Preview returns the ordered in-memory snapshot.
func (s *ResultSink) Preview() []ResultRow { return s.preview }

// Total is the number of rows in the durable store (header excluded).
func (s *ResultSink) Total() int { return s.total }

// Path returns the location of the durable store.
func (s *ResultSink) Path() string { return s.file.Name() }

// Finalize flushes and closes the store, returning its path. The store
// is read-only to everyone from this point on.
func (s *ResultSink) Finalize() (string, error) {
	if s.final {
		return s.file.Name(), nil
	}
	s.final = true
	s.w.Flush()
	werr := s.w.Error()
	cerr := s.file.Close()
	if werr != nil {
		return "", werr
	}
	return s.file.Name(), cerr
}

// Remove deletes the store from disk. Safe to call after Finalize, or
// instead of it when the scan failed.
func (s *ResultSink) Remove() {
	if !s.final {
		s.file.Close()
		s.final = true
	}
	os.Remove(s.file.Name())
}
