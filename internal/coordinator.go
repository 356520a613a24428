package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// State is the coordinator's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// progressEvery bounds the progress cadence: one snapshot per N sources
// plus the guaranteed terminal one.
const progressEvery = 10

// Coordinator owns the end-to-end scan: enumeration, decoding,
// matching, sink writes and progress emission all run on one dedicated
// worker, so counters and the encoding cache need no locks. The
// observer side only ever sees immutable snapshots.
type Coordinator struct {
	pool     *ants.Pool
	progress *ProgressChannel
	readers  map[SourceKind]ArchiveReader

	state atomic.Int32

	mu         sync.Mutex
	cancel     context.CancelFunc
	resultPath string
	preview    []ResultRow
	last       ScanState
}

// NewCoordinator wires the capability registry and a capacity-one
// worker pool: the whole scan runs sequentially on that one worker. The
// state machine, not the pool, guards against concurrent scans.
func NewCoordinator() (*Coordinator, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}
	return &Coordinator{
		pool:     pool,
		progress: NewProgressChannel(),
		readers:  NewArchiveReaders(),
	}, nil
}

// Start validates the parameters and launches the scan on the worker,
// never blocking the caller. A Start while a scan is already running is
// a silent no-op. A validation failure is reported and leaves the
// coordinator Idle.
func (c *Coordinator) Start(opts ScanOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if !c.toRunning() {
		logrus.Debug("Start ignored: scan already running")
		return nil
	}
	opts.Prepare()

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	if c.resultPath != "" { // superseded by the new scan
		os.Remove(c.resultPath)
		c.resultPath = ""
	}
	c.preview = nil
	c.mu.Unlock()

	if err := c.pool.Submit(func() { c.run(ctx, &opts) }); err != nil {
		cancel()
		c.state.Store(int32(StateIdle))
		return fmt.Errorf("submit scan: %w", err)
	}
	return nil
}

func (c *Coordinator) toRunning() bool {
	for {
		cur := c.state.Load()
		if State(cur) == StateRunning {
			return false
		}
		if c.state.CompareAndSwap(cur, int32(StateRunning)) {
			return true
		}
	}
}

// Cancel requests cooperative cancellation. The worker notices at the
// next per-source or per-line check; partial results remain valid.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State { return State(c.state.Load()) }

// Events is the observer's progress feed.
func (c *Coordinator) Events() <-chan Progress { return c.progress.Events() }

// ResultPath returns the finalized durable store path, empty while
// running or after a failed scan.
func (c *Coordinator) ResultPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if State(c.state.Load()) == StateRunning {
		return ""
	}
	return c.resultPath
}

// Preview returns the terminal preview snapshot of the last scan.
func (c *Coordinator) Preview() []ResultRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// LastState returns the retained terminal counters of the last scan.
func (c *Coordinator) LastState() ScanState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// RemoveResult deletes the temporary store. The shell calls this on
// exit; a new Start removes a superseded store by itself.
func (c *Coordinator) RemoveResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resultPath != "" {
		os.Remove(c.resultPath)
		c.resultPath = ""
	}
}

// Close releases the worker pool.
func (c *Coordinator) Close() {
	c.pool.Release()
}

// run executes one whole scan on the worker.
func (c *Coordinator) run(ctx context.Context, opts *ScanOptions) {
	logrus.WithFields(logrus.Fields{"root": opts.Root, "keyword": opts.Keyword}).Info("Scan started")

	state := &ScanState{}
	c.progress.Post(state.snapshot("Preparing to search...", StateRunning, false))

	sink, err := NewResultSink(opts.ShowAllInPreview)
	if err != nil {
		c.fail(state, err)
		return
	}

	sources, err := CollectSources(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			c.settle(state, sink, true)
			return
		}
		sink.Remove()
		c.fail(state, err)
		return
	}
	state.Total = len(sources)

	if state.Total == 0 {
		c.mu.Lock()
		path, _ := sink.Finalize()
		c.resultPath = path
		c.last = *state
		c.mu.Unlock()
		c.state.Store(int32(StateCompleted))
		c.progress.Post(state.snapshot("No matching file types found.", StateCompleted, true))
		return
	}

	detector := NewEncodingDetector()
	keyword := opts.normalizedKeyword()

	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		c.scanSource(ctx, src, sink, state, detector, keyword, opts)
		state.Processed = i + 1
		if state.Processed%progressEvery == 0 {
			c.progress.Post(state.snapshot(
				fmt.Sprintf("Scanning %d/%d items...", state.Processed, state.Total),
				StateRunning, false))
		}
	}

	c.settle(state, sink, ctx.Err() != nil)
}

// settle finalizes the sink and posts the terminal event.
func (c *Coordinator) settle(state *ScanState, sink *ResultSink, cancelled bool) {
	state.Cancelled = cancelled

	path, err := sink.Finalize()
	if err != nil {
		logrus.WithError(err).Error("finalize result store")
	}

	c.mu.Lock()
	c.resultPath = path
	c.preview = sink.Preview()
	c.last = *state
	c.mu.Unlock()

	if cancelled {
		status := fmt.Sprintf("Search cancelled. Processed %d files.", state.Processed)
		logrus.Warn(status)
		c.state.Store(int32(StateCancelled))
		c.progress.Post(state.snapshot(status, StateCancelled, true))
		return
	}
	status := fmt.Sprintf("Complete. Found %d matches in %d files.", state.Matches, state.Total)
	logrus.Info(status)
	c.state.Store(int32(StateCompleted))
	c.progress.Post(state.snapshot(status, StateCompleted, true))
}

// fail is the fatal path: nothing consumable remains.
func (c *Coordinator) fail(state *ScanState, err error) {
	logrus.WithError(err).Error("Scan failed")
	c.mu.Lock()
	c.last = *state
	c.mu.Unlock()
	c.state.Store(int32(StateFailed))
	c.progress.Post(state.snapshot("Search failed: "+err.Error(), StateFailed, true))
}

func (c *Coordinator) scanSource(ctx context.Context, src Source, sink *ResultSink, state *ScanState, det *EncodingDetector, keyword string, opts *ScanOptions) {
	if src.Kind == KindPlain {
		f, err := os.Open(SafePath(src.Path))
		if err != nil {
			c.appendRows(sink, state, []ResultRow{errorRow(src, "Could not read file: %v", err)})
			return
		}
		defer f.Close()
		rows, _ := evaluateSource(ctx, det.DecodeReader(f, src.Path), src, keyword, opts)
		c.appendRows(sink, state, rows)
		return
	}
	c.scanArchive(ctx, src, sink, state, det, keyword, opts)
}

func (c *Coordinator) scanArchive(ctx context.Context, src Source, sink *ResultSink, state *ScanState, det *EncodingDetector, keyword string, opts *ScanOptions) {
	reader, ok := c.readers[src.Kind]
	if !ok {
		c.appendRows(sink, state, []ResultRow{
			errorRow(src, "No reader available for %s archives", filepath.Ext(src.Path)),
		})
		return
	}

	err := reader.WalkMembers(ctx, src.Path, opts, func(inner string, r io.Reader) error {
		member := Source{Path: src.Path, Inner: inner, Kind: src.Kind}
		rows, _ := evaluateSource(ctx, det.DecodeReader(r, inner), member, keyword, opts)
		c.appendRows(sink, state, rows)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		c.appendRows(sink, state, []ResultRow{errorRow(src, "Could not open archive: %v", err)})
	}
}

func (c *Coordinator) appendRows(sink *ResultSink, state *ScanState, rows []ResultRow) {
	for _, row := range rows {
		if err := sink.Append(row); err != nil {
			logrus.WithError(err).Error("append result row")
			state.Errors++
			continue
		}
		switch {
		case row.Line.IsMatch():
			state.Matches++
		case row.Line.IsError():
			state.Errors++
		}
	}
}
