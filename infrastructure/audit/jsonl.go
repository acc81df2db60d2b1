// Package audit persists the append-only log streams as JSONL files and the
// admin action trail in SQLite.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/internal/log"
)

// queueDepth bounds how many entries may wait for the writer goroutine
// before appends start dropping.
const queueDepth = 256

// JSONLStore writes each stream to {dir}/{stream}.jsonl through a dedicated
// writer goroutine. Appends never block the request path: when a queue is
// full the entry is dropped and counted.
type JSONLStore struct {
	dir    string
	logger *log.Logger

	mu      sync.Mutex // serializes file writes against rewrites
	queues  map[audit.Stream]chan []byte
	dropped map[audit.Stream]*atomic.Int64
	wg      sync.WaitGroup

	// closeMu fences appends racing Close so nothing sends on a closed
	// queue; appends during shutdown are dropped like any other overflow.
	closeMu   sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewJSONLStore creates the stream files' directory if needed and starts one
// writer goroutine per stream.
func NewJSONLStore(dir string, logger *log.Logger) (*JSONLStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs directory %s: %w", dir, err)
	}

	s := &JSONLStore{
		dir:     dir,
		logger:  logger,
		queues:  make(map[audit.Stream]chan []byte),
		dropped: make(map[audit.Stream]*atomic.Int64),
	}

	for _, stream := range []audit.Stream{audit.StreamSearch, audit.StreamFeedback} {
		ch := make(chan []byte, queueDepth)
		s.queues[stream] = ch
		s.dropped[stream] = new(atomic.Int64)

		s.wg.Add(1)
		go s.writeLoop(stream, ch)
	}

	return s, nil
}

func (s *JSONLStore) path(stream audit.Stream) string {
	return filepath.Join(s.dir, string(stream)+".jsonl")
}

func (s *JSONLStore) writeLoop(stream audit.Stream, ch <-chan []byte) {
	defer s.wg.Done()
	for line := range ch {
		s.appendLine(stream, line)
	}
}

func (s *JSONLStore) appendLine(stream audit.Stream, line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(stream), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Warn("open log stream failed", "stream", stream, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		s.logger.Warn("append log entry failed", "stream", stream, "error", err)
	}
}

func (s *JSONLStore) enqueue(stream audit.Stream, entry any) {
	line, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("encode log entry failed", "stream", stream, "error", err)
		return
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		s.dropped[stream].Add(1)
		s.logger.Warn("store closed, entry dropped", "stream", stream)
		return
	}

	select {
	case s.queues[stream] <- line:
	default:
		s.dropped[stream].Add(1)
		s.logger.Warn("log queue full, entry dropped", "stream", stream)
	}
}

// AppendSearch queues a search entry. Best-effort.
func (s *JSONLStore) AppendSearch(entry audit.SearchEntry) {
	s.enqueue(audit.StreamSearch, entry)
}

// AppendFeedback queues a feedback entry. Best-effort.
func (s *JSONLStore) AppendFeedback(entry audit.FeedbackEntry) {
	s.enqueue(audit.StreamFeedback, entry)
}

// ReadReverse returns up to limit entries of a stream, newest first. Lines
// that fail to parse, including a torn trailing line from an in-progress
// append, are skipped. A missing stream file yields an empty slice.
func (s *JSONLStore) ReadReverse(ctx context.Context, stream audit.Stream, limit int) ([]map[string]any, error) {
	if !audit.ValidStream(stream) {
		return nil, fmt.Errorf("unknown log stream %q", stream)
	}
	if limit <= 0 {
		return []map[string]any{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path(stream))
	if err != nil {
		if os.IsNotExist(err) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("open log stream %s: %w", stream, err)
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log stream %s: %w", stream, err)
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []map[string]any{}
	}
	return entries, nil
}

// DeleteSince rewrites both streams keeping only entries whose timestamp is
// strictly older than the cutoff. Unparseable lines are discarded.
func (s *JSONLStore) DeleteSince(ctx context.Context, since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stream := range []audit.Stream{audit.StreamSearch, audit.StreamFeedback} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.rewriteOlder(stream, since); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONLStore) rewriteOlder(stream audit.Stream, since time.Time) error {
	path := s.path(stream)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open log stream %s: %w", stream, err)
	}

	var kept [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var probe struct {
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &probe); err != nil {
			continue
		}
		if probe.Timestamp.Before(since) {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			kept = append(kept, line)
		}
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		return fmt.Errorf("read log stream %s: %w", stream, scanErr)
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(stream)+"-*.jsonl")
	if err != nil {
		return fmt.Errorf("create temp log file: %w", err)
	}
	tmpName := tmp.Name()
	for _, line := range kept {
		if _, err := tmp.Write(append(line, '\n')); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write temp log file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp log file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace log stream %s: %w", stream, err)
	}
	return nil
}

// Purge removes both stream files entirely.
func (s *JSONLStore) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stream := range []audit.Stream{audit.StreamSearch, audit.StreamFeedback} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(s.path(stream)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove log stream %s: %w", stream, err)
		}
	}
	return nil
}

// Dropped returns how many entries were discarded because a queue was full.
func (s *JSONLStore) Dropped(stream audit.Stream) int64 {
	if n, ok := s.dropped[stream]; ok {
		return n.Load()
	}
	return 0
}

// Close flushes queued entries and stops the writer goroutines.
func (s *JSONLStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		s.closed = true
		for _, ch := range s.queues {
			close(ch)
		}
		s.closeMu.Unlock()
		s.wg.Wait()
	})
	return nil
}

var _ audit.Store = (*JSONLStore)(nil)
