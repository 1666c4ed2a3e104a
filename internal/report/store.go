package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dejo1307/viewbindmigrate/internal/classify"
)

// Store provides in-memory storage and querying of file results with JSONL
// persistence.
type Store struct {
	mu      sync.RWMutex
	results []Result

	// Indexes for fast lookups
	byStatus map[Status][]int
	byFile   map[string][]int
	byKind   map[classify.Kind][]int
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{
		byStatus: make(map[Status][]int),
		byFile:   make(map[string][]int),
		byKind:   make(map[classify.Kind][]int),
	}
}

// Add adds results to the store.
func (s *Store) Add(rr ...Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rr {
		idx := len(s.results)
		s.results = append(s.results, r)
		s.byStatus[r.Status] = append(s.byStatus[r.Status], idx)
		if r.File != "" {
			s.byFile[r.File] = append(s.byFile[r.File], idx)
		}
		if r.Kind != "" {
			s.byKind[r.Kind] = append(s.byKind[r.Kind], idx)
		}
	}
}

// All returns all results in insertion order.
func (s *Store) All() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Count returns the number of results in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// ByStatus returns all results with the given status.
func (s *Store) ByStatus(status Status) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byStatus[status])
}

// ByFile returns the results recorded for a file.
func (s *Store) ByFile(file string) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byFile[file])
}

// ByKind returns all results whose class was classified as kind.
func (s *Store) ByKind(kind classify.Kind) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectByIndex(s.byKind[kind])
}

// Counts returns the number of results per status.
func (s *Store) Counts() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Status]int, len(s.byStatus))
	for status, idx := range s.byStatus {
		counts[status] = len(idx)
	}
	return counts
}

// QueryOpts holds the filters for Query. Empty fields match everything.
type QueryOpts struct {
	Status     Status
	Kind       classify.Kind
	FilePrefix string // e.g. "app/src/main/java/com/example/ui"
	Warnings   bool   // only results with at least one warning
	Offset     int
	Limit      int // 0 = default 100, max 500
}

// Query returns results matching opts along with the total count of
// matches before offset and limit are applied.
func (s *Store) Query(opts QueryOpts) ([]Result, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Result
	for _, r := range s.results {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		if opts.Kind != "" && r.Kind != opts.Kind {
			continue
		}
		if opts.FilePrefix != "" && !strings.HasPrefix(r.File, opts.FilePrefix) {
			continue
		}
		if opts.Warnings && r.Warnings() == 0 {
			continue
		}
		matched = append(matched, r)
	}

	total := len(matched)
	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil, total
		}
		matched = matched[opts.Offset:]
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total
}

// Clear removes all results from the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.byStatus = make(map[Status][]int)
	s.byFile = make(map[string][]int)
	s.byKind = make(map[classify.Kind][]int)
}

// WriteJSONL writes all results as JSONL to the given writer.
func (s *Store) WriteJSONL(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc := json.NewEncoder(w)
	for _, r := range s.results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding result %q: %w", r.File, err)
		}
	}
	return nil
}

// WriteJSONLFile writes all results as JSONL to the given file path.
func (s *Store) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := s.WriteJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSONL reads results from a JSONL reader and adds them to the store.
func (s *Store) ReadJSONL(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	// Diffs can make lines long
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var res Result
		if err := json.Unmarshal(line, &res); err != nil {
			return fmt.Errorf("decoding result: %w", err)
		}
		s.Add(res)
	}
	return scanner.Err()
}

// ReadJSONLFile reads results from a JSONL file and adds them to the store.
func (s *Store) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.ReadJSONL(f)
}

func (s *Store) collectByIndex(indices []int) []Result {
	out := make([]Result, 0, len(indices))
	for _, idx := range indices {
		if idx < len(s.results) {
			out = append(out, s.results[idx])
		}
	}
	return out
}
