package report

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/migrate"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
	"github.com/dejo1307/viewbindmigrate/internal/rewrite"
)

// --- helpers ---

func makeResult(file string, status Status, kind classify.Kind) Result {
	return Result{File: file, Status: status, Kind: kind}
}

func seeded() *Store {
	s := NewStore()
	s.Add(
		makeResult("app/ui/MainActivity.kt", StatusConverted, classify.Activity),
		makeResult("app/ui/FirstFragment.kt", StatusConverted, classify.Fragment),
		makeResult("app/widget/Header.kt", StatusFailed, classify.View),
		makeResult("lib/Helper.kt", StatusUnhandled, classify.Unhandled),
		Result{
			File:     "app/ui/SecondFragment.kt",
			Status:   StatusConverted,
			Kind:     classify.Fragment,
			Messages: []notify.Message{{Level: notify.Warn, Text: "no layout declares fab"}},
		},
	)
	return s
}

// --- tests ---

func TestAdd_IndexesAllMaps(t *testing.T) {
	s := seeded()

	if got := s.ByStatus(StatusConverted); len(got) != 3 {
		t.Errorf("ByStatus(converted) = %d results, want 3", len(got))
	}
	if got := s.ByKind(classify.Fragment); len(got) != 2 {
		t.Errorf("ByKind(fragment) = %d results, want 2", len(got))
	}
	if got := s.ByFile("lib/Helper.kt"); len(got) != 1 || got[0].Status != StatusUnhandled {
		t.Errorf("ByFile(lib/Helper.kt) = %v", got)
	}
	if got := s.ByFile(""); len(got) != 0 {
		t.Errorf("ByFile('') = %d results, want 0", len(got))
	}
	counts := s.Counts()
	if counts[StatusConverted] != 3 || counts[StatusFailed] != 1 || counts[StatusUnchanged] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestQuery(t *testing.T) {
	s := seeded()

	tests := []struct {
		name      string
		opts      QueryOpts
		wantFiles []string
		wantTotal int
	}{
		{"all", QueryOpts{}, nil, 5},
		{"status", QueryOpts{Status: StatusFailed}, []string{"app/widget/Header.kt"}, 1},
		{"kind and prefix", QueryOpts{Kind: classify.Fragment, FilePrefix: "app/ui/"}, []string{"app/ui/FirstFragment.kt", "app/ui/SecondFragment.kt"}, 2},
		{"warnings", QueryOpts{Warnings: true}, []string{"app/ui/SecondFragment.kt"}, 1},
		{"offset and limit", QueryOpts{FilePrefix: "app/", Offset: 1, Limit: 2}, []string{"app/ui/FirstFragment.kt", "app/widget/Header.kt"}, 4},
		{"offset past end", QueryOpts{Offset: 10}, []string{}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := s.Query(tt.opts)
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if tt.wantFiles == nil {
				return
			}
			files := make([]string, 0, len(got))
			for _, r := range got {
				files = append(files, r.File)
			}
			if strings.Join(files, ",") != strings.Join(tt.wantFiles, ",") {
				t.Errorf("files = %v, want %v", files, tt.wantFiles)
			}
		})
	}
}

func TestJSONLRoundTripFile(t *testing.T) {
	s := seeded()
	path := filepath.Join(t.TempDir(), "results.jsonl")
	if err := s.WriteJSONLFile(path); err != nil {
		t.Fatalf("WriteJSONLFile: %v", err)
	}

	loaded := NewStore()
	if err := loaded.ReadJSONLFile(path); err != nil {
		t.Fatalf("ReadJSONLFile: %v", err)
	}
	if loaded.Count() != s.Count() {
		t.Fatalf("loaded %d results, want %d", loaded.Count(), s.Count())
	}
	got := loaded.ByFile("app/ui/SecondFragment.kt")
	if len(got) != 1 || got[0].Warnings() != 1 {
		t.Errorf("SecondFragment = %+v", got)
	}
}

func TestReadJSONL_Errors(t *testing.T) {
	s := NewStore()
	if err := s.ReadJSONL(strings.NewReader("{\"file\":\"a.kt\"}\n\nnot json\n")); err == nil {
		t.Error("malformed line accepted")
	}
	if s.Count() != 1 {
		t.Errorf("results before the bad line = %d, want 1", s.Count())
	}
	if err := s.ReadJSONLFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestWriteJSONL_OneLinePerResult(t *testing.T) {
	var buf bytes.Buffer
	if err := seeded().WriteJSONL(&buf); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 5 {
		t.Errorf("lines = %d, want 5", lines)
	}
}

func TestClear(t *testing.T) {
	s := seeded()
	s.Clear()
	if s.Count() != 0 || len(s.ByStatus(StatusConverted)) != 0 || len(s.Counts()) != 0 {
		t.Error("store not empty after Clear")
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(makeResult(fmt.Sprintf("F%d.kt", i), StatusConverted, classify.Activity))
		}(i)
	}
	wg.Wait()
	if s.Count() != 20 || len(s.ByKind(classify.Activity)) != 20 {
		t.Errorf("Count() = %d", s.Count())
	}
}

func TestNewResult(t *testing.T) {
	plan := &migrate.Plan{
		Class:          "com.example.MainActivity",
		Classification: classify.Result{Kind: classify.Activity},
		Bindings: []binding.Binding{
			{Layout: "activity_main", Name: "ActivityMainBinding"},
			{Layout: "toolbar", Name: "ToolbarBinding"},
		},
		Descriptors: []binding.Descriptor{
			{Binding: binding.Binding{Layout: "toolbar", Name: "ToolbarBinding"}, Kind: binding.Include},
			{Binding: binding.Binding{Layout: "activity_main", Name: "ActivityMainBinding"}, Kind: binding.NoInclude},
		},
		References: make([]rewrite.Reference, 3),
		Changed:    true,
	}

	tests := []struct {
		name string
		plan *migrate.Plan
		err  error
		want Status
	}{
		{"converted", plan, nil, StatusConverted},
		{"failed", plan, errors.New("overlapping edits"), StatusFailed},
		{"failed without plan", nil, errors.New("reading A.kt"), StatusFailed},
		{"unchanged", &migrate.Plan{}, nil, StatusUnchanged},
		{"unhandled", &migrate.Plan{Classification: classify.Result{Kind: classify.Unhandled}, Changed: true}, nil, StatusUnhandled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult("A.kt", tt.plan, tt.err)
			if r.Status != tt.want {
				t.Errorf("status = %s, want %s", r.Status, tt.want)
			}
			if tt.err != nil && r.Error != tt.err.Error() {
				t.Errorf("error = %q", r.Error)
			}
		})
	}

	r := NewResult("A.kt", plan, nil)
	if r.Includes != 1 || r.References != 3 || strings.Join(r.Bindings, ",") != "ActivityMainBinding,ToolbarBinding" {
		t.Errorf("result = %+v", r)
	}
}
