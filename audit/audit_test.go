package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/adoctext/convert"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// WHAT: a recorded run's fixes come back complete and in insertion order.
// WHY: the ledger is the only record of what a run changed.
func TestRecordAndListFixes(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC()
	sum := convert.Summary{
		RunID:     "run-1",
		Started:   now,
		Finished:  now.Add(time.Minute),
		Succeeded: []string{"a.adoc", "b.adoc"},
		Failed:    []convert.Failure{{Input: "c.adoc", Error: "boom"}},
		Fixes: []convert.FixRecord{
			{File: "a.adoc", Stage: "adoc", Location: "a.adoc:3", Description: "renumbered callout"},
			{File: "b.adoc", Stage: "markdown", Location: "table 1", Description: "converted HTML table"},
		},
	}
	if err := s.RecordRun(sum); err != nil {
		t.Fatal(err)
	}

	fixes, err := s.ListFixes("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixes) != 2 {
		t.Fatalf("got %d fixes, want 2", len(fixes))
	}
	if fixes[0].Description != "renumbered callout" || fixes[1].Stage != "markdown" {
		t.Errorf("fixes out of order or mangled: %+v", fixes)
	}
}

// WHAT: run IDs are unique; recording the same run twice fails and leaves
// no partial fix rows behind.
func TestRecordRunDuplicateID(t *testing.T) {
	s := openTestStore(t)

	sum := convert.Summary{
		RunID: "run-dup",
		Fixes: []convert.FixRecord{{File: "x", Stage: "adoc", Description: "d"}},
	}
	if err := s.RecordRun(sum); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(sum); err == nil {
		t.Fatal("duplicate run ID accepted")
	}

	fixes, err := s.ListFixes("run-dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixes) != 1 {
		t.Errorf("got %d fixes, want 1 (no partial rows from failed insert)", len(fixes))
	}
}

// WHAT: an unknown run ID yields an empty list, not an error.
func TestListFixesUnknownRun(t *testing.T) {
	s := openTestStore(t)
	fixes, err := s.ListFixes("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixes) != 0 {
		t.Errorf("got %d fixes, want 0", len(fixes))
	}
}
