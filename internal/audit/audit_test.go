package audit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j := NewJournal(filepath.Join(t.TempDir(), "data", "journal.jsonl"))
	j.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC) }
	return j
}

func TestLogCreatesFileWithOwnerOnlyPermissions(t *testing.T) {
	j := newTestJournal(t)

	j.Log(Entry{Event: EventUnlock})

	info, err := os.Stat(j.Path())
	if err != nil {
		t.Fatalf("Journal was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600, got %v", info.Mode().Perm())
	}
}

func TestLogAppendsEntries(t *testing.T) {
	j := newTestJournal(t)

	j.Log(Entry{Event: EventUnlockFailed, Remaining: 2})
	j.Log(Entry{Event: EventModeChanged, Mode: "tor", Session: "abc"})
	j.Log(Entry{Event: EventQuickExit})

	entries, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Remaining != 2 || entries[1].Mode != "tor" || entries[1].Session != "abc" {
		t.Errorf("Unexpected entries %+v", entries)
	}
	if entries[0].Timestamp != "2026-03-01T12:00:00.123456Z" {
		t.Errorf("Unexpected timestamp %q", entries[0].Timestamp)
	}
}

func TestLogKeepsExplicitTimestamp(t *testing.T) {
	j := newTestJournal(t)
	j.Log(Entry{Event: EventPinSet, Timestamp: "2020-01-01T00:00:00.000000Z"})

	entries, _ := j.Entries()
	if len(entries) != 1 || entries[0].Timestamp != "2020-01-01T00:00:00.000000Z" {
		t.Errorf("Expected explicit timestamp to be kept, got %+v", entries)
	}
}

func TestEntriesMissingJournal(t *testing.T) {
	j := newTestJournal(t)
	entries, err := j.Entries()
	if err != nil || entries != nil {
		t.Errorf("Expected no entries, got %v err=%v", entries, err)
	}
}

func TestConcurrentLogging(t *testing.T) {
	j := newTestJournal(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.Log(Entry{Event: EventUnlock})
		}()
	}
	wg.Wait()

	entries, _ := j.Entries()
	if len(entries) != 20 {
		t.Errorf("Expected 20 entries, got %d", len(entries))
	}
}

func TestDestroy(t *testing.T) {
	j := newTestJournal(t)
	j.Log(Entry{Event: EventUnlock})

	if err := j.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, err := os.Stat(j.Path()); !os.IsNotExist(err) {
		t.Errorf("Expected journal to be removed, got %v", err)
	}
	if err := j.Destroy(); err != nil {
		t.Errorf("Destroying a missing journal should succeed, got %v", err)
	}
}

func TestParseEntriesSkipsMalformedLines(t *testing.T) {
	data := strings.Join([]string{
		`{"ts":"2026-03-01T12:00:00.000000Z","event":"unlock"}`,
		`not json`,
		``,
		`{"ts":"2026-03-01T12:01:00.000000Z","event":"quick_exit"}`,
	}, "\n")

	entries, err := ParseEntries([]byte(data))
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Event != EventQuickExit {
		t.Errorf("Unexpected entries %+v", entries)
	}
}
