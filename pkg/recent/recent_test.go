package recent

import (
	"testing"

	"github.com/stimflow/stimflow/pkg/timeline"
)

func newTestList(t *testing.T, max int) *List {
	t.Helper()
	l := NewList(timeline.MemFS{}, "recent.json", max)
	l.Exists = func(string) bool { return true }
	return l
}

func TestAddFrontInsert(t *testing.T) {
	l := newTestList(t, 10)
	for _, p := range []string{"/data/one.json", "/data/two.json", "/data/three.json"} {
		if err := l.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p, err)
		}
	}

	got := l.Entries()
	want := []string{"/data/three.json", "/data/two.json", "/data/one.json"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAddDeduplicates(t *testing.T) {
	l := newTestList(t, 10)
	l.Add("/data/one.json")
	l.Add("/data/two.json")
	l.Add("/data/one.json") // re-open moves to front

	got := l.Entries()
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0] != "/data/one.json" || got[1] != "/data/two.json" {
		t.Errorf("entries = %v", got)
	}
}

func TestAddCapsAtMax(t *testing.T) {
	l := newTestList(t, 3)
	for _, p := range []string{"/a.json", "/b.json", "/c.json", "/d.json"} {
		l.Add(p)
	}

	got := l.Entries()
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0] != "/d.json" {
		t.Errorf("newest entry = %s, want /d.json", got[0])
	}
	for _, p := range got {
		if p == "/a.json" {
			t.Error("oldest entry survived the cap")
		}
	}
}

func TestEntriesFiltersMissingFiles(t *testing.T) {
	l := newTestList(t, 10)
	l.Add("/data/gone.json")
	l.Add("/data/here.json")
	l.Exists = func(p string) bool { return p == "/data/here.json" }

	got := l.Entries()
	if len(got) != 1 || got[0] != "/data/here.json" {
		t.Errorf("entries = %v, want only /data/here.json", got)
	}
}

func TestEntriesMissingStore(t *testing.T) {
	l := newTestList(t, 10)
	if got := l.Entries(); got != nil {
		t.Errorf("entries = %v, want nil for a missing store", got)
	}
}

func TestEntriesCorruptStore(t *testing.T) {
	fsys := timeline.MemFS{"recent.json": []byte("{broken")}
	l := NewList(fsys, "recent.json", 10)
	if got := l.Entries(); got != nil {
		t.Errorf("entries = %v, want nil for a corrupt store", got)
	}
}

func TestNewListDefaultMax(t *testing.T) {
	l := NewList(timeline.MemFS{}, "recent.json", 0)
	if l.max != DefaultMax {
		t.Errorf("max = %d, want %d", l.max, DefaultMax)
	}
}
