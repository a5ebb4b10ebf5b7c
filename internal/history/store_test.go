package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreAppendAndCommands(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	s := &Store{Path: path}

	if got, err := s.Commands(); err != nil || len(got) != 0 {
		t.Fatalf("Commands on missing file: got=%v err=%v", got, err)
	}

	if err := s.Append("   "); err != nil {
		t.Fatalf("Append whitespace: %v", err)
	}
	if err := s.Append("open the map"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("show weather fullscreen"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Commands()
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	want := []string{"open the map", "show weather fullscreen"}
	if len(got) != len(want) {
		t.Fatalf("Commands = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Commands[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCommandsSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := strings.Join([]string{
		`{"command":"acknowledge the radar alert","at":"2026-01-01T00:00:00Z"}`,
		`{not json}`,
		`{"command":"","at":"2026-01-01T00:00:00Z"}`,
		`{"command":"close everything","at":"2026-01-01T00:00:00Z"}`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := (&Store{Path: path}).Commands()
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(got) != 2 || got[0] != "acknowledge the radar alert" || got[1] != "close everything" {
		t.Fatalf("Commands = %#v", got)
	}
}

func TestStoreNilAndEmptyPath(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	if err := nilStore.Append("x"); err == nil {
		t.Fatalf("nil store Append should error")
	}
	if _, err := nilStore.Commands(); err == nil {
		t.Fatalf("nil store Commands should error")
	}
	s := &Store{}
	if err := s.Append("x"); err == nil {
		t.Fatalf("empty path Append should error")
	}
}
