package engine

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

func TestSanitizeEntries(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"removes dot and empty", []string{".", "/a", "", "/b", "."}, []string{"/a", "/b"}},
		{"tolerates absence", []string{"/a", "/b"}, []string{"/a", "/b"}},
		{"empty input", nil, []string{}},
		{"only offenders", []string{"", "."}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeEntries(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSanitizeEntriesIdempotent(t *testing.T) {
	once := sanitizeEntries([]string{".", "/a", ""})
	twice := sanitizeEntries(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the result: %v vs %v", once, twice)
	}
}

func TestBuildSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(macebridge.EnvModulePath, strings.Join([]string{".", dir, ""}, string(os.PathListSeparator)))

	path := buildSearchPath("/opt/mace_home")

	for _, e := range path {
		if e == "." || e == "" {
			t.Errorf("offending entry %q survived sanitization", e)
		}
	}
	if path[len(path)-1] != filepath.Join("/opt/mace_home", "modules") {
		t.Errorf("home modules dir not appended last: %v", path)
	}

	found := false
	for _, e := range path {
		if e == dir {
			found = true
		}
	}
	if !found {
		t.Errorf("env entry %q missing from %v", dir, path)
	}

	// The executable-derived directory goes first.
	exeDir, err := executableModuleDir()
	if err != nil {
		t.Fatalf("executableModuleDir: %v", err)
	}
	if path[0] != exeDir {
		t.Errorf("path[0] = %q, want %q", path[0], exeDir)
	}
}

func TestBuildSearchPathNoHome(t *testing.T) {
	t.Setenv(macebridge.EnvModulePath, "")
	path := buildSearchPath("")
	for _, e := range path {
		if strings.HasSuffix(e, filepath.Join("mace_home", "modules")) {
			t.Errorf("unexpected home entry %q", e)
		}
	}
}

func TestLocate(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	want := filepath.Join(dirB, "mace_calculator.wasm")
	if err := os.WriteFile(want, []byte{0x00, 0x61, 0x73, 0x6d}, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := locate("mace_calculator", []string{dirA, dirB})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLocatePrefersEarlierEntries(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	for _, d := range []string{dirA, dirB} {
		if err := os.WriteFile(filepath.Join(d, "m.wasm"), []byte{0}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := locate("m", []string{dirA, dirB})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != filepath.Join(dirA, "m.wasm") {
		t.Errorf("got %q, want the first entry's file", got)
	}
}

func TestLocateNotFound(t *testing.T) {
	_, err := locate("mace_calculator", []string{t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindNotFound}) {
		t.Errorf("err = %v, want load/not_found", err)
	}
	if !strings.Contains(err.Error(), "mace_calculator") {
		t.Errorf("module name missing from %v", err)
	}
}
