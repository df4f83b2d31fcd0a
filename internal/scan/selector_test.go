package scan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"archmap/internal/config"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func selectFiles(t *testing.T, root string, scanning config.Scanning) []string {
	t.Helper()
	sel, err := NewSelector(root, scanning)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	files, err := sel.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	sort.Strings(files)
	return files
}

func TestSelectDefaults(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.rs":           "fn main() {}",
		"src/lib.rs":        "",
		"src/core.rs":       "",
		"target/debug/g.rs": "",
		".hidden/secret.rs": "",
		"README.md":         "# readme",
		"src/notes.txt":     "notes",
		"node_modules/x.rs": "",
	})

	got := selectFiles(t, root, config.Default().Scanning)

	want := []string{"main.rs", "src/core.rs", "src/lib.rs"}
	if len(got) != len(want) {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selected %v, want %v", got, want)
			break
		}
	}
}

func TestSelectExcludeWinsOverInclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/keep.rs":      "",
		"src/skip/drop.rs": "",
		"skip/top.rs":      "",
	})
	scanning := config.Scanning{
		ExcludePatterns: []string{"**/skip/**"},
		IncludePatterns: []string{"**/*.rs"},
	}

	got := selectFiles(t, root, scanning)

	if len(got) != 1 || got[0] != "src/keep.rs" {
		t.Errorf("expected only src/keep.rs, got %v", got)
	}
}

func TestSelectIncludeFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/a.rs":   "",
		"other/b.rs": "",
	})
	scanning := config.Scanning{IncludePatterns: []string{"src/**"}}

	got := selectFiles(t, root, scanning)

	if len(got) != 1 || got[0] != "src/a.rs" {
		t.Errorf("expected only src/a.rs, got %v", got)
	}
}

func TestSelectEmptyIncludeTakesEverything(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.rs":       "",
		"sub/b.rs":   "",
		"sub/c.toml": "",
	})

	got := selectFiles(t, root, config.Scanning{})

	want := []string{"a.rs", "sub/b.rs"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("selected %v, want %v", got, want)
	}
}

func TestSelectSizeLimit(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.rs": "ok",
		"big.rs":   strings.Repeat("x", 100),
	})
	limit := int64(10)
	scanning := config.Scanning{MaxFileSize: &limit}

	got := selectFiles(t, root, scanning)

	if len(got) != 1 || got[0] != "small.rs" {
		t.Errorf("expected only small.rs under the cap, got %v", got)
	}
}

func TestSelectExtensionGate(t *testing.T) {
	root := writeTree(t, map[string]string{
		"code.rs":   "",
		"plain.txt": "",
		"upper.RS":  "",
		".rs":       "",
	})

	got := selectFiles(t, root, config.Scanning{})

	if len(got) != 1 || got[0] != "code.rs" {
		t.Errorf("expected only code.rs, got %v", got)
	}
}

func TestSelectRootFile(t *testing.T) {
	root := writeTree(t, map[string]string{"only.rs": "fn f() {}"})

	got := selectFiles(t, filepath.Join(root, "only.rs"), config.Scanning{})

	if len(got) != 1 || got[0] != "only.rs" {
		t.Errorf("expected the file itself, got %v", got)
	}
}

func TestSelectMissingRoot(t *testing.T) {
	sel, err := NewSelector(filepath.Join(t.TempDir(), "missing"), config.Scanning{})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}

	if _, err := sel.Select(); err == nil {
		t.Fatal("expected an error for a missing root")
	} else if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}

func TestSelectInvalidPattern(t *testing.T) {
	_, err := NewSelector(t.TempDir(), config.Scanning{ExcludePatterns: []string{"[unclosed"}})
	if err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
	if !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSelectSymlinkedFileWithoutFollow(t *testing.T) {
	root := writeTree(t, map[string]string{"real.rs": "fn f() {}"})
	if err := os.Symlink(filepath.Join(root, "real.rs"), filepath.Join(root, "link.rs")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got := selectFiles(t, root, config.Scanning{})

	// A link to a regular file counts as one even when directory links
	// are not followed.
	want := []string{"link.rs", "real.rs"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("selected %v, want %v", got, want)
	}
}

func TestSelectFollowSymlinks(t *testing.T) {
	root := writeTree(t, map[string]string{
		"real/a.rs": "",
		"b.rs":      "",
	})
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	without := selectFiles(t, root, config.Scanning{})
	if len(without) != 2 {
		t.Errorf("without following, expected [b.rs real/a.rs], got %v", without)
	}

	with := selectFiles(t, root, config.Scanning{FollowSymlinks: true})
	want := []string{"b.rs", "linked/a.rs", "real/a.rs"}
	if len(with) != 3 || with[0] != want[0] || with[1] != want[1] || with[2] != want[2] {
		t.Errorf("with following, selected %v, want %v", with, want)
	}
}

func TestSelectFollowSymlinksTerminatesOnLoop(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.rs":     "",
		"sub/b.rs": "",
	})
	if err := os.Symlink(root, filepath.Join(root, "sub", "back")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got := selectFiles(t, root, config.Scanning{FollowSymlinks: true})

	want := []string{"a.rs", "sub/b.rs"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("selected %v, want %v", got, want)
	}
}
