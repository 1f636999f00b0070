package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with the given apparent size. The file is sparse,
// so budgets in the tens of megabytes cost nothing on disk. A size <= 0
// writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if size <= 0 {
		if _, err := f.Write([]byte{0x42}); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		return
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("size %s: %v", path, err)
	}
}
