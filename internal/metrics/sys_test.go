package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dietician.db"), make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	h := GetSysHealth(dir)
	if h.DataDiskSize != "2.0 KB" {
		t.Errorf("Expected 2.0 KB, got %s", h.DataDiskSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}
}

func TestHumanSize(t *testing.T) {
	cases := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1536:    "1.5 KB",
		5 << 20: "5.0 MB",
		3 << 30: "3.0 GB",
	}
	for in, want := range cases {
		if got := humanSize(in); got != want {
			t.Errorf("humanSize(%d) = %s, want %s", in, got, want)
		}
	}
}
