package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, c := range cases {
		if got := humanBytes(c.n); got != c.want {
			t.Errorf("humanBytes(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestGetSysHealthSizesDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "state.json"), make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	health := GetSysHealth(dir)
	if health.DataDiskSize != "2.0 KB" {
		t.Errorf("Expected data dir size 2.0 KB, got %q", health.DataDiskSize)
	}
	if health.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", health.Goroutines)
	}
}
