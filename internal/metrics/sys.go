package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
)

// SysHealth is a point-in-time picture of the process and its data
// directory, rendered by the /metrics report.
type SysHealth struct {
	AllocMB      uint64
	TotalAllocMB uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string
}

// GetSysHealth samples the Go runtime and sizes the data directory.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: dirSize(dataPath),
	}
}

// dirSize sums the regular files under path. Walk errors leave the sum
// partial rather than failing the report.
func dirSize(path string) string {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return humanBytes(size)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for rest := n / unit; rest >= unit; rest /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
