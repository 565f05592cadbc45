package bench

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// cacheDirName and reportCacheFile mirror the teacher's plib.CacheFileName
// constant: a fixed filename inside a cache directory resolved through
// adrg/xdg rather than a hardcoded path.
const (
	cacheDirName    = "coresched"
	reportCacheFile = "bench-reports.gob"
)

// CacheDir returns the path of the report cache file inside the XDG cache
// directory, as resolved by xdg.CacheFile (which creates missing parent
// directories).
func CacheDir() (string, error) {
	return xdg.CacheFile(filepath.Join(cacheDirName, reportCacheFile))
}

// SaveReports persists reports to the XDG cache directory, overwriting
// any existing cache file, the same create-dir-then-gob-encode shape as
// plib.encodeProcessCache.
func SaveReports(reports []Report) error {
	path, err := CacheDir()
	if err != nil {
		return fmt.Errorf("bench: resolving cache path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("bench: creating cache dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: creating cache file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(reports); err != nil {
		return fmt.Errorf("bench: encoding reports: %w", err)
	}
	return nil
}

// LoadReports reads back a previously saved report set, or returns nil if
// no cache exists yet — mirroring plib.loadProcessesFromCache's
// fail-soft-to-nil behavior.
func LoadReports() []Report {
	path, err := CacheDir()
	if err != nil {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var reports []Report
	if err := gob.NewDecoder(f).Decode(&reports); err != nil {
		return nil
	}
	return reports
}
