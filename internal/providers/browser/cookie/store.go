package cookie

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/shared/paths"
)

// ErrNoCacheFile is returned by Read and Write when the jar has neither an
// explicit file nor a configured cache directory.
var ErrNoCacheFile = errors.New("cookie: no cache file configured")

// Record is the persisted form of one cookie. Expire is a Unix timestamp,
// zero marks a session-only cookie.
type Record struct {
	Data   string `json:"data"`
	Expire int64  `json:"expire"`
}

// Snapshot returns every stored cookie, live or not, keyed by name.
func (j *Jar) Snapshot() map[string]Record {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make(map[string]Record, len(j.cookies))
	for name, e := range j.cookies {
		out[name] = Record{Data: e.value, Expire: e.expire}
	}
	return out
}

// Restore merges records into the jar; a record replaces an in-memory
// cookie of the same name. Records whose timestamp already passed are
// skipped. It returns the number of cookies merged.
func (j *Jar) Restore(records map[string]Record) int {
	now := j.now().Unix()

	j.mu.Lock()
	defer j.mu.Unlock()

	merged := 0
	for name, rec := range records {
		if name == "" {
			continue
		}
		if rec.Expire != SessionOnly && rec.Expire <= now {
			continue
		}
		j.cookies[name] = entry{value: rec.Data, expire: rec.Expire}
		merged++
	}
	return merged
}

// SetCacheFile pins the backing file and makes sure its directory exists.
// The file itself is left untouched.
func (j *Jar) SetCacheFile(path string) error {
	if path == "" {
		return fmt.Errorf("cookie: empty cache file path")
	}
	if err := j.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cookie dir: %w", err)
	}

	j.mu.Lock()
	j.cacheFile = path
	j.mu.Unlock()
	return nil
}

// CacheFile resolves the backing file: the pinned path if any, otherwise
// <CacheDir>/<sanitized domain>.cookie.
func (j *Jar) CacheFile() (string, error) {
	j.mu.RLock()
	pinned := j.cacheFile
	j.mu.RUnlock()

	if pinned != "" {
		return pinned, nil
	}
	if file := paths.CookieFile(j.cfg.CacheDir, j.domain); file != "" {
		return file, nil
	}
	return "", ErrNoCacheFile
}

// Write persists the whole jar as indented JSON. A failure leaves the
// in-memory cookies untouched.
func (j *Jar) Write() error {
	file, err := j.CacheFile()
	if err != nil {
		return err
	}

	j.saveMu.Lock()
	defer j.saveMu.Unlock()

	data, err := sonic.MarshalIndent(j.Snapshot(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := j.fs.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create cookie dir: %w", err)
	}

	tmp := file + ".tmp"
	if err := afero.WriteFile(j.fs, tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := j.fs.Rename(tmp, file); err != nil {
		_ = j.fs.Remove(tmp)
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

// Read merges the backing file into the jar. Missing or undecodable files
// return an error and leave the jar as it was.
func (j *Jar) Read() error {
	file, err := j.CacheFile()
	if err != nil {
		return err
	}

	data, err := afero.ReadFile(j.fs, file)
	if err != nil {
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	records := make(map[string]Record)
	if err := sonic.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode cookie file: %w", err)
	}

	merged := j.Restore(records)
	j.logger.Debug("cookies restored", zap.String("file", file), zap.Int("count", merged))
	return nil
}
