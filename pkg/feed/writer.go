package feed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmcdole/gofeed"
)

// WriteFile replaces the file at path with data. Data goes to a temp file in the same directory
// first and then renamed, so a failed write leaves the previous feed untouched.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // feed is public
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// ReadGUIDs returns guids of items in an existing feed file, empty set if the file doesn't exist
func ReadGUIDs(path string) (map[string]bool, error) {
	res := map[string]bool{}
	fh, err := os.Open(path) //nolint:gosec // path comes from CLI flag
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer fh.Close() //nolint:errcheck // read-only file

	parsed, err := gofeed.NewParser().Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}
	for _, item := range parsed.Items {
		if item.GUID != "" {
			res[item.GUID] = true
		}
	}
	return res, nil
}
