// Package fsutil holds the file-deletion primitive the eviction layer is
// built on.
package fsutil

import (
	"fmt"
	"os"
)

// RemoveFileSize deletes path and reports how many bytes that freed.
//
// A path that does not exist is not an error: it reports (0, false, nil).
// Any other stat or remove failure is returned as an error. The removed flag
// is true only when this call actually deleted the file.
func RemoveFileSize(path string) (size int64, removed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		// The file may have vanished between the stat and the remove.
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return info.Size(), true, nil
}
