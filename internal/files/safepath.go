package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SafePath returns a non-existing variant of path by appending _1.._9, then a
// UUID suffix. If path does not exist it is returned unchanged; the boolean
// reports whether the path was adjusted.
func SafePath(path string) (string, bool, error) {
	if path == "" {
		return "", false, fmt.Errorf("path is empty")
	}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return path, false, nil
	}
	if err != nil {
		return "", false, err
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= 9; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, true, nil
		} else if err != nil {
			return "", false, err
		}
	}

	suffix := ""
	if u, err := uuid.NewV7(); err == nil {
		suffix = u.String()
	} else {
		suffix = uuid.NewString()[:8]
	}
	return fmt.Sprintf("%s_%s%s", base, suffix, ext), true, nil
}
