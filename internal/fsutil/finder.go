// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension lists the regular files directly inside dir (no
// recursion) whose names end with extension, in directory listing order.
// Hidden files (names starting with ".") are skipped, as a shell glob
// would skip them.
// Returned paths are dir joined with the file name, so a relative dir
// yields relative paths.
func FindFilesByExtension(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), extension) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
