package driver

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the sorted files under dir accepted by match. Hidden
// directories (".git", ".cache") are not entered.
func ListFiles(dir string, match func(path string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if match == nil || match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}
