package utils

import (
	"io/fs"
	"path/filepath"
	"sort"

	ds "github.com/bmatcuk/doublestar/v4"
)

// GlobRecursive walks base and returns the files whose path relative to base
// matches any of the doublestar patterns (supports **). Results are sorted.
func GlobRecursive(base string, patterns ...string) ([]string, error) {
	matches := []string{}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		for _, pattern := range patterns {
			ok, err := ds.PathMatch(pattern, rel)
			if err != nil {
				return err
			}
			if ok {
				matches = append(matches, path)
				break
			}
		}
		return nil
	})
	sort.Strings(matches)
	return matches, err
}
