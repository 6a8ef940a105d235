package archive

import (
	"io"
	"path"
	"sort"
	"strings"
)

const (
	pathSeparator       = "/"
	jsonFileExtension   = ".json"
	scriptFileExtension = ".js"
)

// Opener returns a fresh reader over the content of a single archive file.
type Opener func() (io.ReadCloser, error)

// FileSet maps slash-separated relative paths to their content openers.
type FileSet map[string]Opener

// Stats describes the composition of a file set.
type Stats struct {
	TotalFiles  int `json:"totalFiles"`
	JSONFiles   int `json:"jsonFiles"`
	ScriptFiles int `json:"jsFiles"`
}

// Paths returns every path of the file set in lexical order.
func (files FileSet) Paths() []string {
	paths := make([]string, 0, len(files))
	for filePath := range files {
		paths = append(paths, filePath)
	}
	sort.Strings(paths)
	return paths
}

// Describe counts the files of the set by kind.
func Describe(files FileSet) Stats {
	stats := Stats{TotalFiles: len(files)}
	for filePath := range files {
		switch {
		case strings.HasSuffix(filePath, jsonFileExtension):
			stats.JSONFiles++
		case strings.HasSuffix(filePath, scriptFileExtension):
			stats.ScriptFiles++
		}
	}
	return stats
}

// Resolve finds the file addressed by pattern. A path matches when its final segment equals the
// pattern or when it ends with "/" followed by the pattern. When several paths match, the shortest
// path wins and equal lengths fall back to lexical order.
func Resolve(files FileSet, pattern string) (string, Opener, bool) {
	resolvedPath := ""
	found := false
	for filePath := range files {
		if !matchesPattern(filePath, pattern) {
			continue
		}
		if !found || preferPath(filePath, resolvedPath) {
			resolvedPath = filePath
			found = true
		}
	}
	if !found {
		return "", nil, false
	}
	return resolvedPath, files[resolvedPath], true
}

// Select returns the sorted paths accepted by the predicate.
func Select(files FileSet, predicate func(filePath string) bool) []string {
	var selected []string
	for filePath := range files {
		if predicate(filePath) {
			selected = append(selected, filePath)
		}
	}
	sort.Strings(selected)
	return selected
}

// BaseName returns the final segment of a slash-separated path.
func BaseName(filePath string) string {
	return path.Base(filePath)
}

func matchesPattern(filePath string, pattern string) bool {
	if pattern == "" {
		return false
	}
	return path.Base(filePath) == pattern || strings.HasSuffix(filePath, pathSeparator+pattern)
}

func preferPath(candidate string, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) < len(current)
	}
	return candidate < current
}
