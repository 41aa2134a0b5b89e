package release

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExclusions are the user-owned server files preserved by default.
//
//nolint:gochecknoglobals // Read-only defaults shared by config and CLI.
var DefaultExclusions = []string{
	"server.properties",
	"permissions.json",
	"allowlist.json",
}

// ExclusionSet holds relative, slash-separated paths that must not be
// overwritten when they already exist in the installation directory.
type ExclusionSet struct {
	paths map[string]struct{}
}

// NewExclusionSet builds a set from user supplied paths.
// Entries are normalized to clean slash-separated form; blanks are dropped.
func NewExclusionSet(paths []string) ExclusionSet {
	set := ExclusionSet{
		paths: make(map[string]struct{}, len(paths)),
	}

	for _, p := range paths {
		normalized := normalizeRelative(p)
		if normalized == "" {
			continue
		}

		set.paths[normalized] = struct{}{}
	}

	return set
}

// Contains reports whether the relative path is excluded.
func (s ExclusionSet) Contains(relativePath string) bool {
	_, ok := s.paths[normalizeRelative(relativePath)]

	return ok
}

// Len returns the number of excluded paths.
func (s ExclusionSet) Len() int {
	return len(s.paths)
}

// Paths returns the excluded paths in sorted order.
func (s ExclusionSet) Paths() []string {
	result := make([]string, 0, len(s.paths))
	for p := range s.paths {
		result = append(result, p)
	}

	sort.Strings(result)

	return result
}

// ShouldSkip decides whether an archive entry must be left alone.
// An exclusion only protects a path that is already present on the target;
// a missing excluded path is still created from the archive.
func ShouldSkip(relativePath string, exclusions ExclusionSet, existsOnTarget bool) bool {
	return existsOnTarget && exclusions.Contains(relativePath)
}

func normalizeRelative(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return ""
	}

	p = strings.TrimPrefix(path.Clean(p), "./")
	if p == "." {
		return ""
	}

	return p
}
