//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// PathExpander turns a user supplied path into a usable filesystem path.
type PathExpander func(path string) (string, error)

// ExpandPath expands a leading "~" to the current user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}

	return filepath.Clean(expanded), nil
}

// HomeRelativeExpander returns an expander that resolves "~" against home.
// Tests use it to keep every path inside a scoped temporary root.
func HomeRelativeExpander(home string) PathExpander {
	return func(path string) (string, error) {
		switch {
		case path == "~":
			return filepath.Clean(home), nil
		case len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator):
			return filepath.Join(home, path[2:]), nil
		default:
			return filepath.Clean(path), nil
		}
	}
}
