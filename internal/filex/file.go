// Package filex holds small filesystem helpers for per-invocation state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStateDir creates dirName under the current working directory when
// it does not exist yet and returns its absolute path. Callers use it for
// local state such as the persisted access token.
func EnsureStateDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
