// Package robopages loads declarative tool manifests (pages) into an
// immutable registry (a book) that agents and servers can translate into
// function-calling schemas and dispatch calls against.
package robopages

import (
	"os"
	"path/filepath"
)

const (
	// PathEnvVar overrides the default page search path when set.
	PathEnvVar = "ROBOPAGES_PATH"

	// DefaultDirName is the per-user page directory under $HOME.
	DefaultDirName = ".robopages"

	// DefaultAddress is the address the serve command binds by default.
	DefaultAddress = "127.0.0.1:8000"

	// DefaultRepo is the repository the install command pulls pages from.
	DefaultRepo = "dreadnode/robopages"
)

// DefaultPath returns the page search path: ROBOPAGES_PATH when set,
// otherwise ~/.robopages.
func DefaultPath() (string, error) {
	if env := os.Getenv(PathEnvVar); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}
