// Package runlock keeps two idmend runs from repairing the same feature class
// at once on one host.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another idmend run holds the lock")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Lock is a held run lock. Release it when the run ends.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Name returns the lock file name for a workspace and feature class.
func Name(workspace, featureClass string) string {
	sum := sha256.Sum256([]byte(workspace + "\x00" + strings.ToLower(featureClass)))
	base := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(featureClass), "_"), "_.")
	if base == "" {
		base = "featureclass"
	}
	return fmt.Sprintf("%s-%s.lock", base, hex.EncodeToString(sum[:])[:12])
}

// Acquire takes the lock for workspace and featureClass without blocking.
func Acquire(stateDir, workspace, featureClass string) (*Lock, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	path := filepath.Join(stateDir, Name(workspace, featureClass))
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. The lock file stays behind for the next run.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
