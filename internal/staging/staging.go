// SPDX-License-Identifier: MPL-2.0

// Package staging shadows the build directory with a temporary working
// copy so a build's filesystem effects commit atomically-on-success.
//
// The guarantee is limited to the commit step: a process killed
// mid-build leaves the real build directory untouched; a process killed
// during Exit's copy-back may leave it partially updated. Accepted weak
// point.
package staging

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// AlreadyStagedError is returned by Enter when a session is active.
// Double-entering is a usage error, not a recoverable condition.
type AlreadyStagedError struct {
	StagedDir string
}

func (e *AlreadyStagedError) Error() string {
	return fmt.Sprintf("staging session already active at %s", e.StagedDir)
}

// Session is the temporary-directory shadow of the real build directory.
type Session struct {
	// OriginalDir is the real, persistent build directory.
	OriginalDir string
	// StagedDir is the temporary working copy.
	StagedDir string

	active bool
}

// Manager owns at most one active Session.
type Manager struct {
	log     *log.Logger
	current *Session
}

// NewManager creates a Manager logging through logger.
func NewManager(logger *log.Logger) *Manager {
	return &Manager{log: logger}
}

// Active reports whether a session is currently entered.
func (m *Manager) Active() bool {
	return m.current != nil && m.current.active
}

// Enter creates a staging session for buildDir: a fresh temporary
// directory (name-prefixed from the build directory's base name for
// traceability), pre-populated with buildDir's contents when it exists
// and is non-empty, so in-progress builds resume from prior state.
func (m *Manager) Enter(buildDir string) (*Session, error) {
	if m.Active() {
		return nil, &AlreadyStagedError{StagedDir: m.current.StagedDir}
	}

	staged, err := os.MkdirTemp("", filepath.Base(buildDir)+"-stage-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	if hasContents(buildDir) {
		if err := CopyTree(buildDir, staged); err != nil {
			os.RemoveAll(staged)
			return nil, fmt.Errorf("seed staging dir from %s: %w", buildDir, err)
		}
	}

	m.current = &Session{OriginalDir: buildDir, StagedDir: staged, active: true}
	m.log.Debug("staging session entered", "original", buildDir, "staged", staged)
	return m.current, nil
}

// Exit commits the session: the staged tree is merge-copied back onto
// the original directory (existing destination entries are overlaid,
// never pre-cleared) and the temporary directory is released.
//
// Exiting an inactive session logs a warning and returns nil; staging
// teardown is best-effort cleanup, not a strict precondition.
func (m *Manager) Exit(s *Session) error {
	if s == nil || !s.active {
		m.log.Warn("staging exit on inactive session, nothing to do")
		return nil
	}

	if err := os.MkdirAll(s.OriginalDir, 0o755); err != nil {
		return fmt.Errorf("restore build dir %s: %w", s.OriginalDir, err)
	}
	if err := CopyTree(s.StagedDir, s.OriginalDir); err != nil {
		return fmt.Errorf("commit staged work to %s: %w", s.OriginalDir, err)
	}

	s.active = false
	m.current = nil
	if err := os.RemoveAll(s.StagedDir); err != nil {
		// committed already; losing the temp dir is not a build failure
		m.log.Warn("could not remove staging dir", "dir", s.StagedDir, "err", err)
	}
	m.log.Debug("staging session committed", "original", s.OriginalDir)
	return nil
}

// Discard abandons the session without copying anything back.
func (m *Manager) Discard(s *Session) error {
	if s == nil || !s.active {
		m.log.Warn("staging discard on inactive session, nothing to do")
		return nil
	}

	s.active = false
	m.current = nil
	if err := os.RemoveAll(s.StagedDir); err != nil {
		return fmt.Errorf("discard staging dir %s: %w", s.StagedDir, err)
	}
	m.log.Debug("staging session discarded", "staged", s.StagedDir)
	return nil
}

func hasContents(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// CopyTree recursively copies src's contents into dst with overlay
// semantics. os.CopyFS is not usable here: it refuses to overwrite
// existing destination files.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			dest, err := os.Readlink(path)
			if err != nil {
				return err
			}
			os.Remove(target)
			return os.Symlink(dest, target)
		default:
			return copyFile(path, target)
		}
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
