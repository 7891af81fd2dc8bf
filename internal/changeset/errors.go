// SPDX-License-Identifier: MPL-2.0

package changeset

import "fmt"

// ErrNotRegistered is the sentinel wrapped by ApplyError when a
// discovered change has no apply function in the registry.
var ErrNotRegistered = fmt.Errorf("no apply function registered")

type (
	// DiscoveryError is returned when the changeset directory is missing,
	// unreadable, or yields an inconsistent batch.
	DiscoveryError struct {
		Dir string
		Err error
	}

	// MalformedNameError is returned by FromPath when a file name does not
	// conform to the <priority>_<id>.<ext> pattern.
	MalformedNameError struct {
		Path string
	}

	// ApplyError wraps any failure raised by a change's apply function.
	// It aborts the remaining queue; the staging session is still drained
	// by the orchestrator.
	ApplyError struct {
		ID       string
		Priority int
		Err      error
	}
)

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("changeset discovery in %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed change name: %s (want <priority>_<id>.<ext>)", e.Path)
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("change #%d %q: %v", e.Priority, e.ID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
