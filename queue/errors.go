// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import "fmt"

// StartupError wraps a failure to load a profile or construct its feature
// queue while building a [ScouterQueue]. It is always fatal: the queue as
// a whole fails to start rather than running with a gap (spec §7 kind 3).
type StartupError struct {
	Alias string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("queue: failed to start %q: %s", e.Alias, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// UnknownAlias is returned by [ScouterQueue.Get] when no profile was
// registered under the given alias.
type UnknownAlias struct {
	Alias string
}

func (e *UnknownAlias) Error() string {
	return fmt.Sprintf("queue: unknown alias %q", e.Alias)
}

// ShutdownTimeout is returned by [ScouterQueue.Shutdown] when one or more
// event loops fail to drain and exit within the caller's deadline (spec
// §7 kind 4, P5 idempotent shutdown).
type ShutdownTimeout struct {
	Aliases []string
}

func (e *ShutdownTimeout) Error() string {
	return fmt.Sprintf("queue: shutdown timed out waiting on %v", e.Aliases)
}
