// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import "context"

// taskState tracks the lifecycle of a single alias's event loop: a
// cancellation handle the owner uses to ask the loop to drain and stop,
// and a done channel the loop closes once it has actually exited.
type taskState struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newTaskState(cancel context.CancelFunc) *taskState {
	return &taskState{cancel: cancel, done: make(chan struct{})}
}

// stop requests cancellation and blocks until the loop exits or ctx is
// done, whichever comes first.
func (t *taskState) stop(ctx context.Context) error {
	t.cancel()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *taskState) markDone() {
	close(t.done)
}
