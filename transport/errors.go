// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package transport

import "fmt"

// ConfigError wraps a malformed or incomplete transport configuration. It
// is always fatal at queue construction time.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("transport: invalid config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PublishError wraps a failed Publish call. It is logged at warn and the
// batch is dropped — the client never retries beyond the transport's own
// best-effort retry (spec §4.3, §7).
type PublishError struct {
	Transport Kind
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("transport(%s): publish failed: %s", e.Transport, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
