// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import "time"

// DefaultBackgroundTick is how often an event loop checks whether a
// time-based flush is due for variants that need one (PSI, Custom,
// LLM — spec §4.3, §4.5). This resolves spec §9's second open question;
// override with [WithBackgroundTick].
const DefaultBackgroundTick = 30 * time.Second
