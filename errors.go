// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "errors"

// ErrLoopClosed is returned by Loop methods after Shutdown.
var ErrLoopClosed = errors.New("present: loop is shut down")
