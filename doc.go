// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present manages the lifecycle of windowed GPU presentation: it
// owns a swapchain resource set, paces frames behind GPU completion
// signals, and rebuilds presentation resources when the surface resizes or
// goes stale.
//
// The entry point is Initialize, which opens a device through the driver
// registry (or accepts one directly), builds the first resource set, and
// returns a Loop. Each call to Loop.RunFrame acquires an image, records
// one frame, submits it, and queues it for display:
//
//	loop, err := present.Initialize(present.Config{})
//	if err != nil {
//	    return err
//	}
//	defer loop.Shutdown()
//	for running {
//	    res, err := loop.RunFrame()
//	    if err != nil {
//	        return err // device lost
//	    }
//	    _ = res // Presented, or Skipped with a reason
//	}
//
// Surface changes are fed in from the window layer with Loop.OnResize and
// Loop.OnInvalidated; the loop coalesces them and rebuilds at most one
// resource set per frame. Expected surface conditions (a resize, a stale
// swapchain, an acquisition timeout, a minimized window) never come back
// as RunFrame errors; they come back as skipped frames. The only error
// RunFrame returns is loss of the device itself.
//
// Package present is silent by default. Call SetLogger to observe device
// selection and rebuild activity.
package present
