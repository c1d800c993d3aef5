// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pacer chains per-frame completion signals so that CPU recording
// never overtakes GPU consumption of a presentable image.
//
// A Pacer owns a small ring of frame slots, each with an image-available
// semaphore, a render-finished semaphore, and a host-waitable fence. A
// frame flows through exactly one slot:
//
//	acq, err := p.AcquireNext(timeout)
//	cmds := record(...)
//	p.Submit(acq, cmds)
//	p.Present(acq)
//
// AcquireNext blocks on the slot's previous fence, so at most FramesInFlight
// frames are ever being recorded or executed at once. It also tracks which
// slot fence last targeted each image index and waits for that fence before
// handing the same image out again, which keeps recording strictly behind
// resolution even when the image pool is smaller than expected.
//
// Staleness (a resized or invalidated surface) surfaces as ErrNeedsRebuild;
// the caller rebuilds its resource set and installs it with
// InstallResourceSet, which drains in-flight work first.
package pacer
