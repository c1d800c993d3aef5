// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/present/driver"
	"github.com/gogpu/present/swapchain"
)

// DefaultFramesInFlight bounds how many frames may be recorded or executing
// at once. Two keeps the CPU one frame ahead of the GPU without adding more
// latency.
const DefaultFramesInFlight = 2

// Config configures a Pacer.
type Config struct {
	// FramesInFlight is the frame-slot ring size. Defaults to
	// DefaultFramesInFlight; it is further clamped to the image count of
	// the installed resource set.
	FramesInFlight int
}

// frameSlot holds the synchronization primitives for one in-flight frame.
type frameSlot struct {
	imageAvailable driver.Semaphore
	renderFinished driver.Semaphore
	inFlight       driver.Fence
	pending        driver.CommandBuffer // submitted commands, freed once inFlight resolves
}

func newFrameSlot(dev driver.Device) (*frameSlot, error) {
	ia, err := dev.CreateSemaphore()
	if err != nil {
		return nil, fmt.Errorf("pacer: creating acquire semaphore: %w", err)
	}
	rf, err := dev.CreateSemaphore()
	if err != nil {
		ia.Destroy()
		return nil, fmt.Errorf("pacer: creating render semaphore: %w", err)
	}
	// Signaled so the slot's first AcquireNext does not block.
	f, err := dev.CreateFence(true)
	if err != nil {
		rf.Destroy()
		ia.Destroy()
		return nil, fmt.Errorf("pacer: creating frame fence: %w", err)
	}
	return &frameSlot{imageAvailable: ia, renderFinished: rf, inFlight: f}, nil
}

func (s *frameSlot) destroy() {
	s.releasePending()
	s.inFlight.Destroy()
	s.renderFinished.Destroy()
	s.imageAvailable.Destroy()
}

// releasePending returns the slot's last submitted command buffer to the
// backend. Only valid once the slot fence has resolved.
func (s *frameSlot) releasePending() {
	if s.pending != nil {
		s.pending.Release()
		s.pending = nil
	}
}

// Acquisition is one acquired presentable image, valid from AcquireNext
// until Present or Discard. At most one Acquisition is outstanding per
// Pacer.
type Acquisition struct {
	// Index is the acquired image index within the installed resource
	// set. It selects the framebuffer to record against.
	Index uint32

	slot       *frameSlot
	suboptimal bool
	submitted  bool
}

// Pacer schedules frames through a fixed ring of synchronization slots.
// Methods must be called from a single goroutine; the pacer serializes the
// per-frame state machine, not concurrent frame production.
type Pacer struct {
	mu    sync.Mutex
	dev   driver.Device
	queue driver.Queue

	slots  []*frameSlot
	frame  int // next slot in the ring
	active int // effective ring length after image-count clamping

	set            *swapchain.ResourceSet
	imagesInFlight []driver.Fence // last slot fence targeting each image
	outstanding    *Acquisition
	stale          bool
	closed         bool
}

// New creates a Pacer with its frame slots allocated up front.
func New(dev driver.Device, cfg Config) (*Pacer, error) {
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = DefaultFramesInFlight
	}
	p := &Pacer{dev: dev, queue: dev.Queue()}
	for i := 0; i < cfg.FramesInFlight; i++ {
		slot, err := newFrameSlot(dev)
		if err != nil {
			for _, s := range p.slots {
				s.destroy()
			}
			return nil, err
		}
		p.slots = append(p.slots, slot)
	}
	p.active = len(p.slots)
	return p, nil
}

// FramesInFlight returns the effective ring length.
func (p *Pacer) FramesInFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Stale reports whether the installed resource set has been flagged stale
// and should be rebuilt before the next frame. Cleared by
// InstallResourceSet.
func (p *Pacer) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}

// InstallResourceSet drains all in-flight frames, then switches the pacer
// to the given set. Any outstanding acquisition against the previous set is
// discarded. The previous set is not destroyed; once InstallResourceSet
// returns no frame references it and the caller may destroy it.
func (p *Pacer) InstallResourceSet(set *swapchain.ResourceSet) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	dropped := p.outstanding
	p.outstanding = nil
	p.mu.Unlock()

	p.WaitInFlight()
	if dropped != nil && !dropped.submitted {
		p.rebalanceAcquire(dropped.slot)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.set = set
	p.imagesInFlight = make([]driver.Fence, set.ImageCount())
	p.outstanding = nil
	p.stale = false
	p.active = len(p.slots)
	if p.active > set.ImageCount() {
		p.active = set.ImageCount()
	}
	if p.frame >= p.active {
		p.frame = 0
	}
	return nil
}

// AcquireNext waits for the next frame slot's previous work, then acquires
// a presentable image into it. timeout bounds the whole call; the slot
// fence wait and the image acquire share one budget. Pass driver.NoTimeout
// to block until an image is available.
//
// Recoverable failures come back as ErrNeedsRebuild (stale surface) or
// ErrAcquireTimeout (deadline passed with every image busy). Any other
// error is fatal to the device.
func (p *Pacer) AcquireNext(timeout time.Duration) (*Acquisition, error) {
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return nil, ErrClosed
	case p.outstanding != nil:
		p.mu.Unlock()
		return nil, ErrFramePending
	case p.set == nil:
		p.mu.Unlock()
		return nil, ErrNoResources
	case p.stale:
		p.mu.Unlock()
		return nil, ErrNeedsRebuild
	}
	slot := p.slots[p.frame]
	sc := p.set.Swapchain()
	p.mu.Unlock()

	// The slot is reused every active-th frame; its previous submission
	// must have resolved before this frame may record.
	start := time.Now()
	switch r := slot.inFlight.Wait(timeout); {
	case r == driver.Success:
	case r.TimedOut():
		return nil, ErrAcquireTimeout
	default:
		return nil, fmt.Errorf("pacer: waiting for frame fence: %w", r.Err())
	}
	slot.releasePending()

	idx, r := sc.Acquire(remainingTimeout(timeout, start), slot.imageAvailable)
	switch {
	case r.Acquired():
	case r.Stale():
		p.markStale()
		return nil, ErrNeedsRebuild
	case r.TimedOut():
		return nil, ErrAcquireTimeout
	default:
		return nil, fmt.Errorf("pacer: acquiring image: %w", r.Err())
	}

	// The pool can hand the same image back before the slot that last drew
	// to it has cycled around. Wait for that slot's fence so two frames
	// never target one image concurrently.
	p.mu.Lock()
	var prev driver.Fence
	if int(idx) < len(p.imagesInFlight) {
		prev = p.imagesInFlight[idx]
	}
	p.mu.Unlock()
	if prev != nil && prev != slot.inFlight {
		prev.Wait(driver.NoTimeout)
	}

	acq := &Acquisition{Index: idx, slot: slot, suboptimal: r == driver.Suboptimal}
	p.mu.Lock()
	p.imagesInFlight[idx] = slot.inFlight
	p.outstanding = acq
	p.mu.Unlock()
	return acq, nil
}

// Submit hands the frame's finished command sequence to the queue. The
// submission waits on the acquisition's image-available semaphore, signals
// the slot's render-finished semaphore, and resolves the slot fence on
// completion. On success the pacer takes ownership of cmds and releases it
// once that fence resolves; on error ownership stays with the caller.
func (p *Pacer) Submit(acq *Acquisition, cmds driver.CommandBuffer) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.outstanding != acq {
		p.mu.Unlock()
		return errors.New("pacer: submit of a non-outstanding acquisition")
	}
	queue := p.queue
	p.mu.Unlock()

	if err := acq.slot.inFlight.Reset(); err != nil {
		return fmt.Errorf("pacer: resetting frame fence: %w", err)
	}
	err := queue.Submit(cmds,
		[]driver.Semaphore{acq.slot.imageAvailable},
		[]driver.Semaphore{acq.slot.renderFinished},
		acq.slot.inFlight)
	if err != nil {
		return fmt.Errorf("pacer: submitting frame: %w", err)
	}
	acq.slot.pending = cmds
	acq.submitted = true
	return nil
}

// Present queues the frame for display and advances the slot ring. A nil
// return means the frame will be shown; the set may still have been flagged
// stale (see Stale). ErrNeedsRebuild means the surface rejected the frame
// outright.
func (p *Pacer) Present(acq *Acquisition) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.outstanding != acq {
		p.mu.Unlock()
		return errors.New("pacer: present of a non-outstanding acquisition")
	}
	if !acq.submitted {
		p.mu.Unlock()
		return errors.New("pacer: present before submit")
	}
	queue := p.queue
	sc := p.set.Swapchain()
	p.mu.Unlock()

	r := queue.Present(sc, acq.Index, []driver.Semaphore{acq.slot.renderFinished})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding = nil
	p.frame = (p.frame + 1) % p.active
	switch {
	case r == driver.Success:
		if acq.suboptimal {
			p.stale = true
		}
		return nil
	case r == driver.Suboptimal:
		p.stale = true
		return nil
	case r.Stale():
		p.stale = true
		return ErrNeedsRebuild
	default:
		return fmt.Errorf("pacer: presenting image %d: %w", acq.Index, r.Err())
	}
}

// Discard abandons an acquisition whose frame will not be submitted, for
// example after a recording failure. The slot is not advanced; the next
// AcquireNext reuses it. The acquired image stays out of the pool until
// the set is rebuilt; surfaces have no way to take an image back without
// presenting it.
func (p *Pacer) Discard(acq *Acquisition) {
	p.mu.Lock()
	if p.outstanding != acq {
		p.mu.Unlock()
		return
	}
	p.outstanding = nil
	p.mu.Unlock()

	if !acq.submitted {
		p.rebalanceAcquire(acq.slot)
	}
}

// rebalanceAcquire replaces a slot's image-available semaphore after an
// acquisition signaled it but nothing consumed the signal. The slot's next
// acquire must start from an unsignaled semaphore.
func (p *Pacer) rebalanceAcquire(s *frameSlot) {
	fresh, err := p.dev.CreateSemaphore()
	if err != nil {
		return
	}
	s.imageAvailable.Destroy()
	s.imageAvailable = fresh
}

// WaitInFlight blocks until every frame slot's submission has resolved and
// its command buffer is returned to the backend. After it returns, no GPU
// work references the installed resource set.
func (p *Pacer) WaitInFlight() {
	for _, s := range p.slots {
		s.inFlight.Wait(driver.NoTimeout)
		s.releasePending()
	}
}

// Shutdown drains in-flight frames and releases the pacer's primitives.
// Safe to call more than once.
func (p *Pacer) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.outstanding = nil
	p.mu.Unlock()

	p.WaitInFlight()
	for _, s := range p.slots {
		s.destroy()
	}
}

func (p *Pacer) markStale() {
	p.mu.Lock()
	p.stale = true
	p.mu.Unlock()
}

// remainingTimeout is the acquire budget left after the slot fence wait
// consumed time since start. NoTimeout and a zero poll pass through; an
// exhausted budget degrades to a poll rather than going negative.
func remainingTimeout(timeout time.Duration, start time.Time) time.Duration {
	if timeout <= 0 {
		return timeout
	}
	rem := timeout - time.Since(start)
	if rem < 0 {
		return 0
	}
	return rem
}
