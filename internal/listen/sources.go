package listen

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"aura/internal/assistant"
)

// Device is one capture modality: a microphone or a camera feed.
type Device interface {
	Capture(ctx context.Context) (assistant.Utterance, error)
	Close() error
}

// Sources runs one goroutine per device, all feeding the shared bounded
// queue. It implements assistant.Listener on the consuming side. Ordering
// across modalities is whichever capture finishes first.
type Sources struct {
	queue   *Queue
	timeout time.Duration

	devices []Device
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// gate, when non-nil, makes a device wait for a trigger before each
	// capture (push-to-talk). Applies to the first added device only.
	gate chan struct{}
}

func NewSources(timeout time.Duration, queueCap int) *Sources {
	return &Sources{
		queue:   NewQueue(queueCap),
		timeout: timeout,
	}
}

func (s *Sources) Add(d Device) { s.devices = append(s.devices, d) }

// Gate arms push-to-talk mode: the first device captures only after Trigger.
func (s *Sources) Gate() {
	s.gate = make(chan struct{}, 1)
}

// Trigger releases one gated capture. Safe to call from another goroutine.
func (s *Sources) Trigger() {
	if s.gate == nil {
		return
	}
	select {
	case s.gate <- struct{}{}:
	default:
	}
}

// Start launches the capture goroutines.
func (s *Sources) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	for i, d := range s.devices {
		gate := s.gate
		if i != 0 {
			gate = nil
		}
		s.wg.Add(1)
		go func(d Device, gate chan struct{}) {
			defer s.wg.Done()
			s.run(ctx, d, gate)
		}(d, gate)
	}
}

func (s *Sources) run(ctx context.Context, d Device, gate chan struct{}) {
	for {
		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				return
			}
		}

		u, err := d.Capture(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, assistant.ErrNoInput) {
				continue
			}
			log.Error("capture failed", "err", err)
			continue
		}

		if err := s.queue.Push(ctx, u); err != nil {
			return
		}
	}
}

// Capture pops the next queued utterance, waiting at most the configured
// timeout. Implements assistant.Listener.
func (s *Sources) Capture(ctx context.Context) (assistant.Utterance, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.queue.Pop(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return assistant.Utterance{}, assistant.ErrNoInput
		}
		return assistant.Utterance{}, err
	}
	return u, nil
}

// Close cancels capture, releases every device handle and waits for the
// goroutines to drain.
func (s *Sources) Close() error {
	if s.cancel != nil {
		s.cancel()
	}

	var errs []error
	for _, d := range s.devices {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.wg.Wait()
	s.queue.Close()
	return errors.Join(errs...)
}
