package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxAttempts  = 100
)

type PollState int

const (
	Polling PollState = iota
	Paid
	TimedOut
	Cancelled
)

func (s PollState) String() string {
	switch s {
	case Polling:
		return "polling"
	case Paid:
		return "paid"
	case TimedOut:
		return "timed out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CheckFunc reports whether the session has been paid.
type CheckFunc func(ctx context.Context) (bool, error)

// Poller checks payment status on a fixed interval until the session is
// paid, the attempt budget runs out, or the context is cancelled. Once timed
// out it stays there until Recheck sees a payment.
type Poller struct {
	check       CheckFunc
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger

	mu       sync.Mutex
	state    PollState
	attempts int
}

func NewPoller(check CheckFunc, interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		check:       check,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Run blocks until a terminal state is reached and returns it.
func (p *Poller) Run(ctx context.Context) PollState {
	p.mu.Lock()
	p.state, p.attempts = Polling, 0
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return p.set(Cancelled)
		case <-ticker.C:
		}

		paid, err := p.check(ctx)
		n := p.attempt()
		switch {
		case err != nil && ctx.Err() != nil:
			return p.set(Cancelled)
		case err != nil:
			p.logger.Warn("payment status check failed", "attempt", n, "error", err)
		case paid:
			return p.set(Paid)
		}
		if n >= p.maxAttempts {
			p.logger.Info("payment polling timed out", "attempts", n)
			return p.set(TimedOut)
		}
	}
}

// Recheck performs one manual status check. It moves to Paid when the
// session is paid and otherwise leaves the state unchanged.
func (p *Poller) Recheck(ctx context.Context) (PollState, error) {
	paid, err := p.check(ctx)
	if err != nil {
		return p.State(), err
	}
	if paid {
		return p.set(Paid), nil
	}
	return p.State(), nil
}

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func (p *Poller) set(s PollState) PollState {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	return s
}

func (p *Poller) attempt() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	return p.attempts
}
