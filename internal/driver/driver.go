package driver

import (
	"context"
	"log/slog"
	"time"
)

const DefaultTickLength = 100 * time.Millisecond

// Manager is anything advanced by the tick loop. dt is the measured elapsed
// time since the previous tick, not the nominal period: the ticker drifts
// under scheduling jitter and managers must advance by real time.
type Manager interface {
	Tick(ctx context.Context, dt time.Duration) error
}

// Driver runs the fixed-period simulation tick.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func New(managers []Manager, opts ...Opt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start ticks until the context is cancelled. A failing manager is logged
// and the loop keeps running; nothing in a tick is fatal to the process.
func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(last)
			last = now

			for _, m := range d.managers {
				if err := m.Tick(ctx, dt); err != nil {
					slog.ErrorContext(ctx, "tick failed", "error", err)
				}
			}
		}
	}
}

type Opt func(*Driver)

func WithTickLength(tickLength time.Duration) Opt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}
