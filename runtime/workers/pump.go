package workers

import (
	"context"
	"log/slog"
	"time"

	"toxbridge/runtime"
)

// Pump drives one profile on the cadence the engine asks for. It is the
// only caller of Profile.Pump, which keeps every event for the profile on
// a single goroutine; profiles never share a pump.
type Pump struct {
	Log     *slog.Logger
	Profile *runtime.Profile
}

func NewPump(log *slog.Logger, profile *runtime.Profile) *Pump {
	return &Pump{Log: log, Profile: profile}
}

func (w *Pump) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping pump")
			return nil
		case <-timer.C:
			timer.Reset(w.Profile.Pump())
		}
	}
}
