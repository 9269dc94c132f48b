package runtime

import (
	"time"

	"toxbridge/domain/event"
)

// Pump performs one pump step: it lets the engine iterate, dispatches
// every event that fired in protocol order, then folds the current self
// connection state in. Each event's handler runs to completion before the
// next one is dispatched. Returns how long to wait before the next step.
func (p *Profile) Pump() time.Duration {
	events, interval := p.engine.Iterate()
	for _, ev := range events {
		p.Dispatch(ev)
	}
	p.Dispatch(event.SelfConnectionStatus{Status: p.engine.SelfConnectionStatus()})
	return interval
}
