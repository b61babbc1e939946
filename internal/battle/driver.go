package battle

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickEvery - как часто драйвер прогоняет таймеры сессии
const DefaultTickEvery = 50 * time.Millisecond

// Driver крутит таймеры сессии в реальном времени.
// В тестах не нужен: там время двигается вручную через FakeClock и Tick
type Driver struct {
	session *Session
	clock   clockwork.Clock
	every   time.Duration
}

func NewDriver(session *Session, clock clockwork.Clock, every time.Duration) *Driver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if every <= 0 {
		every = DefaultTickEvery
	}
	return &Driver{session: session, clock: clock, every: every}
}

// Run блокируется пока матч не закончится или не отменят контекст
func (d *Driver) Run(ctx context.Context) {
	ticker := d.clock.NewTicker(d.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			d.session.Tick()
			if d.session.Settled() {
				return
			}
		}
	}
}
