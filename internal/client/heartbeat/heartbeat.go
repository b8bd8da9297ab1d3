// Package heartbeat keeps a voice lease alive.
package heartbeat

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultInterval = 15 * time.Second

// MaxFailures consecutive failed beats mean the server has expired us.
const MaxFailures = 2

// Timer calls beat on a fixed interval until stopped. No retries: a missed
// beat is absorbed by the server's longer expiry.
type Timer struct {
	stop     chan struct{}
	stopOnce sync.Once
}

// Start schedules the first beat one interval from now. onDead, if not nil,
// runs once on the timer goroutine after MaxFailures consecutive failures,
// and the timer stops itself.
func Start(interval time.Duration, beat func() error, onDead func()) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Timer{stop: make(chan struct{})}
	go t.run(interval, beat, onDead)
	return t
}

// Stop cancels the timer. Only the first call has an effect. It does not
// wait, so it is safe to call from onDead.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Timer) run(interval time.Duration, beat func() error, onDead func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}
		// a stop racing with the tick wins
		select {
		case <-t.stop:
			return
		default:
		}
		if err := beat(); err != nil {
			failures++
			log.Warn().Err(err).Str("module", "client.heartbeat").Int("failures", failures).Msg("heartbeat failed")
			if failures >= MaxFailures {
				t.Stop()
				if onDead != nil {
					onDead()
				}
				return
			}
			continue
		}
		failures = 0
	}
}
