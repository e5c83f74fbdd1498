package interfaces

import "time"

// Runner is one independent polling loop owned by the bot. Tick is
// called repeatedly while the engine runs; each runner blocks for its
// own interval between ticks.
type Runner interface {
	Name() string
	Init() error
	Tick()
	Interval() time.Duration
}
