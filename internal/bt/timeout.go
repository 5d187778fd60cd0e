package bt

import (
	"fmt"
	"time"
)

// Timeout fails if its child is still running once duration has elapsed
// since the decorator was entered. The child is interrupted when that
// happens.
type Timeout struct {
	Decorator
	duration time.Duration
	now      func() time.Time
	deadline time.Time
}

// NewTimeout returns a timeout decorator of child.
func NewTimeout(name string, child Behaviour, duration time.Duration) *Timeout {
	t := &Timeout{duration: duration, now: time.Now}
	t.construct(name, t, child, decoratorHooks{
		initialise: t.initialise,
		update:     t.update,
	})
	return t
}

// Duration returns the configured timeout.
func (t *Timeout) Duration() time.Duration { return t.duration }

// SetClock replaces the time source, which defaults to [time.Now].
func (t *Timeout) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	t.now = now
}

func (t *Timeout) initialise() {
	t.deadline = t.now().Add(t.duration)
	t.feedback = ""
}

func (t *Timeout) update(d *Decorator) (Status, error) {
	status := d.decorated.Status()
	if status != Running {
		t.feedback = "child finished before timeout triggered"
		return status, nil
	}
	now := t.now()
	if now.After(t.deadline) {
		t.feedback = "timed out"
		t.log().Debug("timed out", "duration", t.duration)
		d.decorated.Stop(Invalid)
		return Failure, nil
	}
	t.feedback = fmt.Sprintf("time still ticking ... [remaining: %s]", t.deadline.Sub(now))
	return Running, nil
}
