package behaviours

import (
	"fmt"
	"slices"

	"github.com/joeycumines/treetick/internal/bt"
)

func constant(status bt.Status) bt.StatusFunc {
	return func(*bt.Leaf) bt.Status { return status }
}

// NewSuccess always succeeds.
func NewSuccess(name string) *bt.Leaf { return bt.NewLeaf(name, constant(bt.Success)) }

// NewFailure always fails.
func NewFailure(name string) *bt.Leaf { return bt.NewLeaf(name, constant(bt.Failure)) }

// NewRunning never finishes.
func NewRunning(name string) *bt.Leaf { return bt.NewLeaf(name, constant(bt.Running)) }

// NewDummy is a placeholder action that succeeds immediately, for trees
// under construction.
func NewDummy(name string) *bt.Leaf {
	return bt.NewLeaf(name, bt.StatusFunc(func(l *bt.Leaf) bt.Status {
		l.SetFeedbackMessage("dummy")
		return bt.Success
	}))
}

// Periodic cycles running, success, failure, holding each status for n
// ticks. The count is not reset when the leaf is re-entered.
type Periodic struct {
	period   int
	count    int
	response bt.Status
}

// NewPeriodic returns a periodic leaf with a period of n ticks.
func NewPeriodic(name string, n int) *bt.Leaf {
	return bt.NewLeaf(name, &Periodic{period: n, response: bt.Running})
}

func (p *Periodic) Update(l *bt.Leaf) (bt.Status, error) {
	p.count++
	if p.count <= p.period {
		l.SetFeedbackMessage("constant")
		return p.response, nil
	}
	p.count = 0
	switch p.response {
	case bt.Failure:
		l.SetFeedbackMessage("flip to running")
		p.response = bt.Running
	case bt.Running:
		l.SetFeedbackMessage("flip to success")
		p.response = bt.Success
	default:
		l.SetFeedbackMessage("flip to failure")
		p.response = bt.Failure
	}
	return p.response, nil
}

// SuccessEveryN succeeds on every nth tick and fails otherwise.
type SuccessEveryN struct {
	n     int
	count int
}

// NewSuccessEveryN returns a leaf succeeding every n ticks. It panics if n
// is not positive.
func NewSuccessEveryN(name string, n int) *bt.Leaf {
	if n < 1 {
		panic("behaviours: success every n requires n > 0")
	}
	return bt.NewLeaf(name, &SuccessEveryN{n: n})
}

func (s *SuccessEveryN) Update(l *bt.Leaf) (bt.Status, error) {
	s.count++
	l.SetFeedbackMessage(fmt.Sprintf("%d", s.count))
	if s.count%s.n == 0 {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

// StatusSequence returns the statuses of a fixed sequence, one per tick.
// When exhausted it either repeats eventually forever or, if eventually is
// [bt.Invalid], starts the sequence over.
type StatusSequence struct {
	sequence   []bt.Status
	eventually bt.Status
	remaining  []bt.Status
}

// NewStatusSequence returns a leaf replaying sequence, which must not be
// empty.
func NewStatusSequence(name string, sequence []bt.Status, eventually bt.Status) *bt.Leaf {
	if len(sequence) == 0 {
		panic("behaviours: status sequence must not be empty")
	}
	return bt.NewLeaf(name, &StatusSequence{
		sequence:   slices.Clone(sequence),
		eventually: eventually,
		remaining:  slices.Clone(sequence),
	})
}

func (s *StatusSequence) Update(*bt.Leaf) (bt.Status, error) {
	if len(s.remaining) == 0 {
		if s.eventually != bt.Invalid {
			return s.eventually, nil
		}
		s.remaining = slices.Clone(s.sequence)
	}
	status := s.remaining[0]
	s.remaining = s.remaining[1:]
	return status, nil
}

// TickCounter runs for duration ticks and then reports its completion
// status. The counter restarts each time the leaf is entered.
type TickCounter struct {
	duration   int
	completion bt.Status
	counter    int
}

// NewTickCounter returns a tick counter leaf.
func NewTickCounter(name string, duration int, completion bt.Status) *bt.Leaf {
	return bt.NewLeaf(name, &TickCounter{duration: duration, completion: completion})
}

func (t *TickCounter) Initialise(*bt.Leaf) { t.counter = 0 }

func (t *TickCounter) Update(l *bt.Leaf) (bt.Status, error) {
	t.counter++
	if t.counter <= t.duration {
		l.SetFeedbackMessage(fmt.Sprintf("%d/%d", t.counter, t.duration))
		return bt.Running, nil
	}
	return t.completion, nil
}

// Counter returns the ticks counted since the leaf was entered.
func (t *TickCounter) Counter() int { return t.counter }
