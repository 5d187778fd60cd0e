package bt

// OneShotPolicy selects which child results latch a [OneShot].
type OneShotPolicy int

const (
	// OnSuccessfulCompletion latches only on [Success].
	OnSuccessfulCompletion OneShotPolicy = iota
	// OnCompletion latches on [Success] or [Failure].
	OnCompletion
)

func (p OneShotPolicy) String() string {
	if p == OnCompletion {
		return "ON_COMPLETION"
	}
	return "ON_SUCCESSFUL_COMPLETION"
}

func (p OneShotPolicy) latches(status Status) bool {
	switch status {
	case Success:
		return true
	case Failure:
		return p == OnCompletion
	}
	return false
}

// OneShot runs its child until it completes in a way the policy accepts,
// then returns that status on every later tick without touching the child.
type OneShot struct {
	Decorator
	policy OneShotPolicy
	final  Status
}

// NewOneShot returns a oneshot decorator of child.
func NewOneShot(name string, child Behaviour, policy OneShotPolicy) *OneShot {
	o := &OneShot{policy: policy}
	o.construct(name, o, child, decoratorHooks{
		update:    o.update,
		terminate: o.terminate,
		bypass:    o.Latched,
	})
	return o
}

// Policy returns the latch policy.
func (o *OneShot) Policy() OneShotPolicy { return o.policy }

// Latched reports whether the final status has been captured.
func (o *OneShot) Latched() bool { return o.final != Invalid }

// FinalStatus is the latched status, or [Invalid].
func (o *OneShot) FinalStatus() Status { return o.final }

func (o *OneShot) update(d *Decorator) (Status, error) {
	if o.Latched() {
		return o.final, nil
	}
	return d.decorated.Status(), nil
}

func (o *OneShot) terminate(status Status) {
	if !o.Latched() && o.policy.latches(status) {
		o.log().Debug("oneshot completed", "status", status)
		o.feedback = "oneshot completed"
		o.final = status
	}
}
