package bt

import "fmt"

// NewInverter swaps [Success] and [Failure].
func NewInverter(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, func(d *Decorator) (Status, error) {
		switch status := d.decorated.Status(); status {
		case Success:
			d.feedback = "success -> failure"
			return Failure, nil
		case Failure:
			d.feedback = "failure -> success"
			return Success, nil
		default:
			d.feedback = d.decorated.FeedbackMessage()
			return status, nil
		}
	})
}

// convert returns an update mapping the child status from to to, passing
// anything else through.
func convert(from, to Status) DecoratorFunc {
	return func(d *Decorator) (Status, error) {
		status := d.decorated.Status()
		if status == from {
			d.feedback = fmt.Sprintf("%s -> %s", from, to)
			return to, nil
		}
		d.feedback = d.decorated.FeedbackMessage()
		return status, nil
	}
}

// NewSuccessIsFailure reports [Failure] when the child succeeds.
func NewSuccessIsFailure(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Success, Failure))
}

// NewFailureIsSuccess reports [Success] when the child fails.
func NewFailureIsSuccess(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Failure, Success))
}

// NewFailureIsRunning reports [Running] when the child fails.
func NewFailureIsRunning(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Failure, Running))
}

// NewSuccessIsRunning reports [Running] when the child succeeds.
func NewSuccessIsRunning(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Success, Running))
}

// NewRunningIsFailure reports [Failure] while the child runs. The child is
// interrupted as the decorator resolves.
func NewRunningIsFailure(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Running, Failure))
}

// NewRunningIsSuccess reports [Success] while the child runs. The child is
// interrupted as the decorator resolves.
func NewRunningIsSuccess(name string, child Behaviour) *Decorator {
	return NewDecorator(name, child, convert(Running, Success))
}

// NewCondition is [Running] until the child reports status, then
// [Success]. It never fails.
func NewCondition(name string, child Behaviour, status Status) *Decorator {
	return NewDecorator(name, child, func(d *Decorator) (Status, error) {
		d.feedback = fmt.Sprintf("%q has status %s, waiting for %s", d.decorated.Name(), d.decorated.Status(), status)
		if d.decorated.Status() == status {
			return Success, nil
		}
		return Running, nil
	})
}
