package bt

import (
	"github.com/joeycumines/treetick/internal/blackboard"
)

// StatusToBlackboard writes its child's status to a blackboard variable on
// every tick and otherwise passes the status through.
type StatusToBlackboard struct {
	Decorator
	variable string
	client   *blackboard.Client
}

// NewStatusToBlackboard returns a decorator of child reflecting its status
// to variable on the default blackboard. It fails if write access to the
// variable's key cannot be registered.
func NewStatusToBlackboard(name string, child Behaviour, variable string) (*StatusToBlackboard, error) {
	return NewStatusToBlackboardWithClient(name, child, variable, blackboard.NewClient(name, blackboard.Separator))
}

// NewStatusToBlackboardWithClient is [NewStatusToBlackboard] with a caller
// supplied client.
func NewStatusToBlackboardWithClient(name string, child Behaviour, variable string, client *blackboard.Client) (*StatusToBlackboard, error) {
	if client == nil {
		panic("bt: status to blackboard client must not be nil")
	}
	if err := client.RegisterKey(blackboard.KeyOf(variable), blackboard.Write); err != nil {
		return nil, err
	}
	s := &StatusToBlackboard{variable: variable, client: client}
	s.construct(name, s, child, decoratorHooks{update: s.update})
	s.AttachBlackboardClient(client)
	return s, nil
}

// Variable returns the variable written.
func (s *StatusToBlackboard) Variable() string { return s.variable }

// Blackboard returns the client used for writing.
func (s *StatusToBlackboard) Blackboard() *blackboard.Client { return s.client }

func (s *StatusToBlackboard) update(d *Decorator) (Status, error) {
	status := d.decorated.Status()
	if _, err := s.client.Set(s.variable, status, true); err != nil {
		return Invalid, err
	}
	return status, nil
}
