package bt

// Selector ticks its children in priority order (first is highest) until
// one is running or succeeds.
//
// Whenever a different child becomes active, every lower priority child that
// is not already [Invalid] is interrupted. This is how a higher priority
// branch preempts a running lower priority one. With memory a running
// selector resumes at its current child instead of retrying higher
// priorities.
type Selector struct {
	Composite
	memory bool
}

// NewSelector returns a selector over children. It panics if any child
// cannot be added.
func NewSelector(name string, memory bool, children ...Behaviour) *Selector {
	s := &Selector{memory: memory}
	s.init(name, s)
	mustAddChildren(&s.Composite, children)
	return s
}

// Memory reports whether a running selector resumes at its current child.
func (s *Selector) Memory() bool { return s.memory }

func (s *Selector) Tick(visit VisitFunc) error {
	if s.status != Running {
		s.current = nil
		if len(s.children) > 0 {
			s.current = s.children[0]
		}
	}

	if len(s.children) == 0 {
		s.current = nil
		s.Stop(Failure)
		visit.visit(s)
		return nil
	}

	index := 0
	if s.memory {
		if i := s.indexOf(s.current); i > 0 {
			index = i
		}
		for _, child := range s.children[:index] {
			if child.Status() != Invalid {
				child.Stop(Invalid)
			}
		}
	}

	previous := s.current
	for i := index; i < len(s.children); i++ {
		child := s.children[i]
		if err := s.tickChild(child, visit); err != nil {
			return err
		}
		status := child.Status()
		if status != Running && status != Success {
			continue
		}
		s.current = child
		if previous == nil || previous.ID() != child.ID() {
			for _, lower := range s.children[i+1:] {
				if lower.Status() != Invalid {
					lower.Stop(Invalid)
				}
			}
		}
		if status == Running {
			s.status = Running
		} else {
			s.Stop(Success)
		}
		visit.visit(s)
		return nil
	}

	s.current = s.children[len(s.children)-1]
	s.Stop(Failure)
	visit.visit(s)
	return nil
}
