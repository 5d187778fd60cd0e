package bt

// Sequence ticks its children in order until one does not succeed.
//
// With memory (the usual configuration) a running sequence resumes at the
// child that was running. Without memory every tick starts over from the
// first child.
type Sequence struct {
	Composite
	memory bool
}

// NewSequence returns a sequence over children. It panics if any child
// cannot be added.
func NewSequence(name string, memory bool, children ...Behaviour) *Sequence {
	s := &Sequence{memory: memory}
	s.init(name, s)
	mustAddChildren(&s.Composite, children)
	return s
}

// Memory reports whether a running sequence resumes at its current child.
func (s *Sequence) Memory() bool { return s.memory }

func (s *Sequence) Tick(visit VisitFunc) error {
	index := 0
	if s.status != Running || !s.memory {
		s.current = nil
		if len(s.children) > 0 {
			s.current = s.children[0]
		}
		for _, child := range s.children {
			if child.Status() != Invalid {
				child.Stop(Invalid)
			}
		}
	} else if i := s.indexOf(s.current); i > 0 {
		index = i
	}

	if len(s.children) == 0 {
		s.current = nil
		s.Stop(Success)
		visit.visit(s)
		return nil
	}

	for i := index; i < len(s.children); i++ {
		child := s.children[i]
		s.current = child
		if err := s.tickChild(child, visit); err != nil {
			return err
		}
		if status := child.Status(); status != Success {
			if status == Running {
				s.status = Running
			} else {
				s.Stop(status)
			}
			visit.visit(s)
			return nil
		}
	}
	s.Stop(Success)
	visit.visit(s)
	return nil
}
