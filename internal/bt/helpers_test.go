package bt

// scripted is an updater returning a fixed series of statuses, repeating
// the last, and recording lifecycle calls.
type scripted struct {
	statuses    []Status
	updates     int
	initialised int
	terminated  []Status
}

func script(statuses ...Status) *scripted {
	return &scripted{statuses: statuses}
}

func (s *scripted) Update(*Leaf) (Status, error) {
	i := min(s.updates, len(s.statuses)-1)
	s.updates++
	return s.statuses[i], nil
}

func (s *scripted) Initialise(*Leaf) { s.initialised++ }

func (s *scripted) Terminate(_ *Leaf, status Status) {
	s.terminated = append(s.terminated, status)
}

func leaf(name string, statuses ...Status) (*Leaf, *scripted) {
	s := script(statuses...)
	return NewLeaf(name, s), s
}

func statuses(bs ...Behaviour) []Status {
	out := make([]Status, len(bs))
	for i, b := range bs {
		out[i] = b.Status()
	}
	return out
}

// singleRunningPath reports whether the running behaviours under root
// form a single chain from root downwards, ignoring parallels which may
// have several running children.
func singleRunningPath(root Behaviour) bool {
	var check func(b Behaviour) bool
	check = func(b Behaviour) bool {
		running := 0
		for _, child := range b.Children() {
			if child.Status() == Running {
				if b.Status() != Running {
					return false
				}
				running++
			}
			if !check(child) {
				return false
			}
		}
		if _, ok := b.(*Parallel); ok {
			return true
		}
		return running <= 1
	}
	return check(root)
}
