package bt

import (
	gobt "github.com/joeycumines/go-behaviortree"
)

type nodeUpdater struct {
	node gobt.Node
}

func (u nodeUpdater) Update(*Leaf) (Status, error) {
	status, err := u.node.Tick()
	if err != nil {
		return Invalid, err
	}
	return FromGoStatus(status)
}

// NewNodeLeaf returns a leaf that ticks a go-behaviortree node once per
// update, so stateless trees written against that package can be embedded
// as actions.
func NewNodeLeaf(name string, node gobt.Node) *Leaf {
	if node == nil {
		panic("bt: node must not be nil")
	}
	return NewLeaf(name, nodeUpdater{node: node})
}
