package behaviours

import (
	"fmt"

	"github.com/joeycumines/treetick/internal/blackboard"
)

// Option configures a behaviour, mostly its blackboard client.
type Option func(*options)

type options struct {
	store     *blackboard.Store
	namespace string
	client    *blackboard.Client
	moduleDir string
}

// WithStore creates the behaviour's client on s.
func WithStore(s *blackboard.Store) Option {
	return func(o *options) { o.store = s }
}

// WithNamespace sets the namespace of the behaviour's client. The default
// is the root namespace.
func WithNamespace(namespace string) Option {
	return func(o *options) { o.namespace = namespace }
}

// WithClient uses c instead of creating a client. The store and namespace
// options are then ignored.
func WithClient(c *blackboard.Client) Option {
	return func(o *options) { o.client = c }
}

// WithModuleDir resolves relative require() paths of a [Script] against
// dir instead of the working directory.
func WithModuleDir(dir string) Option {
	return func(o *options) { o.moduleDir = dir }
}

func resolveOptions(opts []Option) options {
	o := options{store: blackboard.Default(), namespace: blackboard.Separator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newClient(name string, opts []Option) *blackboard.Client {
	return resolveOptions(opts).newClient(name)
}

func (o options) newClient(name string) *blackboard.Client {
	if o.client != nil {
		return o.client
	}
	return o.store.NewClient(name, o.namespace)
}

// mustRead registers read access, which cannot conflict with other clients.
func mustRead(c *blackboard.Client, key string) {
	if err := c.RegisterKey(key, blackboard.Read); err != nil {
		panic(fmt.Sprintf("behaviours: %v", err))
	}
}
