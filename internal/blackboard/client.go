package blackboard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Client is a namespaced handle on a [Store] through which registered keys
// are read and written. Key sets hold absolute (client-visible) names; the
// remappings translate them to storage keys.
type Client struct {
	store      *Store
	id         uuid.UUID
	name       string
	namespace  string
	read       map[string]struct{}
	write      map[string]struct{}
	exclusive  map[string]struct{}
	required   map[string]struct{}
	remappings map[string]string
}

// NewClient returns a client of the [Default] store.
func NewClient(name, namespace string) *Client {
	return defaultStore.NewClient(name, namespace)
}

// NewClient returns a client bound to s. An empty name defaults to a prefix
// of the client's unique id, the namespace is normalised to an absolute path.
func (s *Store) NewClient(name, namespace string) *Client {
	id := uuid.New()
	if name == "" {
		name = id.String()[:7]
	}
	c := &Client{
		store:      s,
		id:         id,
		name:       name,
		namespace:  normaliseNamespace(namespace),
		read:       make(map[string]struct{}),
		write:      make(map[string]struct{}),
		exclusive:  make(map[string]struct{}),
		required:   make(map[string]struct{}),
		remappings: make(map[string]string),
	}
	s.mu.Lock()
	s.clients[id] = name
	s.mu.Unlock()
	return c
}

// RegisterOption modifies a key registration.
type RegisterOption func(*registration)

type registration struct {
	required bool
	remapTo  string
}

// Required marks the key for [Client.VerifyRequiredKeysExist].
func Required() RegisterOption {
	return func(r *registration) { r.required = true }
}

// RemapTo stores the key under a different storage key. The client keeps
// addressing it by its registered name.
func RemapTo(storageKey string) RegisterOption {
	return func(r *registration) { r.remapTo = storageKey }
}

func (c *Client) ID() uuid.UUID { return c.id }
func (c *Client) Name() string { return c.name }
func (c *Client) Namespace() string { return c.namespace }
func (c *Client) Store() *Store { return c.store }

// RegisterKey grants the client access to key. Exclusive write fails with
// [ErrExclusiveWriteConflict] if any other client holds write or exclusive
// write on the storage key, and write fails if another client holds
// exclusive write.
func (c *Client) RegisterKey(key string, access Access, opts ...RegisterOption) error {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}
	abs := AbsoluteName(c.namespace, key)
	storageKey := abs
	if reg.remapTo != "" {
		storageKey = AbsoluteName(Separator, reg.remapTo)
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.metadata[storageKey]
	switch access {
	case Read:
	case Write:
		if meta != nil {
			if others := c.others(meta.Exclusive); len(others) > 0 {
				return &KeyError{Client: c.name, Key: storageKey, Err: fmt.Errorf("%w: held exclusively by %s", ErrExclusiveWriteConflict, strings.Join(others, ", "))}
			}
		}
	case ExclusiveWrite:
		if meta != nil {
			others := append(c.others(meta.Write), c.others(meta.Exclusive)...)
			if len(others) > 0 {
				return &KeyError{Client: c.name, Key: storageKey, Err: fmt.Errorf("%w: already written by %s", ErrExclusiveWriteConflict, strings.Join(others, ", "))}
			}
		}
	default:
		return &KeyError{Client: c.name, Key: abs, Err: fmt.Errorf("%w: %v", ErrInvalidAccess, access)}
	}

	if meta == nil {
		meta = newKeyMetaData()
		s.metadata[storageKey] = meta
	}
	c.remappings[abs] = storageKey
	switch access {
	case Read:
		c.read[abs] = struct{}{}
		meta.Read[c.id] = struct{}{}
	case Write:
		c.write[abs] = struct{}{}
		meta.Write[c.id] = struct{}{}
	case ExclusiveWrite:
		c.exclusive[abs] = struct{}{}
		meta.Exclusive[c.id] = struct{}{}
	}
	if reg.required {
		c.required[abs] = struct{}{}
	}
	return nil
}

// others returns the sorted display names of the ids in set, excluding c.
// Callers hold the store lock.
func (c *Client) others(set map[uuid.UUID]struct{}) []string {
	var names []string
	for id := range set {
		if id == c.id {
			continue
		}
		names = append(names, c.store.clients[id])
	}
	slices.Sort(names)
	return names
}

// UnregisterKey drops the client's access to key. When no client retains any
// access the key's metadata is removed and, if clear is set, so is its value.
func (c *Client) UnregisterKey(key string, clear bool) error {
	abs := AbsoluteName(c.namespace, key)
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if !c.registered(abs) {
		return &KeyError{Client: c.name, Key: abs, Err: ErrNotRegistered}
	}
	c.unregisterLocked(abs, clear)
	return nil
}

// UnregisterAllKeys drops every key registration of the client.
func (c *Client) UnregisterAllKeys(clear bool) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, abs := range slices.Collect(maps.Keys(c.remappings)) {
		c.unregisterLocked(abs, clear)
	}
}

// Unregister drops every key registration and removes the client from the
// store's registry.
func (c *Client) Unregister(clear bool) {
	c.UnregisterAllKeys(clear)
	s := c.store
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
}

func (c *Client) unregisterLocked(abs string, clear bool) {
	s := c.store
	storageKey := c.remappings[abs]
	delete(c.read, abs)
	delete(c.write, abs)
	delete(c.exclusive, abs)
	delete(c.required, abs)
	delete(c.remappings, abs)
	meta, ok := s.metadata[storageKey]
	if !ok {
		return
	}
	delete(meta.Read, c.id)
	delete(meta.Write, c.id)
	delete(meta.Exclusive, c.id)
	if meta.empty() {
		delete(s.metadata, storageKey)
		if clear {
			delete(s.storage, storageKey)
		}
	}
}

func (c *Client) registered(abs string) bool {
	_, ok := c.remappings[abs]
	return ok
}

func (c *Client) canRead(abs string) bool {
	_, r := c.read[abs]
	return r || c.canWrite(abs)
}

func (c *Client) canWrite(abs string) bool {
	_, w := c.write[abs]
	_, x := c.exclusive[abs]
	return w || x
}

// IsRegistered reports whether key is registered with any access.
func (c *Client) IsRegistered(key string) bool {
	abs := AbsoluteName(c.namespace, key)
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.registered(abs)
}

// HasAccess reports whether the client registered key with exactly access.
func (c *Client) HasAccess(key string, access Access) bool {
	abs := AbsoluteName(c.namespace, key)
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var set map[string]struct{}
	switch access {
	case Read:
		set = c.read
	case Write:
		set = c.write
	case ExclusiveWrite:
		set = c.exclusive
	default:
		return false
	}
	_, ok := set[abs]
	return ok
}

// AbsoluteName returns the absolute name of a registered key.
func (c *Client) AbsoluteName(key string) (string, error) {
	abs := AbsoluteName(c.namespace, key)
	if !c.IsRegistered(key) {
		return "", &KeyError{Client: c.name, Key: abs, Err: ErrNotRegistered}
	}
	return abs, nil
}

func (c *Client) item(key string, kind ActivityKind, previous, current any) ActivityItem {
	return ActivityItem{
		Key:           key,
		ClientName:    c.name,
		ClientID:      c.id,
		Kind:          kind,
		PreviousValue: previous,
		CurrentValue:  current,
	}
}

// Get returns the value of a variable, which may carry a nested path. It
// fails with [ErrAccessDenied] if the key is not registered,
// [ErrKeyNotFound] if it has no value and [ErrNestedPathMissing] if the path
// does not resolve.
func (c *Client) Get(name string) (any, error) {
	key, path := SplitVariable(name)
	abs := AbsoluteName(c.namespace, key)

	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !c.canRead(abs) {
		s.record(c.item(abs, ActivityAccessDenied, nil, nil))
		return nil, &KeyError{Client: c.name, Key: abs, Err: ErrAccessDenied}
	}
	storageKey := c.remappings[abs]
	value, ok := s.storage[storageKey]
	if !ok {
		s.record(c.item(storageKey, ActivityNoKey, nil, nil))
		return nil, &KeyError{Client: c.name, Key: storageKey, Err: ErrKeyNotFound}
	}
	kind := ActivityRead
	if c.canWrite(abs) && !isPrimitive(value) {
		kind = ActivityAccessed
	}
	s.record(c.item(storageKey, kind, nil, value))
	if path == "" {
		return value, nil
	}
	nested, ok := lookupPath(value, path)
	if !ok {
		return nil, &KeyError{Client: c.name, Key: storageKey + PathSeparator + path, Err: ErrNestedPathMissing}
	}
	return nested, nil
}

// Set writes a variable, which may carry a nested path. With overwrite false
// an existing value is left untouched and false is returned. A nested set
// requires the base key to hold a value.
func (c *Client) Set(name string, value any, overwrite bool) (bool, error) {
	key, path := SplitVariable(name)
	abs := AbsoluteName(c.namespace, key)

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.canWrite(abs) {
		s.record(c.item(abs, ActivityAccessDenied, nil, nil))
		return false, &KeyError{Client: c.name, Key: abs, Err: ErrAccessDenied}
	}
	storageKey := c.remappings[abs]
	current, exists := s.storage[storageKey]
	if !overwrite && exists {
		s.record(c.item(storageKey, ActivityNoOverwrite, nil, current))
		return false, nil
	}

	if path == "" {
		if exists {
			s.record(c.item(storageKey, ActivityWrite, current, value))
		} else {
			s.record(c.item(storageKey, ActivityInitialised, nil, value))
		}
		s.storage[storageKey] = value
		return true, nil
	}

	variable := storageKey + PathSeparator + path
	if !exists {
		s.record(c.item(storageKey, ActivityNoKey, nil, nil))
		return false, &KeyError{Client: c.name, Key: storageKey, Err: ErrKeyNotFound}
	}
	previous, _ := lookupPath(current, path)
	updated, err := setPath(current, path, value)
	if err != nil {
		return false, &KeyError{Client: c.name, Key: variable, Err: err}
	}
	s.storage[storageKey] = updated
	s.record(c.item(variable, ActivityWrite, previous, value))
	return true, nil
}

// Unset removes the stored value of key, keeping the registration. It
// reports whether a value was removed.
func (c *Client) Unset(key string) (bool, error) {
	abs := AbsoluteName(c.namespace, KeyOf(key))

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.canWrite(abs) {
		s.record(c.item(abs, ActivityAccessDenied, nil, nil))
		return false, &KeyError{Client: c.name, Key: abs, Err: ErrAccessDenied}
	}
	storageKey := c.remappings[abs]
	if _, ok := s.storage[storageKey]; !ok {
		s.record(c.item(storageKey, ActivityNoKey, nil, nil))
		return false, nil
	}
	delete(s.storage, storageKey)
	s.record(c.item(storageKey, ActivityUnset, nil, nil))
	return true, nil
}

// Exists reports whether the variable currently resolves to a value. Access
// errors are returned, absence is not an error.
func (c *Client) Exists(name string) (bool, error) {
	_, err := c.Get(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrNestedPathMissing):
		return false, nil
	default:
		return false, err
	}
}

// VerifyRequiredKeysExist checks that every key registered as required has
// a stored value.
func (c *Client) VerifyRequiredKeysExist() error {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs []error
	for _, abs := range slices.Sorted(maps.Keys(c.required)) {
		if _, ok := s.storage[c.remappings[abs]]; !ok {
			errs = append(errs, &KeyError{Client: c.name, Key: c.remappings[abs], Err: ErrKeyNotFound})
		}
	}
	return errors.Join(errs...)
}

func (c *Client) sortedKeys(set map[string]struct{}) []string {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return slices.Sorted(maps.Keys(set))
}

// Read returns the keys registered for read, sorted.
func (c *Client) Read() []string { return c.sortedKeys(c.read) }

// Write returns the keys registered for write, sorted.
func (c *Client) Write() []string { return c.sortedKeys(c.write) }

// Exclusive returns the keys registered for exclusive write, sorted.
func (c *Client) Exclusive() []string { return c.sortedKeys(c.exclusive) }

// Required returns the keys marked required, sorted.
func (c *Client) Required() []string { return c.sortedKeys(c.required) }

// Keys returns every registered key, sorted.
func (c *Client) Keys() []string {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.remappings))
}

// Remappings returns a copy of the key to storage key mapping.
func (c *Client) Remappings() map[string]string {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return maps.Clone(c.remappings)
}

func (c *Client) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blackboard Client\n")
	fmt.Fprintf(&b, "  Client Data\n")
	fmt.Fprintf(&b, "    name      : %s\n", c.name)
	fmt.Fprintf(&b, "    namespace : %s\n", c.namespace)
	fmt.Fprintf(&b, "    id        : %s\n", c.id)
	fmt.Fprintf(&b, "    read      : %v\n", c.Read())
	fmt.Fprintf(&b, "    write     : %v\n", c.Write())
	fmt.Fprintf(&b, "    exclusive : %v\n", c.Exclusive())
	fmt.Fprintf(&b, "  Variables\n")
	remappings := c.Remappings()
	snapshot := c.store.Snapshot()
	for _, abs := range c.Keys() {
		storageKey := remappings[abs]
		label := abs
		if storageKey != abs {
			label = abs + " -> " + storageKey
		}
		if v, ok := snapshot[storageKey]; ok {
			fmt.Fprintf(&b, "    %s: %v\n", label, v)
		} else {
			fmt.Fprintf(&b, "    %s: -\n", label)
		}
	}
	return b.String()
}
