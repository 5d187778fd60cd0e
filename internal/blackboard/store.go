package blackboard

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// KeyMetaData records which clients hold which access on a storage key.
type KeyMetaData struct {
	Read      map[uuid.UUID]struct{}
	Write     map[uuid.UUID]struct{}
	Exclusive map[uuid.UUID]struct{}
}

func newKeyMetaData() *KeyMetaData {
	return &KeyMetaData{
		Read:      make(map[uuid.UUID]struct{}),
		Write:     make(map[uuid.UUID]struct{}),
		Exclusive: make(map[uuid.UUID]struct{}),
	}
}

func (m *KeyMetaData) empty() bool {
	return len(m.Read) == 0 && len(m.Write) == 0 && len(m.Exclusive) == 0
}

func (m *KeyMetaData) has(id uuid.UUID) bool {
	_, r := m.Read[id]
	_, w := m.Write[id]
	_, x := m.Exclusive[id]
	return r || w || x
}

func (m *KeyMetaData) clone() KeyMetaData {
	return KeyMetaData{
		Read:      maps.Clone(m.Read),
		Write:     maps.Clone(m.Write),
		Exclusive: maps.Clone(m.Exclusive),
	}
}

// Store is a blackboard: values, per-key access metadata, the client
// registry and an optional activity stream. The zero value is not usable,
// use [NewStore] or [Default].
type Store struct {
	mu       sync.RWMutex
	storage  map[string]any
	metadata map[string]*KeyMetaData
	clients  map[uuid.UUID]string
	activity *ActivityStream
	logger   *slog.Logger
}

// NewStore returns an empty store with the activity stream disabled.
func NewStore() *Store {
	return &Store{
		storage:  make(map[string]any),
		metadata: make(map[string]*KeyMetaData),
		clients:  make(map[uuid.UUID]string),
	}
}

var defaultStore = NewStore()

// Default returns the process-wide store.
func Default() *Store { return defaultStore }

// SetLogger sets the logger for store diagnostics. A nil logger restores
// [slog.Default].
func (s *Store) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// log must be called with s.mu held.
func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Keys returns every stored key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.storage))
}

// AllKeys returns every key that is stored or registered by some client,
// sorted.
func (s *Store) AllKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := slices.Collect(maps.Keys(s.storage))
	for key := range s.metadata {
		if _, ok := s.storage[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.storage)
}

// Get returns the value of an absolute variable name, which may include a
// nested path. No access checks are made.
func (s *Store) Get(variable string) (any, error) {
	key, path := SplitVariable(variable)
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.storage[key]
	if !ok {
		return nil, &KeyError{Key: key, Err: ErrKeyNotFound}
	}
	if path == "" {
		return value, nil
	}
	nested, ok := lookupPath(value, path)
	if !ok {
		return nil, &KeyError{Key: variable, Err: ErrNestedPathMissing}
	}
	return nested, nil
}

// Set stores value under an absolute variable name. A nested variable
// requires the base key to exist. No access checks are made and no activity
// is recorded.
func (s *Store) Set(variable string, value any) error {
	key, path := SplitVariable(variable)
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		s.storage[key] = value
		return nil
	}
	current, ok := s.storage[key]
	if !ok {
		return &KeyError{Key: key, Err: ErrKeyNotFound}
	}
	updated, err := setPath(current, path, value)
	if err != nil {
		return &KeyError{Key: variable, Err: err}
	}
	s.storage[key] = updated
	return nil
}

// Exists reports whether the absolute variable name resolves to a value.
func (s *Store) Exists(variable string) bool {
	_, err := s.Get(variable)
	return err == nil
}

// Unset removes key, reporting whether a value was present.
func (s *Store) Unset(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.storage[key]; !ok {
		return false
	}
	delete(s.storage, key)
	return true
}

// KeysFilteredByRegex returns the stored or registered keys matching expr,
// sorted.
func (s *Store) KeysFilteredByRegex(expr string) ([]string, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range s.AllKeys() {
		if re.MatchString(k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// KeysFilteredByClients returns the keys, sorted, on which any of the given
// clients holds some access.
func (s *Store) KeysFilteredByClients(ids ...uuid.UUID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key, meta := range s.metadata {
		if slices.ContainsFunc(ids, meta.has) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Metadata returns a copy of the metadata for a storage key.
func (s *Store) Metadata(key string) (KeyMetaData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.metadata[key]
	if !ok {
		return KeyMetaData{}, false
	}
	return meta.clone(), true
}

// Clients returns a copy of the client registry.
func (s *Store) Clients() map[uuid.UUID]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.clients)
}

// Snapshot returns a shallow copy of the stored values.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.storage)
}

// EnableActivityStream starts recording client activity. Enabling an
// already enabled stream keeps the existing one and returns
// [ErrActivityStreamEnabled].
func (s *Store) EnableActivityStream(maximumSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activity != nil {
		s.log().Warn("blackboard activity stream already enabled", "maximumSize", s.activity.MaximumSize())
		return ErrActivityStreamEnabled
	}
	s.activity = NewActivityStream(maximumSize)
	s.log().Debug("blackboard activity stream enabled", "maximumSize", s.activity.MaximumSize())
	return nil
}

// DisableActivityStream stops recording and drops the stream.
func (s *Store) DisableActivityStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = nil
}

// ActivityStream returns the activity stream, or nil if disabled.
func (s *Store) ActivityStream() *ActivityStream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity
}

// Clear removes every value, metadata entry and client registration, and
// drops the activity stream. Existing clients keep their local key sets but
// lose their store-side registrations.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage = make(map[string]any)
	s.metadata = make(map[string]*KeyMetaData)
	s.clients = make(map[uuid.UUID]string)
	s.activity = nil
}

// record pushes an activity item when the stream is enabled. Callers hold
// s.mu.
func (s *Store) record(item ActivityItem) {
	if s.activity != nil {
		s.activity.Push(item)
	}
}
