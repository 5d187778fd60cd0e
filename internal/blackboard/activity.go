package blackboard

import (
	"sync"

	"github.com/emirpasic/gods/queues/circularbuffer"
	"github.com/google/uuid"
)

// DefaultActivityStreamSize is used when an activity stream is enabled with
// a non-positive maximum size.
const DefaultActivityStreamSize = 500

// ActivityKind classifies an [ActivityItem].
type ActivityKind string

const (
	// ActivityRead is a successful read.
	ActivityRead ActivityKind = "READ"
	// ActivityInitialised is the first write to a key without a value.
	ActivityInitialised ActivityKind = "INITIALISED"
	// ActivityWrite overwrites an existing value.
	ActivityWrite ActivityKind = "WRITE"
	// ActivityAccessed is a read by a writer of a composite value, which may
	// be followed by in-place mutation.
	ActivityAccessed ActivityKind = "ACCESSED"
	// ActivityAccessDenied is an operation rejected for lack of access.
	ActivityAccessDenied ActivityKind = "ACCESS_DENIED"
	// ActivityNoKey is a read of a registered key with no value.
	ActivityNoKey ActivityKind = "NO_KEY"
	// ActivityNoOverwrite is a set declined because a value exists.
	ActivityNoOverwrite ActivityKind = "NO_OVERWRITE"
	// ActivityUnset is a removal of a stored value.
	ActivityUnset ActivityKind = "UNSET"
)

// ActivityItem records a single client operation.
type ActivityItem struct {
	Key           string
	ClientName    string
	ClientID      uuid.UUID
	Kind          ActivityKind
	PreviousValue any
	CurrentValue  any
}

// ActivityStream is a bounded, oldest-first record of blackboard activity.
// Once full, each push evicts the oldest item.
type ActivityStream struct {
	mu          sync.Mutex
	maximumSize int
	items       *circularbuffer.Queue
}

// NewActivityStream returns an empty stream holding at most maximumSize
// items, or [DefaultActivityStreamSize] if maximumSize is not positive.
func NewActivityStream(maximumSize int) *ActivityStream {
	if maximumSize < 1 {
		maximumSize = DefaultActivityStreamSize
	}
	return &ActivityStream{
		maximumSize: maximumSize,
		items:       circularbuffer.New(maximumSize),
	}
}

// Push appends item, evicting the oldest item if the stream is full.
func (a *ActivityStream) Push(item ActivityItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items.Enqueue(item)
}

// Items returns the recorded items, oldest first.
func (a *ActivityStream) Items() []ActivityItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	values := a.items.Values()
	items := make([]ActivityItem, 0, len(values))
	for _, v := range values {
		items = append(items, v.(ActivityItem))
	}
	return items
}

// Len returns the number of recorded items.
func (a *ActivityStream) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.items.Size()
}

// MaximumSize returns the capacity of the stream.
func (a *ActivityStream) MaximumSize() int {
	return a.maximumSize
}

// Clear drops every recorded item.
func (a *ActivityStream) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items.Clear()
}
