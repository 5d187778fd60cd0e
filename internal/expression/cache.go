package expression

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the default maximum number of compiled programs kept
// by the package cache.
const DefaultCacheSize = 1000

var programs = NewCache(DefaultCacheSize)

// SetCacheSize bounds the package cache, evicting immediately if it holds
// more than size programs. Sizes below one are treated as one.
func SetCacheSize(size int) {
	programs.Resize(size)
}

// CacheStats reports the package cache statistics.
func CacheStats() (size int, hits, misses int64, ratio float64) {
	return programs.Stats()
}

// Cache is a concurrency safe LRU cache of compiled programs, keyed by
// source text.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	lru     *list.List
	maxSize int
	hits    int64
	misses  int64
}

type cached struct {
	key     string
	program *vm.Program
}

// NewCache returns an empty cache holding at most maxSize programs. A
// maxSize below one selects [DefaultCacheSize].
func NewCache(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		index:   make(map[string]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the program stored under key, marking it most recently used.
func (c *Cache) Get(key string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.index[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(elem)
	return elem.Value.(*cached).program, true
}

// Put stores program under key, replacing any previous program and
// evicting the least recently used entry when full.
func (c *Cache) Put(key string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cached).program = program
		return
	}
	c.index[key] = c.lru.PushFront(&cached{key: key, program: program})
	c.evict()
}

// Resize changes the capacity, evicting as needed.
func (c *Cache) Resize(maxSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = max(maxSize, 1)
	c.evict()
}

func (c *Cache) evict() {
	for c.lru.Len() > c.maxSize {
		elem := c.lru.Back()
		delete(c.index, elem.Value.(*cached).key)
		c.lru.Remove(elem)
	}
}

// Clear removes every entry. Statistics are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.index)
	c.lru.Init()
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the size, hit and miss counts, and hit ratio.
func (c *Cache) Stats() (size int, hits, misses int64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if total := c.hits + c.misses; total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return c.lru.Len(), c.hits, c.misses, ratio
}

func (c *Cache) String() string {
	size, hits, misses, ratio := c.Stats()
	return fmt.Sprintf("expression.Cache{size=%d, hits=%d, misses=%d, hit_ratio=%.2f%%}", size, hits, misses, ratio*100)
}
