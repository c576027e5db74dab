package astextract

import (
	"container/list"
	"sync"

	"github.com/dop251/goja/ast"
)

// DefaultCacheSize is the AST LRU cache bound (spec §3's AST Cache entry,
// default 50).
const DefaultCacheSize = 50

// windowThreshold is the code length above which hashCode switches to a
// composite hash of three 5k-char windows plus length, rather than
// hashing the whole string (spec §4.5 cache key rule).
const windowThreshold = 10000
const windowSize = 5000

// hashCode computes the djb2 hash used as the cache key, using the
// windowed variant for long inputs.
func hashCode(code string) uint64 {
	if len(code) <= windowThreshold {
		return djb2(code)
	}
	var h uint64 = 5381
	h = h*33 + djb2(code[:windowSize])
	mid := len(code) / 2
	h = h*33 + djb2(code[mid:mid+windowSize])
	h = h*33 + djb2(code[len(code)-windowSize:])
	h = h*33 + uint64(len(code))
	return h
}

func djb2(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}

type cacheEntry struct {
	key     uint64
	program *ast.Program
	source  string
}

// astCache is a simple LRU keyed by hashCode, bounded at DefaultCacheSize.
type astCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[uint64]*list.Element
}

func newASTCache(capacity int) *astCache {
	return &astCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[uint64]*list.Element),
	}
}

// get returns the cached Program along with the exact (preprocessed) source
// text it was parsed from, so a cache hit can still resolve AST node offsets
// to line/column positions against the text those offsets actually index
// into.
func (c *astCache) get(key uint64) (*ast.Program, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, "", false
	}
	c.order.MoveToFront(el)
	entry := el.Value.(*cacheEntry)
	return entry.program, entry.source, true
}

func (c *astCache) put(key uint64, program *ast.Program, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).program = program
		el.Value.(*cacheEntry).source = source
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, program: program, source: source})
	c.index[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).key)
		}
	}
}
