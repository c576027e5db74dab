package deepcrawl

import (
	"container/list"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// maxHashedChars bounds the djb2 content hash to the first 10,000
// characters (spec §4.10).
const maxHashedChars = 10000

// djb2Hash computes the classic djb2 hash over the first maxHashedChars
// characters of s, used to skip re-extracting byte-identical content
// reached via a different URL.
func djb2Hash(s string) uint64 {
	if len(s) > maxHashedChars {
		s = s[:maxHashedChars]
	}
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}

// scannedSet tracks URLs already pulled off the queue, unbounded for the
// life of one scan (spec §5's "Content hash set: unbounded per scan"). A
// Bloom filter answers the common "definitely not seen" case without
// taking the map lock path through an exact lookup; a hit still falls
// through to the exact set to rule out a false positive.
type scannedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	m      map[string]bool
}

func newScannedSet() *scannedSet {
	return &scannedSet{
		filter: bloom.NewWithEstimates(10000, 0.001),
		m:      make(map[string]bool),
	}
}

// MarkIfNew records url as scanned, reporting whether it was new.
func (s *scannedSet) MarkIfNew(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.TestString(url) && s.m[url] {
		return false
	}
	s.filter.AddString(url)
	s.m[url] = true
	return true
}

func (s *scannedSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filter.TestString(url) {
		return false
	}
	return s.m[url]
}

// hashSet records content hashes already seen this scan.
type hashSet struct {
	mu   sync.Mutex
	seen map[uint64]bool
}

func newHashSet() *hashSet {
	return &hashSet{seen: make(map[uint64]bool)}
}

// SeenOrAdd reports whether h was already recorded, recording it if not.
func (s *hashSet) SeenOrAdd(h uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[h] {
		return true
	}
	s.seen[h] = true
	return false
}

// urlCache is an LRU cache of fetched response bodies, bound to spec
// §5's "URL content cache: LRU, bound 100".
type urlCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type urlCacheEntry struct {
	url  string
	body string
}

func newURLCache(capacity int) *urlCache {
	return &urlCache{capacity: capacity, ll: list.New(), items: make(map[string]*list.Element)}
}

func (c *urlCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[url]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*urlCacheEntry).body, true
}

func (c *urlCache) Put(url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[url]; ok {
		el.Value.(*urlCacheEntry).body = body
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&urlCacheEntry{url: url, body: body})
	c.items[url] = el
	if c.capacity > 0 && c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*urlCacheEntry).url)
		}
	}
}
