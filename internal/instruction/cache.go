package instruction

import (
	"slices"

	"github.com/samcharles93/matcore/pkg/block"
)

// Tag names an operand or result slot in a Cache.
type Tag string

// Cache maps tags to the indexed blocks produced so far within one unit of
// work. It is not safe for concurrent use; every unit of work owns its own.
type Cache struct {
	entries map[Tag][]*block.IndexedBlock
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Tag][]*block.IndexedBlock)}
}

// Get returns the blocks registered under tag and whether the tag exists.
func (c *Cache) Get(tag Tag) ([]*block.IndexedBlock, bool) {
	blocks, ok := c.entries[tag]
	return blocks, ok
}

// Add appends ib under tag.
func (c *Cache) Add(tag Tag, ib *block.IndexedBlock) {
	c.entries[tag] = append(c.entries[tag], ib)
}

// HoldPlace registers and returns an empty holder under tag. The holder's
// block starts in the hinted representation and is visible immediately.
func (c *Cache) HoldPlace(tag Tag, sparse bool) *block.IndexedBlock {
	ib := &block.IndexedBlock{Value: block.New(0, 0, sparse)}
	c.Add(tag, ib)
	return ib
}

// Set replaces everything registered under tag.
func (c *Cache) Set(tag Tag, blocks []*block.IndexedBlock) {
	c.entries[tag] = blocks
}

func (c *Cache) Remove(tag Tag) {
	delete(c.entries, tag)
}

// Tags returns the registered tags in sorted order.
func (c *Cache) Tags() []Tag {
	tags := make([]Tag, 0, len(c.entries))
	for t := range c.entries {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// Reset drops all entries at the end of a dispatch cycle.
func (c *Cache) Reset() {
	clear(c.entries)
}
