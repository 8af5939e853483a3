package cache

import (
	"slices"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"
	diskmanager "SharpHSQL/storage_engine/disk_manager"

	"github.com/cockroachdb/errors"
)

/*
The resident rows form one circular doubly-linked ring. Rows whose offsets
hash to the same slot sit next to each other in the ring and buckets[slot]
points at the first of them, so a lookup walks forward from the bucket head
until the hash changes.

Nothing is evicted by Add or GetRow. Callers give the cache a chance to shrink
at points where they hold no node references: after a table mutation and
periodically during index traversal.
*/

func New(path string, cfg Config) *Cache {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}
	size := 1 << cfg.Scale
	return &Cache{
		path:         path,
		cfg:          cfg,
		mask:         int32(size - 1),
		maxCacheSize: size * 3 / 4,
		freePos:      diskmanager.InitialFreePos,
		log:          logging.WithComponent("cache").With("path", path),
	}
}

// Open opens (creating it if needed) the data file and reads its free
// position header.
func (c *Cache) Open(readOnly bool) error {
	file, err := diskmanager.OpenDataFile(c.path, readOnly)
	if err != nil {
		return err
	}
	freePos, err := file.ReadFreePos()
	if err != nil {
		_ = file.Close()
		return err
	}
	if err := c.openBlocks(); err != nil {
		_ = file.Close()
		return err
	}

	c.file = file
	c.readOnly = readOnly
	c.freePos = freePos
	c.buckets = make([]*Row, int(c.mask)+1)
	c.log.Debug("data file opened", "free_pos", freePos, "read_only", readOnly)
	return nil
}

func (c *Cache) tick() int64 {
	c.accessClock++
	return c.accessClock
}

// Add gives r a place in the data file and makes it resident. The row must
// have its size set.
func (c *Cache) Add(r *Row) {
	size := r.size

	var prev *freeBlock
	for f := c.freeRoot; f != nil; prev, f = f, f.next {
		if f.length < size {
			continue
		}
		r.pos = f.pos
		if f.length-size < minFreeBlock {
			if prev == nil {
				c.freeRoot = f.next
			} else {
				prev.next = f.next
			}
			c.freeCount--
		} else {
			f.pos += size
			f.length -= size
		}
		break
	}

	if r.pos == 0 {
		r.pos = c.freePos
		c.freePos += size
	}

	r.cache = c
	r.changed = true
	r.lastAccess = c.tick()
	c.register(r)
}

// GetRow returns the row stored at pos, reading it in when it is not
// resident.
func (c *Cache) GetRow(pos int32, owner Owner) (*Row, error) {
	if c.buckets == nil {
		return nil, dberror.Invalid("cache %s is not open", c.path)
	}
	k := pos & c.mask
	start := c.buckets[k]
	for r := start; r != nil; {
		if r.pos == pos {
			r.lastAccess = c.tick()
			c.stats.Hits++
			return r, nil
		}
		r = r.next
		if r == start || r.pos&c.mask != k {
			break
		}
	}

	c.stats.Misses++
	b, err := c.readRecord(pos)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read row of %s at %d", owner.Name(), pos)
	}
	r, err := readRow(owner, c, pos, b)
	if err != nil {
		c.forgetBlock(pos)
		return nil, err
	}
	r.lastAccess = c.tick()
	c.register(r)
	return r, nil
}

func (c *Cache) readRecord(pos int32) ([]byte, error) {
	if b, ok := c.cachedBlock(pos); ok {
		c.stats.BlockHits++
		return b, nil
	}
	b, err := c.file.ReadRecord(pos)
	if err != nil {
		return nil, err
	}
	c.storeBlock(pos, b)
	return b, nil
}

// Free returns the block [pos, pos+length) to the free-list and drops r from
// the cache. Adjacent blocks are never merged; once the list grows past its
// limit it restarts from the new block and the older entries are lost.
func (c *Cache) Free(r *Row, pos, length int32) {
	c.freeCount++
	if c.freeCount > freeListLimit {
		c.freeRoot = nil
		c.freeCount = 1
	}
	c.freeRoot = &freeBlock{pos: pos, length: length, next: c.freeRoot}

	c.remove(r)
	c.forgetBlock(pos)
}

// CleanUpIfNeeded evicts rows once the cache reaches its threshold.
func (c *Cache) CleanUpIfNeeded() error {
	if c.cacheSize < c.maxCacheSize {
		return nil
	}
	return c.CleanUp()
}

// CleanUp evicts rows until the cache is down to half its threshold, at most
// writerLength dirty rows per call. Clean rows leave at once; dirty ones are
// collected, written in offset order and then removed.
func (c *Cache) CleanUp() error {
	clock := c.accessClock
	batch := make([]*Row, 0, writerLength)
	defer func() {
		for _, r := range batch {
			r.queued = false
		}
	}()

	evicted := 0
	for j := 0; j < c.cacheSize && c.cacheSize > c.maxCacheSize/2 && len(batch) < writerLength; j++ {
		r := c.worst(clock)
		if r == nil {
			// nothing in this window may leave; the cursor has moved on
			continue
		}
		if r.changed {
			r.queued = true
			batch = append(batch, r)
			continue
		}
		c.remove(r)
		c.stats.Evictions++
		evicted++
		if c.evicted != nil {
			c.evicted(r, false)
		}
	}

	if err := c.saveSorted(batch); err != nil {
		return err
	}
	for _, r := range batch {
		c.remove(r)
		c.stats.Evictions++
		if c.evicted != nil {
			c.evicted(r, true)
		}
	}

	c.log.Debug("cache cleaned up",
		"clean", evicted, "written", len(batch), "resident", c.cacheSize)
	return nil
}

// worst samples sampleWidth rows from the cursor and returns the least
// recently used one that may leave the cache.
func (c *Cache) worst(clock int64) *Row {
	r := c.first
	if r == nil {
		return nil
	}
	var candidate *Row
	for i := 0; i < sampleWidth; i++ {
		if !r.queued && r.lastAccess < clock &&
			(candidate == nil || r.lastAccess < candidate.lastAccess) && r.canRemove() {
			candidate = r
		}
		r = r.next
	}
	c.first = r
	return candidate
}

func (c *Cache) saveSorted(rows []*Row) error {
	if len(rows) == 0 {
		return nil
	}
	slices.SortFunc(rows, func(a, b *Row) int { return int(a.pos - b.pos) })
	for _, r := range rows {
		if err := c.writeRow(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) writeRow(r *Row) error {
	if c.readOnly {
		return dberror.IO(errors.New("data file is read-only"), "write row", c.path)
	}
	b, err := r.Write()
	if err != nil {
		return err
	}
	c.forgetBlock(r.pos)
	if err := c.file.WriteAt(r.pos, b); err != nil {
		return err
	}
	r.changed = false
	c.stats.Writes++
	return nil
}

// Flush writes every dirty resident row in offset order followed by the free
// position header, then syncs the data file.
func (c *Cache) Flush() error {
	if c.file == nil || c.readOnly {
		return nil
	}
	var dirty []*Row
	if r := c.first; r != nil {
		for {
			if r.changed {
				dirty = append(dirty, r)
			}
			r = r.next
			if r == c.first {
				break
			}
		}
	}
	if err := c.saveSorted(dirty); err != nil {
		return errors.Wrap(err, "failed to flush cache")
	}
	if err := c.file.WriteFreePos(c.freePos); err != nil {
		return err
	}
	if err := c.file.Sync(); err != nil {
		return err
	}
	c.log.Debug("cache flushed", "written", len(dirty), "free_pos", c.freePos)
	return nil
}

// Close flushes and closes the data file. The free-list is not persisted.
func (c *Cache) Close() error {
	if c.file == nil {
		return nil
	}
	if err := c.Flush(); err != nil {
		return err
	}
	err := c.file.Close()
	c.reset()
	return err
}

// Shutdown closes the data file without writing anything.
func (c *Cache) Shutdown() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.reset()
	return err
}

func (c *Cache) reset() {
	c.file = nil
	c.buckets = nil
	c.first = nil
	c.cacheSize = 0
	c.freeRoot = nil
	c.freeCount = 0
	c.freePos = diskmanager.InitialFreePos
	c.closeBlocks()
}

// register links r into the ring at the head of its bucket's run. A row
// opening a new run goes in front of an existing run head so no run is split.
func (c *Cache) register(r *Row) {
	k := r.pos & c.mask
	if head := c.buckets[k]; head != nil {
		r.insertBefore(head)
	} else if c.first != nil {
		x := c.first
		for c.buckets[x.pos&c.mask] != x {
			x = x.prev
		}
		r.insertBefore(x)
	} else {
		r.insertBefore(nil)
	}
	c.buckets[k] = r
	c.first = r
	c.cacheSize++
}

func (c *Cache) remove(r *Row) {
	if r.next == nil {
		return
	}
	k := r.pos & c.mask
	if c.buckets[k] == r {
		if n := r.next; n != r && n.pos&c.mask == k {
			c.buckets[k] = n
		} else {
			c.buckets[k] = nil
		}
	}
	if c.first == r {
		if r.next == r {
			c.first = nil
		} else {
			c.first = r.next
		}
	}
	r.unlink()
	c.cacheSize--
}
