package cache

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Resident = c.cacheSize
	s.Capacity = int(c.mask) + 1
	s.Threshold = c.maxCacheSize
	s.FreePos = c.freePos
	for f := c.freeRoot; f != nil; f = f.next {
		s.FreeBlocks++
	}
	return s
}

func (c *Cache) FreePos() int32 { return c.freePos }
func (c *Cache) Path() string   { return c.path }
func (c *Cache) IsOpen() bool   { return c.file != nil }

// FileSize is the current length of the data file in bytes.
func (c *Cache) FileSize() (int64, error) {
	if c.file == nil {
		return 0, nil
	}
	return c.file.Size()
}
