package cache

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto/v2"
)

// The block cache holds serialized records keyed by offset. It sits below
// the row directory: a directory miss is served from here before the data
// file is read. It is filled only by reads from the file and an entry is
// dropped whenever its offset is written or freed. ristretto applies Set and
// Del through a buffer, so every call waits for it to drain; a queued Set
// landing after a later write would bring old links back.

func (c *Cache) openBlocks() error {
	if c.cfg.BlockCacheBytes <= 0 || c.blocks != nil {
		return nil
	}
	blocks, err := ristretto.NewCache(&ristretto.Config[uint64, []byte]{
		NumCounters: max(c.cfg.BlockCacheBytes*10/64, 1024),
		MaxCost:     c.cfg.BlockCacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create block cache")
	}
	c.blocks = blocks
	return nil
}

func (c *Cache) cachedBlock(pos int32) ([]byte, bool) {
	if c.blocks == nil {
		return nil, false
	}
	return c.blocks.Get(uint64(pos))
}

func (c *Cache) storeBlock(pos int32, b []byte) {
	if c.blocks == nil {
		return
	}
	c.blocks.Set(uint64(pos), b, int64(len(b)))
	c.blocks.Wait()
}

func (c *Cache) forgetBlock(pos int32) {
	if c.blocks != nil {
		c.blocks.Del(uint64(pos))
		c.blocks.Wait()
	}
}

func (c *Cache) closeBlocks() {
	if c.blocks != nil {
		c.blocks.Close()
		c.blocks = nil
	}
}
