package blockcache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const headerCacheTTL = time.Hour

var headerCache *ristretto.Cache[uint64, uint64]

func init() {
	cache, err := ristretto.NewCache[uint64, uint64](&ristretto.Config[uint64, uint64]{
		NumCounters: 100000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	headerCache = cache
}

// GetTimestamp returns the cached timestamp of a block, ok on hit.
// Block timestamps are immutable once mined, so snapshots of many
// events inside one block range never refetch headers.
func GetTimestamp(blockNumber uint64) (uint64, bool) {
	headerCache.Wait()
	return headerCache.Get(blockNumber)
}

// SetTimestamp caches a block's timestamp.
func SetTimestamp(blockNumber, timestamp uint64) {
	headerCache.SetWithTTL(blockNumber, timestamp, 1, headerCacheTTL)
	headerCache.Wait()
}
