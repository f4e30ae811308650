package resolver

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameCache_FirstWriteWins(t *testing.T) {
	cache := NewNameCache()

	_, ok := cache.Load()
	assert.False(t, ok)

	assert.Equal(t, "Albaranes", cache.Store("Albaranes"))
	assert.Equal(t, "Albaranes", cache.Store("Other"))

	name, ok := cache.Load()
	assert.True(t, ok)
	assert.Equal(t, "Albaranes", name)
}

func TestNameCache_ConcurrentStores(t *testing.T) {
	cache := NewNameCache()

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Store(fmt.Sprintf("printer-%d", i))
		}(i)
	}
	wg.Wait()

	winner, ok := cache.Load()
	assert.True(t, ok)
	for _, r := range results {
		assert.Equal(t, winner, r)
	}
}
