package recording

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeletionMask(t *testing.T) {
	mask := NewDeletionMask()

	assert.False(t, mask.Contains("a"))
	assert.Equal(t, 0, mask.Len())

	mask.Add("a")
	mask.Add("a")
	mask.Add("b")

	assert.True(t, mask.Contains("a"))
	assert.True(t, mask.Contains("b"))
	assert.False(t, mask.Contains("c"))
	assert.Equal(t, 2, mask.Len())
}

func TestDeletionMask_Concurrent(t *testing.T) {
	mask := NewDeletionMask()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%d", n)
			mask.Add(id)
			assert.True(t, mask.Contains(id))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, mask.Len())
}
