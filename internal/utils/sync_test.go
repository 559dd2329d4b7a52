package utils_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tmalloc/internal/utils"
)

func TestOptionalMutex(t *testing.T) {
	mutex := utils.OptionalMutex{UseMutex: true}
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mutex.Lock()
				counter++
				mutex.Unlock()
			}
		}()
	}

	wg.Wait()
	require.Equal(t, 8000, counter)
}

func TestOptionalMutex_Disabled(t *testing.T) {
	mutex := utils.OptionalMutex{}

	// A disabled mutex never blocks, even when locked twice
	mutex.Lock()
	mutex.Lock()
	mutex.Unlock()
	mutex.Unlock()
}
