package extract

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestPDFStrategy_ConcurrentExtractionsUseSeparateStaging(t *testing.T) {
	strat := newPDFStrategy(arbor.NewLogger())
	strat.tempDir = t.TempDir()

	// Concurrent runs must each fail on their own payload, never on a
	// staging collision with another run's files
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := strat.extract(context.Background(), []byte(fmt.Sprintf("not a pdf %d", n)), "")
			assert.ErrorContains(t, err, "failed to read PDF context")
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(strat.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging dirs are removed after extraction")
}
