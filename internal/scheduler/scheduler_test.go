package scheduler

import (
	"testing"
	"time"

	"fleet-backend/internal/jobs"
	"fleet-backend/internal/repositories/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	store := memstore.New()
	runner := jobs.NewJobRunner(store.Bills(), store.Payments())

	t.Run("registers reconciliation", func(t *testing.T) {
		s, err := NewScheduler(runner, "0 2 * * *", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Entries())

		s.Start()
		s.Stop()
	})

	t.Run("rejects bad spec", func(t *testing.T) {
		_, err := NewScheduler(runner, "every night", time.UTC)
		assert.Error(t, err)
	})
}
