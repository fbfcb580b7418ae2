package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_ZerosBeforeAnyActivity(t *testing.T) {
	cdb := NewCounterDB(setupTestDB(t))

	snapshot, err := cdb.Snapshot()
	require.NoError(t, err)

	assert.EqualValues(t, 0, snapshot[MetricAdsPosted])
	assert.EqualValues(t, 0, snapshot[MetricConnectionsMade])
	assert.EqualValues(t, 0, snapshot[MetricMatchesMade])
	assert.EqualValues(t, 0, snapshot[MetricErrors])
}

func TestIncrement_Accumulates(t *testing.T) {
	cdb := NewCounterDB(setupTestDB(t))

	require.NoError(t, cdb.Increment(MetricAdsPosted, 1))
	require.NoError(t, cdb.Increment(MetricAdsPosted, 2))

	snapshot, err := cdb.Snapshot()
	require.NoError(t, err)
	assert.EqualValues(t, 3, snapshot[MetricAdsPosted])
	assert.EqualValues(t, 0, snapshot[MetricErrors])
}

func TestIncrement_ConcurrentNoLostUpdates(t *testing.T) {
	cdb := NewCounterDB(setupTestDB(t))

	const increments = 50
	var wg sync.WaitGroup
	errs := make([]error, increments)
	for n := 0; n < increments; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = cdb.Increment(MetricConnectionsMade, 1)
		}(n)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	snapshot, err := cdb.Snapshot()
	require.NoError(t, err)
	assert.EqualValues(t, increments, snapshot[MetricConnectionsMade])
}

func TestMeta_SetAndGet(t *testing.T) {
	cdb := NewCounterDB(setupTestDB(t))

	value, err := cdb.GetMeta(MetaKeyBotStartTime)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, cdb.SetMeta(MetaKeyBotStartTime, "2026-01-01T00:00:00Z"))
	require.NoError(t, cdb.SetMeta(MetaKeyBotStartTime, "2026-02-02T00:00:00Z"))

	value, err = cdb.GetMeta(MetaKeyBotStartTime)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-02T00:00:00Z", value)
}
