package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectAllPagesDrainsEveryPage(t *testing.T) {
	data := []string{"a", "b", "c", "d", "e"}

	var pagesFetched int
	got, err := collectAllPages(2, func(page, limit int) ([]string, int64, error) {
		pagesFetched++
		start := (page - 1) * limit
		end := start + limit
		if end > len(data) {
			end = len(data)
		}
		if start >= len(data) {
			return nil, int64(len(data)), nil
		}
		return data[start:end], int64(len(data)), nil
	})

	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 3, pagesFetched, "a total beyond one page must keep fetching")
}

func TestCollectAllPagesSinglePage(t *testing.T) {
	got, err := collectAllPages(10, func(page, limit int) ([]int, int64, error) {
		return []int{1, 2, 3}, 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCollectAllPagesStopsOnEmptyPage(t *testing.T) {
	// A total that overstates the rows must not loop forever.
	calls := 0
	got, err := collectAllPages(2, func(page, limit int) ([]int, int64, error) {
		calls++
		if page == 1 {
			return []int{1, 2}, 100, nil
		}
		return nil, 100, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 2, calls)
}

func TestCollectAllPagesPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := collectAllPages(2, func(page, limit int) ([]int, int64, error) {
		if page == 2 {
			return nil, 0, boom
		}
		return []int{1, 2}, 4, nil
	})

	assert.ErrorIs(t, err, boom)
}
