package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimPage(t *testing.T) {
	items, isNext, err := trimPage([]int{1, 2, 3, 4}, 3)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, items)
	assert.True(t, isNext, "the extra row only signals a next page")

	items, isNext, err = trimPage([]int{1, 2, 3}, 3)
	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.False(t, isNext)

	items, isNext, err = trimPage([]int(nil), 3)
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, isNext)
}
