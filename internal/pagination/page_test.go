package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FirstOfSeveralPages(t *testing.T) {
	t.Parallel()

	p := New([]int{1, 2, 3}, 0, 3, 8)

	assert.Equal(t, []int{1, 2, 3}, p.Content)
	assert.Equal(t, 0, p.Number)
	assert.Equal(t, 3, p.Size)
	assert.Equal(t, int64(8), p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 3, p.NumberOfElements)
	assert.True(t, p.First)
	assert.False(t, p.Last)
	assert.False(t, p.Empty)
}

func TestNew_LastShortPage(t *testing.T) {
	t.Parallel()

	p := New([]int{7, 8}, 2, 3, 8)

	assert.Equal(t, 2, p.NumberOfElements)
	assert.False(t, p.First)
	assert.True(t, p.Last)
}

func TestNew_NoResults(t *testing.T) {
	t.Parallel()

	p := New[string](nil, 0, 20, 0)

	assert.NotNil(t, p.Content, "content must encode as [] not null")
	assert.Equal(t, 1, p.TotalPages)
	assert.True(t, p.First)
	assert.True(t, p.Last)
	assert.True(t, p.Empty)
}

func TestNew_ExactMultiple(t *testing.T) {
	t.Parallel()

	p := New([]int{1, 2}, 1, 2, 4)
	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.Last)
}

func TestClamp(t *testing.T) {
	t.Parallel()

	page, size := Clamp(-3, 0, 20, 100)
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)

	page, size = Clamp(2, 500, 20, 100)
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, size)

	page, size = Clamp(1, 50, 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, size)
}
