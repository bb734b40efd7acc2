package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWindowLastPage(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{total: 0, limit: 10, want: 0},
		{total: 1, limit: 10, want: 0},
		{total: 10, limit: 10, want: 0},
		{total: 11, limit: 10, want: 1},
		{total: 25, limit: 5, want: 4},
		{total: 26, limit: 5, want: 5},
	}
	for _, tc := range cases {
		w := NewWindow(tc.total, 0, tc.limit)
		assert.Equal(t, tc.want, w.LastPage, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Slice(items, NewWindow(len(items), 0, 3)))
	assert.Equal(t, []int{4, 5, 6}, Slice(items, NewWindow(len(items), 1, 3)))
	assert.Equal(t, []int{7}, Slice(items, NewWindow(len(items), 2, 3)))
	assert.Empty(t, Slice(items, NewWindow(len(items), 3, 3)))
	assert.NotNil(t, Slice(items, NewWindow(len(items), 9, 3)))
}

func TestNewWindowHugeValues(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	w := NewWindow(len(items), 1<<62, 4)
	assert.Equal(t, 1, w.LastPage)
	assert.Equal(t, len(items), w.Start)
	assert.Equal(t, len(items), w.End)
	assert.Empty(t, Slice(items, w))

	w = NewWindow(len(items), 0, int(^uint(0)>>1))
	assert.Equal(t, 0, w.LastPage)
	assert.Equal(t, items, Slice(items, w))

	w = NewWindow(len(items), -1, 2)
	assert.Empty(t, Slice(items, w))
}

func TestNoLimitReturnsEverything(t *testing.T) {
	items := []string{"a", "b"}
	w := NewWindow(len(items), 4, 0)

	assert.False(t, w.Paged())
	assert.Equal(t, 0, w.Page)
	assert.Equal(t, items, Slice(items, w))
}
