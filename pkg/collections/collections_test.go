package collections_test

import (
	"testing"

	"github.com/alkime/scope/pkg/collections"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Parallel()

	got := collections.Apply([]int{1, 2, 3}, func(i int) int { return i * 2 })
	require.Equal(t, []int{2, 4, 6}, got)
}

func TestApply_Empty(t *testing.T) {
	t.Parallel()

	got := collections.Apply(nil, func(i int) string { return "x" })
	require.Empty(t, got)
}

func TestChunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    []int
		size     int
		expected [][]int
	}{
		{
			name:     "even split",
			items:    []int{1, 2, 3, 4},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}},
		},
		{
			name:     "short tail",
			items:    []int{1, 2, 3, 4, 5},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}, {5}},
		},
		{
			name:     "size larger than input",
			items:    []int{1, 2},
			size:     10,
			expected: [][]int{{1, 2}},
		},
		{
			name:     "empty input",
			items:    nil,
			size:     3,
			expected: nil,
		},
		{
			name:     "non-positive size",
			items:    []int{1, 2, 3},
			size:     0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, collections.Chunks(tt.items, tt.size))
		})
	}
}

func TestReduce(t *testing.T) {
	t.Parallel()

	sum := collections.Reduce([]int{1, 2, 3, 4}, 0, func(acc, v int) int { return acc + v })
	require.Equal(t, 10, sum)

	concat := collections.Reduce([]string{"a", "b"}, "", func(acc, v string) string { return acc + v })
	require.Equal(t, "ab", concat)
}
