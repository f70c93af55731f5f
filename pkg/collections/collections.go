package collections

// Apply applies the applicator function to each item in the input slice.
func Apply[T, V any](items []T, applicator func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = applicator(item)
	}
	return result
}

// Chunks splits items into consecutive chunks of at most size elements.
// The final chunk may be shorter. Chunks of an empty slice is nil.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	result := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		result = append(result, items[start:end])
	}

	return result
}

// Reduce folds items into a single value using the accumulator function.
func Reduce[T, V any](items []T, initial V, accumulate func(V, T) V) V {
	acc := initial
	for _, item := range items {
		acc = accumulate(acc, item)
	}
	return acc
}
