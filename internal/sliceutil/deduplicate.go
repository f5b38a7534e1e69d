// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	unis := []dataset.University{{Name: "A", ProgramDetails: "MSc"}, {Name: "A", ProgramDetails: "MSc"}}
//	unique := sliceutil.Deduplicate(unis, dataset.University.Key)
//	// Result: [{Name: "A", ProgramDetails: "MSc"}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}

// Tail returns the last n items (all of them when n exceeds the length).
// The result shares the backing array with items.
func Tail[T any](items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n >= len(items) {
		return items
	}
	return items[len(items)-n:]
}
