// Package batch splits large ordered collections into fixed-size chunks so
// callers can bound memory and transaction size while preserving order.
package batch

import "context"

// Chunk splits items into consecutive slices of at most size elements.
// Order is preserved; the final chunk may be short. A non-positive size
// yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// Process applies fn to each chunk sequentially and concatenates the results.
// The first error aborts processing; results produced so far are discarded.
func Process[T, R any](ctx context.Context, items []T, size int, fn func(ctx context.Context, chunk []T) ([]R, error)) ([]R, error) {
	var out []R
	for _, chunk := range Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}
