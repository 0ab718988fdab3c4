package addrlist

// BatchCount returns ceil(n / size).
func BatchCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Plan splits blocks into consecutive chunks of at most size entries.
// The chunks share the backing array of blocks.
func Plan(blocks []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]string, 0, BatchCount(len(blocks), size))
	for start := 0; start < len(blocks); start += size {
		end := min(start+size, len(blocks))
		batches = append(batches, blocks[start:end:end])
	}
	return batches
}
