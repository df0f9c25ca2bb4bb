package sync

// PartitionDocuments splits docs into contiguous batches of at most
// batchSize, preserving order. The last batch may be shorter. Concatenating
// the batches reproduces the input exactly. batchSize values below 1 are
// treated as 1.
func PartitionDocuments[T any](docs []T, batchSize int) [][]T {
	if batchSize < 1 {
		batchSize = 1
	}
	if len(docs) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(docs)+batchSize-1)/batchSize)
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}
