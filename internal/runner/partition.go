package runner

// Partition splits total requests across workers. Counts differ by at most
// one and the first total%workers workers take the extra request.
func Partition(total, workers int) []int {
	if workers <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base, remainder := total/workers, total%workers
	counts := make([]int, workers)
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}
