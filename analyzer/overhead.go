package analyzer

// ComputeOverheads returns a copy of records with Overhead populated.
//
// The log only records completions, so the start of transaction i+1 is
// reconstructed as its completion minus its duration. The overhead of record i
// is the gap between its completion and that start:
//
//	overhead[i] = (completed[i+1] - completed[i]) - duration[i+1]
//
// A negative overhead means the two transactions overlapped; it is kept as is.
// The last record gets 0 because it has no successor.
func ComputeOverheads(records []TransactionRecord) []TransactionRecord {
	out := make([]TransactionRecord, len(records))
	copy(out, records)

	for i := 0; i < len(out)-1; i++ {
		gap := out[i+1].CompletedAt.Sub(out[i].CompletedAt).Seconds()
		out[i].Overhead = gap - out[i+1].Duration
	}
	if len(out) > 0 {
		out[len(out)-1].Overhead = 0
	}
	return out
}
