package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmame/txntools/analyzer"
)

func TestComputeOverheads(t *testing.T) {
	records, errs := analyzer.Parse([]string{
		"[10:00:00.000] Transaction #1 completed (Duration: 2.000s)",
		"[10:00:05.000] Transaction #2 completed (Duration: 1.000s)",
	}, refDate)
	require.Empty(t, errs)

	got := analyzer.ComputeOverheads(records)
	require.Len(t, got, 2)
	assert.Equal(t, 4.0, got[0].Overhead)
	assert.Equal(t, 0.0, got[1].Overhead)
}

func TestComputeOverheadsFormula(t *testing.T) {
	tests := []struct {
		name         string
		t0, t1       analyzer.TransactionRecord
		wantOverhead float64
	}{
		{
			name:         "idle gap",
			t0:           analyzer.TransactionRecord{Number: 1, CompletedAt: at(9, 0, 0, 0), Duration: 0.5},
			t1:           analyzer.TransactionRecord{Number: 2, CompletedAt: at(9, 0, 3, 0), Duration: 2.0},
			wantOverhead: 1.0,
		},
		{
			name:         "back to back",
			t0:           analyzer.TransactionRecord{Number: 1, CompletedAt: at(9, 0, 0, 0), Duration: 0.5},
			t1:           analyzer.TransactionRecord{Number: 2, CompletedAt: at(9, 0, 1, 0), Duration: 1.0},
			wantOverhead: 0.0,
		},
		{
			name:         "overlapping transactions give negative overhead",
			t0:           analyzer.TransactionRecord{Number: 1, CompletedAt: at(9, 0, 0, 0), Duration: 0.5},
			t1:           analyzer.TransactionRecord{Number: 2, CompletedAt: at(9, 0, 1, 0), Duration: 3.0},
			wantOverhead: -2.0,
		},
		{
			name:         "timestamps going backwards are not an error",
			t0:           analyzer.TransactionRecord{Number: 1, CompletedAt: at(9, 0, 5, 0), Duration: 0.5},
			t1:           analyzer.TransactionRecord{Number: 2, CompletedAt: at(9, 0, 1, 0), Duration: 1.0},
			wantOverhead: -5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.ComputeOverheads([]analyzer.TransactionRecord{tt.t0, tt.t1})
			require.Len(t, got, 2)
			assert.Equal(t, tt.wantOverhead, got[0].Overhead)
			assert.Equal(t, 0.0, got[1].Overhead)
		})
	}
}

func TestComputeOverheadsSmallInputs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, analyzer.ComputeOverheads(nil))
	})

	t.Run("single record", func(t *testing.T) {
		got := analyzer.ComputeOverheads([]analyzer.TransactionRecord{
			{Number: 1, CompletedAt: at(9, 0, 0, 0), Duration: 1.5, Overhead: 42},
		})
		require.Len(t, got, 1)
		assert.Equal(t, 0.0, got[0].Overhead)
	})
}

func TestComputeOverheadsDoesNotMutateInput(t *testing.T) {
	in := []analyzer.TransactionRecord{
		{Number: 1, CompletedAt: at(9, 0, 0, 0), Duration: 1},
		{Number: 2, CompletedAt: at(9, 0, 4, 0), Duration: 1},
	}

	out := analyzer.ComputeOverheads(in)
	assert.Equal(t, 3.0, out[0].Overhead)
	assert.Equal(t, 0.0, in[0].Overhead)
}

func TestComputeOverheadsLastIsAlwaysZero(t *testing.T) {
	var records []analyzer.TransactionRecord
	for i := 0; i < 20; i++ {
		records = append(records, analyzer.TransactionRecord{
			Number:      i + 1,
			CompletedAt: at(9, 0, i, 250),
			Duration:    0.1 * float64(i),
		})
		got := analyzer.ComputeOverheads(records)
		assert.Equal(t, 0.0, got[len(got)-1].Overhead, "n=%d", len(records))
	}
}
