package analyzer

import (
	"fmt"
	"io"

	"github.com/google/pprof/profile"
)

const (
	rootFunctionID = 1
	rootLocationID = 1
)

// BuildProfile converts analysed records into a pprof profile so the timings
// can be explored with standard pprof tooling.
//
// Each transaction becomes one sample whose stack is
// "transactions" -> "Transaction #N", carrying two values: duration and
// overhead in nanoseconds. The last record's overhead is the 0 sentinel.
// Records are expected to have gone through ComputeOverheads.
func BuildProfile(records []TransactionRecord) (*profile.Profile, error) {
	root := &profile.Function{
		ID:         rootFunctionID,
		Name:       "transactions",
		SystemName: "transactions",
	}
	rootLoc := &profile.Location{
		ID:   rootLocationID,
		Line: []profile.Line{{Function: root}},
	}

	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "duration", Unit: "nanoseconds"},
			{Type: "overhead", Unit: "nanoseconds"},
		},
		DefaultSampleType: "duration",
		PeriodType:        &profile.ValueType{Type: "transaction", Unit: "count"},
		Period:            1,
		Function:          []*profile.Function{root},
		Location:          []*profile.Location{rootLoc},
	}

	for i, r := range records {
		// IDs 1 are taken by the root frame.
		id := uint64(i + 2)
		name := fmt.Sprintf("Transaction #%d", r.Number)
		fn := &profile.Function{ID: id, Name: name, SystemName: name}
		loc := &profile.Location{ID: id, Line: []profile.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)

		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc, rootLoc}, // leaf first
			Value:    []int64{secondsToNanos(r.Duration), secondsToNanos(r.Overhead)},
			Label: map[string][]string{
				"completed_at": {FormatClock(r.CompletedAt)},
			},
			NumLabel: map[string][]int64{
				"transaction": {int64(r.Number)},
			},
		})
	}

	if len(records) > 0 {
		first, last := records[0].CompletedAt, records[len(records)-1].CompletedAt
		p.TimeNanos = first.UnixNano()
		p.DurationNanos = last.Sub(first).Nanoseconds()
	}

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid transaction profile: %w", err)
	}
	return p, nil
}

// WriteProfile builds the profile for records and writes it to w in pprof's
// gzipped protobuf encoding.
func WriteProfile(w io.Writer, records []TransactionRecord) error {
	p, err := BuildProfile(records)
	if err != nil {
		return err
	}
	if err := p.Write(w); err != nil {
		return fmt.Errorf("write transaction profile: %w", err)
	}
	return nil
}
