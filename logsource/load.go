package logsource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmame/txntools/analyzer"
)

// Load opens the log named by uri and parses it. Lines that look like
// completion records but fail to parse are logged and skipped.
func Load(ctx context.Context, uri string, referenceDate time.Time) (analyzer.ParseResult, error) {
	rc, err := Open(ctx, uri)
	if err != nil {
		return analyzer.ParseResult{}, err
	}
	defer rc.Close()

	res, err := analyzer.ParseReader(rc, referenceDate)
	if err != nil {
		return analyzer.ParseResult{}, fmt.Errorf("parse %s: %w", uri, err)
	}
	for _, perr := range res.Errors {
		slog.Warn("skipping malformed transaction record", "source", uri, "line", perr.Line, "field", perr.Field, "err", perr.Err)
	}
	slog.Info("parsed transaction log",
		"source", uri, "records", len(res.Records), "parseErrors", len(res.Errors), "lines", res.TotalLines)
	return res, nil
}
