package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmame/txntools/analyzer"
	"github.com/mmame/txntools/logsource"
)

const version = "0.2.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("txnreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	date := fs.String("date", "", "reference date of the log (YYYY-MM-DD, default today UTC)")
	format := fs.String("format", "text", "output format: text, markdown, json, csv")
	maxRows := fs.Int("max-rows", 0, "list at most this many transactions (0 = all)")
	profilePath := fs.String("profile", "", "also write the timings as a pprof profile to this path")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	showVersion := fs.Bool("version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: txnreport [options] <log-path-or-url>\n\n")
		fmt.Fprintf(stderr, "Reports per-transaction duration and overhead from a transaction trace log.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  txnreport -date 2026-01-13 TransactionTrace_20260113_150019.log\n")
		fmt.Fprintf(stderr, "  txnreport -format json -max-rows 20 trace.log.zst\n")
		fmt.Fprintf(stderr, "  txnreport -profile transactions.pb.gz https://example.com/trace.log\n")
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "txnreport %s\n", version)
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(stderr, "Error: invalid -log-level %q\n", *logLevel)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	refDate, err := analyzer.ParseReferenceDate(*date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := logsource.Load(ctx, fs.Arg(0), refDate)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report, err := analyzer.AnalyzeTransactions(res, *maxRows, strings.ToLower(*format))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, report)

	if *profilePath != "" {
		if err := writeProfile(*profilePath, analyzer.ComputeOverheads(res.Records)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Profile written to %s\n", *profilePath)
	}
	return 0
}

func writeProfile(path string, records []analyzer.TransactionRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create profile file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close profile file: %w", cerr)
		}
	}()
	return analyzer.WriteProfile(f, records)
}
