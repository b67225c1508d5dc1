package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mmame/txntools/release"
	"github.com/mmame/txntools/termstyle"
)

const version = "0.2.0"

// cancelGrace bounds how long an interrupted release may take to unwind
// before the helper gives up on a step still waiting for input.
const cancelGrace = 200 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("releasehelper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "release.yaml", "release configuration file (optional)")
	root := fs.String("root", ".", "firmware project root directory")
	noColor := fs.Bool("no-color", false, "disable coloured output")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	showVersion := fs.Bool("version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: releasehelper [options]\n\n")
		fmt.Fprintf(stderr, "Walks through an OTA firmware release: version bump, build, version.json,\n")
		fmt.Fprintf(stderr, "release files and git tagging.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "releasehelper %s\n", version)
		return 0
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 1
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(stderr, "Error: invalid -log-level %q\n", *logLevel)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfgFile := *configPath
	if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(*root, cfgFile)
	}
	cfg, err := release.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	gate := &gatedWriter{w: stdout}
	out := termstyle.Printer{W: gate, Color: !*noColor && os.Getenv("NO_COLOR") == ""}
	h := &release.Helper{
		Config: cfg,
		Root:   *root,
		Prompt: release.NewConsole(stdin, out),
		Runner: release.ExecRunner{Dir: *root},
		Out:    out,
	}

	// Prompts block on stdin, so an interrupt is observed here rather than
	// inside the step that is waiting for an answer.
	done := make(chan error, 1)
	go func() {
		_, err := h.Execute(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		return exitCode(out, err)
	case <-ctx.Done():
	}
	select {
	case err := <-done:
		return exitCode(out, err)
	case <-time.After(cancelGrace):
		// The step may still wake up and print; its output is dropped from here on.
		gate.Close()
		fmt.Fprintln(stdout)
		termstyle.Printer{W: stdout, Color: out.Color}.Println(termstyle.Warning, "Release process cancelled by user")
		return 1
	}
}

// gatedWriter forwards writes until closed and discards them afterwards.
type gatedWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return len(p), nil
	}
	return g.w.Write(p)
}

// Close waits for an in-flight write and stops forwarding.
func (g *gatedWriter) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func exitCode(out termstyle.Printer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		out.Println(termstyle.Warning, "Release process cancelled by user")
	case errors.Is(err, release.ErrAborted):
		out.Println(termstyle.Error, "Release aborted")
	default:
		out.Printf(termstyle.Error, "Error: %v", err)
	}
	return 1
}
