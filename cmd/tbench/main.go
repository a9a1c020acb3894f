// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command tbench runs CSV test benches against the built-in circuit designs.
//
// Usage:
//
//	tbench [flags] testbench.csv...
//
// Each test bench runs in its own simulation. Waveforms are written next to
// the test bench file unless the test bench names a wave file or -o is given.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/db47h/tbench"
	"github.com/db47h/tbench/board"
	"github.com/db47h/tbench/hwlib"
	"github.com/db47h/tbench/hwsim"
	"github.com/db47h/tbench/internal/config"
	"github.com/db47h/tbench/internal/telemetry"
	"github.com/db47h/tbench/testbench"
	"github.com/db47h/tbench/tracedb"
	"github.com/db47h/tbench/vcd"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type flags struct {
	design   string
	out      string
	format   string
	board    bool
	parallel int
	settle   int
	list     bool
	files    []string
}

func parseFlags(args []string, cfg config.Config, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("tbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: tbench [flags] testbench.csv...\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.design, "design", cfg.Design, "built-in design to simulate (see -list)")
	fs.StringVar(&f.out, "o", "", "waveform output `path`, enables tracing (single test bench only)")
	fs.StringVar(&f.format, "format", "", "waveform format: vcd or sqlite")
	fs.BoolVar(&f.board, "board", false, "print model signals on board updates")
	fs.IntVar(&f.parallel, "parallel", cfg.Parallel, "maximum number of concurrent test benches")
	fs.IntVar(&f.settle, "settle", cfg.SettleSteps, "circuit steps per evaluation")
	fs.BoolVar(&f.list, "list", false, "list built-in designs and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.files = fs.Args()
	if f.list {
		return f, nil
	}
	switch {
	case len(f.files) == 0:
		return nil, errors.New("no test bench given")
	case f.out != "" && len(f.files) > 1:
		return nil, errors.New("-o requires a single test bench")
	case f.parallel < 1:
		return nil, errors.New("-parallel must be positive")
	case f.settle < 1:
		return nil, errors.New("-settle must be positive")
	}
	if f.format != "" && f.format != tbench.FormatVCD && f.format != tbench.FormatSQLite {
		return nil, errors.Errorf("unsupported format %q", f.format)
	}
	if _, ok := hwlib.LookupDesign(f.design); !ok {
		return nil, errors.Errorf("unknown design %q", f.design)
	}
	return f, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	f, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(stderr, "tbench:", err)
		}
		return exitUsage
	}
	if f.list {
		for _, d := range hwlib.Designs() {
			fmt.Fprintf(stdout, "%-10s %s\n", d.Name, d.Description)
		}
		return exitOK
	}

	logger := newLogger(stderr, cfg)
	shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		logger.Error("telemetry setup failed", "error", err)
		return exitError
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	if err = runAll(ctx, f, logger, &syncWriter{w: stdout}); err != nil {
		return exitError
	}
	return exitOK
}

// runAll runs all test benches with at most f.parallel concurrent runs. A
// failing test bench does not stop the others.
func runAll(ctx context.Context, f *flags, logger *slog.Logger, out io.Writer) error {
	d, _ := hwlib.LookupDesign(f.design)
	var g errgroup.Group
	g.SetLimit(f.parallel)
	for _, file := range f.files {
		file := file
		g.Go(func() error {
			log := logger.With("testbench", file)
			res, err := runBench(ctx, f, d, file, log, out)
			if err != nil {
				log.Error("test bench failed", "error", err)
				return err
			}
			log.Info("test bench complete",
				"run_id", res.RunID,
				"ticks", uint64(res.Ticks),
				"reason", res.Reason.String(),
				"applied", res.Applied,
				"digest", res.Digest)
			return nil
		})
	}
	return g.Wait()
}

func runBench(ctx context.Context, f *flags, d hwlib.Design, file string, logger *slog.Logger, out io.Writer) (tbench.Result, error) {
	cfg, err := testbench.ReadFile(file, logger)
	if err != nil {
		return tbench.Result{}, err
	}
	if f.format != "" {
		cfg.TraceFormat = f.format
	}
	if f.out != "" {
		cfg.TraceEnabled, cfg.TracePath = true, f.out
	}
	if cfg.TraceEnabled && cfg.TracePath == "" {
		cfg.TracePath = tracePath(file, cfg.Format())
	}

	runID := uuid.NewString()
	opts := []tbench.Option{
		tbench.WithRunID(runID),
		tbench.WithLogger(logger),
	}
	switch cfg.Format() {
	case tbench.FormatSQLite:
		opts = append(opts, tbench.WithSink(tracedb.Sink(ctx, runID, d.Name)))
	default:
		opts = append(opts, tbench.WithSink(vcd.Open))
	}
	if f.board {
		opts = append(opts, tbench.WithBoard(board.Opener(out)))
	}
	return tbench.Run(ctx, cfg, func() (tbench.Model, error) {
		c, err := d.New()
		if err != nil {
			return nil, err
		}
		return hwsim.NewModel(c, f.settle), nil
	}, opts...)
}

// tracePath returns the default waveform path for test bench file.
func tracePath(file, format string) string {
	ext := ".vcd"
	if format == tbench.FormatSQLite {
		ext = ".db"
	}
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

// syncWriter serializes board output of concurrent runs.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
