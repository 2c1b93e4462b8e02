package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"git.sr.ht/~whereswaldon/brushchart/backend"
)

// walk is a random walk that never drops below zero.
type walk struct {
	name  string
	value float64
	step  float64
}

func (w *walk) Name() string { return w.name }

func (w *walk) Read(rng *rand.Rand) float64 {
	w.value = max(0, w.value+(rng.Float64()*2-1)*w.step)
	return w.value
}

// generator produces the samples of a synthetic trace.
type generator struct {
	rng   *rand.Rand
	walks []*walk
	step  time.Duration
	next  time.Time
	ds    backend.Dataset
}

func newGenerator(series int, start time.Time, step time.Duration, seed int64) *generator {
	g := &generator{
		rng:  rand.New(rand.NewSource(seed)),
		step: step,
		next: start,
	}
	colors := backend.Palette(series)
	for i := 0; i < series; i++ {
		w := &walk{
			name:  fmt.Sprintf("series %d", i+1),
			value: 100 + g.rng.Float64()*900,
			step:  10 + g.rng.Float64()*90,
		}
		g.walks = append(g.walks, w)
		g.ds.Series = append(g.ds.Series, backend.NewSeries(w.Name(), colors[i]))
	}
	return g
}

// Sample appends one row to the trace.
func (g *generator) Sample() {
	g.ds.X = append(g.ds.X, g.next)
	for i, w := range g.walks {
		g.ds.Series[i].Insert(w.Read(g.rng))
	}
	g.next = g.next.Add(g.step)
}

func (g *generator) Dataset() backend.Dataset { return g.ds }

// writeFile replaces path with the trace. The rename lets watchers see
// one complete file per update.
func writeFile(path string, ds backend.Dataset) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".brushchart-synth-*")
	if err != nil {
		return fmt.Errorf("failed creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := backend.WriteCSV(tmp, ds); err != nil {
		tmp.Close()
		return fmt.Errorf("failed writing trace: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func newRootCmd() *cobra.Command {
	var (
		points int
		series int
		start  string
		step   time.Duration
		seed   int64
		output string
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "brushchart-synth",
		Short: "Generate a synthetic CSV trace",
		Long: heredoc.Doc(`
			Generate random walk series in the CSV format brushchart reads.
			With --follow a new sample is appended every step until
			interrupted, exercising live reloading.
		`),
		Example: heredoc.Doc(`
			# Two years of daily samples
			$ brushchart-synth --points 730 --output daily.csv

			# A live trace that grows every second
			$ brushchart-synth --step 1s --follow --output live.csv &
			$ brushchart live.csv
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if points < 2 {
				return fmt.Errorf("--points must be at least 2, got %d", points)
			}
			if series < 1 {
				return fmt.Errorf("--series must be at least 1, got %d", series)
			}
			if step <= 0 {
				return fmt.Errorf("--step must be positive, got %s", step)
			}
			startTime, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if follow && output == "-" {
				return fmt.Errorf("--follow requires --output")
			}
			g := newGenerator(series, startTime, step, seed)
			for i := 0; i < points; i++ {
				g.Sample()
			}
			if output == "-" {
				return backend.WriteCSV(cmd.OutOrStdout(), g.Dataset())
			}
			if err := writeFile(output, g.Dataset()); err != nil {
				return err
			}
			log.Info("wrote trace", "path", output, "points", points, "series", series)
			if !follow {
				return nil
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return followTrace(ctx, output, g, step)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&points, "points", 365, "Number of samples to generate")
	flags.IntVar(&series, "series", 2, "Number of series")
	flags.StringVar(&start, "start", "2018-01-01", "Date of the first sample")
	flags.DurationVar(&step, "step", 24*time.Hour, "Time between samples")
	flags.Int64Var(&seed, "seed", 1, "Random seed")
	flags.StringVar(&output, "output", "-", "Output file for the trace")
	flags.BoolVar(&follow, "follow", false, "Keep appending samples to the output file")
	return cmd
}

// followTrace appends a sample in real time every interval until ctx is
// done.
func followTrace(ctx context.Context, path string, g *generator, interval time.Duration) error {
	logger := log.WithPrefix("follow")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Sample()
			if err := writeFile(path, g.Dataset()); err != nil {
				return err
			}
			logger.Debug("appended sample", "points", len(g.Dataset().X))
		}
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
