package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"git.sr.ht/~whereswaldon/brushchart/backend"
	"git.sr.ht/~whereswaldon/brushchart/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
		opts     config.Options
	)
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "brushchart [trace.csv]",
		Short: "Explore a time series trace with a zoomable brush",
		Long: heredoc.Doc(`
			Plot every series of a CSV trace over time. Drag the highlighted
			window of the overview strip to pan, or its edges to zoom. The
			trace is reloaded whenever the file changes on disk.
		`),
		Example: heredoc.Doc(`
			# Open a trace
			$ brushchart power.csv

			# Keep the value axis tight around the data
			$ brushchart --track-minimum power.csv
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			if err := config.ReadFile(v, cfgFile, log.Default()); err != nil {
				return err
			}
			opts, err = config.Load(v)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			go func() {
				if err := run(opts, path); err != nil {
					log.Error("exiting", "error", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.brushchart.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Minimum level of logged messages")

	flags := cmd.Flags()
	flags.Float64("label-width", config.Defaults().LabelWidth, "Width reserved for each date label in pixels")
	flags.Bool("track-minimum", false, "Fit the value axis to the smallest visible value instead of zero")
	flags.Duration("window-duration", config.Defaults().WindowDuration, "Duration of brush window animations")
	flags.Duration("value-axis-duration", config.Defaults().ValueAxisDuration, "Duration of value axis rescales")
	for key, flag := range map[string]string{
		config.KeyLabelWidth:        "label-width",
		config.KeyTrackMinimum:      "track-minimum",
		config.KeyWindowDuration:    "window-duration",
		config.KeyValueAxisDuration: "value-axis-duration",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newConfigCmd(&opts))
	return cmd
}

func newConfigCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after merging defaults, the config file and the environment.`,
		Example: heredoc.Doc(`
			# Start a config file from the effective settings
			$ brushchart config > ~/.brushchart.yaml
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), *opts)
		},
	}
}

func run(opts config.Options, path string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	logger := log.Default()

	ds, err := backend.NewDatasource(ctx, logger)
	if err != nil {
		return err
	}
	defer ds.Close()
	if path != "" {
		// Failures are published to the UI as well.
		go func() {
			if err := ds.LoadFile(path); err != nil {
				logger.Error("failed loading trace", "path", path, "error", err)
			}
		}()
	}

	w := app.NewWindow(app.Title("Brush Chart"), app.Size(unit.Dp(1000), unit.Dp(700)))
	go func() {
		<-ctx.Done()
		w.Perform(system.ActionClose)
	}()
	return loop(ctx, w, backend.NewBundle(ds), opts, logger)
}

func loop(ctx context.Context, w *app.Window, bundle backend.Bundle, opts config.Options, logger *log.Logger) error {
	expl := explorer.NewExplorer(w)
	ws := backend.NewWindowState(ctx, bundle, w)
	ui := NewUI(ws, expl, opts, logger, w.Invalidate)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			if ev.Err != nil {
				return fmt.Errorf("window closed: %w", ev.Err)
			}
			return nil
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
