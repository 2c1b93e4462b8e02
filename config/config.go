// Package config loads the chart's tunables from flags, environment and
// an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"git.sr.ht/~whereswaldon/brushchart/brush"
	"git.sr.ht/~whereswaldon/brushchart/labels"
	"git.sr.ht/~whereswaldon/brushchart/valueaxis"
	"git.sr.ht/~whereswaldon/brushchart/window"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	EasingLinear = "linear"
	EasingCubic  = "cubic"
)

// Keys of the configuration file.
const (
	KeyMinPointsInView       = "min_points_in_view"
	KeyLabelWidth            = "label_width"
	KeyInitialWindowFraction = "initial_window_fraction"
	KeyWindowDuration        = "window_duration"
	KeyValueAxisDuration     = "value_axis_duration"
	KeyWindowEasing          = "window_easing"
	KeyValueAxisEasing       = "value_axis_easing"
	KeyTrackMinimum          = "track_minimum"
	KeyBrushHeight           = "brush_height"
	KeyValueTicks            = "value_ticks"
)

// Options are the chart's tunables.
type Options struct {
	MinPointsInView       float64       `mapstructure:"min_points_in_view" yaml:"min_points_in_view"`
	LabelWidth            float64       `mapstructure:"label_width" yaml:"label_width"`
	InitialWindowFraction float64       `mapstructure:"initial_window_fraction" yaml:"initial_window_fraction"`
	WindowDuration        time.Duration `mapstructure:"window_duration" yaml:"window_duration"`
	ValueAxisDuration     time.Duration `mapstructure:"value_axis_duration" yaml:"value_axis_duration"`
	WindowEasing          string        `mapstructure:"window_easing" yaml:"window_easing"`
	ValueAxisEasing       string        `mapstructure:"value_axis_easing" yaml:"value_axis_easing"`
	TrackMinimum          bool          `mapstructure:"track_minimum" yaml:"track_minimum"`
	// BrushHeight is the height of the overview strip in Dp.
	BrushHeight float32 `mapstructure:"brush_height" yaml:"brush_height"`
	ValueTicks  int     `mapstructure:"value_ticks" yaml:"value_ticks"`
}

// Defaults returns the built-in configuration.
func Defaults() Options {
	return Options{
		MinPointsInView:       window.DefaultMinPointsInView,
		LabelWidth:            labels.DefaultLabelWidth,
		InitialWindowFraction: brush.DefaultInitialFraction,
		WindowDuration:        window.DefaultDuration,
		ValueAxisDuration:     valueaxis.DefaultDuration,
		WindowEasing:          EasingLinear,
		ValueAxisEasing:       EasingCubic,
		TrackMinimum:          false,
		BrushHeight:           50,
		ValueTicks:            valueaxis.DefaultTicks,
	}
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyMinPointsInView, d.MinPointsInView)
	v.SetDefault(KeyLabelWidth, d.LabelWidth)
	v.SetDefault(KeyInitialWindowFraction, d.InitialWindowFraction)
	v.SetDefault(KeyWindowDuration, d.WindowDuration)
	v.SetDefault(KeyValueAxisDuration, d.ValueAxisDuration)
	v.SetDefault(KeyWindowEasing, d.WindowEasing)
	v.SetDefault(KeyValueAxisEasing, d.ValueAxisEasing)
	v.SetDefault(KeyTrackMinimum, d.TrackMinimum)
	v.SetDefault(KeyBrushHeight, d.BrushHeight)
	v.SetDefault(KeyValueTicks, d.ValueTicks)
}

// ReadFile points v at cfgFile, or at $HOME/.brushchart.yaml when cfgFile
// is empty, and reads it. A missing default file is not an error. A nil
// logger logs to log.Default().
func ReadFile(v *viper.Viper, cfgFile string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	v.SetEnvPrefix("BRUSHCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("failed locating home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".brushchart")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("can't read config: %w", err)
	}
	logger.Debug("read config", "file", v.ConfigFileUsed())
	return nil
}

// Load decodes and validates the options held by v.
func Load(v *viper.Viper) (Options, error) {
	SetDefaults(v)
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed decoding config: %w", err)
	}
	opts.WindowEasing = strings.ToLower(opts.WindowEasing)
	opts.ValueAxisEasing = strings.ToLower(opts.ValueAxisEasing)
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func validEasing(e string) bool {
	return e == EasingLinear || e == EasingCubic
}

// Validate rejects options no chart can honor.
func (o Options) Validate() error {
	var errs []error
	if !(o.MinPointsInView > 0) {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", KeyMinPointsInView, o.MinPointsInView))
	}
	if !(o.LabelWidth > 0) {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", KeyLabelWidth, o.LabelWidth))
	}
	if !(o.InitialWindowFraction > 0 && o.InitialWindowFraction < 1) {
		errs = append(errs, fmt.Errorf("%s must be in (0, 1), got %v", KeyInitialWindowFraction, o.InitialWindowFraction))
	}
	if o.WindowDuration < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", KeyWindowDuration, o.WindowDuration))
	}
	if o.ValueAxisDuration < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", KeyValueAxisDuration, o.ValueAxisDuration))
	}
	if !validEasing(o.WindowEasing) {
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", KeyWindowEasing, EasingLinear, EasingCubic, o.WindowEasing))
	}
	if !validEasing(o.ValueAxisEasing) {
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", KeyValueAxisEasing, EasingLinear, EasingCubic, o.ValueAxisEasing))
	}
	if !(o.BrushHeight > 0) {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", KeyBrushHeight, o.BrushHeight))
	}
	if o.ValueTicks < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyValueTicks, o.ValueTicks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// WindowOptions configures the brush's window model.
func (o Options) WindowOptions() window.Options {
	return window.Options{
		MinPointsInView: o.MinPointsInView,
		Duration:        o.WindowDuration,
		Cubic:           o.WindowEasing == EasingCubic,
	}
}

// BrushOptions configures the brush controller.
func (o Options) BrushOptions(logger *log.Logger) brush.Options {
	return brush.Options{
		Window:          o.WindowOptions(),
		InitialFraction: o.InitialWindowFraction,
		Logger:          logger,
	}
}

// ValueAxisOptions configures the value axis trackers.
func (o Options) ValueAxisOptions() valueaxis.Options {
	return valueaxis.Options{
		Duration:     o.ValueAxisDuration,
		Linear:       o.ValueAxisEasing == EasingLinear,
		Ticks:        o.ValueTicks,
		TrackMinimum: o.TrackMinimum,
	}
}

// fileOptions is the YAML form of Options, with readable durations.
type fileOptions struct {
	MinPointsInView       float64 `yaml:"min_points_in_view"`
	LabelWidth            float64 `yaml:"label_width"`
	InitialWindowFraction float64 `yaml:"initial_window_fraction"`
	WindowDuration        string  `yaml:"window_duration"`
	ValueAxisDuration     string  `yaml:"value_axis_duration"`
	WindowEasing          string  `yaml:"window_easing"`
	ValueAxisEasing       string  `yaml:"value_axis_easing"`
	TrackMinimum          bool    `yaml:"track_minimum"`
	BrushHeight           float32 `yaml:"brush_height"`
	ValueTicks            int     `yaml:"value_ticks"`
}

// MarshalYAML implements yaml.Marshaler.
func (o Options) MarshalYAML() (any, error) {
	return fileOptions{
		MinPointsInView:       o.MinPointsInView,
		LabelWidth:            o.LabelWidth,
		InitialWindowFraction: o.InitialWindowFraction,
		WindowDuration:        o.WindowDuration.String(),
		ValueAxisDuration:     o.ValueAxisDuration.String(),
		WindowEasing:          o.WindowEasing,
		ValueAxisEasing:       o.ValueAxisEasing,
		TrackMinimum:          o.TrackMinimum,
		BrushHeight:           o.BrushHeight,
		ValueTicks:            o.ValueTicks,
	}, nil
}

// Write emits opts as a configuration file.
func Write(w io.Writer, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(opts); err != nil {
		return fmt.Errorf("failed encoding config: %w", err)
	}
	return enc.Close()
}
