package backend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoSeries is returned for a trace whose header has only a time
	// column.
	ErrNoSeries = errors.New("trace has no data columns")
	// ErrNoSamples is returned for a trace without any data rows.
	ErrNoSamples = errors.New("trace has no samples")
)

// timeUnit guesses how integer timestamps are encoded from the heading of
// the time column. Milliseconds are assumed unless the heading names a unit.
func timeUnit(heading string) time.Duration {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "(ns)"):
		return time.Nanosecond
	case strings.Contains(h, "(us)"), strings.Contains(h, "(µs)"):
		return time.Microsecond
	case strings.Contains(h, "(s)"):
		return time.Second
	default:
		return time.Millisecond
	}
}

var timeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func parseTime(cell string, unit time.Duration) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		switch unit {
		case time.Nanosecond:
			return time.Unix(0, n), nil
		case time.Microsecond:
			return time.UnixMicro(n), nil
		case time.Second:
			return time.Unix(n, 0), nil
		default:
			return time.UnixMilli(n), nil
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", cell)
}

// ReadCSV parses a trace. The first column holds timestamps and every other
// column is a series. A heading may end with a #rrggbb color; series without
// one are colored from the palette. Empty cells repeat the previous sample.
func ReadCSV(source string, r io.Reader) (Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	headings, err := csvReader.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed reading CSV headings: %w", err)
	}
	if len(headings) < 2 {
		return Dataset{}, ErrNoSeries
	}
	ds := Dataset{Source: source}
	palette := Palette(len(headings) - 1)
	for i, heading := range headings[1:] {
		name, c, ok := splitHeading(heading)
		if !ok {
			c = palette[i]
		}
		ds.Series = append(ds.Series, NewSeries(name, c))
	}
	unit := timeUnit(headings[0])
	for line := 2; ; line++ {
		rec, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return Dataset{}, fmt.Errorf("failed reading CSV line %d: %w", line, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		ts, err := parseTime(rec[0], unit)
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		ds.X = append(ds.X, ts)
		for i, s := range ds.Series {
			value := math.NaN()
			if i+1 < len(rec) {
				if cell := strings.TrimSpace(rec[i+1]); cell != "" {
					value, err = strconv.ParseFloat(cell, 64)
					if err != nil {
						return Dataset{}, fmt.Errorf("line %d: failed parsing %q=%q: %w", line, s.Name(), cell, err)
					}
				}
			}
			s.Insert(value)
		}
	}
	if len(ds.X) == 0 {
		return Dataset{}, ErrNoSamples
	}
	return ds, nil
}

// WriteCSV emits ds in the format ReadCSV accepts, with millisecond
// timestamps.
func WriteCSV(w io.Writer, ds Dataset) error {
	csvWriter := csv.NewWriter(w)
	headings := make([]string, 0, len(ds.Series)+1)
	headings = append(headings, "time (ms)")
	for _, s := range ds.Series {
		c := s.Color()
		headings = append(headings, fmt.Sprintf("%s #%02x%02x%02x", s.Name(), c.R, c.G, c.B))
	}
	if err := csvWriter.Write(headings); err != nil {
		return err
	}
	record := make([]string, len(headings))
	for i, ts := range ds.X {
		record[0] = strconv.FormatInt(ts.UnixMilli(), 10)
		for j, s := range ds.Series {
			record[j+1] = strconv.FormatFloat(s.At(i), 'f', -1, 64)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
