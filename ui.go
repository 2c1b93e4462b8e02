package main

import (
	"image"
	"image/color"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/charmbracelet/log"

	"git.sr.ht/~whereswaldon/brushchart/backend"
	"git.sr.ht/~whereswaldon/brushchart/config"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var errorColor = color.NRGBA{R: 150, A: 255}

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws     backend.WindowState
	expl   *explorer.Explorer
	opts   config.Options
	logger *log.Logger
	// invalidate requests a new frame.
	invalidate func()

	th       *material.Theme
	datasets *stream.Stream[backend.Dataset]
	ds       backend.Dataset
	chart    *Chart

	openBtn widget.Clickable
	loadErr string
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, opts config.Options, logger *log.Logger, invalidate func()) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return &UI{
		ws:         ws,
		expl:       expl,
		opts:       opts,
		logger:     logger,
		invalidate: invalidate,
		th:         th,
		datasets:   stream.New(ws.Controller, ws.Bundle.Datasource.Datasets),
	}
}

// Update consumes new datasets and button clicks.
func (ui *UI) Update(gtx C) {
	if ds, ok := ui.datasets.ReadNew(gtx); ok {
		ui.setDataset(ds)
	}
	if ui.openBtn.Clicked(gtx) {
		go func() {
			if err := ui.ws.Bundle.Datasource.LoadFromFile(ui.expl); err != nil {
				ui.logger.Error("failed opening trace", "error", err)
			}
		}()
	}
}

func (ui *UI) setDataset(ds backend.Dataset) {
	ui.loadErr = ""
	if ds.Err != nil {
		ui.loadErr = ds.Err.Error()
	}
	if !ds.Initialized() {
		return
	}
	sameSource := ui.chart != nil && ui.ds.Source == ds.Source
	ui.ds = ds
	if sameSource {
		err := ui.chart.Reload()
		if err == nil {
			return
		}
		ui.logger.Warn("rebuilding chart", "source", ds.Source, "error", err)
	}
	if ui.chart != nil {
		ui.chart.Close()
		ui.chart = nil
	}
	chart, err := NewChart(&ui.ds, ui.opts, ui.logger.WithPrefix("chart"), ui.invalidate)
	if err != nil {
		ui.logger.Error("cannot chart dataset", "source", ds.Source, "error", err)
		ui.loadErr = err.Error()
		return
	}
	ui.chart = chart
}

func (ui *UI) layoutError(gtx C) D {
	if len(ui.loadErr) == 0 {
		return D{}
	}
	l := material.Body1(ui.th, ui.loadErr)
	l.Color = errorColor
	return l.Layout(gtx)
}

func (ui *UI) layoutMainArea(gtx C) D {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(material.Button(ui.th, &ui.openBtn, "Open Trace").Layout),
				layout.Rigid(layout.Spacer{Width: 8}.Layout),
				layout.Flexed(1, material.Body2(ui.th, ui.ds.Source).Layout),
			)
		}),
		layout.Rigid(ui.layoutError),
		layout.Flexed(1, func(gtx C) D {
			return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
				return ui.chart.Layout(gtx, ui.th)
			})
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, "No data yet.").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.openBtn, "Open Trace").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return ui.layoutError(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.chart != nil {
		return ui.layoutMainArea(gtx)
	}
	return ui.layoutStartScreen(gtx)
}
