package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("no data to chart")

// ChartOptions sizes and labels a bar chart.
type ChartOptions struct {
	Width  vg.Length
	Height vg.Length
	YLabel string
}

// DefaultChartOptions is a 10x5 inch chart labeled in Mbps.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 10 * vg.Inch, Height: 5 * vg.Inch, YLabel: "Mbps"}
}

// BarChart draws s as a PNG bar chart into w.
func BarChart(w io.Writer, s Series, opt ChartOptions) error {
	if s.Len() == 0 {
		return ErrEmptySeries
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		def := DefaultChartOptions()
		opt.Width, opt.Height = def.Width, def.Height
	}
	p := plot.New()
	p.Title.Text = s.Title
	p.Y.Label.Text = opt.YLabel

	values := make(plotter.Values, s.Len())
	copy(values, s.Values)
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())

	p.NominalX(s.Labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}

	wt, err := p.WriterTo(opt.Width, opt.Height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
