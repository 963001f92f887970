package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/peter-kozarec/biasvar/pkg/simulation"
	"github.com/peter-kozarec/biasvar/pkg/utility/fixed"
)

var (
	ErrEmptyReport = errors.New("report has no orders")

	colorBias     = color.RGBA{R: 220, A: 255}
	colorVariance = color.RGBA{G: 160, A: 255}
	colorMSE      = color.RGBA{B: 220, A: 255}
	colorGuide    = color.RGBA{R: 210, G: 190, A: 255}
)

type Option func(*settings)

type settings struct {
	title  string
	width  vg.Length
	height vg.Length
	digits int
}

func WithTitle(title string) Option {
	return func(s *settings) {
		s.title = title
	}
}

func WithSize(width, height vg.Length) Option {
	return func(s *settings) {
		s.width = width
		s.height = height
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		title:  "Bias-variance tradeoff",
		width:  8 * vg.Inch,
		height: 5 * vg.Inch,
		digits: 4,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDigits sets the precision of the (k*, MSE) annotation.
func WithDigits(digits int) Option {
	return func(s *settings) {
		s.digits = digits
	}
}

// layers holds the plotters of one chart.
type layers struct {
	series []*plotter.Line
	names  []string
	guides []*plotter.Line
	marker *plotter.Scatter
	label  *plotter.Labels
}

func newLayers(report *simulation.Report, digits int) (*layers, error) {
	orders := report.Orders()
	series := []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"bias", report.Bias(), colorBias},
		{"var", report.Variance(), colorVariance},
		{"mse", report.MSE(), colorMSE},
	}

	l := &layers{}
	for _, sr := range series {
		line, err := plotter.NewLine(points(orders, sr.values))
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", sr.name, err)
		}
		line.Color = sr.color
		line.Width = vg.Points(1.5)
		l.series = append(l.series, line)
		l.names = append(l.names, sr.name)
	}

	best := plotter.XY{X: float64(report.Best.Order), Y: report.Best.MSE}

	horizontal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: best.Y}, best})
	if err != nil {
		return nil, fmt.Errorf("horizontal guide: %w", err)
	}
	vertical, err := plotter.NewLine(plotter.XYs{{X: best.X, Y: 0}, best})
	if err != nil {
		return nil, fmt.Errorf("vertical guide: %w", err)
	}
	for _, guide := range []*plotter.Line{horizontal, vertical} {
		guide.Color = colorGuide
		guide.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		l.guides = append(l.guides, guide)
	}

	l.marker, err = plotter.NewScatter(plotter.XYs{best})
	if err != nil {
		return nil, fmt.Errorf("minimum marker: %w", err)
	}
	l.marker.GlyphStyle.Shape = draw.CircleGlyph{}
	l.marker.GlyphStyle.Color = colorMSE
	l.marker.GlyphStyle.Radius = vg.Points(3)

	l.label, err = plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{best},
		Labels: []string{Annotation(report, digits)},
	})
	if err != nil {
		return nil, fmt.Errorf("minimum label: %w", err)
	}
	l.label.Offset = vg.Point{X: vg.Points(6), Y: vg.Points(6)}

	return l, nil
}

// Build assembles the bias², variance and MSE curves against k, marks the
// MSE minimum and draws dashed guides from it to both axes.
func Build(report *simulation.Report, opts ...Option) (*plot.Plot, error) {
	if len(report.Results) == 0 {
		return nil, ErrEmptyReport
	}

	s := newSettings(opts)

	l, err := newLayers(report, s.digits)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = s.title
	p.X.Label.Text = "k"
	p.Y.Label.Text = "value"
	p.X.Min = 0
	p.Y.Min = 0
	p.Legend.Top = true

	for i, line := range l.series {
		p.Add(line)
		p.Legend.Add(l.names[i], line)
	}
	for _, guide := range l.guides {
		p.Add(guide)
	}
	p.Add(l.marker, l.label)

	return p, nil
}

// Render writes the chart to path; the format follows the file extension.
func Render(report *simulation.Report, path string, opts ...Option) error {
	s := newSettings(opts)

	p, err := Build(report, opts...)
	if err != nil {
		return err
	}
	if err := p.Save(s.width, s.height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// Annotation formats the minimum as "(k*, MSE)".
func Annotation(report *simulation.Report, digits int) string {
	return fmt.Sprintf("(%d, %s)", report.Best.Order, fixed.Format(report.Best.MSE, digits))
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}
