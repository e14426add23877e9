// Package report renders the result of a backtest run as a two-chart PDF:
// price with the moving averages and trade markers on top, portfolio value below.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

const dateFormat = "2006-01-02"

const (
	DefaultWidth  = 11 * vg.Inch
	DefaultHeight = 8.5 * vg.Inch
)

var (
	priceColor     = color.RGBA{R: 255, A: 255}
	shortAvgColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	longAvgColor   = color.RGBA{G: 128, A: 255}
	portfolioColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	buyColor       = color.RGBA{R: 255, B: 255, A: 255}
	sellColor      = color.RGBA{A: 255}
)

// FileStem returns the report file name without extension: <prefix>_<symbol>_<start>_<end>.
func FileStem(prefix string, symbol string, start time.Time, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", prefix, symbol, start.Format(dateFormat), end.Format(dateFormat))
}

// FileName returns the PDF file name for a run.
func FileName(prefix string, symbol string, start time.Time, end time.Time) string {
	return FileStem(prefix, symbol, start, end) + ".pdf"
}

type Options struct {
	Prefix    string
	Symbol    string
	Start     time.Time
	End       time.Time
	OutputDir string
	Width     vg.Length
	Height    vg.Length
}

func OptionsFromConfig(cfg config.RunConfig) Options {
	return Options{
		Prefix:    cfg.OutputPrefix,
		Symbol:    cfg.Symbol,
		Start:     cfg.StartDate,
		End:       cfg.EndDate,
		OutputDir: cfg.OutputDirectory(),
		Width:     DefaultWidth,
		Height:    DefaultHeight,
	}
}

// Path returns where the PDF is written.
func (o Options) Path() string {
	return filepath.Join(o.OutputDir, FileName(o.Prefix, o.Symbol, o.Start, o.End))
}

type Renderer struct {
	log *logger.Logger
}

func NewRenderer(log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Renderer{log: log}
}

// Render draws both charts and writes the PDF. It returns the path of the file.
func (r *Renderer) Render(perf types.Performance, opts Options) (string, error) {
	if len(perf.Rows) == 0 {
		return "", errors.New(errors.ErrCodeReportNoData, "performance table is empty")
	}

	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	price, err := PriceChart(perf)
	if err != nil {
		return "", err
	}

	portfolio, err := PortfolioChart(perf)
	if err != nil {
		return "", err
	}

	canvas := vgpdf.New(opts.Width, opts.Height)
	dc := draw.New(canvas)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	plots := [][]*plot.Plot{{price}, {portfolio}}
	canvases := plot.Align(plots, tiles, dc)

	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	path := opts.Path()

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return "", errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create output directory %s", opts.OutputDir)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create %s", path)
	}

	if _, err := canvas.WriteTo(file); err != nil {
		file.Close()
		os.Remove(path)

		return "", errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to write %s", path)
	}

	if err := file.Close(); err != nil {
		os.Remove(path)

		return "", errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to close %s", path)
	}

	r.log.Info("Report written",
		zap.String("path", path),
		zap.Int("days", len(perf.Rows)),
		zap.Int("buys", len(perf.Buys())),
		zap.Int("sells", len(perf.Sells())),
	)

	return path, nil
}

// PriceChart plots the price, both moving averages and the trade markers.
// Markers sit on the short average of the day.
func PriceChart(perf types.Performance) (*plot.Plot, error) {
	p := newTimePlot(fmt.Sprintf("%s price", perf.Symbol), "Price in $")

	price := series(perf.Rows, func(row types.PerformanceRow) float64 { return row.Price })
	if err := addLine(p, "price", price, priceColor, vg.Points(2)); err != nil {
		return nil, err
	}

	short := series(perf.Rows, func(row types.PerformanceRow) float64 { return row.ShortAvg })
	if err := addLine(p, "short_mavg", short, shortAvgColor, vg.Points(1)); err != nil {
		return nil, err
	}

	long := series(perf.Rows, func(row types.PerformanceRow) float64 { return row.LongAvg })
	if err := addLine(p, "long_mavg", long, longAvgColor, vg.Points(1)); err != nil {
		return nil, err
	}

	if err := addMarkers(p, perf, func(row types.PerformanceRow) float64 { return row.ShortAvg }); err != nil {
		return nil, err
	}

	return p, nil
}

// PortfolioChart plots the portfolio value with the trade markers on the value line.
func PortfolioChart(perf types.Performance) (*plot.Plot, error) {
	p := newTimePlot("Portfolio value", "Portfolio value in $")

	value := series(perf.Rows, func(row types.PerformanceRow) float64 { return row.PortfolioValue })
	if err := addLine(p, "portfolio_value", value, portfolioColor, vg.Points(1.5)); err != nil {
		return nil, err
	}

	if err := addMarkers(p, perf, func(row types.PerformanceRow) float64 { return row.PortfolioValue }); err != nil {
		return nil, err
	}

	return p, nil
}

func newTimePlot(title string, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	return p
}

// series keeps the finite values only. Warm-up days have NaN averages.
func series(rows []types.PerformanceRow, value func(types.PerformanceRow) float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(rows))

	for _, row := range rows {
		y := value(row)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}

		xys = append(xys, plotter.XY{X: float64(row.Time.Unix()), Y: y})
	}

	return xys
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, width vg.Length) error {
	if len(xys) == 0 {
		return nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReportRenderFailed, err, "failed to plot %s", name)
	}

	line.Color = c
	line.Width = width

	p.Add(line)
	p.Legend.Add(name, line)

	return nil
}

func addMarkers(p *plot.Plot, perf types.Performance, y func(types.PerformanceRow) float64) error {
	buys := series(perf.Buys(), y)
	if err := addScatter(p, "buy", buys, draw.TriangleGlyph{}, buyColor); err != nil {
		return err
	}

	sells := series(perf.Sells(), y)

	return addScatter(p, "sell", sells, DownTriangleGlyph{}, sellColor)
}

func addScatter(p *plot.Plot, name string, xys plotter.XYs, shape draw.GlyphDrawer, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReportRenderFailed, err, "failed to plot %s markers", name)
	}

	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  c,
		Radius: vg.Points(5),
		Shape:  shape,
	}

	p.Add(scatter)
	p.Legend.Add(name, scatter)

	return nil
}
