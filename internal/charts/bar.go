package charts

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stemsi/boletim/internal/model"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar chart layout, in pixels.
const (
	barMargin      = 20
	barTitleHeight = 50
	barAxisHeight  = 40
	barLabelGap    = 8
	barFill        = 0.8 // share of a row slot covered by the bar

	// barLabelShare caps the name column as a share of the canvas width.
	barLabelShare = 0.35
)

const ellipsis = "..."

var (
	gridColor = drawing.Color{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xB3}
	axisColor = drawing.Color{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
)

// sortedByAverage returns a copy of rows ordered by ascending average; ties
// keep input order.
func sortedByAverage(rows []model.ScoredRow) []model.ScoredRow {
	sorted := make([]model.ScoredRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Average < sorted[j].Average })
	return sorted
}

func (r *Renderer) barHeight(n int) int {
	h := barTitleHeight + barAxisHeight + 2*barMargin + n*r.BarRowHeight
	if h < r.BarMinHeight {
		return r.BarMinHeight
	}
	return h
}

// renderPerformance draws one horizontal bar per student, lowest average at
// the bottom, on a value axis spanning at least 0..10.
func (r *Renderer) renderPerformance(rows []model.ScoredRow) (model.ChartImage, error) {
	sorted := sortedByAverage(rows)

	font, err := chart.GetDefaultFont()
	if err != nil {
		return model.ChartImage{}, err
	}

	width, height := r.BarWidth, r.barHeight(len(sorted))
	cv, err := chart.PNG(width, height)
	if err != nil {
		return model.ChartImage{}, err
	}
	cv.SetFont(font)

	fillRect(cv, drawing.ColorWhite, 0, 0, width, height)

	cv.SetFontColor(drawing.ColorBlack)
	cv.SetFontSize(18)
	title := cv.MeasureText(PerformanceTitle)
	cv.Text(PerformanceTitle, (width-title.Width())/2, barMargin+title.Height())

	cv.SetFontSize(11)
	maxLabel := int(float64(width) * barLabelShare)
	labels := make([]string, len(sorted))
	labelWidth := cv.MeasureText(model.ColumnName).Width()
	for i, row := range sorted {
		labels[i] = fitLabel(cv, row.Name, maxLabel)
		if w := cv.MeasureText(labels[i]).Width(); w > labelWidth {
			labelWidth = w
		}
	}

	plot := chart.Box{
		Top:    barMargin + barTitleHeight,
		Left:   barMargin + labelWidth + barLabelGap,
		Right:  width - barMargin - 10,
		Bottom: height - barMargin - barAxisHeight,
	}

	xMax := 10.0
	for _, row := range sorted {
		xMax = math.Max(xMax, math.Ceil(row.Average))
	}
	scaleX := func(v float64) int {
		return plot.Left + int(math.Round(v/xMax*float64(plot.Width())))
	}

	// Value-axis gridlines and tick labels.
	step := tickStep(xMax)
	for tick := 0.0; tick <= xMax+1e-9; tick += step {
		x := scaleX(tick)
		cv.SetStrokeColor(gridColor)
		cv.SetStrokeWidth(1)
		cv.SetStrokeDashArray([]float64{5, 4})
		cv.MoveTo(x, plot.Top)
		cv.LineTo(x, plot.Bottom)
		cv.Stroke()

		label := strconv.FormatFloat(tick, 'f', -1, 64)
		tb := cv.MeasureText(label)
		cv.Text(label, x-tb.Width()/2, plot.Bottom+barLabelGap+tb.Height())
	}
	cv.SetStrokeDashArray(nil)

	slot := float64(plot.Height()) / float64(len(sorted))
	half := int(math.Max(1, slot*barFill/2))
	for i, row := range sorted {
		center := plot.Bottom - int((float64(i)+0.5)*slot)
		fillRect(cv, StatusColor(row.Status), plot.Left, center-half, scaleX(row.Average), center+half)

		tb := cv.MeasureText(labels[i])
		cv.Text(labels[i], plot.Left-barLabelGap-tb.Width(), center+tb.Height()/2)
	}

	// Axis spines drawn last so bars do not cover them.
	cv.SetStrokeColor(axisColor)
	cv.SetStrokeWidth(1)
	cv.MoveTo(plot.Left, plot.Top)
	cv.LineTo(plot.Left, plot.Bottom)
	cv.LineTo(plot.Right, plot.Bottom)
	cv.Stroke()

	nameLabel := cv.MeasureText(model.ColumnName)
	cv.Text(model.ColumnName, plot.Left-barLabelGap-nameLabel.Width(), plot.Top-barLabelGap)
	avgLabel := cv.MeasureText(model.ColumnAverage)
	cv.Text(model.ColumnAverage, plot.Left+(plot.Width()-avgLabel.Width())/2, height-barMargin)

	var buf bytes.Buffer
	if err := cv.Save(&buf); err != nil {
		return model.ChartImage{}, err
	}
	return r.finish(model.PerformanceChartFilename, buf.Bytes())
}

func fillRect(cv chart.Renderer, c drawing.Color, x0, y0, x1, y1 int) {
	cv.SetFillColor(c)
	cv.SetStrokeColor(c)
	cv.SetStrokeWidth(0)
	cv.MoveTo(x0, y0)
	cv.LineTo(x1, y0)
	cv.LineTo(x1, y1)
	cv.LineTo(x0, y1)
	cv.Close()
	cv.FillStroke()
}

// tickStep keeps the value axis at roughly ten ticks.
func tickStep(xMax float64) float64 {
	step := 1.0
	for xMax/step > 10 {
		step *= 2
	}
	return step
}

// fitLabel shortens name with a trailing ellipsis until it measures at most
// maxWidth pixels.
func fitLabel(cv chart.Renderer, name string, maxWidth int) string {
	if cv.MeasureText(name).Width() <= maxWidth {
		return name
	}
	runes := []rune(strings.TrimSpace(name))
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		label := strings.TrimSpace(string(runes)) + ellipsis
		if cv.MeasureText(label).Width() <= maxWidth {
			return label
		}
	}
	return ellipsis
}
