package charts

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/stemsi/boletim/internal/model"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Pie chart layout, in pixels.
const (
	pieMargin      = 20
	pieTitleHeight = 50
	// pieLabelRadius places slice labels at this share of the radius.
	pieLabelRadius = 2.0 / 3.0
)

type statusCount struct {
	status model.Status
	count  int
}

// countByStatus returns the present statuses, most frequent first; ties keep
// model.Statuses order.
func countByStatus(rows []model.ScoredRow) []statusCount {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, row := range rows {
		counts[row.Status]++
	}

	out := make([]statusCount, 0, len(counts))
	for _, s := range model.Statuses {
		if n := counts[s]; n > 0 {
			out = append(out, statusCount{status: s, count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func pieLabel(sc statusCount, total float64) string {
	return fmt.Sprintf("%s %.1f%%", sc.status, float64(sc.count)/total*100)
}

// renderDistribution draws one slice per status below the title band. A
// single status fills the whole disc in its own color.
func (r *Renderer) renderDistribution(rows []model.ScoredRow) (model.ChartImage, error) {
	total := float64(len(rows))
	counts := countByStatus(rows)

	font, err := chart.GetDefaultFont()
	if err != nil {
		return model.ChartImage{}, err
	}

	size := r.PieSize
	cv, err := chart.PNG(size, size)
	if err != nil {
		return model.ChartImage{}, err
	}
	cv.SetFont(font)

	fillRect(cv, drawing.ColorWhite, 0, 0, size, size)

	cv.SetFontColor(drawing.ColorBlack)
	cv.SetFontSize(18)
	title := cv.MeasureText(DistributionTitle)
	cv.Text(DistributionTitle, (size-title.Width())/2, pieMargin+title.Height())

	top := pieMargin + pieTitleHeight
	diameter := min(size-2*pieMargin, size-top-pieMargin)
	radius := float64(diameter) / 2
	cx, cy := size/2, top+diameter/2

	cv.SetFontSize(14)
	if len(counts) == 1 {
		sc := counts[0]
		drawDisc(cv, StatusColor(sc.status), cx, cy, radius)
		label := pieLabel(sc, total)
		tb := cv.MeasureText(label)
		cv.SetFontColor(drawing.ColorBlack)
		cv.Text(label, cx-tb.Width()/2, cy+tb.Height()/2)
	} else {
		start := 0.0
		for _, sc := range counts {
			sweep := float64(sc.count) / total * 2 * math.Pi
			drawSlice(cv, StatusColor(sc.status), cx, cy, radius, start, sweep)

			mid := start + sweep/2
			label := pieLabel(sc, total)
			tb := cv.MeasureText(label)
			lx := cx + int(radius*pieLabelRadius*math.Cos(mid)) - tb.Width()/2
			ly := cy + int(radius*pieLabelRadius*math.Sin(mid)) + tb.Height()/2
			cv.SetFontColor(drawing.ColorBlack)
			cv.Text(label, lx, ly)

			start += sweep
		}
	}

	var buf bytes.Buffer
	if err := cv.Save(&buf); err != nil {
		return model.ChartImage{}, err
	}
	return r.finish(model.DistributionChartFilename, buf.Bytes())
}

func drawDisc(cv chart.Renderer, c drawing.Color, cx, cy int, radius float64) {
	cv.SetFillColor(c)
	cv.SetStrokeColor(drawing.ColorWhite)
	cv.SetStrokeWidth(2)
	cv.MoveTo(cx+int(radius), cy)
	cv.ArcTo(cx, cy, radius, radius, 0, 2*math.Pi)
	cv.Close()
	cv.FillStroke()
}

// drawSlice fills the wedge from start sweeping clockwise, angles in radians
// from the positive x axis.
func drawSlice(cv chart.Renderer, c drawing.Color, cx, cy int, radius, start, sweep float64) {
	cv.SetFillColor(c)
	cv.SetStrokeColor(drawing.ColorWhite)
	cv.SetStrokeWidth(2)
	cv.MoveTo(cx, cy)
	cv.ArcTo(cx, cy, radius, radius, start, sweep)
	cv.LineTo(cx, cy)
	cv.Close()
	cv.FillStroke()
}
