// Package charts draws the distribution (pie) and performance (horizontal
// bar) charts of a scored class.
package charts

import (
	"errors"
	"fmt"

	"github.com/stemsi/boletim/internal/model"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart titles.
const (
	DistributionTitle = "Distribuição de Aprovação"
	PerformanceTitle  = "Desempenho Individual"
)

// ErrNoRows is returned when there is nothing to plot.
var ErrNoRows = errors.New("no scored rows to plot")

var statusColors = map[model.Status]drawing.Color{
	model.StatusApproved: drawing.ColorFromHex("4CAF50"),
	model.StatusFailed:   drawing.ColorFromHex("F44336"),
}

// StatusColor returns the fill color of a status.
func StatusColor(s model.Status) drawing.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return drawing.ColorFromHex("9E9E9E")
}

// Renderer renders both charts. The zero value is not usable; use NewRenderer.
type Renderer struct {
	PieSize      int
	BarWidth     int
	BarMinHeight int
	BarRowHeight int
	CropPadding  int
}

// NewRenderer returns a Renderer with the default canvas sizes: a 600px
// square pie and a 1000px wide bar chart at least 600px tall.
func NewRenderer() *Renderer {
	return &Renderer{
		PieSize:      600,
		BarWidth:     1000,
		BarMinHeight: 600,
		BarRowHeight: 28,
		CropPadding:  8,
	}
}

// Render draws both charts. rows is only read.
func (r *Renderer) Render(rows []model.ScoredRow) (model.Charts, error) {
	if len(rows) == 0 {
		return model.Charts{}, ErrNoRows
	}

	pie, err := r.renderDistribution(rows)
	if err != nil {
		return model.Charts{}, fmt.Errorf("render distribution chart: %w", err)
	}
	bar, err := r.renderPerformance(rows)
	if err != nil {
		return model.Charts{}, fmt.Errorf("render performance chart: %w", err)
	}

	return model.Charts{Distribution: pie, Performance: bar}, nil
}

// finish crops the rendered PNG to its content and wraps it.
func (r *Renderer) finish(name string, raw []byte) (model.ChartImage, error) {
	data, w, h, err := cropToContent(raw, r.CropPadding)
	if err != nil {
		return model.ChartImage{}, err
	}
	return model.ChartImage{Name: name, Data: data, Width: w, Height: h}, nil
}
