// Package report lays out the class performance PDF.
package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"time"

	"github.com/signintech/gopdf"
	"github.com/stemsi/boletim/internal/model"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fixed report text.
const (
	Title       = "Relatório de Desempenho dos Alunos"
	ChartsTitle = "Gráficos de Análise"
	// DateLayout formats the generation timestamp as DD/MM/YYYY HH:MM.
	DateLayout = "02/01/2006 15:04"
)

const (
	fontRegular = "regular"
	fontBold    = "bold"
)

// Layout in points from the top-left corner of an A4 page.
const (
	marginLeft   = 50.0
	marginTop    = 50.0
	marginBottom = 50.0

	headerDateY  = 70.0
	summaryY     = 100.0
	summaryStep  = 20.0
	tableY       = 180.0
	tableGap     = 20.0
	tableRowStep = 15.0
	colAverageX  = 250.0
	colStatusX   = 350.0

	imagesTop    = 100.0
	imageMaxW    = 500.0
	imageMaxH    = 350.0
	imageSpacing = 30.0
)

// Option configures a Composer.
type Option func(*Composer)

// WithClock overrides the time source of the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithRepeatedTableHeader repeats the table header on continuation pages.
func WithRepeatedTableHeader(on bool) Option {
	return func(c *Composer) { c.repeatHeader = on }
}

// placement is one text run or image as laid out on a page.
type placement struct {
	Page  int
	Font  string
	Size  float64
	X, Y  float64
	W, H  float64
	Text  string
	Image string
}

// withRecorder reports every placement, in drawing order.
func withRecorder(fn func(placement)) Option {
	return func(c *Composer) { c.record = fn }
}

// Composer builds the report. It keeps no per-report state.
type Composer struct {
	now          func() time.Time
	repeatHeader bool
	record       func(placement)
}

// NewComposer returns a Composer using the wall clock.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// page tracks the document being written.
type page struct {
	pdf    *gopdf.GoPdf
	pages  int
	record func(placement)
}

func (p *page) add() {
	p.pdf.AddPage()
	p.pages++
}

func (p *page) text(font string, size, x, y float64, s string) error {
	if err := p.pdf.SetFont(font, "", size); err != nil {
		return err
	}
	p.pdf.SetXY(x, y)
	if p.record != nil {
		p.record(placement{Page: p.pages, Font: font, Size: size, X: x, Y: y, Text: s})
	}
	return p.pdf.Text(s)
}

func (p *page) image(name string, data []byte, x, y, w, h float64) error {
	holder, err := gopdf.ImageHolderByBytes(data)
	if err != nil {
		return err
	}
	if p.record != nil {
		p.record(placement{Page: p.pages, X: x, Y: y, W: w, H: h, Image: name})
	}
	return p.pdf.ImageByHolder(holder, x, y, &gopdf.Rect{W: w, H: h})
}

// Compose writes header, summary, the student table and the charts page.
func (c *Composer) Compose(rows []model.ScoredRow, charts model.Charts) (*model.ReportDocument, error) {
	generated := c.now()

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        Title,
		Creator:      "boletim",
		CreationDate: generated,
	})

	p := &page{pdf: pdf, record: c.record}
	p.add()

	if err := c.writeHeader(p, model.Summarize(rows), generated); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := c.writeTable(p, rows); err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}
	if err := c.writeCharts(p, charts); err != nil {
		return nil, fmt.Errorf("write charts: %w", err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}

	return &model.ReportDocument{
		Data:        buf.Bytes(),
		Pages:       p.pages,
		GeneratedAt: generated,
	}, nil
}

func (c *Composer) writeHeader(p *page, s model.Summary, generated time.Time) error {
	lines := []struct {
		font string
		size float64
		y    float64
		text string
	}{
		{fontBold, 16, marginTop, Title},
		{fontRegular, 12, headerDateY, "Data de geração: " + generated.Format(DateLayout)},
		{fontRegular, 12, summaryY, fmt.Sprintf("Total de alunos: %d", s.Total)},
		{fontRegular, 12, summaryY + summaryStep, fmt.Sprintf("Aprovados: %d", s.Approved)},
		{fontRegular, 12, summaryY + 2*summaryStep, fmt.Sprintf("Reprovados: %d", s.Failed)},
	}
	for _, l := range lines {
		if err := p.text(l.font, l.size, marginLeft, l.y, l.text); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composer) writeTableHeader(p *page, y float64) error {
	cols := []struct {
		x    float64
		text string
	}{
		{marginLeft, model.ColumnName},
		{colAverageX, model.ColumnAverage},
		{colStatusX, model.ColumnStatus},
	}
	for _, col := range cols {
		if err := p.text(fontBold, 10, col.x, y, col.text); err != nil {
			return err
		}
	}
	return nil
}

// writeTable emits one line per row. A row that would cross the bottom
// margin starts a new page; the header is only repeated when configured.
func (c *Composer) writeTable(p *page, rows []model.ScoredRow) error {
	if err := c.writeTableHeader(p, tableY); err != nil {
		return err
	}

	limit := gopdf.PageSizeA4.H - marginBottom
	y := tableY + tableGap
	for _, row := range rows {
		if y > limit {
			p.add()
			y = marginTop
			if c.repeatHeader {
				if err := c.writeTableHeader(p, y); err != nil {
					return err
				}
				y += tableGap
			}
		}

		cells := []struct {
			x    float64
			text string
		}{
			{marginLeft, row.Name},
			{colAverageX, fmt.Sprintf("%.2f", row.Average)},
			{colStatusX, string(row.Status)},
		}
		for _, cell := range cells {
			if err := p.text(fontRegular, 10, cell.x, y, cell.text); err != nil {
				return err
			}
		}
		y += tableRowStep
	}
	return nil
}

// writeCharts starts a new page and stacks the charts, centered and scaled
// to fit imageMaxW x imageMaxH.
func (c *Composer) writeCharts(p *page, charts model.Charts) error {
	p.add()
	if err := p.text(fontBold, 16, marginLeft, marginTop, ChartsTitle); err != nil {
		return err
	}

	limit := gopdf.PageSizeA4.H - marginBottom
	y := imagesTop
	for _, img := range charts.Ordered() {
		if len(img.Data) == 0 {
			continue
		}

		iw, ih, err := imageSize(img)
		if err != nil {
			return fmt.Errorf("%s: %w", img.Name, err)
		}
		w, h := FitWithin(iw, ih, imageMaxW, imageMaxH)

		if y+h > limit && y > imagesTop {
			p.add()
			y = imagesTop
		}

		x := (gopdf.PageSizeA4.W - w) / 2
		if err := p.image(img.Name, img.Data, x, y, w, h); err != nil {
			return fmt.Errorf("%s: %w", img.Name, err)
		}
		y += h + imageSpacing
	}
	return nil
}

// FitWithin scales w x h by min(maxW/w, maxH/h), preserving aspect ratio.
func FitWithin(w, h int, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(maxW/float64(w), maxH/float64(h))
	return float64(w) * scale, float64(h) * scale
}

func imageSize(img model.ChartImage) (int, int, error) {
	if img.Width > 0 && img.Height > 0 {
		return img.Width, img.Height, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image size: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
