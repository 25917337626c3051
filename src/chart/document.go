package chart

import (
	"sync"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Document is a headless widget that records what a renderer would draw. The
// server sends it to thin views as JSON.
type Document struct {
	mu       sync.Mutex
	Options  models.MChartOptions `json:"options"`
	Series   []*SeriesDocument    `json:"series"`
	Fitted   bool                 `json:"fitted"`
	timeAxis documentTimeScale
}

type SeriesDocument struct {
	Options models.MAreaSeriesOptions `json:"options"`
	Data    []models.MChartPoint      `json:"data"`
}

func (s *SeriesDocument) SetData(points []models.MChartPoint) {
	s.Data = points
}

type documentTimeScale struct {
	doc *Document
}

func (t documentTimeScale) FitContent() {
	t.doc.mu.Lock()
	t.doc.Fitted = true
	t.doc.mu.Unlock()
}

// -----------------------------------------------------------------------------

func NewDocument() *Document {
	d := &Document{Series: []*SeriesDocument{}}
	d.timeAxis = documentTimeScale{doc: d}
	return d
}

func (d *Document) ApplyOptions(opts models.MChartOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	width, height := d.Options.Width, d.Options.Height
	d.Options = opts
	if opts.Width == 0 && opts.Height == 0 {
		d.Options.Width, d.Options.Height = width, height
	}
}

func (d *Document) Resize(size models.MSize) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Options.Width = size.Width
	d.Options.Height = size.Height
}

func (d *Document) AddAreaSeries(opts models.MAreaSeriesOptions) interfaces.IChartSeries {
	s := &SeriesDocument{Options: opts, Data: []models.MChartPoint{}}
	d.mu.Lock()
	d.Series = append(d.Series, s)
	d.mu.Unlock()
	return s
}

func (d *Document) TimeScale() interfaces.IChartTimeScale {
	return d.timeAxis
}

// Build renders prices into a fresh document. A zero size keeps the default
// height and leaves the width to the view.
func Build(prices []float64, size models.MSize, now time.Time) *Document {
	if size.Height == 0 {
		size.Height = DefaultHeight
	}
	d := NewDocument()
	// Initialize only fails on a nil widget
	_, _ = Initialize(d, prices, now, WithSize(size.Width, size.Height))
	return d
}
