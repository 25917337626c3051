package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// IChartWidget is the rendering surface of a time/value area chart.
// -----------------------------------------------------------------------------

type IChartWidget interface {

	// ApplyOptions replaces the widget options.
	ApplyOptions(opts models.MChartOptions)

	// -----------------------------------------------------------------------------

	// Resize sets the widget dimensions.
	Resize(size models.MSize)

	// -----------------------------------------------------------------------------

	// AddAreaSeries attaches a new area series.
	AddAreaSeries(opts models.MAreaSeriesOptions) IChartSeries

	// -----------------------------------------------------------------------------

	// TimeScale returns the horizontal axis.
	TimeScale() IChartTimeScale
}

type IChartSeries interface {
	SetData(points []models.MChartPoint)
}

type IChartTimeScale interface {
	FitContent()
}
