package chart

import (
	"sort"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// ConvertPrices lays prices out TimeStep seconds apart, the last one at now,
// in ascending time order.
func ConvertPrices(prices []float64, now time.Time) []models.MChartPoint {
	if len(prices) == 0 {
		return []models.MChartPoint{}
	}

	end := now.Unix()
	points := make([]models.MChartPoint, len(prices))
	for i, p := range prices {
		offset := int64(len(prices)-1-i) * TimeStep
		points[i] = models.MChartPoint{Time: end - offset, Value: p}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time < points[j].Time
	})
	return points
}

// -----------------------------------------------------------------------------

// Override adjusts the default chart options
type Override func(*models.MChartOptions)

// WithSize fixes the widget dimensions
func WithSize(width, height float64) Override {
	return func(o *models.MChartOptions) {
		o.Width = width
		o.Height = height
	}
}

func ChartOptions(overrides ...Override) models.MChartOptions {
	labelHidden, labelShown := false, true

	opts := models.MChartOptions{
		Layout: models.MLayoutOptions{
			BackgroundType:  BackgroundTypeSolid,
			BackgroundColor: ColorTransparent,
			TextColor:       ColorText,
			FontSize:        FontSize,
			FontFamily:      FontFamily,
		},
		Grid: models.MGridOptions{
			VertLines: models.MLineOptions{Color: ColorGrid, Style: LineStyleSolid, Visible: true},
			HorzLines: models.MLineOptions{Color: ColorGrid, Style: LineStyleSolid, Visible: true},
		},
		Crosshair: models.MCrosshairOptions{
			Mode: CrosshairModeMagnet,
			VertLine: models.MLineOptions{
				Color:        ColorCrosshair,
				Width:        CrosshairLineWidth,
				Style:        LineStyleLargeDashed,
				Visible:      true,
				LabelVisible: &labelHidden,
			},
			HorzLine: models.MLineOptions{
				Color:                ColorCrosshair,
				Width:                CrosshairLineWidth,
				Style:                LineStyleLargeDashed,
				Visible:              true,
				LabelVisible:         &labelShown,
				LabelBackgroundColor: ColorCrosshairLabel,
			},
		},
		RightPriceScale: models.MPriceScaleOptions{
			Visible:      true,
			BorderColor:  ColorGrid,
			TextColor:    ColorText,
			TicksVisible: true,
			ScaleMargins: models.MScaleMargins{Top: PaddingTop, Bottom: PaddingBottom},
			Mode:         PriceScaleModeNormal,
			AutoScale:    true,
			AlignLabels:  true,
		},
		TimeScale: models.MTimeScaleOptions{
			Visible:           true,
			TimeVisible:       TimeVisible,
			SecondsVisible:    SecondsVisible,
			TicksVisible:      true,
			RightOffset:       RightOffset,
			BarSpacing:        BarSpacing,
			MinBarSpacing:     MinBarSpacing,
			TickMarkFormatter: utils.FormatChartTime,
		},
		HandleScroll: models.MScrollOptions{
			MouseWheel:       true,
			PressedMouseMove: true,
			HorzTouchDrag:    true,
		},
		HandleScale: models.MScaleOptions{
			AxisPressedMouseMove: true,
			MouseWheel:           true,
			Pinch:                true,
		},
	}

	for _, fn := range overrides {
		fn(&opts)
	}
	return opts
}

func AreaSeriesOptions() models.MAreaSeriesOptions {
	return models.MAreaSeriesOptions{
		LineColor:                      ColorPrimary,
		TopColor:                       ColorPrimary,
		BottomColor:                    ColorPrimaryBottom,
		LineWidth:                      AreaLineWidth,
		LineStyle:                      LineStyleSolid,
		LineType:                       LineTypeSimple,
		PriceLineVisible:               true,
		PriceLineSource:                PriceLineSourceLastBar,
		PriceLineWidth:                 PriceLineWidth,
		PriceLineColor:                 ColorPrimary,
		PriceLineStyle:                 LineStyleLargeDashed,
		CrosshairMarkerVisible:         true,
		CrosshairMarkerRadius:          CrosshairMarkerRadius,
		CrosshairMarkerBorderColor:     ColorMarkerBorder,
		CrosshairMarkerBackgroundColor: ColorPrimary,
		CrosshairMarkerBorderWidth:     CrosshairMarkerBorder,
		LastValueVisible:               true,
	}
}

// -----------------------------------------------------------------------------

// Initialize configures widget, attaches an area series and loads prices into
// it. The time scale is fitted only when there is data.
func Initialize(widget interfaces.IChartWidget, prices []float64, now time.Time, overrides ...Override) (interfaces.IChartSeries, error) {
	if widget == nil {
		return nil, helpers.InvalidArgument("chart widget is required")
	}

	widget.ApplyOptions(ChartOptions(overrides...))
	series := widget.AddAreaSeries(AreaSeriesOptions())

	points := ConvertPrices(prices, now)
	if len(points) > 0 {
		series.SetData(points)
		widget.TimeScale().FitContent()
	}
	return series, nil
}
