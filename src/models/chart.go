package models

// MChartPoint is one time/value sample in chart widget format (unix seconds).
type MChartPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

type MPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MCrosshairEvent mirrors the widget's pointer-move payload. Nil fields mean
// the pointer left the plot area or no series value exists under it.
type MCrosshairEvent struct {
	Point       *MPoint  `json:"point,omitempty"`
	Time        *int64   `json:"time,omitempty"`
	SeriesValue *float64 `json:"seriesValue,omitempty"`
}

type MTooltip struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Price   string  `json:"price"`
	Time    string  `json:"time"`
}

type MSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// -----------------------------------------------------------------------------
// Widget options (lightweight-charts layout)
// -----------------------------------------------------------------------------

type MLineOptions struct {
	Color                string `json:"color"`
	Width                int    `json:"width,omitempty"`
	Style                int    `json:"style"`
	Visible              bool   `json:"visible"`
	LabelVisible         *bool  `json:"labelVisible,omitempty"`
	LabelBackgroundColor string `json:"labelBackgroundColor,omitempty"`
}

type MLayoutOptions struct {
	BackgroundType  string `json:"backgroundType"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	FontSize        int    `json:"fontSize"`
	FontFamily      string `json:"fontFamily"`
}

type MGridOptions struct {
	VertLines MLineOptions `json:"vertLines"`
	HorzLines MLineOptions `json:"horzLines"`
}

type MCrosshairOptions struct {
	Mode     int          `json:"mode"`
	VertLine MLineOptions `json:"vertLine"`
	HorzLine MLineOptions `json:"horzLine"`
}

type MScaleMargins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type MPriceScaleOptions struct {
	Visible        bool          `json:"visible"`
	BorderVisible  bool          `json:"borderVisible"`
	BorderColor    string        `json:"borderColor,omitempty"`
	TextColor      string        `json:"textColor,omitempty"`
	EntireTextOnly bool          `json:"entireTextOnly"`
	TicksVisible   bool          `json:"ticksVisible"`
	ScaleMargins   MScaleMargins `json:"scaleMargins"`
	Mode           int           `json:"mode"`
	AutoScale      bool          `json:"autoScale"`
	InvertScale    bool          `json:"invertScale"`
	AlignLabels    bool          `json:"alignLabels"`
}

type MTimeScaleOptions struct {
	Visible        bool    `json:"visible"`
	BorderVisible  bool    `json:"borderVisible"`
	TimeVisible    bool    `json:"timeVisible"`
	SecondsVisible bool    `json:"secondsVisible"`
	TicksVisible   bool    `json:"ticksVisible"`
	FixLeftEdge    bool    `json:"fixLeftEdge"`
	FixRightEdge   bool    `json:"fixRightEdge"`
	RightOffset    float64 `json:"rightOffset"`
	BarSpacing     float64 `json:"barSpacing"`
	MinBarSpacing  float64 `json:"minBarSpacing"`

	TickMarkFormatter func(unix int64) string `json:"-"`
}

type MScrollOptions struct {
	MouseWheel       bool `json:"mouseWheel"`
	PressedMouseMove bool `json:"pressedMouseMove"`
	HorzTouchDrag    bool `json:"horzTouchDrag"`
	VertTouchDrag    bool `json:"vertTouchDrag"`
}

type MScaleOptions struct {
	AxisPressedMouseMove bool `json:"axisPressedMouseMove"`
	MouseWheel           bool `json:"mouseWheel"`
	Pinch                bool `json:"pinch"`
}

// MChartOptions configures the chart widget. Width and Height of 0 let the
// widget size itself from its container.
type MChartOptions struct {
	Width           float64            `json:"width,omitempty"`
	Height          float64            `json:"height,omitempty"`
	Layout          MLayoutOptions     `json:"layout"`
	Grid            MGridOptions       `json:"grid"`
	Crosshair       MCrosshairOptions  `json:"crosshair"`
	RightPriceScale MPriceScaleOptions `json:"rightPriceScale"`
	LeftPriceScale  MPriceScaleOptions `json:"leftPriceScale"`
	TimeScale       MTimeScaleOptions  `json:"timeScale"`
	HandleScroll    MScrollOptions     `json:"handleScroll"`
	HandleScale     MScaleOptions      `json:"handleScale"`
}

type MAreaSeriesOptions struct {
	LineColor                      string `json:"lineColor"`
	TopColor                       string `json:"topColor"`
	BottomColor                    string `json:"bottomColor"`
	LineWidth                      int    `json:"lineWidth"`
	LineStyle                      int    `json:"lineStyle"`
	LineType                       int    `json:"lineType"`
	PriceLineVisible               bool   `json:"priceLineVisible"`
	PriceLineSource                int    `json:"priceLineSource"`
	PriceLineWidth                 int    `json:"priceLineWidth"`
	PriceLineColor                 string `json:"priceLineColor"`
	PriceLineStyle                 int    `json:"priceLineStyle"`
	CrosshairMarkerVisible         bool   `json:"crosshairMarkerVisible"`
	CrosshairMarkerRadius          int    `json:"crosshairMarkerRadius"`
	CrosshairMarkerBorderColor     string `json:"crosshairMarkerBorderColor"`
	CrosshairMarkerBackgroundColor string `json:"crosshairMarkerBackgroundColor"`
	CrosshairMarkerBorderWidth     int    `json:"crosshairMarkerBorderWidth"`
	LastValueVisible               bool   `json:"lastValueVisible"`
}
