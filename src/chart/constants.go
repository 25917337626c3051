package chart

// Colours
const (
	ColorPrimary        = "#2296f3"
	ColorPrimaryBottom  = "rgba(41, 98, 255, 0.28)"
	ColorGrid           = "rgba(43, 49, 57, 0.2)"
	ColorCrosshair      = "#758696"
	ColorCrosshairLabel = "#363c4e"
	ColorText           = "#848e9c"
	ColorMarkerBorder   = "#ffffff"
	ColorTransparent    = "transparent"
)

// Widget enum values
const (
	BackgroundTypeSolid    = "solid"
	CrosshairModeMagnet    = 1
	LineStyleSolid         = 0
	LineStyleLargeDashed   = 3
	LineTypeSimple         = 0
	PriceScaleModeNormal   = 0
	PriceLineSourceLastBar = 0
)

// Strokes and markers
const (
	FontFamily            = "SF Mono, Monaco, monospace"
	FontSize              = 11
	AreaLineWidth         = 2
	PriceLineWidth        = 1
	CrosshairLineWidth    = 1
	CrosshairMarkerRadius = 4
	CrosshairMarkerBorder = 2
)

// Dimensions
const (
	DefaultHeight = 400
	MobileHeight  = 300
	PaddingTop    = 0.05
	PaddingBottom = 0.05
	BarSpacing    = 6
	MinBarSpacing = 2
	RightOffset   = 10
)

// Tooltip placement relative to the pointer
const (
	TooltipOffset = 15
	TooltipWidth  = 150
	TooltipMinTop = 10
)

const (
	TimeVisible    = true
	SecondsVisible = false
)

// TimeStep is the spacing in seconds assigned between consecutive samples
const TimeStep int64 = 300
