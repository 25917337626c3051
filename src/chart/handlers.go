package chart

import (
	"sync"

	"github.com/shopspring/decimal"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// CrosshairHandler turns pointer moves into tooltip state
type CrosshairHandler struct {
	mu             sync.RWMutex
	tooltip        models.MTooltip
	containerWidth func() (float64, bool)
}

// NewCrosshairHandler reads the plot width through containerWidth on every
// move; ok=false leaves the tooltip untouched.
func NewCrosshairHandler(containerWidth func() (width float64, ok bool)) *CrosshairHandler {
	return &CrosshairHandler{containerWidth: containerWidth}
}

func (h *CrosshairHandler) Tooltip() models.MTooltip {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tooltip
}

// Handle hides the tooltip when the pointer is outside the plot or no series
// value sits under it. Otherwise it positions the tooltip beside the pointer,
// clamped to the container.
func (h *CrosshairHandler) Handle(ev models.MCrosshairEvent) models.MTooltip {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.Point == nil || ev.Time == nil || ev.SeriesValue == nil || h.containerWidth == nil {
		h.tooltip.Visible = false
		return h.tooltip
	}

	width, ok := h.containerWidth()
	if !ok {
		return h.tooltip
	}

	value := *ev.SeriesValue
	decimals := utils.GetDecimalPlaces(value)

	h.tooltip = models.MTooltip{
		Visible: true,
		X:       min(ev.Point.X+TooltipOffset, width-TooltipWidth),
		Y:       max(ev.Point.Y-TooltipOffset, TooltipMinTop),
		Price:   decimal.NewFromFloat(value).StringFixed(int32(decimals)),
		Time:    utils.FormatTime(*ev.Time, false),
	}
	return h.tooltip
}

// -----------------------------------------------------------------------------

// ResizeHandler forwards container size changes to the widget
type ResizeHandler struct {
	widget interfaces.IChartWidget
}

func NewResizeHandler(widget interfaces.IChartWidget) *ResizeHandler {
	return &ResizeHandler{widget: widget}
}

// Handle applies the first entry; an empty batch is ignored
func (h *ResizeHandler) Handle(entries []models.MSize) {
	if h.widget == nil || len(entries) == 0 {
		return
	}
	h.widget.Resize(entries[0])
}
