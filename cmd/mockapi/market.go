package main

import (
	"math/rand/v2"
	"net/http"
	"sort"
	"sync"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Base prices in AUD. Other secondaries are derived through fxFromAud.
var defaultBasePrices = map[string]float64{
	"Xbt":  95000,
	"Eth":  5200,
	"Xrp":  0.85,
	"Sol":  210,
	"Ada":  0.62,
	"Ltc":  120,
	"Doge": 0.21,
	"Link": 22,
	"Usdt": 1.55,
}

var fxFromAud = map[string]float64{
	"Aud": 1,
	"Usd": 0.65,
	"Nzd": 1.09,
	"Sgd": 0.87,
}

const (
	historyLength = 24
	maxStepPct    = 0.004
)

// -----------------------------------------------------------------------------

type mockPair struct {
	primary   string
	secondary string
	open      float64
	history   []float64
	volume    float64
}

// mockMarket advances every pair one random step per snapshot
type mockMarket struct {
	mu    sync.Mutex
	rng   *rand.Rand
	pairs []*mockPair
}

func newMockMarket(seed uint64, base map[string]float64) *mockMarket {
	m := &mockMarket{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}

	primaries := make([]string, 0, len(base))
	for p := range base {
		primaries = append(primaries, p)
	}
	sort.Strings(primaries)

	secondaries := make([]string, 0, len(fxFromAud))
	for s := range fxFromAud {
		secondaries = append(secondaries, s)
	}
	sort.Strings(secondaries)

	for _, p := range primaries {
		for _, s := range secondaries {
			price := base[p] * fxFromAud[s]
			m.pairs = append(m.pairs, &mockPair{
				primary:   p,
				secondary: s,
				open:      price,
				history:   []float64{price},
				volume:    price * (1000 + m.rng.Float64()*9000),
			})
		}
	}
	return m
}

// Snapshot steps every pair and renders the wire format
func (m *mockMarket) Snapshot() []models.MMarketDataItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.MMarketDataItem, 0, len(m.pairs))
	for _, p := range m.pairs {
		last := p.history[len(p.history)-1]
		next := last * (1 + (m.rng.Float64()*2-1)*maxStepPct)
		p.history = append(p.history, next)
		if len(p.history) > historyLength {
			p.history = p.history[len(p.history)-historyLength:]
		}
		p.volume *= 1 + (m.rng.Float64()*2-1)*0.01

		items = append(items, p.item())
	}
	return items
}

func (p *mockPair) item() models.MMarketDataItem {
	last := decimal.NewFromFloat(p.history[len(p.history)-1])
	open := decimal.NewFromFloat(p.open)
	change := last.Sub(open)

	direction := models.DirectionUp
	if change.IsNegative() {
		direction = models.DirectionDown
	}
	percent := change.Abs().Div(open).Mul(decimal.NewFromInt(100))

	history := make([]float64, len(p.history))
	copy(history, p.history)

	return models.MMarketDataItem{
		Pair: models.MCurrencyPair{Primary: p.primary, Secondary: p.secondary},
		Price: models.MPrice{
			Last: last.StringFixed(8),
			Change: models.MPriceChange{
				Direction: direction,
				Percent:   percent.StringFixed(2),
				Amount:    change.Abs().StringFixed(8),
			},
		},
		Volume: models.MVolume{
			Primary:   decimal.NewFromFloat(p.volume).Div(last).StringFixed(4),
			Secondary: decimal.NewFromFloat(p.volume).StringFixed(2),
		},
		PriceHistory: history,
	}
}

// -----------------------------------------------------------------------------

func newRouter(market *mockMarket, currencies []models.MCurrencyInfo) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.GET("/currency", func(c *gin.Context) {
		c.JSON(http.StatusOK, currencies)
	})
	api.GET("/market", func(c *gin.Context) {
		c.JSON(http.StatusOK, market.Snapshot())
	})
	return engine
}
