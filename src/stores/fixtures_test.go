package stores

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/storage"
	"market-dashboard/src/utils"
)

// fakeClient answers each URL with a canned JSON body or error
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeClient) respond(url string, v any) {
	data, _ := json.Marshal(v)
	f.mu.Lock()
	f.responses[url] = string(data)
	delete(f.errs, url)
	f.mu.Unlock()
}

func (f *fakeClient) fail(url string, err error) {
	f.mu.Lock()
	f.errs[url] = err
	f.mu.Unlock()
}

func (f *fakeClient) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeClient) Request(_ context.Context, url string, _ *models.MRequestOptions, out any) error {
	f.mu.Lock()
	f.calls[url]++
	err := f.errs[url]
	body, ok := f.responses[url]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		body = "null"
	}
	return json.Unmarshal([]byte(body), out)
}

// blockingClient holds every request until released or its context ends
type blockingClient struct {
	body    []byte
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingClient(v any) *blockingClient {
	data, _ := json.Marshal(v)
	return &blockingClient{
		body:    data,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingClient) unblock() {
	b.once.Do(func() { close(b.release) })
}

func (b *blockingClient) Request(ctx context.Context, _ string, _ *models.MRequestOptions, out any) error {
	select {
	case b.started <- struct{}{}:
	default:
	}

	select {
	case <-ctx.Done():
		return helpers.NewApiError(ctx.Err().Error(), helpers.CodeAborted, 0)
	case <-b.release:
		return json.Unmarshal(b.body, out)
	}
}

// -----------------------------------------------------------------------------

const (
	currencyURL = "http://upstream/currency"
	marketURL   = "http://upstream/market"
)

func silentLogger(name string) *logger.Logger {
	l := logger.NewLogger(nil, name)
	l.SetOutput(io.Discard)
	return l
}

func newSelected(t *testing.T) *storage.LocalStorage[string] {
	t.Helper()
	ls, err := storage.NewLocalStorage(context.Background(), storage.NewMemoryStore(), utils.SelectedCurrencyKey, utils.DefaultSelectedCurrency, silentLogger("LocalStorage"))
	require.NoError(t, err)
	return ls
}

type fixture struct {
	client     *fakeClient
	registry   *helpers.ErrorRegistry
	currencies *CurrencyStore
	market     *MarketStore
	crypto     *CryptoStore
	history    *utils.MemoryManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := newFakeClient()
	registry := helpers.NewErrorRegistry(nil, silentLogger("ErrorRegistry"))
	history := utils.NewMemoryManager(0, 100, silentLogger("MemoryManager"))

	currencies := NewCurrencyStore(client, currencyURL, newSelected(t), registry, silentLogger("CurrencyStore"))
	scheduler := utils.NewPollingScheduler(silentLogger("PollingScheduler"))
	market := NewMarketStore(client, marketURL, currencies, scheduler, silentLogger("MarketStore"),
		WithRegistry(registry),
		WithHistory(history),
	)
	t.Cleanup(market.Close)

	return &fixture{
		client:     client,
		registry:   registry,
		currencies: currencies,
		market:     market,
		crypto:     NewCryptoStore(currencies, market, registry),
		history:    history,
	}
}

func pair(primary, secondary string, dir models.MDirection, last, percent, volume string) models.MMarketDataItem {
	return models.MMarketDataItem{
		Pair: models.MCurrencyPair{Primary: primary, Secondary: secondary},
		Price: models.MPrice{
			Last:   last,
			Change: models.MPriceChange{Direction: dir, Percent: percent},
		},
		Volume: models.MVolume{Primary: "1", Secondary: volume},
	}
}

func primaries(items []models.MMarketDataItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Pair.Primary)
	}
	return out
}

func codes(list []models.MCurrencyInfo) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Code)
	}
	return out
}
