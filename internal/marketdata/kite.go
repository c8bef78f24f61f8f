package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/types"

	"github.com/sony/gobreaker"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// kiteAPI is the subset of *kiteconnect.Client the adapter calls.
type kiteAPI interface {
	GetLTP(instruments ...string) (kiteconnect.QuoteLTP, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

type KiteParams struct {
	APIKey            string
	AccessToken       string
	Exchange          string
	Interval          string
	RequestsPerSecond float64
	MaxConcurrency    int
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
}

// Kite fetches last prices and daily closes from Zerodha Kite Connect. Calls
// are paced by a shared limiter and guarded by one circuit breaker; history
// is cached on disk when a cache is set.
type Kite struct {
	p       KiteParams
	api     kiteAPI
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *Cache
	now     func() time.Time
}

var _ interfaces.MarketData = (*Kite)(nil)

func NewKite(p KiteParams, cache *Cache) (*Kite, error) {
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, errors.New("missing Kite API key/access token")
	}
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newKite(p, kc, cache), nil
}

func newKite(p KiteParams, api kiteAPI, cache *Cache) *Kite {
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}
	if p.Interval == "" {
		p.Interval = "day"
	}
	if p.MaxConcurrency <= 0 {
		p.MaxConcurrency = 1
	}
	if p.BreakerFailures == 0 {
		p.BreakerFailures = 5
	}

	limit := rate.Inf
	if p.RequestsPerSecond > 0 {
		limit = rate.Limit(p.RequestsPerSecond)
	}

	st := gobreaker.Settings{
		Name:    "kite",
		Timeout: p.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= p.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Kite{
		p:       p,
		api:     api,
		limiter: rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker(st),
		cache:   cache,
		now:     time.Now,
	}
}

// Quotes does one batched LTP call, then fetches history per resolved symbol
// with bounded concurrency. A failed history fetch leaves Closes empty rather
// than dropping the quote.
func (k *Kite) Quotes(ctx context.Context, symbols []string, lookbackDays int) (map[string]types.Quote, error) {
	if len(symbols) == 0 {
		return map[string]types.Quote{}, nil
	}

	instruments := make([]string, 0, len(symbols))
	for _, s := range symbols {
		instruments = append(instruments, k.instrument(s))
	}

	ltp, err := k.ltp(ctx, instruments)
	if err != nil {
		return nil, fmt.Errorf("kite LTP: %w", err)
	}

	var (
		mu  sync.Mutex
		out = make(map[string]types.Quote, len(symbols))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k.p.MaxConcurrency)

	for _, sym := range symbols {
		q, ok := ltp[k.instrument(sym)]
		if !ok || q.LastPrice <= 0 {
			continue
		}
		sym, token, last := sym, q.InstrumentToken, q.LastPrice
		g.Go(func() error {
			closes, err := k.history(gctx, sym, token, lookbackDays)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn(gctx, "History unavailable, volatility will default", "symbol", sym, "error", err)
			}
			mu.Lock()
			out[sym] = types.Quote{Symbol: sym, Last: last, Closes: closes}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (k *Kite) instrument(symbol string) string {
	return k.p.Exchange + ":" + symbol
}

func (k *Kite) ltp(ctx context.Context, instruments []string) (kiteconnect.QuoteLTP, error) {
	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := k.breaker.Execute(func() (interface{}, error) {
		return k.api.GetLTP(instruments...)
	})
	if err != nil {
		return nil, err
	}
	return res.(kiteconnect.QuoteLTP), nil
}

func (k *Kite) history(ctx context.Context, symbol string, token, lookbackDays int) ([]float64, error) {
	to := k.now().UTC()
	key := cacheKey("history", k.p.Exchange, symbol, k.p.Interval, strconv.Itoa(lookbackDays), to.Format("2006-01-02"))

	var closes []float64
	if k.cache != nil && k.cache.Get(key, &closes) {
		return closes, nil
	}

	if err := k.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	from := to.AddDate(0, 0, -lookbackDays)
	res, err := k.breaker.Execute(func() (interface{}, error) {
		return k.api.GetHistoricalData(token, k.p.Interval, from, to, false, false)
	})
	if err != nil {
		return nil, err
	}

	candles := res.([]kiteconnect.HistoricalData)
	closes = make([]float64, 0, len(candles))
	for _, c := range candles {
		closes = append(closes, c.Close)
	}

	if k.cache != nil {
		if err := k.cache.Set(key, closes); err != nil {
			logger.Warn(ctx, "Failed to cache history", "symbol", symbol, "error", err)
		}
	}
	return closes, nil
}
