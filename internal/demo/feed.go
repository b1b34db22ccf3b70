// Package demo generates the landing-page live activity feed: a stream of
// plausible wins, signups and cashouts shown to anonymous visitors. Nothing
// here touches real platform data and the whole package stays dark unless
// demo mode is enabled in configuration.
package demo

import (
	"context"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// EventType is the kind of activity shown in the feed.
type EventType string

const (
	EventWin     EventType = "win"
	EventSignup  EventType = "signup"
	EventCashout EventType = "cashout"
)

// Event is one feed entry.
type Event struct {
	Type       EventType       `json:"type"`
	Player     string          `json:"player"`
	Game       string          `json:"game,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// feedCapacity bounds the ring buffer of retained events.
const feedCapacity = 50

var games = []string{
	"Gates of Olympus", "Sweet Bonanza", "Book of Dead", "Crazy Time",
	"Aviator", "Mines", "Plinko", "Blackjack VIP", "Lightning Roulette",
}

// Feed produces and retains the rolling activity stream.
type Feed struct {
	mu      sync.RWMutex
	events  []Event
	faker   *gofakeit.Faker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFeed creates a feed generating one event per interval on average, with
// small bursts allowed so the stream does not look metronomic.
func NewFeed(interval time.Duration, logger *zap.Logger) *Feed {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Feed{
		events:  make([]Event, 0, feedCapacity),
		faker:   gofakeit.New(0),
		limiter: rate.NewLimiter(rate.Every(interval), 3),
		logger:  logger,
	}
}

// Run generates events until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	f.logger.Info("Demo activity feed started")
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.Info("Demo activity feed stopped")
			return
		}
		f.append(f.generate())
	}
}

// Recent returns up to limit events, newest first.
func (f *Feed) Recent(limit int) []Event {
	if limit <= 0 || limit > feedCapacity {
		limit = feedCapacity
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.events)
	if limit > n {
		limit = n
	}
	out := make([]Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = f.events[n-1-i]
	}
	return out
}

func (f *Feed) append(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	if len(f.events) > feedCapacity {
		f.events = f.events[len(f.events)-feedCapacity:]
	}
}

func (f *Feed) generate() Event {
	e := Event{
		Player:     maskedName(f.faker),
		OccurredAt: time.Now(),
	}

	switch f.faker.Number(0, 9) {
	case 0, 1:
		e.Type = EventSignup
	case 2:
		e.Type = EventCashout
		e.Amount = decimal.NewFromFloat(f.faker.Float64Range(50, 2500)).Round(2)
		e.Currency = "USD"
	default:
		e.Type = EventWin
		e.Game = games[f.faker.Number(0, len(games)-1)]
		e.Amount = decimal.NewFromFloat(f.faker.Float64Range(5, 5000)).Round(2)
		e.Currency = "USD"
	}
	return e
}

// maskedName renders a username the way the marketing site shows winners,
// first two characters plus three stars.
func maskedName(faker *gofakeit.Faker) string {
	name := faker.Username()
	if len(name) < 2 {
		return name + "***"
	}
	return name[:2] + "***"
}
