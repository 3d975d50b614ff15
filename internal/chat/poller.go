package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultLimit    = 50
)

// Ticker abstracts time.Ticker so tests can drive the polling clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

type options struct {
	interval  time.Duration
	limit     int
	log       zerolog.Logger
	newTicker func(time.Duration) Ticker
}

// Option configures a Poller.
type Option func(*options)

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithLimit sets how many messages each fetch asks for.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger sets the logger used for failed fetches.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTicker replaces the ticker factory.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(o *options) { o.newTicker = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		interval: DefaultInterval,
		limit:    DefaultLimit,
		log:      zerolog.Nop(),
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{time.NewTicker(d)}
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Poller fetches a class's messages immediately, then on every tick and
// every Refresh, until closed. One goroutine serialises all fetches.
type Poller struct {
	fetcher Fetcher
	classID string
	handler Handler
	opts    options
	log     zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	refresh chan struct{}
	pending atomic.Int64
	done    chan struct{}
	closed  atomic.Bool
	once    sync.Once
}

// NewPoller starts polling. An empty classID yields an idle Poller that never fetches.
func NewPoller(ctx context.Context, fetcher Fetcher, classID string, handler Handler, opts ...Option) *Poller {
	o := buildOptions(opts)
	pctx, cancel := context.WithCancel(ctx)

	p := &Poller{
		fetcher: fetcher,
		classID: classID,
		handler: handler,
		opts:    o,
		log:     o.log.With().Str("component", "chat_poller").Str("class_id", classID).Logger(),
		ctx:     pctx,
		cancel:  cancel,
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	if classID == "" {
		close(p.done)
		return p
	}

	go p.run()
	return p
}

func (p *Poller) run() {
	defer close(p.done)

	ticker := p.opts.newTicker(p.opts.interval)
	defer ticker.Stop()

	p.fetch()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			p.fetch()
		case <-p.refresh:
			// One fetch per Refresh call, including calls made during a fetch.
			for n := p.pending.Swap(0); n > 0 && p.ctx.Err() == nil; n-- {
				p.fetch()
			}
		}
	}
}

func (p *Poller) fetch() {
	msgs, err := p.fetcher.FetchMessages(p.ctx, p.classID, p.opts.limit)
	if p.closed.Load() || p.ctx.Err() != nil {
		return
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to fetch messages")
		return
	}
	p.handler(msgs)
}

// Refresh schedules one extra fetch per call.
func (p *Poller) Refresh() {
	if p.closed.Load() {
		return
	}
	p.pending.Add(1)
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Close stops polling and waits for an in-flight fetch to be discarded.
// The handler must not call Close.
func (p *Poller) Close() error {
	p.once.Do(func() {
		p.closed.Store(true)
		p.cancel()
	})
	<-p.done
	return nil
}
