package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

var _ port.ShopSession = (*ShopScreen)(nil)

type noopObserver struct{}

func (noopObserver) Observe(domain.ShopEvent) {}

type ShopScreenOpt func(*ShopScreen)

// WithShopObserver sets the hook that receives session events.
func WithShopObserver(o port.ShopObserver) ShopScreenOpt {
	return func(s *ShopScreen) {
		if o != nil {
			s.observer = o
		}
	}
}

// A ShopScreen is the controller of one shop screen session.
//
// Input methods may be called from any goroutine, they enqueue actions
// for the session goroutine started by [ShopScreen.Run]. Session state and
// display calls are confined to that goroutine. Every fetch is tagged with
// the next sequence number and its result is applied only while it is the
// latest issued one.
type ShopScreen struct {
	querier  port.ProductQuerier
	display  port.ProductsDisplay
	observer port.ShopObserver
	filter   *CategoryFilter

	mbox      *mailbox
	done      chan struct{}
	closeOnce sync.Once
	fetches   sync.WaitGroup

	// session goroutine only
	query    domain.Query
	seq      uint64
	state    domain.ScreenState
	products []domain.Product
	loaded   bool
}

func NewShopScreen(
	shopID string,
	querier port.ProductQuerier,
	display port.ProductsDisplay,
	opts ...ShopScreenOpt,
) (*ShopScreen, error) {
	const op = "NewShopScreen"

	q, err := domain.NewQuery(shopID, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if querier == nil || display == nil {
		panic(fmt.Errorf("%s: nil collaborator", op)) // develop mistake
	}

	s := &ShopScreen{
		querier:  querier,
		display:  display,
		observer: noopObserver{},
		filter:   NewCategoryFilter(),
		mbox:     newMailbox(),
		done:     make(chan struct{}),
		query:    q,
		state:    domain.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run processes session actions until ctx is done or the session is closed.
//
// Run must be called once.
func (s *ShopScreen) Run(ctx context.Context) {
	const op = "ShopScreen.Run"
	log := slog.With("op", op, "shop", s.query.ShopID)

	ctx, cancel := context.WithCancel(ctx)
	defer s.teardown(cancel)

	log.Debug("session opened")
	s.observe(domain.ShopEvent{Kind: domain.EventSessionOpened})

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.mbox.signal:
			s.drain(ctx)
		}
	}
}

func (s *ShopScreen) drain(ctx context.Context) {
	for {
		act, ok := s.mbox.pop()
		if !ok {
			return
		}
		act(ctx)
	}
}

func (s *ShopScreen) teardown(cancel context.CancelFunc) {
	const op = "ShopScreen.teardown"
	log := slog.With("op", op, "shop", s.query.ShopID)

	s.Close()
	cancel()
	s.fetches.Wait()

	s.observe(domain.ShopEvent{Kind: domain.EventSessionClosed})
	log.Debug("session closed", "lastSeq", s.seq)
}

// Close dismisses the session. Outstanding fetches complete as no-ops.
func (s *ShopScreen) Close() {
	s.closeOnce.Do(func() {
		s.mbox.close()
		close(s.done)
	})
}

// Done is closed when the session is dismissed.
func (s *ShopScreen) Done() <-chan struct{} {
	return s.done
}

// OnScreenLoad shows the category list with [domain.DefaultCategory]
// selected and requests unfiltered products.
func (s *ShopScreen) OnScreenLoad() {
	s.mbox.push(func(ctx context.Context) {
		s.filter.Reset()
		s.display.ShowCategories(s.filter.Categories(), s.filter.Selected())
		s.fetch(ctx, s.query.WithSearchTerm(""))
	})
}

// OnCategorySelected changes the visible category without a refetch.
func (s *ShopScreen) OnCategorySelected(name string) error {
	const op = "ShopScreen.OnCategorySelected"

	if _, err := domain.ParseCategory(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mbox.push(func(context.Context) {
		s.selectCategory(name)
	})
	return nil
}

// OnSearchTextChanged requests products matching the trimmed text.
func (s *ShopScreen) OnSearchTextChanged(text string) {
	s.mbox.push(func(ctx context.Context) {
		s.fetch(ctx, s.query.WithSearchTerm(text))
	})
}

// Retry reissues the current query.
func (s *ShopScreen) Retry() {
	s.mbox.push(func(ctx context.Context) {
		s.fetch(ctx, s.query)
	})
}

func (s *ShopScreen) selectCategory(name string) {
	const op = "ShopScreen.selectCategory"
	log := slog.With("op", op, "shop", s.query.ShopID)

	c, err := s.filter.Select(name)
	if err != nil {
		log.Warn("category rejected", "err", err)
		return
	}

	s.display.ShowSelectedCategory(c)
	if s.loaded {
		s.display.ShowProducts(s.filter.Apply(s.products))
	}
	s.observe(domain.ShopEvent{Kind: domain.EventCategorySelected, Category: c})
}

func (s *ShopScreen) fetch(ctx context.Context, q domain.Query) {
	s.seq++
	seq := s.seq
	s.query = q

	s.setState(domain.StateLoading, nil)
	s.observe(domain.ShopEvent{Kind: domain.EventQueryIssued, Seq: seq})

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ps, err := s.querier.FetchProducts(ctx, q)
		s.mbox.push(func(context.Context) {
			s.complete(seq, ps, err)
		})
	}()
}

func (s *ShopScreen) complete(seq uint64, ps []domain.Product, err error) {
	const op = "ShopScreen.complete"
	log := slog.With(
		"op", op, "shop", s.query.ShopID, "seq", seq,
	)

	if seq != s.seq {
		log.Debug("stale response discarded", "latestSeq", s.seq)
		return
	}

	if err != nil {
		log.Error("failed to fetch products", "err", err)
		s.setState(domain.StateFailed, err)
		s.observe(domain.ShopEvent{
			Kind: domain.EventFetchFailed, Seq: seq, Err: err.Error(),
		})
		return
	}

	s.products = ps
	s.loaded = true
	s.setState(domain.StateLoaded, nil)
	s.display.ShowProducts(s.filter.Apply(ps))

	log.Info("products loaded", "nProducts", len(ps))
	s.observe(domain.ShopEvent{
		Kind: domain.EventProductsLoaded, Seq: seq, Count: len(ps),
	})
}

func (s *ShopScreen) setState(state domain.ScreenState, err error) {
	slog.Debug(
		"state changed",
		"op", "ShopScreen.setState", "from", s.state, "to", state,
	)
	s.state = state
	s.display.ShowState(state, err)
}

func (s *ShopScreen) observe(evt domain.ShopEvent) {
	evt.ShopID = s.query.ShopID
	evt.SearchTerm = s.query.SearchTerm
	if evt.Category == "" {
		evt.Category = s.filter.Selected()
	}
	evt.At = time.Now()
	s.observer.Observe(evt)
}
