package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chandu-machineni/iconify/internal/icon"
)

// ErrSuperseded is returned to callers whose Feed query was replaced by a newer one
// while it was in flight. Their results are dropped.
var ErrSuperseded = errors.New("query superseded by a newer search")

// ErrNoActiveSearch is returned by Feed.More before any query was started.
var ErrNoActiveSearch = errors.New("no active search")

// Page is one display page of a Session.
type Page struct {
	Query   string      `json:"query"`
	Number  int         `json:"page"`
	Icons   []icon.Icon `json:"icons"`
	HasMore bool        `json:"has_more"`

	// Fetched is the number of distinct icons buffered so far for the query.
	Fetched int `json:"fetched"`
}

// Session pages through one query. Icons from successive provider rounds are
// merged into a single deduplicated buffer; display pages are slices of it.
//
// More pages are reported while buffered icons remain unshown or the most
// recent provider round returned anything. The latter may be true past the
// real end of the data, costing one extra empty round.
type Session struct {
	engine   *Engine
	query    string
	filters  Filters
	pageSize int

	mu         sync.Mutex
	fetched    []icon.Icon
	seen       map[string]struct{}
	shown      int
	pages      int
	round      int
	lastRoundN int
}

// NewSession starts paging query. pageSize <= 0 uses DefaultDisplayPageSize.
func (e *Engine) NewSession(query string, f Filters, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultDisplayPageSize
	}
	return &Session{
		engine:   e,
		query:    strings.TrimSpace(query),
		filters:  f,
		pageSize: pageSize,
		seen:     make(map[string]struct{}),
	}
}

// Query returns the trimmed query text.
func (s *Session) Query() string {
	return s.query
}

// First fetches provider round 1 and returns the first display page.
// Calling it again resets the session.
func (s *Session) First(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetched = nil
	s.seen = make(map[string]struct{})
	s.shown, s.pages, s.round, s.lastRoundN = 0, 0, 0, 0

	if err := s.fetchRound(ctx); err != nil {
		return Page{Query: s.query, Icons: []icon.Icon{}}, err
	}
	return s.nextPage(), nil
}

// Next returns the following display page. Buffered icons are used when they
// fill a whole page; otherwise one more provider round is fetched first.
// A blank query has a single round, the popular sample.
func (s *Session) Next(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == 0 {
		if err := s.fetchRound(ctx); err != nil {
			return Page{Query: s.query, Icons: []icon.Icon{}}, err
		}
		return s.nextPage(), nil
	}

	if len(s.fetched) < s.shown+s.pageSize && s.query != "" && s.lastRoundN > 0 {
		if err := s.fetchRound(ctx); err != nil {
			return Page{Query: s.query, Number: s.pages, Icons: []icon.Icon{}, HasMore: s.hasMore()}, err
		}
	}
	return s.nextPage(), nil
}

// HasMore reports whether Next may return further icons.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore()
}

func (s *Session) hasMore() bool {
	if s.shown < len(s.fetched) {
		return true
	}
	return s.query != "" && s.lastRoundN > 0
}

// fetchRound asks the engine for provider page round+1 and merges it.
// Must be called with mu held.
func (s *Session) fetchRound(ctx context.Context) error {
	next := s.round + 1
	icons, err := s.engine.Search(ctx, s.query, s.filters, next)
	if err != nil {
		return err
	}
	s.round = next
	s.lastRoundN = len(icons)
	s.fetched = append(s.fetched, dedupe(icons, s.seen)...)
	return nil
}

// nextPage slices the next display page from the buffer. Must be called with mu held.
func (s *Session) nextPage() Page {
	end := min(s.shown+s.pageSize, len(s.fetched))
	icons := make([]icon.Icon, end-s.shown)
	copy(icons, s.fetched[s.shown:end])
	s.shown = end
	s.pages++

	return Page{
		Query:   s.query,
		Number:  s.pages,
		Icons:   icons,
		HasMore: s.hasMore(),
		Fetched: len(s.fetched),
	}
}

// Feed tracks the current Session of a single consumer. Starting a new query
// cancels whatever the previous one was still fetching, and a result that
// arrives after it was superseded is discarded rather than returned.
type Feed struct {
	engine   *Engine
	pageSize int

	mu      sync.Mutex
	gen     uint64
	session *Session
	stop    context.CancelFunc
	genCtx  context.Context
}

// NewFeed creates a Feed over e.
func NewFeed(e *Engine, pageSize int) *Feed {
	return &Feed{engine: e, pageSize: pageSize}
}

// Start replaces the current query and returns its first page.
func (f *Feed) Start(ctx context.Context, query string, filters Filters) (Page, error) {
	f.mu.Lock()
	if f.stop != nil {
		f.stop()
	}
	f.gen++
	gen := f.gen
	f.genCtx, f.stop = context.WithCancel(context.Background())
	s := f.engine.NewSession(query, filters, f.pageSize)
	f.session = s
	opCtx, done := f.bind(ctx)
	f.mu.Unlock()
	defer done()

	page, err := s.First(opCtx)
	return f.deliver(gen, page, err)
}

// More returns the next page of the current query.
func (f *Feed) More(ctx context.Context) (Page, error) {
	f.mu.Lock()
	s, gen := f.session, f.gen
	if s == nil {
		f.mu.Unlock()
		return Page{Icons: []icon.Icon{}}, ErrNoActiveSearch
	}
	opCtx, done := f.bind(ctx)
	f.mu.Unlock()
	defer done()

	page, err := s.Next(opCtx)
	return f.deliver(gen, page, err)
}

// Current returns the active session, or nil.
func (f *Feed) Current() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// bind derives an operation context cancelled by either ctx or the current
// generation being superseded. Must be called with mu held.
func (f *Feed) bind(ctx context.Context) (context.Context, func()) {
	opCtx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(f.genCtx, cancel)
	return opCtx, func() {
		unhook()
		cancel()
	}
}

func (f *Feed) deliver(gen uint64, page Page, err error) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return Page{Query: page.Query, Icons: []icon.Icon{}}, ErrSuperseded
	}
	return page, err
}
