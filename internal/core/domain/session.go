package domain

import "time"

type ScreenState int

const (
	StateIdle ScreenState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s ScreenState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type ShopEventKind string

const (
	EventSessionOpened    ShopEventKind = "session_opened"
	EventQueryIssued      ShopEventKind = "query_issued"
	EventProductsLoaded   ShopEventKind = "products_loaded"
	EventFetchFailed      ShopEventKind = "fetch_failed"
	EventCategorySelected ShopEventKind = "category_selected"
	EventSessionClosed    ShopEventKind = "session_closed"
)

// A ShopEvent is emitted by a shop session for observability.
type ShopEvent struct {
	Kind       ShopEventKind
	ShopID     string
	SearchTerm string
	Category   Category
	Seq        uint64
	Count      int
	Err        string
	At         time.Time
}

// A ShopStats accumulates shop events of one shop.
type ShopStats struct {
	ShopID             string
	Sessions           int64
	Queries            int64
	Loads              int64
	Failures           int64
	CategorySelections int64
}

// Apply counts evt. Events of other shops are ignored.
func (s ShopStats) Apply(evt ShopEvent) ShopStats {
	if s.ShopID == "" {
		s.ShopID = evt.ShopID
	}
	if s.ShopID != evt.ShopID {
		return s
	}
	switch evt.Kind {
	case EventSessionOpened:
		s.Sessions++
	case EventQueryIssued:
		s.Queries++
	case EventProductsLoaded:
		s.Loads++
	case EventFetchFailed:
		s.Failures++
	case EventCategorySelected:
		s.CategorySelections++
	}
	return s
}
