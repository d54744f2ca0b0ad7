package port

import (
	"context"
	"sync"

	"github.com/niksmo/korzina/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A ProductQuerier requests products of a shop from the remote catalog.
//
// Errors wrap [domain.ErrTransport] or [domain.ErrProtocol].
type ProductQuerier interface {
	FetchProducts(context.Context, domain.Query) ([]domain.Product, error)
}

// A ProductsDisplay renders a shop session.
//
// Methods are called from the session goroutine only.
type ProductsDisplay interface {
	ShowCategories(categories []domain.Category, selected domain.Category)
	ShowSelectedCategory(domain.Category)
	ShowProducts([]domain.Product)
	ShowState(state domain.ScreenState, err error)
}

// A ShopObserver receives shop session events. It must not block.
type ShopObserver interface {
	Observe(domain.ShopEvent)
}

// A ShopSession is the input side of a shop screen.
type ShopSession interface {
	OnScreenLoad()
	OnCategorySelected(name string) error
	OnSearchTextChanged(text string)
	Retry()
	Close()
}

type CatalogReader interface {
	ListProducts(context.Context, domain.Query) (domain.Shop, []domain.Product, error)
	ListOffers(context.Context, domain.OfferFilter) (domain.OfferPage, error)
	FindCheapestShop(ctx context.Context, targets []string) (domain.ShopSolution, error)
	Stats(context.Context) (domain.CatalogStats, error)
	Healthy(context.Context) bool
}

type CatalogStorage interface {
	ReadShop(ctx context.Context, name string) (domain.Shop, error)
	ReadShopOffers(ctx context.Context, shopID int64) ([]domain.Product, error)
	ReadOffers(ctx context.Context) ([]domain.Offer, error)
	ReadShopNames(ctx context.Context) ([]string, error)
	CountProducts(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type ShopStatsReader interface {
	ShopStats(shopID string) (domain.ShopStats, error)
}

type ShopStatsProcessor interface {
	runnerContextWg
	closer
}
