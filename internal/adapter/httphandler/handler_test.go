package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) ListProducts(
	ctx context.Context, q domain.Query,
) (domain.Shop, []domain.Product, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.Shop), args.Get(1).([]domain.Product), args.Error(2)
}

func (m *MockCatalogReader) ListOffers(
	ctx context.Context, f domain.OfferFilter,
) (domain.OfferPage, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.OfferPage), args.Error(1)
}

func (m *MockCatalogReader) FindCheapestShop(
	ctx context.Context, targets []string,
) (domain.ShopSolution, error) {
	args := m.Called(ctx, targets)
	return args.Get(0).(domain.ShopSolution), args.Error(1)
}

func (m *MockCatalogReader) Stats(ctx context.Context) (domain.CatalogStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.CatalogStats), args.Error(1)
}

func (m *MockCatalogReader) Healthy(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

type MockShopStatsReader struct {
	mock.Mock
}

func (m *MockShopStatsReader) ShopStats(shopID string) (domain.ShopStats, error) {
	args := m.Called(shopID)
	return args.Get(0).(domain.ShopStats), args.Error(1)
}

func newTestServer(catalog *MockCatalogReader, stats *MockShopStatsReader) http.Handler {
	mux := http.NewServeMux()
	RegisterCatalog(mux, catalog)
	if stats != nil {
		RegisterShopStats(mux, stats)
	}
	return NewHTTPServer(":0", mux, HandlerTimeoutOpt(time.Second)).httpServer.Handler
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func serveJSON(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestGetProducts(t *testing.T) {
	t.Run("lists products", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		q := domain.Query{ShopID: "Лента", SearchTerm: "молоко"}
		catalog.On("ListProducts", mock.Anything, q).Return(
			domain.Shop{ID: 3, Name: "Лента"},
			[]domain.Product{
				{ID: 7, Name: "Молоко 3,2% 930 мл", Price: 88.1, Category: domain.CategoryDairy},
				{ID: 15, Name: "Молоко овсяное", Price: 0},
			},
			nil,
		).Once()

		h := newTestServer(catalog, nil)
		rec := serve(t, h, http.MethodGet, "/api/products?shop=%D0%9B%D0%B5%D0%BD%D1%82%D0%B0&q=+%D0%BC%D0%BE%D0%BB%D0%BE%D0%BA%D0%BE+")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		body := decodeBody[ProductsResponse](t, rec)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, Shop{ID: 3, Name: "Лента"}, body.Shop)
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Products, 2)
		assert.Equal(t, "Молочка", body.Products[0].Category)
		assert.Empty(t, body.Products[1].Category)
		catalog.AssertExpectations(t)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("ListProducts", mock.Anything, mock.Anything).
			Return(domain.Shop{ID: 1, Name: "Ашан"}, []domain.Product{}, nil).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet, "/api/products?shop=x")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"products":[]`)
	})

	tests := []struct {
		name     string
		target   string
		listErr  error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing shop",
			target:   "/api/products",
			wantCode: http.StatusBadRequest,
			wantMsg:  "Shop parameter is required",
		},
		{
			name:     "blank shop",
			target:   "/api/products?shop=%20%20",
			wantCode: http.StatusBadRequest,
			wantMsg:  "Shop parameter is required",
		},
		{
			name:     "unknown shop",
			target:   "/api/products?shop=nope",
			listErr:  fmt.Errorf("read: %w", domain.ErrShopNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "Shop not found",
		},
		{
			name:     "storage failure",
			target:   "/api/products?shop=nope",
			listErr:  errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			catalog.On("ListProducts", mock.Anything, mock.Anything).
				Return(domain.Shop{}, []domain.Product(nil), tt.listErr).Maybe()

			rec := serve(t, newTestServer(catalog, nil), http.MethodGet, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)

			body := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		healthy  bool
		wantCode int
		want     HealthResponse
	}{
		{
			name:     "healthy",
			method:   http.MethodGet,
			healthy:  true,
			wantCode: http.StatusOK,
			want: HealthResponse{
				Status:   "success",
				Message:  "Shop Finder API работает!",
				Version:  "1.0",
				Database: "healthy",
			},
		},
		{
			name:     "healthy by post",
			method:   http.MethodPost,
			healthy:  true,
			wantCode: http.StatusOK,
			want: HealthResponse{
				Status:   "success",
				Message:  "Shop Finder API работает!",
				Version:  "1.0",
				Database: "healthy",
			},
		},
		{
			name:     "database down",
			method:   http.MethodGet,
			wantCode: http.StatusInternalServerError,
			want: HealthResponse{
				Status:   "error",
				Message:  "Database connection failed",
				Version:  "1.0",
				Database: "unhealthy",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			catalog.On("Healthy", mock.Anything).Return(tt.healthy).Once()

			rec := serve(t, newTestServer(catalog, nil), tt.method, "/api/health")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.want, decodeBody[HealthResponse](t, rec))
		})
	}
}

func TestGetOffers(t *testing.T) {
	lenta := domain.Shop{ID: 3, Name: "Лента"}

	t.Run("defaults and filters", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		want := domain.OfferFilter{Limit: 20, Shop: "Лента", Category: "Молочка", Term: "молоко"}
		catalog.On("ListOffers", mock.Anything, want).Return(domain.OfferPage{
			Total: 41, Limit: 20,
			Offers: []domain.Offer{{
				ID: 9, Name: "Молоко 3,2% 930 мл", Price: 88.1,
				Category: domain.CategoryDairy, Shop: lenta,
			}},
		}, nil).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet,
			"/api/offers?seller=%D0%9B%D0%B5%D0%BD%D1%82%D0%B0"+
				"&category=%D0%9C%D0%BE%D0%BB%D0%BE%D1%87%D0%BA%D0%B0"+
				"&q=%D0%BC%D0%BE%D0%BB%D0%BE%D0%BA%D0%BE")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[OffersResponse](t, rec)
		assert.Equal(t, 41, body.Total)
		assert.Equal(t, 20, body.Limit)
		assert.Equal(t, 0, body.Offset)
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, []Offer{{
			ID: 9, Title: "Молоко 3,2% 930 мл", Price: 88.1,
			Category: "Молочка", Seller: "Лента",
		}}, body.Offers)
		catalog.AssertExpectations(t)
	})

	t.Run("pagination", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("ListOffers", mock.Anything, domain.OfferFilter{Limit: 5, Offset: 10}).
			Return(domain.OfferPage{Total: 3, Limit: 5, Offset: 10}, nil).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet, "/api/offers?limit=5&offset=10")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"offers":[]`)
		catalog.AssertExpectations(t)
	})

	for _, target := range []string{
		"/api/offers?limit=0",
		"/api/offers?limit=101",
		"/api/offers?limit=ten",
		"/api/offers?offset=-1",
	} {
		t.Run(target, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			rec := serve(t, newTestServer(catalog, nil), http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			catalog.AssertNotCalled(t, "ListOffers", mock.Anything, mock.Anything)
		})
	}
}

func testSolution() domain.ShopSolution {
	ashan := domain.Shop{ID: 1, Name: "Ашан"}
	milk := domain.Offer{
		ID: 1, Name: "Молоко 3,2% 930 мл", Price: 85.4,
		Category: domain.CategoryDairy, Shop: ashan,
	}
	return domain.ShopSolution{
		Shop:       ashan,
		TotalPrice: 1085.4,
		FoundCount: 1,
		Matches: []domain.ProductMatch{
			{
				Target: "молоко", Found: milk.Name, Price: milk.Price,
				Similarity: 0.5, Type: domain.MatchPartialFull, Offer: &milk,
			},
			{
				Target: "икра", Found: domain.NotFoundName, Price: 1000,
				Type: domain.MatchNone,
			},
		},
	}
}

func TestPostSearch(t *testing.T) {
	t.Run("array and string are equal", func(t *testing.T) {
		for _, body := range []string{
			`{"products": ["молоко", " икра "]}`,
			`{"products": "молоко, икра"}`,
		} {
			catalog := new(MockCatalogReader)
			catalog.On("FindCheapestShop", mock.Anything, []string{"молоко", "икра"}).
				Return(testSolution(), nil).Once()

			rec := serveJSON(t, newTestServer(catalog, nil), "/api/search", body)
			require.Equal(t, http.StatusOK, rec.Code)

			got := decodeBody[SearchResponse](t, rec)
			assert.Equal(t, "success", got.Status)
			assert.Equal(t, Shop{ID: 1, Name: "Ашан"}, got.BestShop)
			assert.InDelta(t, 1085.4, got.TotalPrice, 1e-9)
			assert.Equal(t, 1, got.ProductsFound)
			assert.Equal(t, 2, got.ProductsTotal)
			assert.InDelta(t, 0.5, got.MatchPercentage, 1e-9)
			require.Len(t, got.Products, 2)
			assert.Equal(t, "partial_full", got.Products[0].MatchType)
			assert.Equal(t, ProductMatch{
				Target: "икра", Found: "НЕ НАЙДЕН", Price: 1000, MatchType: "none",
			}, got.Products[1])
			catalog.AssertExpectations(t)
		}
	})

	t.Run("no suitable shop", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("FindCheapestShop", mock.Anything, []string{"икра"}).
			Return(domain.ShopSolution{}, domain.ErrNoSuitableShop).Once()

		rec := serveJSON(t, newTestServer(catalog, nil), "/api/search", `{"products":["икра"]}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, "No suitable shops found for your products", body.Message)
	})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"no body", "", "No JSON data provided"},
		{"no products", `{"items": []}`, "Missing 'products' field"},
		{"empty string", `{"products": " , "}`, "Products string is empty"},
		{"empty list", `{"products": []}`, "Products list is empty"},
		{"blank items", `{"products": ["", "  "]}`, "All products in list are empty"},
		{"wrong type", `{"products": 42}`, "Products must be either a string or a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			rec := serveJSON(t, newTestServer(catalog, nil), "/api/search", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody[ErrorResponse](t, rec).Message)
			catalog.AssertNotCalled(t, "FindCheapestShop", mock.Anything, mock.Anything)
		})
	}

	t.Run("not json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/search",
			strings.NewReader("products=молоко"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		newTestServer(new(MockCatalogReader), nil).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestGetSearch(t *testing.T) {
	const target = "/api/search/get?products=%D0%BC%D0%BE%D0%BB%D0%BE%D0%BA%D0%BE,%D0%B8%D0%BA%D1%80%D0%B0"
	targets := []string{"молоко", "икра"}

	t.Run("found offers", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("FindCheapestShop", mock.Anything, targets).Return(testSolution(), nil).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []Offer{{
			ID: 1, Title: "Молоко 3,2% 930 мл", Price: 85.4,
			Category: "Молочка", Seller: "Ашан",
		}}, decodeBody[[]Offer](t, rec))
	})

	t.Run("debug", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("FindCheapestShop", mock.Anything, targets).Return(testSolution(), nil).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet, target+"&debug=1")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[SearchDebugResponse](t, rec)
		assert.Equal(t, "Ашан", body.BestShop)
		assert.Equal(t, 2, body.ProductsTotal)
		assert.Len(t, body.Products, 2)
	})

	t.Run("nothing found", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		catalog.On("FindCheapestShop", mock.Anything, targets).
			Return(domain.ShopSolution{}, domain.ErrNoSuitableShop).Once()

		rec := serve(t, newTestServer(catalog, nil), http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	for _, bad := range []string{
		"/api/search/get",
		"/api/search/get?products=,%20,",
		target + "&debug=2",
	} {
		t.Run(bad, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			rec := serve(t, newTestServer(catalog, nil), http.MethodGet, bad)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			catalog.AssertNotCalled(t, "FindCheapestShop", mock.Anything, mock.Anything)
		})
	}
}

func TestGetStats(t *testing.T) {
	catalog := new(MockCatalogReader)
	catalog.On("Stats", mock.Anything).Return(domain.CatalogStats{
		ShopsCount: 2, ProductsCount: 15, Shops: []string{"Ашан", "Лента"},
	}, nil).Once()

	rec := serve(t, newTestServer(catalog, nil), http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[StatsResponse](t, rec)
	assert.Equal(t, 2, body.ShopsCount)
	assert.Equal(t, 15, body.ProductsCount)
	assert.Equal(t, []string{"Ашан", "Лента"}, body.Shops)
}

func TestGetShopStats(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		stats := new(MockShopStatsReader)
		stats.On("ShopStats", "Магнит").Return(domain.ShopStats{
			ShopID: "Магнит", Sessions: 2, Loads: 5,
		}, nil).Once()

		rec := serve(t, newTestServer(new(MockCatalogReader), stats),
			http.MethodGet, "/api/stats/shop?shop=%D0%9C%D0%B0%D0%B3%D0%BD%D0%B8%D1%82")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[ShopStatsResponse](t, rec)
		assert.Equal(t, ShopStats{Shop: "Магнит", Sessions: 2, Loads: 5}, body.Stats)
	})

	t.Run("not found", func(t *testing.T) {
		stats := new(MockShopStatsReader)
		stats.On("ShopStats", "x").
			Return(domain.ShopStats{}, domain.ErrShopNotFound).Once()

		rec := serve(t, newTestServer(new(MockCatalogReader), stats),
			http.MethodGet, "/api/stats/shop?shop=x")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("not registered without brokers", func(t *testing.T) {
		rec := serve(t, newTestServer(new(MockCatalogReader), nil),
			http.MethodGet, "/api/stats/shop?shop=x")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAllowMethods(t *testing.T) {
	rec := serve(t, newTestServer(new(MockCatalogReader), nil),
		http.MethodDelete, "/api/products?shop=x")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD, POST", rec.Header().Get("Allow"))

	rec = serve(t, newTestServer(new(MockCatalogReader), nil),
		http.MethodPost, "/api/products?shop=x")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
