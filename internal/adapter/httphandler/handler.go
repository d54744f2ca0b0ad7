package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

const (
	apiVersion     = "1.0"
	healthyMessage = "Shop Finder API работает!"
	maxSearchBody  = 1 << 20
)

// GET /api/products?shop=name&q=term (200 OK, 400 Bad request, 404 Not found)
// GET /api/offers?limit=20&offset=0&seller=&category=&q= (200 OK, 400 Bad request)
// POST /api/search {"products": [...] | "a,b"} (200 OK, 400 Bad request, 404 Not found)
// GET /api/search/get?products=a,b&debug=0|1 (200 OK, 400 Bad request)
// GET|POST /api/health (200 OK, 500 Internal server error)
// GET /api/stats (200 OK)

type CatalogHandler struct {
	catalog port.CatalogReader
}

func RegisterCatalog(mux *http.ServeMux, catalog port.CatalogReader) {
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /api/products", h.GetProducts)
	mux.HandleFunc("GET /api/offers", h.GetOffers)
	mux.HandleFunc("POST /api/search", h.PostSearch)
	mux.HandleFunc("GET /api/search/get", h.GetSearch)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/health", h.Health)
	mux.HandleFunc("GET /api/stats", h.GetStats)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	shopName := strings.TrimSpace(r.URL.Query().Get("shop"))
	if shopName == "" {
		writeError(w, http.StatusBadRequest, "Shop parameter is required")
		return
	}

	q, err := domain.NewQuery(shopName, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Shop parameter is required")
		return
	}

	shop, products, err := h.catalog.ListProducts(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrShopNotFound) {
			writeError(w, http.StatusNotFound, "Shop not found")
			return
		}
		if errors.Is(err, domain.ErrEmptyShop) {
			writeError(w, http.StatusBadRequest, "Shop parameter is required")
			return
		}
		log.Error("failed to list products", "shop", shopName, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProductsResponse{
		Status:   statusSuccess,
		Shop:     Shop{ID: shop.ID, Name: shop.Name},
		Count:    len(products),
		Products: fromDomainProducts(products),
	})
	log.Info("products listed", "shop", shop.Name, "nProducts", len(products))
}

func (h CatalogHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetOffers"

	query := r.URL.Query()
	limit, err := intParam(query, "limit", domain.DefaultOfferLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}
	offset, err := intParam(query, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'offset' parameter")
		return
	}

	f, err := domain.NewOfferFilter(
		limit, offset, query.Get("seller"), query.Get("category"), query.Get("q"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.catalog.ListOffers(r.Context(), f)
	if err != nil {
		slog.Error("failed to list offers", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, OffersResponse{
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Count:  len(page.Offers),
		Offers: fromDomainOffers(page.Offers),
	})
}

func (h CatalogHandler) PostSearch(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PostSearch"
	log := slog.With("op", op)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSearchBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targets, problem := searchTargets(body)
	if problem != "" {
		log.Warn("invalid search request", "problem", problem)
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	solution, err := h.catalog.FindCheapestShop(r.Context(), targets)
	if err != nil {
		if errors.Is(err, domain.ErrNoSuitableShop) {
			writeError(w, http.StatusNotFound, "No suitable shops found for your products")
			return
		}
		log.Error("failed to search", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, fromDomainSolution(solution))
}

// GetSearch answers with the found offers only, unless debug=1 asks for
// the whole solution. Nothing found is an empty array.
func (h CatalogHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetSearch"

	query := r.URL.Query()
	targets := domain.SplitProducts(query.Get("products"))
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "Missing 'products' parameter")
		return
	}

	debug, err := intParam(query, "debug", 0)
	if err != nil || (debug != 0 && debug != 1) {
		writeError(w, http.StatusBadRequest, "Invalid 'debug' parameter")
		return
	}

	solution, err := h.catalog.FindCheapestShop(r.Context(), targets)
	if err != nil {
		if errors.Is(err, domain.ErrNoSuitableShop) {
			writeJSON(w, http.StatusOK, []Offer{})
			return
		}
		slog.Error("failed to search", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if debug == 1 {
		resp := fromDomainSolution(solution)
		writeJSON(w, http.StatusOK, SearchDebugResponse{
			Status:          resp.Status,
			BestShop:        resp.BestShop.Name,
			TotalPrice:      resp.TotalPrice,
			ProductsFound:   resp.ProductsFound,
			ProductsTotal:   resp.ProductsTotal,
			MatchPercentage: resp.MatchPercentage,
			Products:        resp.Products,
		})
		return
	}
	writeJSON(w, http.StatusOK, fromDomainOffers(solution.FoundOffers()))
}

func (h CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Healthy(r.Context()) {
		writeJSON(w, http.StatusInternalServerError, HealthResponse{
			Status:   statusError,
			Message:  "Database connection failed",
			Version:  apiVersion,
			Database: "unhealthy",
		})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   statusSuccess,
		Message:  healthyMessage,
		Version:  apiVersion,
		Database: "healthy",
	})
}

func (h CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetStats"

	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		slog.Error("failed to read stats", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	shops := stats.Shops
	if shops == nil {
		shops = []string{}
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Status:        statusSuccess,
		ShopsCount:    stats.ShopsCount,
		ProductsCount: stats.ProductsCount,
		Shops:         shops,
	})
}

// GET /api/stats/shop?shop=name (200 OK, 400 Bad request, 404 Not found)

type ShopStatsHandler struct {
	stats port.ShopStatsReader
}

func RegisterShopStats(mux *http.ServeMux, stats port.ShopStatsReader) {
	h := ShopStatsHandler{stats}
	mux.HandleFunc("GET /api/stats/shop", h.GetShopStats)
}

func (h ShopStatsHandler) GetShopStats(w http.ResponseWriter, r *http.Request) {
	const op = "ShopStatsHandler.GetShopStats"

	shopName := strings.TrimSpace(r.URL.Query().Get("shop"))
	if shopName == "" {
		writeError(w, http.StatusBadRequest, "Shop parameter is required")
		return
	}

	stats, err := h.stats.ShopStats(shopName)
	if err != nil {
		if errors.Is(err, domain.ErrShopNotFound) {
			writeError(w, http.StatusNotFound, "No statistics for shop")
			return
		}
		slog.Error("failed to read shop stats", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ShopStatsResponse{
		Status: statusSuccess,
		Stats:  fromDomainShopStats(stats),
	})
}

// searchTargets reads "products" as a JSON array or a comma separated
// string. A non-empty problem describes why the body is rejected.
func searchTargets(body []byte) (targets []string, problem string) {
	const invalidBody = "Invalid JSON body"

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "No JSON data provided"
	}

	value, typ, _, err := jsonparser.Get(body, "products")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, "Missing 'products' field"
	}
	if err != nil {
		return nil, invalidBody
	}

	switch typ {
	case jsonparser.String:
		list, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, invalidBody
		}
		if targets = domain.SplitProducts(list); len(targets) == 0 {
			return nil, "Products string is empty"
		}
		return targets, ""

	case jsonparser.Array:
		var (
			items   []string
			itemErr error
		)
		_, err := jsonparser.ArrayEach(value,
			func(item []byte, t jsonparser.ValueType, _ int, _ error) {
				if t != jsonparser.String {
					items = append(items, string(item))
					return
				}
				s, err := jsonparser.ParseString(item)
				if err != nil {
					itemErr = err
					return
				}
				items = append(items, s)
			},
		)
		if err != nil || itemErr != nil {
			return nil, invalidBody
		}
		if len(items) == 0 {
			return nil, "Products list is empty"
		}
		if targets = domain.NewProductList(items); len(targets) == 0 {
			return nil, "All products in list are empty"
		}
		return targets, ""
	}
	return nil, "Products must be either a string or a list"
}

func intParam(query url.Values, key string, fallback int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Status: statusError, Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	const op = "writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
