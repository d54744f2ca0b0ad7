package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/niksmo/korzina/internal/core/domain"
)

const penaltyPrice = 1000

// ListOffers pages through all shop offers after filtering them by exact
// shop and category names and by a case-insensitive title substring.
func (s CatalogService) ListOffers(
	ctx context.Context, f domain.OfferFilter,
) (domain.OfferPage, error) {
	const op = "CatalogService.ListOffers"

	offers, err := s.storage.ReadOffers(ctx)
	if err != nil {
		return domain.OfferPage{}, fmt.Errorf("%s: %w", op, err)
	}

	filtered := filterOffers(offers, f)
	page := domain.OfferPage{
		Total:  len(filtered),
		Limit:  f.Limit,
		Offset: f.Offset,
		Offers: []domain.Offer{},
	}
	if f.Offset < len(filtered) {
		end := min(f.Offset+f.Limit, len(filtered))
		page.Offers = filtered[f.Offset:end]
	}
	return page, nil
}

func filterOffers(offers []domain.Offer, f domain.OfferFilter) []domain.Offer {
	term := strings.ToLower(f.Term)
	filtered := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if f.Shop != "" && o.Shop.Name != f.Shop {
			continue
		}
		if f.Category != "" && o.Category.String() != f.Category {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(o.Name), term) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// FindCheapestShop prices the targets in every shop and returns the shop
// that has most of them, the cheapest one among equals.
//
// A target missing in a shop costs a fixed penalty. Each offer serves one
// target at most.
func (s CatalogService) FindCheapestShop(
	ctx context.Context, targets []string,
) (domain.ShopSolution, error) {
	const op = "CatalogService.FindCheapestShop"
	log := slog.With("op", op)

	targets = domain.NewProductList(targets)
	if len(targets) == 0 {
		return domain.ShopSolution{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyProducts)
	}

	offers, err := s.storage.ReadOffers(ctx)
	if err != nil {
		return domain.ShopSolution{}, fmt.Errorf("%s: %w", op, err)
	}

	ts := make([]target, len(targets))
	for i, raw := range targets {
		ts[i] = newTarget(raw)
	}

	shops := groupByShop(offers)
	solutions := make([]domain.ShopSolution, 0, len(shops))
	for _, sh := range shops {
		solutions = append(solutions, evaluateShop(ts, sh))
	}

	sort.SliceStable(solutions, func(i, j int) bool {
		if solutions[i].FoundCount != solutions[j].FoundCount {
			return solutions[i].FoundCount > solutions[j].FoundCount
		}
		return solutions[i].TotalPrice < solutions[j].TotalPrice
	})

	if len(solutions) == 0 || solutions[0].FoundCount == 0 {
		log.Warn("no suitable shop", "nTargets", len(targets))
		return domain.ShopSolution{}, fmt.Errorf("%s: %w", op, domain.ErrNoSuitableShop)
	}

	best := solutions[0]
	log.Info(
		"cheapest shop found",
		"shop", best.Shop.Name,
		"totalPrice", best.TotalPrice,
		"found", best.FoundCount,
		"nTargets", len(targets),
	)
	return best, nil
}

type shopOffers struct {
	shop   domain.Shop
	offers []matchable
}

// groupByShop keeps shops in order of their first offer.
func groupByShop(offers []domain.Offer) []shopOffers {
	var shops []shopOffers
	index := make(map[string]int)
	for _, o := range offers {
		if o.Shop.Name == "" {
			continue
		}
		i, ok := index[o.Shop.Name]
		if !ok {
			i = len(shops)
			index[o.Shop.Name] = i
			shops = append(shops, shopOffers{shop: o.Shop})
		}
		shops[i].offers = append(shops[i].offers, newMatchable(o))
	}
	return shops
}

func evaluateShop(ts []target, sh shopOffers) domain.ShopSolution {
	sol := domain.ShopSolution{
		Shop:    sh.shop,
		Matches: make([]domain.ProductMatch, 0, len(ts)),
	}
	used := make(map[int]struct{})

	for _, t := range ts {
		idx, mt, sim := bestMatch(t, sh.offers, used)
		if idx == -1 {
			sol.TotalPrice += penaltyPrice
			sol.Matches = append(sol.Matches, domain.ProductMatch{
				Target: t.raw,
				Found:  domain.NotFoundName,
				Price:  penaltyPrice,
				Type:   domain.MatchNone,
			})
			continue
		}

		used[idx] = struct{}{}
		offer := sh.offers[idx].offer
		sol.TotalPrice += offer.Price
		sol.FoundCount++
		sol.Matches = append(sol.Matches, domain.ProductMatch{
			Target:     t.raw,
			Found:      offer.Name,
			Price:      offer.Price,
			Similarity: sim,
			Type:       mt,
			Offer:      &offer,
		})
	}
	return sol
}
