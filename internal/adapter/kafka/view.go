package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/niksmo/korzina/pkg/schema"
)

var _ port.ShopStatsReader = (*ShopStatsView)(nil)

type viewGetter interface {
	Get(key string) (any, error)
}

// A ShopStatsView reads the shop stats group table.
type ShopStatsView struct {
	gv     *goka.View
	getter viewGetter
}

func NewShopStatsView(
	seedBrokers []string, group string,
) (*ShopStatsView, error) {
	const op = "NewShopStatsView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		newShopStatsCodec(),
		withNonlogViewOpt(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &ShopStatsView{gv: gv, getter: gv}, nil
}

func (v *ShopStatsView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "ShopStatsView.Run"
	log := slog.With("op", op)

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("stopped", "err", err)
			return
		}
		log.Info("stopped")
	}()

	log.Info("running")
}

// ShopStats returns [domain.ErrShopNotFound] if the shop has no events yet.
func (v *ShopStatsView) ShopStats(shopID string) (domain.ShopStats, error) {
	const op = "ShopStatsView.ShopStats"

	value, err := v.getter.Get(shopID)
	if err != nil {
		return domain.ShopStats{}, opErr(err, op)
	}

	if value == nil {
		return domain.ShopStats{}, opErr(domain.ErrShopNotFound, op)
	}

	s, ok := value.(schema.ShopStatsV1)
	if !ok {
		return domain.ShopStats{}, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, value), op,
		)
	}
	return schemaV1ToStats(s), nil
}
