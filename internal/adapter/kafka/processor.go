package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/niksmo/korzina/pkg/schema"
)

var _ port.ShopStatsProcessor = (*ShopStatsProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	if err := p.gp.Run(ctx); err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A shopEventCodec used for serde [schema.ShopEventV1]
type shopEventCodec struct {
	serde Serde
}

func newShopEventCodec(s Serde) shopEventCodec {
	return shopEventCodec{s}
}

func (c shopEventCodec) Encode(v any) ([]byte, error) {
	const op = "shopEventCodec.Encode"
	if _, ok := v.(schema.ShopEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c shopEventCodec) Decode(data []byte) (any, error) {
	const op = "shopEventCodec.Decode"
	var s schema.ShopEventV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A shopStatsCodec used for serde [schema.ShopStatsV1] in the group table.
//
// Values are plain avro, the table is private to the group.
type shopStatsCodec struct {
	encode func(any) ([]byte, error)
	decode func([]byte, any) error
}

func newShopStatsCodec() shopStatsCodec {
	s := schema.ShopStatsV1Avro()
	return shopStatsCodec{
		encode: schema.AvroEncodeFn(s),
		decode: schema.AvroDecodeFn(s),
	}
}

func (c shopStatsCodec) Encode(v any) ([]byte, error) {
	const op = "shopStatsCodec.Encode"
	if _, ok := v.(schema.ShopStatsV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.encode(v)
}

func (c shopStatsCodec) Decode(data []byte) (any, error) {
	const op = "shopStatsCodec.Decode"
	var s schema.ShopStatsV1
	if err := c.decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A ShopStatsProcessor folds shop events from the stream topic
// into per shop counters kept in the group table.
type ShopStatsProcessor struct {
	opPrefix string
	proc     processor
}

func NewShopStatsProc(
	seedBrokers []string,
	inputStream string,
	group string,
	shopEventSerde Serde,
) (*ShopStatsProcessor, error) {
	const op = "NewShopStatsProc"

	p := ShopStatsProcessor{opPrefix: "ShopStatsProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newShopEventCodec(shopEventSerde),
			p.processFn,
		),
		goka.Persist(newShopStatsCodec()),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *ShopStatsProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *ShopStatsProcessor) Close() {
	p.proc.close()
}

func (p *ShopStatsProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op), "shop", ctx.Key())

	stats, ok := accumulate(ctx.Key(), ctx.Value(), msg)
	if !ok {
		log.Warn("unexpected message type")
		return
	}
	ctx.SetValue(stats)
	log.Debug("stats updated", "loads", stats.Loads, "failures", stats.Failures)
}

// accumulate applies the event msg to the current table value.
func accumulate(key string, current any, msg any) (schema.ShopStatsV1, bool) {
	event, ok := msg.(schema.ShopEventV1)
	if !ok {
		return schema.ShopStatsV1{}, false
	}

	stats := domain.ShopStats{ShopID: key}
	if s, ok := current.(schema.ShopStatsV1); ok {
		stats = schemaV1ToStats(s)
	}
	if event.ShopID == "" {
		event.ShopID = key
	}
	return statsToSchemaV1(stats.Apply(schemaV1ToEvent(event))), true
}
