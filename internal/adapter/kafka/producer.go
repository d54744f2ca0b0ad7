package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ShopObserver = (*ShopEventsProducer)(nil)

const (
	flushTimeout       = 5 * time.Second
	maxBufferedRecords = 1000
)

// A producer is used for composition.
//
// Producing records asynchronously and closing the underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing producer...")

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.cl.Flush(ctx); err != nil {
		log.Error("failed to flush records", "err", err)
	}

	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(r *kgo.Record) {
	p.cl.TryProduce(context.Background(), r, p.promise)
}

func (p producer) promise(r *kgo.Record, err error) {
	const op = "promise"
	if err == nil {
		return
	}

	log := slog.With("op", makeOp(p.opPrefix, op), "key", string(r.Key))
	if errors.Is(err, kgo.ErrMaxBuffered) {
		log.Warn("producer buffer is full, record dropped")
		return
	}
	log.Error("failed to produce record", "err", err)
}

// A ShopEventsProducer publishes [domain.ShopEvent] keyed by shop.
//
// Used as the shop session observability hook, so Observe never blocks.
type ShopEventsProducer struct {
	opPrefix string
	producer producer
	encoder  Encoder
}

func NewShopEventsProducer(
	opts ...ProducerOpt,
) (ShopEventsProducer, error) {
	const op = "NewShopEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ShopEventsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ShopEventsProducer"
	return ShopEventsProducer{
		opPrefix: opPrefix,
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
	}, nil
}

func (p ShopEventsProducer) Close() {
	p.producer.close()
}

func (p ShopEventsProducer) Observe(evt domain.ShopEvent) {
	const op = "Observe"
	log := slog.With("op", makeOp(p.opPrefix, op), "kind", evt.Kind)

	b, err := p.encoder.Encode(eventToSchemaV1(evt))
	if err != nil {
		log.Error("failed to encode event", "err", err)
		return
	}

	p.producer.produce(&kgo.Record{Key: []byte(evt.ShopID), Value: b})
}
