package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to the brokers. tlsConfig is optional.
func ProducerClientOpt(
	ctx context.Context,
	seedBrokers []string,
	topic string,
	tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
			kgo.MaxBufferedRecords(maxBufferedRecords),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// A ProducerClient buffers records without blocking. TryProduce fails the
// promise with [kgo.ErrMaxBuffered] when the buffer is full.
type ProducerClient interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// ApplyTLS makes goka processors and views dial brokers over TLS.
func ApplyTLS(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func withNonlogViewOpt() goka.ViewOption {
	return goka.WithViewLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func eventToSchemaV1(v domain.ShopEvent) (s schema.ShopEventV1) {
	s.Kind = string(v.Kind)
	s.ShopID = v.ShopID
	s.SearchTerm = v.SearchTerm
	s.Category = string(v.Category)
	s.Seq = int64(v.Seq)
	s.Count = int64(v.Count)
	s.Error = v.Err
	s.At = v.At
	return
}

func schemaV1ToEvent(s schema.ShopEventV1) (v domain.ShopEvent) {
	v.Kind = domain.ShopEventKind(s.Kind)
	v.ShopID = s.ShopID
	v.SearchTerm = s.SearchTerm
	v.Category = domain.Category(s.Category)
	v.Seq = uint64(s.Seq)
	v.Count = int(s.Count)
	v.Err = s.Error
	v.At = s.At
	return
}

func statsToSchemaV1(v domain.ShopStats) (s schema.ShopStatsV1) {
	s.ShopID = v.ShopID
	s.Sessions = v.Sessions
	s.Queries = v.Queries
	s.Loads = v.Loads
	s.Failures = v.Failures
	s.CategorySelections = v.CategorySelections
	return
}

func schemaV1ToStats(s schema.ShopStatsV1) (v domain.ShopStats) {
	v.ShopID = s.ShopID
	v.Sessions = s.Sessions
	v.Queries = s.Queries
	v.Loads = s.Loads
	v.Failures = s.Failures
	v.CategorySelections = s.CategorySelections
	return
}
