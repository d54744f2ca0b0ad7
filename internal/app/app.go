package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"

	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/internal/adapter"
	"github.com/niksmo/korzina/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

func initLogger(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}

func brokerTLS(cfg config.Config) *tls.Config {
	files := cfg.Broker.TLS
	if !files.Enabled() {
		return nil
	}
	return adapter.MakeTLSConfig(files.CA, files.Cert, files.Key)
}

// newShopEventSerde registers the shop event schema under <topic>-value.
func newShopEventSerde(
	ctx context.Context, cfg config.Config, tlsConfig *tls.Config,
) (schema.Serde, error) {
	const op = "newShopEventSerde"

	opts := []sr.ClientOpt{sr.URLs(cfg.Broker.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		opts = append(opts, sr.DialTLSConfig(tlsConfig))
	}

	srClient, err := sr.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subject := cfg.Broker.Topics.ShopEvents + "-value"
	serde, err := schema.NewSerdeShopEventV1(
		ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schema.NewSchemaIdentifier(srClient)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return serde, nil
}

func fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
