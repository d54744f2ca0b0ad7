package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ShopEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "korzina",
	"name": "shop_event",
	"fields": [
		{"name": "kind", "type": "string"},
		{"name": "shop_id", "type": "string"},
		{"name": "search_term", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "seq", "type": "long"},
		{"name": "count", "type": "long"},
		{"name": "error", "type": "string"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

const ShopStatsSchemaTextV1 = `{
	"type": "record",
	"namespace": "korzina",
	"name": "shop_stats",
	"fields": [
		{"name": "shop_id", "type": "string"},
		{"name": "sessions", "type": "long"},
		{"name": "queries", "type": "long"},
		{"name": "loads", "type": "long"},
		{"name": "failures", "type": "long"},
		{"name": "category_selections", "type": "long"}
	]
}`

type ShopEventV1 struct {
	Kind       string    `avro:"kind"`
	ShopID     string    `avro:"shop_id"`
	SearchTerm string    `avro:"search_term"`
	Category   string    `avro:"category"`
	Seq        int64     `avro:"seq"`
	Count      int64     `avro:"count"`
	Error      string    `avro:"error"`
	At         time.Time `avro:"at"`
}

type ShopStatsV1 struct {
	ShopID             string `avro:"shop_id"`
	Sessions           int64  `avro:"sessions"`
	Queries            int64  `avro:"queries"`
	Loads              int64  `avro:"loads"`
	Failures           int64  `avro:"failures"`
	CategorySelections int64  `avro:"category_selections"`
}

func ShopEventV1Avro() avro.Schema {
	return avro.MustParse(ShopEventSchemaTextV1)
}

func ShopStatsV1Avro() avro.Schema {
	return avro.MustParse(ShopStatsSchemaTextV1)
}
