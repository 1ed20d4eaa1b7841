package feed

import (
	"io"
	"time"

	"github.com/fxsml/genstage"
)

// Config holds the fixed startup configuration of the feed pipeline.
// Zero fields are replaced by the defaults below; the environment overlay in
// the config package may override any of them.
type Config struct {
	// URL is the producer seed value, replicated once per unit of demand.
	URL string
	// ExtractKey is the key the extraction stage reads from each document.
	ExtractKey string
	// FilterField and FilterValue form the predicate of the filter stage.
	FilterField string
	FilterValue string
	// Interval is the consumer's inter-pulse delay.
	Interval time.Duration
	// FetchTimeout bounds a single HTTP retrieval.
	FetchTimeout time.Duration
	// FetchMaxDemand caps outstanding demand on the edge between the fetch
	// stage and the URL producer, so the pipeline never races ahead of
	// I/O-bound retrieval.
	FetchMaxDemand int
}

// ApplyDefaults fills zero fields with the bike-station feed defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "https://feeds.citibikenyc.com/stations/stations.json"
	}
	if c.ExtractKey == "" {
		c.ExtractKey = "stationBeanList"
	}
	if c.FilterField == "" {
		c.FilterField = "stationName"
	}
	if c.FilterValue == "" {
		c.FilterValue = "W 14 St & The High Line"
	}
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchMaxDemand <= 0 {
		c.FetchMaxDemand = 1
	}
}

// Build assembles the six-stage feed pipeline and returns its supervisor:
//
//	urls → fetch → decode → extract → filter → printer
//
// Subscriptions are wired consumer-side to producer-side. Every edge is
// unbounded except the one nearest the producer, capped by FetchMaxDemand.
// Final batches are rendered to sink.
func Build(cfg Config, sink io.Writer, opts ...genstage.PipelineOption) (*genstage.Pipeline, error) {
	cfg.ApplyDefaults()

	urls := genstage.NewProducer("urls", cfg.URL, Replicate[string]())
	fetch := genstage.NewTransformer("fetch", NewClient(cfg.FetchTimeout), FetchBody())
	decode := genstage.NewTransformer("decode", struct{}{}, DecodeJSON())
	extract := genstage.NewTransformer("extract", cfg.ExtractKey, ExtractField())
	filter := genstage.NewTransformer("filter", Match{Field: cfg.FilterField, Value: cfg.FilterValue}, MatchField())
	printer := genstage.NewConsumer("printer", sink, Print(), genstage.WithInterval(cfg.Interval))

	if _, err := genstage.Subscribe[[]Document](printer, filter); err != nil {
		return nil, err
	}
	if _, err := genstage.Subscribe[any](filter, extract); err != nil {
		return nil, err
	}
	if _, err := genstage.Subscribe[Document](extract, decode); err != nil {
		return nil, err
	}
	if _, err := genstage.Subscribe[[]byte](decode, fetch); err != nil {
		return nil, err
	}
	if _, err := genstage.Subscribe[string](fetch, urls, genstage.WithMaxDemand(cfg.FetchMaxDemand)); err != nil {
		return nil, err
	}

	pipeline := genstage.NewPipeline(opts...)
	pipeline.Add(urls, fetch, decode, extract, filter, printer)
	return pipeline, nil
}
