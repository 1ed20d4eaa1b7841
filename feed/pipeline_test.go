package feed

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxsml/genstage"
)

const stationPayload = `{"stationBeanList": [{"stationName": "A"}, {"stationName": "W 14 St & The High Line"}]}`

func stationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stationPayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "stationBeanList", cfg.ExtractKey)
	assert.Equal(t, "stationName", cfg.FilterField)
	assert.Equal(t, 1, cfg.FetchMaxDemand)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.NotEmpty(t, cfg.URL)

	cfg = Config{URL: "https://example.com", FetchMaxDemand: 3}
	cfg.ApplyDefaults()
	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, 3, cfg.FetchMaxDemand)
}

func TestPipeline_EndToEnd(t *testing.T) {
	srv := stationServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	urls := genstage.NewProducer("urls", srv.URL, Replicate[string]())
	fetch := genstage.NewTransformer("fetch", NewClient(time.Second), FetchBody())
	decode := genstage.NewTransformer("decode", struct{}{}, DecodeJSON())
	extract := genstage.NewTransformer("extract", "stationBeanList", ExtractField())
	filter := genstage.NewTransformer("filter",
		Match{Field: "stationName", Value: "W 14 St & The High Line"}, MatchField())

	batches := make(chan [][]Document, 1)
	capture := genstage.NewConsumer("capture", struct{}{},
		func(ctx context.Context, events [][]Document, state struct{}) (struct{}, error) {
			select {
			case batches <- events:
			default:
			}
			return state, nil
		}, genstage.WithInterval(time.Millisecond))

	_, err := genstage.Subscribe[[]Document](capture, filter)
	require.NoError(t, err)
	_, err = genstage.Subscribe[any](filter, extract)
	require.NoError(t, err)
	_, err = genstage.Subscribe[Document](extract, decode)
	require.NoError(t, err)
	_, err = genstage.Subscribe[[]byte](decode, fetch)
	require.NoError(t, err)
	_, err = genstage.Subscribe[string](fetch, urls, genstage.WithMaxDemand(1))
	require.NoError(t, err)

	pipeline := genstage.NewPipeline()
	pipeline.Add(urls, fetch, decode, extract, filter, capture)

	done := make(chan error, 1)
	go func() {
		done <- pipeline.Run(ctx)
	}()

	batch := <-batches
	cancel()
	require.NoError(t, <-done)

	require.Len(t, batch, 1)
	assert.Equal(t, []Document{{"stationName": "W 14 St & The High Line"}}, batch[0])
}

// syncWriter makes a bytes.Buffer safe for the reader polling below while
// the consumer goroutine writes.
type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestBuild(t *testing.T) {
	srv := stationServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sink syncWriter
	pipeline, err := Build(Config{
		URL:      srv.URL,
		Interval: time.Millisecond,
	}, &sink)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- pipeline.Run(ctx)
	}()

	deadline := time.After(5 * time.Second)
	for !strings.Contains(sink.String(), "W 14 St & The High Line") {
		select {
		case <-deadline:
			t.Fatalf("no filtered output, sink: %q", sink.String())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	require.NoError(t, <-done)
}
