package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxsml/genstage"
)

// Document is a generic associative structure decoded from a feed payload.
// Values may themselves be Documents, sequences, strings or numbers.
type Document = map[string]any

// Missing marks the explicit "absent" outcome of extracting a key that a
// document does not contain. It flows downstream as a regular value.
type Missing struct {
	// Key is the extraction key that was not found.
	Key string
}

// Replicate returns a producer function that satisfies any demand with
// copies of the seed state. The state is the seed value and never changes.
// A degenerate but valid unbounded generator.
func Replicate[T any]() genstage.DemandFunc[T, T] {
	return func(ctx context.Context, amount int, seed T) ([]T, T, error) {
		events := make([]T, amount)
		for i := range events {
			events[i] = seed
		}
		return events, seed, nil
	}
}

// FetchBody returns a transformer function mapping each URL to the raw body
// retrieved by the client held as stage state. Any retrieval error is a hard
// stage failure.
func FetchBody() genstage.TransformFunc[*Client, string, []byte] {
	return func(ctx context.Context, urls []string, client *Client) ([][]byte, *Client, error) {
		bodies := make([][]byte, 0, len(urls))
		for _, url := range urls {
			body, err := client.Fetch(ctx, url)
			if err != nil {
				return nil, client, err
			}
			bodies = append(bodies, body)
		}
		return bodies, client, nil
	}
}

// DecodeJSON returns a transformer function parsing each raw body into a
// Document. A parse fault is a hard stage failure.
func DecodeJSON() genstage.TransformFunc[struct{}, []byte, Document] {
	return func(ctx context.Context, bodies [][]byte, state struct{}) ([]Document, struct{}, error) {
		docs := make([]Document, 0, len(bodies))
		for _, body := range bodies {
			var doc Document
			if err := json.Unmarshal(body, &doc); err != nil {
				return nil, state, fmt.Errorf("feed: decode: %w", err)
			}
			docs = append(docs, doc)
		}
		return docs, state, nil
	}
}

// ExtractField returns a transformer function mapping each document to the
// value stored under the fixed key held as stage state. A document without
// the key yields Missing for that position, not a fault.
func ExtractField() genstage.TransformFunc[string, Document, any] {
	return func(ctx context.Context, docs []Document, key string) ([]any, string, error) {
		values := make([]any, 0, len(docs))
		for _, doc := range docs {
			value, ok := doc[key]
			if !ok {
				values = append(values, Missing{Key: key})
				continue
			}
			values = append(values, value)
		}
		return values, key, nil
	}
}

// Match is the fixed (field, expected value) pair held by the filter stage.
type Match struct {
	Field string
	Value any
}

// MatchField returns a transformer function filtering events that are
// themselves sequences of documents: within each event, only documents whose
// Field equals Value are retained. The outer batch structure is preserved,
// so an event with no matching documents becomes an empty sequence rather
// than disappearing. An event that is not a sequence is a stage fault.
func MatchField() genstage.TransformFunc[Match, any, []Document] {
	return func(ctx context.Context, events []any, match Match) ([][]Document, Match, error) {
		out := make([][]Document, 0, len(events))
		for _, event := range events {
			list, ok := event.([]any)
			if !ok {
				return nil, match, fmt.Errorf("feed: filter: expected a sequence of documents, got %T", event)
			}
			kept := make([]Document, 0, len(list))
			for _, item := range list {
				doc, ok := item.(Document)
				if !ok {
					continue
				}
				if doc[match.Field] == match.Value {
					kept = append(kept, doc)
				}
			}
			out = append(out, kept)
		}
		return out, match, nil
	}
}

// Print returns a consumer function rendering each batch to the writer held
// as stage state. Pure side effect; the pipeline consumes no return value.
func Print() genstage.ConsumeFunc[io.Writer, []Document] {
	return func(ctx context.Context, events [][]Document, w io.Writer) (io.Writer, error) {
		for _, event := range events {
			if _, err := fmt.Fprintf(w, "%v\n", event); err != nil {
				return w, fmt.Errorf("feed: print: %w", err)
			}
		}
		return w, nil
	}
}
