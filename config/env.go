// Package config overlays environment variables onto configuration structs.
//
// Variable names follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// Named nested structs add their field name as a path segment; anonymous
// (embedded) structs are flattened. Go field names are converted from
// CamelCase to UPPER_SNAKE_CASE:
//
//	ExtractKey     → EXTRACT_KEY
//	FetchTimeout   → FETCH_TIMEOUT
//	FetchMaxDemand → FETCH_MAX_DEMAND
//
// Supported field types: string, bool, int*, uint*, float*, time.Duration.
// Fields of other types (functions, interfaces, channels, pointers) are
// silently skipped.
//
// Example with feed.Config and stage "feed":
//
//	GENSTAGE_FEED_URL=https://feeds.citibikenyc.com/stations/stations.json
//	GENSTAGE_FEED_EXTRACT_KEY=stationBeanList
//	GENSTAGE_FEED_INTERVAL=500ms
//	GENSTAGE_FEED_FETCH_MAX_DEMAND=1
//
// Only variables that are actually set modify the destination struct, so
// Load overlays environment overrides on top of programmatic defaults.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Loader reads environment variables into configuration structs.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "GENSTAGE".
	Prefix string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

// Load populates the struct pointed to by dst from the environment. The
// stage parameter identifies the pipeline component and becomes the second
// segment of every variable name. Fields without a set variable keep their
// current values.
func (l Loader) Load(stage string, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: dst must be a pointer to a struct, got %T", dst)
	}
	return walk(l.root(stage), v.Elem(), func(key string, fv reflect.Value) error {
		raw, ok := l.lookupEnv(key)
		if !ok {
			return nil
		}
		return setField(fv, raw, key)
	})
}

// Keys returns the variable names Load would check for the given struct.
// Useful for documentation and debugging. dst may be a struct value or a
// pointer to one.
func (l Loader) Keys(stage string, dst any) []string {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	walk(l.root(stage), v, func(key string, _ reflect.Value) error {
		keys = append(keys, key)
		return nil
	})
	return keys
}

// Load populates dst using the default Loader with prefix "GENSTAGE".
func Load(stage string, dst any) error {
	return Loader{}.Load(stage, dst)
}

// Keys returns variable names using the default Loader with prefix "GENSTAGE".
func Keys(stage string, dst any) []string {
	return Loader{}.Keys(stage, dst)
}

func (l Loader) root(stage string) string {
	prefix := l.Prefix
	if prefix == "" {
		prefix = "GENSTAGE"
	}
	return prefix + "_" + normalizeStage(stage)
}

func (l Loader) lookupEnv(key string) (string, bool) {
	if l.lookup != nil {
		return l.lookup(key)
	}
	return os.LookupEnv(key)
}

// walk visits every loadable field of the struct v, calling visit with the
// field's fully assembled variable name. Nested named structs recurse with
// an extended prefix; embedded structs recurse with the prefix unchanged.
func walk(prefix string, v reflect.Value, visit func(key string, fv reflect.Value) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		// Unexported embedded structs still carry promoted exported
		// fields; everything else unexported is skipped.
		if !field.IsExported() {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				if err := walk(prefix, fv, visit); err != nil {
					return err
				}
			}
			continue
		}

		key := prefix
		if !field.Anonymous {
			key = prefix + "_" + toUpperSnake(field.Name)
		}

		// time.Duration is an int64 underneath but is visited as a leaf
		// so it parses as "5s", "100ms".
		if field.Type == durationType {
			if err := visit(key, fv); err != nil {
				return err
			}
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := walk(key, fv, visit); err != nil {
				return err
			}
			continue
		}

		if !loadableKind(field.Type.Kind()) {
			continue
		}
		if err := visit(key, fv); err != nil {
			return err
		}
	}
	return nil
}

func loadableKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setField(v reflect.Value, raw, key string) error {
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetInt(int64(d))
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		v.SetBool(b)
	}
	return nil
}

// normalizeStage converts a stage name to a valid variable segment.
// Lowercase letters are uppercased, hyphens/spaces/underscores become
// underscores, other characters are dropped.
func normalizeStage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// toUpperSnake converts a Go CamelCase field name to UPPER_SNAKE_CASE.
//
//	ExtractKey   → EXTRACT_KEY
//	URLPath      → URL_PATH
//	HTTPClient   → HTTP_CLIENT
func toUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
