package config

import (
	stdencoding "encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// marshalValue renders a configuration value as text, for the text and YAML
// export formats. It handles the small closed set of primitive shapes used
// by this package's entries directly, and falls back to
// encoding.TextMarshaler (through the type switch below, without
// reflection) for the enum types declared in enums.go and size.go.
func marshalValue(v interface{}) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case int:
		return strconv.Itoa(value), nil
	case int64:
		return strconv.FormatInt(value, 10), nil
	case uint64:
		return strconv.FormatUint(value, 10), nil
	case []string:
		return strings.Join(value, ","), nil
	case map[string]int:
		return marshalIntMap(value), nil
	case stdencoding.TextMarshaler:
		text, err := value.MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}

// parseValue parses text into a value shaped like zero, for the text and
// YAML import formats. zero is the entry's default value, used only to
// select the decoding strategy; the returned value's dynamic type always
// matches zero's.
func parseValue(s string, zero interface{}) (interface{}, error) {
	switch zero.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.ParseBool(s)
	case int:
		return strconv.Atoi(s)
	case int64:
		return strconv.ParseInt(s, 10, 64)
	case uint64:
		return strconv.ParseUint(s, 10, 64)
	case []string:
		return splitList(s), nil
	case map[string]int:
		return parseIntMap(s)
	}

	t := reflect.TypeOf(zero)
	ptr := reflect.New(t)
	unmarshaler, ok := ptr.Interface().(stdencoding.TextUnmarshaler)
	if !ok {
		return nil, fmt.Errorf("unsupported configuration value type: %T", zero)
	}
	if err := unmarshaler.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// splitList splits a comma-separated list, trimming whitespace around each
// element and dropping empty elements (so that "" parses to an empty,
// rather than single-empty-string, slice).
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// marshalIntMap renders a map[string]int as a deterministic
// "key=value,key=value" list.
func marshalIntMap(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ",")
}

// parseIntMap parses a "key=value,key=value" list into a map[string]int.
func parseIntMap(s string) (map[string]int, error) {
	out := make(map[string]int)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed entry %q: expected key=value", pair)
		}
		key := strings.TrimSpace(parts[0])
		value, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed value in entry %q: %w", pair, err)
		}
		out[key] = value
	}
	return out, nil
}
