package schema

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/richtext"
)

// leading numeric prefix, "300px" reads as 300
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading numeric prefix of s
func ParseNumber(s string) (float64, bool) {
	prefix := numericPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerce converts v to the go representation of t
func coerce(t ValueType, v any) (any, bool) {
	switch t {
	case TypeString:
		return toString(v)
	case TypeNumber:
		return toNumber(v)
	case TypeBoolean:
		return toBool(v)
	case TypeArray:
		return toRichText(v)
	case TypeHTML:
		return toHTML(v)
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case markup.Fragment:
		return string(value), true
	case richtext.Nodes:
		return value.PlainText(), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case bool:
		return strconv.FormatBool(value), true
	}
	return nil, false
}

func toNumber(v any) (any, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		return ParseNumber(value)
	}
	return nil, false
}

func toBool(v any) (any, bool) {
	switch value := v.(type) {
	case bool:
		return value, true
	case string:
		b, err := strconv.ParseBool(value)
		return b, err == nil
	}
	return nil, false
}

func toRichText(v any) (any, bool) {
	switch value := v.(type) {
	case richtext.Nodes:
		return value.Normalize(), true
	case []richtext.Node:
		return richtext.Nodes(value).Normalize(), true
	case string:
		// a literal attribute becomes a single text run
		return richtext.Nodes{richtext.Text(value)}.Normalize(), true
	case []any:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, false
		}
		var nodes richtext.Nodes
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, false
		}
		return nodes.Normalize(), true
	}
	return nil, false
}

func toHTML(v any) (any, bool) {
	switch value := v.(type) {
	case markup.Fragment:
		return value, true
	case string:
		return markup.Fragment(value), true
	case richtext.Nodes:
		return value.Render(), true
	}
	return nil, false
}
