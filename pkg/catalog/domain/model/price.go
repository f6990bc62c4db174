package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price is a catalog price normalized at the boundary. Upstream data
// sources deliver prices as either JSON numbers or numeric strings;
// unparseable or negative input normalizes to zero instead of
// producing an error.
type Price float64

// ParsePrice coerces a raw value of unknown runtime shape into a Price.
func ParsePrice(raw any) Price {
	switch v := raw.(type) {
	case Price:
		return sanitize(float64(v))
	case float64:
		return sanitize(v)
	case float32:
		return sanitize(float64(v))
	case int:
		return sanitize(float64(v))
	case int64:
		return sanitize(float64(v))
	case json.Number:
		return parseString(v.String())
	case string:
		return parseString(v)
	default:
		return 0
	}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = sanitize(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = parseString(s)
		return nil
	}
	*p = 0
	return nil
}

// Amount returns the price as a plain float64, guarding once more
// against NaN and negative values so downstream arithmetic never sees
// them.
func (p Price) Amount() float64 {
	return float64(sanitize(float64(p)))
}

func parseString(s string) Price {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return sanitize(n)
}

func sanitize(n float64) Price {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return Price(n)
}
