package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Shape tells which response layout the platform API used.
type Shape string

const (
	// ShapeEmpty is an empty body or JSON null.
	ShapeEmpty Shape = "empty"
	// ShapeArray is a bare JSON array.
	ShapeArray Shape = "array"
	// ShapePaginated is an envelope carrying pagination.total, with or
	// without a data array.
	ShapePaginated Shape = "paginated"
	// ShapeEnvelope is {data: [...]} without a usable pagination total. A
	// missing or null data field is an empty page.
	ShapeEnvelope Shape = "envelope"
)

// List is the normalised form of a list-like upstream payload.
type List[T any] struct {
	Shape Shape
	Items []T
	// Total is pagination.total when the envelope carried one.
	Total *int
	// Received counts raw items on the page, including ones that failed to decode.
	Received int
}

// Count prefers the server-side total over the size of the received page.
func (l List[T]) Count() int {
	if l.Total != nil && *l.Total >= 0 {
		return *l.Total
	}
	return l.Received
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total *json.Number `json:"total"`
	} `json:"pagination"`
}

// DecodeList detects the payload shape and decodes its items into T.
// Items that do not decode into T are skipped but still counted in Received.
func DecodeList[T any](raw []byte) (List[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if isNullJSON(trimmed) {
		return List[T]{Shape: ShapeEmpty, Items: []T{}}, nil
	}

	switch trimmed[0] {
	case '[':
		items, received, err := decodeItems[T](trimmed)
		if err != nil {
			return List[T]{}, err
		}
		return List[T]{Shape: ShapeArray, Items: items, Received: received}, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return List[T]{}, fmt.Errorf("decode envelope: %w", err)
		}
		list := List[T]{Shape: ShapeEnvelope, Items: []T{}}
		data := bytes.TrimSpace(env.Data)
		switch {
		case isNullJSON(data):
		case data[0] == '[':
			items, received, err := decodeItems[T](data)
			if err != nil {
				return List[T]{}, err
			}
			list.Items, list.Received = items, received
		default:
			return List[T]{}, fmt.Errorf("envelope data is not an array")
		}
		if env.Pagination != nil && env.Pagination.Total != nil {
			if total, ok := parseTotal(*env.Pagination.Total); ok {
				list.Shape = ShapePaginated
				list.Total = &total
			}
		}
		return list, nil
	default:
		return List[T]{}, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

func isNullJSON(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeItems[T any](raw []byte) ([]T, int, error) {
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, 0, fmt.Errorf("decode items: %w", err)
	}
	items := make([]T, 0, len(rawItems))
	for _, rawItem := range rawItems {
		var item T
		if err := json.Unmarshal(rawItem, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, len(rawItems), nil
}

// parseTotal reads a non-negative total, clamped to math.MaxInt32.
func parseTotal(n json.Number) (int, bool) {
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, false
		}
		return int(min(v, math.MaxInt32)), true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0, false
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(f), true
}

// FlexString accepts JSON strings and numbers, e.g. ids that some deployments
// serialise as integers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	if v, err := num.Int64(); err == nil {
		*s = FlexString(strconv.FormatInt(v, 10))
		return nil
	}
	*s = FlexString(num.String())
	return nil
}
