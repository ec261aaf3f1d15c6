package meta

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RawEntry is a single driver listing entry before normalization.
type RawEntry interface {
	Type() string
	Path() string
	LastModified() int64
	FileSize() int64
}

// Adapt turns whatever a driver produced for a listing entry into a RawEntry.
// Values that already implement RawEntry are returned as is, attribute maps
// are wrapped.
func Adapt(v interface{}) (RawEntry, error) {
	switch e := v.(type) {
	case RawEntry:
		return e, nil
	case map[string]interface{}:
		return Attributes(e), nil
	default:
		return nil, fmt.Errorf("unsupported listing entry %T", v)
	}
}

// Attributes is a listing entry expressed as a map with the keys
// path, type, timestamp and (for files) size.
type Attributes map[string]interface{}

var _ RawEntry = Attributes(nil)

func (a Attributes) Type() string {
	s, _ := a["type"].(string)
	return s
}

func (a Attributes) Path() string {
	s, _ := a["path"].(string)
	return s
}

func (a Attributes) LastModified() int64 {
	return toInt64(a["timestamp"])
}

func (a Attributes) FileSize() int64 {
	return toInt64(a["size"])
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int64(f)
		}
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
