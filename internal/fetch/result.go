package fetch

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Result is a payload plus where it came from.
type Result struct {
	FetchedAt   time.Time       `json:"fetched_at"`
	CacheSource string          `json:"cache_source,omitempty"`
	Error       string          `json:"error,omitempty"`
	Data        json.RawMessage `json:"data"`
	FromCache   bool            `json:"from_cache"`
	Fresh       bool            `json:"fresh"`
	Stale       bool            `json:"stale"`
}

func (r *Result) clone() *Result {
	cp := *r
	cp.Data = bytes.Clone(r.Data)
	return &cp
}

// JSON returns the payload with provenance fields merged in. Object payloads
// gain fromCache, fresh, stale and, when set, cacheSource and error keys.
// Other payloads are wrapped as {"data": payload}.
func (r *Result) JSON() ([]byte, error) {
	out := []byte(`{}`)
	switch {
	case len(r.Data) == 0:
	case gjson.ParseBytes(r.Data).IsObject():
		out = bytes.Clone(r.Data)
	default:
		var err error
		if out, err = sjson.SetRawBytes(out, "data", r.Data); err != nil {
			return nil, err
		}
	}

	fields := []struct {
		value any
		path  string
		skip  bool
	}{
		{path: "fromCache", value: r.FromCache},
		{path: "fresh", value: r.Fresh},
		{path: "stale", value: r.Stale},
		{path: "cacheSource", value: r.CacheSource, skip: r.CacheSource == ""},
		{path: "error", value: r.Error, skip: r.Error == ""},
	}
	for _, f := range fields {
		if f.skip {
			continue
		}
		var err error
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return out, nil
}
