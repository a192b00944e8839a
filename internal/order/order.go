// Package order implements the optional sort rank shared by pads, words, and categories.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Rank is an optional sort position. The zero value is unordered.
//
// On the wire a rank may be a JSON number, a numeric string, "" or null.
// Anything that does not parse as a number is treated as unordered.
type Rank struct {
	Value float64
	Set   bool
}

// At returns an ordered rank. NaN and infinities are unordered.
func At(v float64) Rank {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Rank{}
	}
	return Rank{Value: v, Set: true}
}

// Parse converts a user-entered rank. Blank, non-numeric and non-finite
// input such as "NaN" or "Inf" is unordered.
func Parse(raw string) Rank {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Rank{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Rank{}
	}
	return At(v)
}

// String renders the rank the way it is persisted in override entries.
func (r Rank) String() string {
	if !r.Set {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// IsZero lets omitempty drop unordered ranks.
func (r Rank) IsZero() bool {
	return !r.Set
}

// MarshalJSON encodes ordered ranks as strings, matching stored overrides.
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts numbers, numeric strings, empty strings, and null.
func (r *Rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Rank{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode order: %w", err)
		}
		*r = Parse(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*r = Rank{}
		return nil
	}
	*r = At(v)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML board files.
func (r *Rank) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = Rank{}
	case int:
		*r = At(float64(v))
	case float64:
		*r = At(v)
	case string:
		*r = Parse(v)
	default:
		*r = Rank{}
	}
	return nil
}

// Sort stably orders items so ranked entries come first, ascending.
// Unranked entries keep their relative position after the ranked ones.
func Sort[T any](items []T, rank func(T) Rank) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rank(items[i]), rank(items[j])
		switch {
		case ri.Set && rj.Set:
			return ri.Value < rj.Value
		case ri.Set:
			return true
		default:
			return false
		}
	})
}
