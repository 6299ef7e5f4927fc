// Package history owns the ordered collection of recorded events and its
// persisted JSON representation.
//
// A History is always sorted by timestamp descending (most recent first).
// Every function that returns a History re-establishes that order, so
// callers never need to sort themselves.
//
// The persisted form is a JSON array. Two element shapes are accepted:
//
//	{"timestamp": 1700000000000, "bristolType": 4}   current object form
//	1700000000000                                    legacy bare timestamp
//
// Serialize always writes the object form.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rewired-gh/pooptracker/internal/models"
)

// ErrCorrupt is returned by Load when the persisted container cannot be parsed.
// The accompanying History is empty and safe to use; callers should reset
// the stored value.
var ErrCorrupt = errors.New("corrupt event history")

// History is the ordered event collection, most recent first.
type History []models.Event

const (
	keyTimestamp   = "timestamp"
	keyBristolType = "bristolType"
)

// Load parses a persisted history. An empty raw string means nothing has
// been stored yet and yields an empty history with no error.
//
// Malformed elements are skipped individually. If the container itself is
// unreadable, Load returns an empty history together with ErrCorrupt.
func Load(raw string) (History, error) {
	if strings.TrimSpace(raw) == "" {
		return History{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return History{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	h := make(History, 0, len(elements))
	for _, element := range elements {
		if event, ok := parseElement(element); ok {
			h = append(h, event)
		}
	}
	sortDescending(h)
	return h, nil
}

// parseElement decodes one array element as either the object variant or
// the legacy integer variant.
func parseElement(element json.RawMessage) (models.Event, bool) {
	trimmed := bytes.TrimSpace(element)
	if len(trimmed) == 0 {
		return models.Event{}, false
	}

	switch c := trimmed[0]; {
	case c == '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return models.Event{}, false
		}
		ts, ok := parseInteger(fields[keyTimestamp])
		if !ok {
			return models.Event{}, false
		}
		bristolType := models.DefaultBristolType
		if v, ok := parseInteger(fields[keyBristolType]); ok {
			// Clamp in int64 so huge values land on 7, not on a wrapped int.
			bristolType = int(min(max(v, models.MinBristolType), models.MaxBristolType))
		}
		return models.NewEvent(ts, bristolType), true

	case c == '-' || (c >= '0' && c <= '9'):
		ts, ok := parseInteger(trimmed)
		if !ok {
			return models.Event{}, false
		}
		return models.NewEvent(ts, models.DefaultBristolType), true
	}

	return models.Event{}, false
}

// parseInteger accepts a JSON number holding a whole value.
func parseInteger(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Add records a new event with bristolType clamped into [1,7] and returns
// the re-sorted history. It does not persist anything.
func Add(h History, timestamp int64, bristolType int) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	out = append(out, models.NewEvent(timestamp, bristolType))
	sortDescending(out)
	return out
}

// Serialize renders the canonical persisted form: a JSON array of objects
// sorted by timestamp descending.
func Serialize(h History) (string, error) {
	out := make(History, len(h))
	copy(out, h)
	sortDescending(out)

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal history: %w", err)
	}
	return string(data), nil
}

// Latest returns the most recent event, if any.
func (h History) Latest() (models.Event, bool) {
	if len(h) == 0 {
		return models.Event{}, false
	}
	return h[0], true
}

// Sorted reports whether h is in descending timestamp order.
func Sorted(h History) bool {
	return sort.SliceIsSorted(h, func(i, j int) bool {
		return h[i].Timestamp > h[j].Timestamp
	})
}

func sortDescending(h History) {
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].Timestamp > h[j].Timestamp
	})
}
