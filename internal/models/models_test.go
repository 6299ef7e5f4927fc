package models

import (
	"strings"
	"testing"
)

func TestNewEventClampsBristolType(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"zero clamps to 1", 0, 1},
		{"negative clamps to 1", -5, 1},
		{"lower bound kept", 1, 1},
		{"default kept", 4, 4},
		{"upper bound kept", 7, 7},
		{"large clamps to 7", 99, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvent(1000, tt.input)
			if e.BristolType != tt.expected {
				t.Errorf("NewEvent(_, %d).BristolType = %d, expected %d", tt.input, e.BristolType, tt.expected)
			}
			if e.Timestamp != 1000 {
				t.Errorf("Expected timestamp 1000, got %d", e.Timestamp)
			}
			if err := e.Validate(); err != nil {
				t.Errorf("Validate() on constructed event failed: %v", err)
			}
		})
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"valid event", Event{Timestamp: 1, BristolType: 3}, false},
		{"type too low", Event{Timestamp: 1, BristolType: 0}, true},
		{"type too high", Event{Timestamp: 1, BristolType: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Event.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventTime(t *testing.T) {
	e := NewEvent(1700000000000, 4)
	got := e.Time()
	if got.UnixMilli() != 1700000000000 {
		t.Errorf("Expected %d, got %d", int64(1700000000000), got.UnixMilli())
	}
	if got.Location().String() != "UTC" {
		t.Errorf("Expected UTC location, got %s", got.Location())
	}
}

func TestBristolLabel(t *testing.T) {
	if got := BristolLabel(4); !strings.HasPrefix(got, "Type 4 - ") {
		t.Errorf("Unexpected label: %s", got)
	}
	if got := BristolLabel(42); !strings.HasPrefix(got, "Type 7 - ") {
		t.Errorf("Expected out-of-range type to clamp, got %s", got)
	}
	for i := MinBristolType; i <= MaxBristolType; i++ {
		if BristolDescription(i) == "" {
			t.Errorf("Missing description for type %d", i)
		}
	}
}
