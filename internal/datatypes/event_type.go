// Package datatypes defines shared types for events and console codes.
package datatypes

import (
	"errors"
	"fmt"
)

// Event type validation errors (sentinels for err113).
var (
	ErrInvalidEventType = errors.New("invalid event type")
)

// EventType represents a webhook event type as an enum.
// Use String() to get the string representation for API/database.
type EventType uint16

// Event type constants; string form is given in eventTypeMap.
const (
	GameCreated EventType = iota
	GameUpdated
	GameDeleted
	HookTest0
	HookTest1
)

// eventTypeMap maps string representations to EventType enums.
// This is the single source of truth for valid event type strings.
var eventTypeMap = map[string]EventType{
	"on-create-game": GameCreated,
	"on-update-game": GameUpdated,
	"on-delete-game": GameDeleted,
	"hook-test-0":    HookTest0,
	"hook-test-1":    HookTest1,
}

// reverseEventTypeMap maps EventType enums to string representations.
// Built at init time from eventTypeMap for O(1) lookups.
var reverseEventTypeMap map[EventType]string

func init() {
	reverseEventTypeMap = make(map[EventType]string, len(eventTypeMap))
	for str, eventType := range eventTypeMap {
		reverseEventTypeMap[eventType] = str
	}
}

// String returns the string representation of an EventType.
// Implements fmt.Stringer. Returns empty string for invalid event types.
func (et EventType) String() string {
	str, ok := reverseEventTypeMap[et]
	if !ok {
		return ""
	}

	return str
}

// ParseEventType converts a string to an EventType enum.
// Returns the EventType and true if valid, or 0 and false if invalid.
func ParseEventType(s string) (EventType, bool) {
	et, ok := eventTypeMap[s]

	return et, ok
}

// MustParseEventType converts a string to an EventType enum, wrapping
// ErrInvalidEventType when the string is not a known event type.
func MustParseEventType(s string) (EventType, error) {
	et, ok := eventTypeMap[s]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidEventType, s)
	}

	return et, nil
}

// IsValidEventType checks if an event type string is valid.
func IsValidEventType(eventType string) bool {
	_, ok := eventTypeMap[eventType]

	return ok
}

// AllEventTypes returns all valid event type strings (for validation).
// The order is not guaranteed (map iteration order).
func AllEventTypes() []string {
	types := make([]string, 0, len(eventTypeMap))
	for k := range eventTypeMap {
		types = append(types, k)
	}

	return types
}
