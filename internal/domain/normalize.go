package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoType reports an inbound event without any recognizable type tag.
	ErrNoType = errors.New("no recognizable type tag")
	// ErrUnknownType reports a resolvable tag outside the supported set.
	ErrUnknownType = errors.New("unknown type tag")
)

// rawEvent mirrors the transport payload shape before normalization.
// Params: JSON fields as delivered by the push stream.
// Returns: loosely decoded event pending type resolution.
type rawEvent struct {
	ID            json.RawMessage `json:"id"`
	AlarmTypeName string          `json:"alarmTypeName"`
	Type          string          `json:"type"`
	Alarm         json.RawMessage `json:"alarm"`
	Payload       json.RawMessage `json:"payload"`
	Message       string          `json:"message"`
	IsRead        bool            `json:"isRead"`
	CreatedAt     string          `json:"createdAt"`
}

// typeExtractor attempts to read the event type tag from one source field.
// Params: decoded raw event.
// Returns: tag value and success flag.
type typeExtractor func(event rawEvent) (string, bool)

// typeExtractors is the fixed precedence order for type tag resolution:
// explicit type-name field, generic type field, nested object name field,
// then a bare-string nested value. First non-empty match wins.
var typeExtractors = []typeExtractor{
	func(event rawEvent) (string, bool) {
		return nonEmpty(event.AlarmTypeName)
	},
	func(event rawEvent) (string, bool) {
		return nonEmpty(event.Type)
	},
	func(event rawEvent) (string, bool) {
		var nested struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(event.Alarm, &nested); err != nil {
			return "", false
		}
		return nonEmpty(nested.Name)
	},
	func(event rawEvent) (string, bool) {
		var bare string
		if err := json.Unmarshal(event.Alarm, &bare); err != nil {
			return "", false
		}
		return nonEmpty(bare)
	},
}

// Normalize converts one raw push payload into a canonical alarm.
// Params: JSON document bytes from the NOTIFICATION event.
// Returns: normalized alarm, or decode/ErrNoType/ErrUnknownType error.
func Normalize(raw []byte) (Alarm, error) {
	var event rawEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return Alarm{}, fmt.Errorf("decode push event: %w", err)
	}

	tag, ok := resolveTypeTag(event)
	if !ok {
		return Alarm{}, ErrNoType
	}
	alarmType, ok := wireTypeTags[tag]
	if !ok {
		return Alarm{}, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}

	return Alarm{
		ID:        decodeAlarmID(event.ID),
		Type:      alarmType,
		Payload:   decodePayload(event.Payload),
		Message:   event.Message,
		IsRead:    event.IsRead,
		CreatedAt: decodeCreatedAt(event.CreatedAt),
	}, nil
}

// resolveTypeTag runs extractors in precedence order until one matches.
// Params: decoded raw event.
// Returns: trimmed tag and success flag.
func resolveTypeTag(event rawEvent) (string, bool) {
	for _, extract := range typeExtractors {
		if tag, ok := extract(event); ok {
			return tag, true
		}
	}
	return "", false
}

// decodePayload reads the payload bag tolerating absent, null, or non-object
// shapes; anything that is not a JSON object becomes an empty bag instead of
// failing the whole event.
// Params: raw payload bytes.
// Returns: decoded map, never nil.
func decodePayload(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil || bag == nil {
		return map[string]any{}
	}
	return bag
}

// decodeAlarmID reads the server id tolerating number or string form.
// Params: raw id bytes.
// Returns: id as string, empty when absent or malformed.
func decodeAlarmID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

// decodeCreatedAt parses the ISO timestamp with a now fallback.
// Params: timestamp string from transport.
// Returns: parsed UTC time or current time when absent/invalid.
func decodeCreatedAt(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Now().UTC()
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed.UTC()
	}
	if parsed, err := time.Parse("2006-01-02T15:04:05", trimmed); err == nil {
		return parsed.UTC()
	}
	return time.Now().UTC()
}

// nonEmpty trims value and reports whether anything remains.
// Params: candidate tag value.
// Returns: trimmed value and non-empty flag.
func nonEmpty(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	return trimmed, trimmed != ""
}
