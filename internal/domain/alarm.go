package domain

import (
	"strconv"
	"strings"
	"time"
)

// AlarmType identifies one canonical notification category.
// Params: constants below cover the closed category set.
// Returns: normalized alarm type used across the pipeline.
type AlarmType string

const (
	// AlarmJoinRequested marks a join request sent to a group the user manages.
	AlarmJoinRequested AlarmType = "join-requested"
	// AlarmJoinResolved marks an accepted or denied join request the user sent.
	AlarmJoinResolved AlarmType = "join-resolved"
	// AlarmInviteReceived marks a group invitation addressed to the user.
	AlarmInviteReceived AlarmType = "invite-received"
	// AlarmInviteResolved marks an accepted or denied invitation outcome.
	AlarmInviteResolved AlarmType = "invite-resolved"
	// AlarmReviewRequired marks a code review requested from the user.
	AlarmReviewRequired AlarmType = "review-required"
	// AlarmReviewCreated marks a finished review on the user's submission.
	AlarmReviewCreated AlarmType = "review-created"
	// AlarmReviewReplied marks a reply on a review thread the user is part of.
	AlarmReviewReplied AlarmType = "review-replied"
)

// wireTypeTags maps server-side type tags to canonical alarm types.
var wireTypeTags = map[string]AlarmType{
	"GROUP_JOIN_APPLY":    AlarmJoinRequested,
	"GROUP_JOIN_RESULT":   AlarmJoinResolved,
	"GROUP_INVITE_APPLY":  AlarmInviteReceived,
	"GROUP_INVITE_RESULT": AlarmInviteResolved,
	"REVIEW_REQUEST":      AlarmReviewRequired,
	"REVIEW_COMPLETE":     AlarmReviewCreated,
	"REVIEW_REPLY":        AlarmReviewReplied,
}

// AlarmTypes lists every canonical alarm type.
// Params: none.
// Returns: closed category set in classification table order.
func AlarmTypes() []AlarmType {
	return []AlarmType{
		AlarmJoinRequested,
		AlarmJoinResolved,
		AlarmInviteReceived,
		AlarmInviteResolved,
		AlarmReviewRequired,
		AlarmReviewCreated,
		AlarmReviewReplied,
	}
}

// Alarm is the canonical, normalized representation of one pushed event.
// Params: server-assigned id, category, loose payload bag, fallback message.
// Returns: immutable record consumed by the classifier.
type Alarm struct {
	ID        string
	Type      AlarmType
	Payload   map[string]any
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// PayloadString reads one payload field as a string with a default.
// Params: payload bag, field key, and fallback for absent/blank values.
// Returns: trimmed field value or fallback.
func (a Alarm) PayloadString(key, fallback string) string {
	value, ok := a.Payload[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if !ok {
		return fallback
	}
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// PayloadID reads one payload identifier tolerating JSON number or string form.
// Params: payload bag and field key.
// Returns: identifier as decimal string and presence flag.
func (a Alarm) PayloadID(key string) (string, bool) {
	value, ok := a.Payload[key]
	if !ok {
		return "", false
	}
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		return trimmed, trimmed != ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	default:
		return "", false
	}
}
