package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeTypeTagPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want AlarmType
	}{
		{
			name: "explicit type-name field wins over everything",
			raw:  `{"alarmTypeName":"GROUP_INVITE_APPLY","type":"GROUP_JOIN_APPLY","alarm":{"name":"REVIEW_REQUEST"}}`,
			want: AlarmInviteReceived,
		},
		{
			name: "generic type field wins over nested object",
			raw:  `{"type":"GROUP_JOIN_APPLY","alarm":{"name":"REVIEW_REQUEST"}}`,
			want: AlarmJoinRequested,
		},
		{
			name: "nested object name field wins over nothing",
			raw:  `{"alarm":{"name":"REVIEW_REQUEST"}}`,
			want: AlarmReviewRequired,
		},
		{
			name: "bare nested string resolves last",
			raw:  `{"alarm":"REVIEW_REPLY"}`,
			want: AlarmReviewReplied,
		},
		{
			name: "blank explicit field falls through",
			raw:  `{"alarmTypeName":"  ","type":"GROUP_JOIN_RESULT"}`,
			want: AlarmJoinResolved,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			alarm, err := Normalize([]byte(tc.raw))
			if err != nil {
				t.Fatalf("expected normalized alarm, got error %v", err)
			}
			if alarm.Type != tc.want {
				t.Fatalf("expected type %q, got %q", tc.want, alarm.Type)
			}
		})
	}
}

func TestNormalizeNoTypeTag(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{}`,
		`{"payload":{"programId":1},"message":"hello"}`,
		`{"alarm":{}}`,
		`{"alarm":123}`,
		`{"alarmTypeName":"","type":"","alarm":{"name":""}}`,
	}
	for _, raw := range cases {
		if _, err := Normalize([]byte(raw)); !errors.Is(err, ErrNoType) {
			t.Fatalf("expected ErrNoType for %s, got %v", raw, err)
		}
	}
}

func TestNormalizeUnknownTypeTag(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte(`{"type":"SOMETHING_ELSE"}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte(`{"type":`))
	if err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
	if errors.Is(err, ErrNoType) || errors.Is(err, ErrUnknownType) {
		t.Fatalf("decode failure must not map to tag errors, got %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	alarm, err := Normalize([]byte(`{"type":"REVIEW_REQUEST"}`))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if alarm.Payload == nil || len(alarm.Payload) != 0 {
		t.Fatalf("expected empty payload map, got %#v", alarm.Payload)
	}
	if alarm.Message != "" {
		t.Fatalf("expected empty message, got %q", alarm.Message)
	}
	if alarm.IsRead {
		t.Fatalf("expected isRead false")
	}
	if alarm.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt default to now")
	}
	if time.Since(alarm.CreatedAt) > time.Minute {
		t.Fatalf("createdAt default too far in the past: %v", alarm.CreatedAt)
	}
}

func TestNormalizeToleratesNonObjectPayload(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"type":"REVIEW_REQUEST","payload":"x"}`,
		`{"type":"REVIEW_REQUEST","payload":[1,2]}`,
		`{"type":"REVIEW_REQUEST","payload":7}`,
		`{"type":"REVIEW_REQUEST","payload":null}`,
	}
	for _, raw := range cases {
		alarm, err := Normalize([]byte(raw))
		if err != nil {
			t.Fatalf("malformed payload must not drop the event %s: %v", raw, err)
		}
		if alarm.Payload == nil || len(alarm.Payload) != 0 {
			t.Fatalf("expected empty payload bag for %s, got %#v", raw, alarm.Payload)
		}
	}
}

func TestNormalizeCopiesFields(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": 42,
		"type": "GROUP_INVITE_APPLY",
		"payload": {"programId": 7, "inviteId": "3"},
		"message": "invited",
		"isRead": true,
		"createdAt": "2026-02-01T10:00:00Z"
	}`
	alarm, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if alarm.ID != "42" {
		t.Fatalf("expected numeric id normalized to string, got %q", alarm.ID)
	}
	if alarm.Message != "invited" || !alarm.IsRead {
		t.Fatalf("expected message/isRead copied, got %q/%v", alarm.Message, alarm.IsRead)
	}
	want := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if !alarm.CreatedAt.Equal(want) {
		t.Fatalf("expected createdAt %v, got %v", want, alarm.CreatedAt)
	}
}

func TestPayloadID(t *testing.T) {
	t.Parallel()

	alarm := Alarm{Payload: map[string]any{
		"numeric": float64(7),
		"text":    "13",
		"blank":   " ",
		"object":  map[string]any{},
	}}

	if id, ok := alarm.PayloadID("numeric"); !ok || id != "7" {
		t.Fatalf("expected numeric id 7, got %q/%v", id, ok)
	}
	if id, ok := alarm.PayloadID("text"); !ok || id != "13" {
		t.Fatalf("expected text id 13, got %q/%v", id, ok)
	}
	if _, ok := alarm.PayloadID("blank"); ok {
		t.Fatalf("blank identifier must not resolve")
	}
	if _, ok := alarm.PayloadID("object"); ok {
		t.Fatalf("object value must not resolve as identifier")
	}
	if _, ok := alarm.PayloadID("absent"); ok {
		t.Fatalf("absent key must not resolve")
	}
}

func TestPayloadStringFallback(t *testing.T) {
	t.Parallel()

	alarm := Alarm{Payload: map[string]any{
		"nickname": "홍길동",
		"blank":    "  ",
		"number":   float64(1),
	}}

	if got := alarm.PayloadString("nickname", "기본"); got != "홍길동" {
		t.Fatalf("expected stored value, got %q", got)
	}
	for _, key := range []string{"blank", "number", "absent"} {
		if got := alarm.PayloadString(key, "기본"); got != "기본" {
			t.Fatalf("expected fallback for %q, got %q", key, got)
		}
	}
}
