package classify

import (
	"strings"
	"testing"

	"toastd/internal/domain"
)

func TestClassifyCoversEveryAlarmType(t *testing.T) {
	t.Parallel()

	for _, alarmType := range domain.AlarmTypes() {
		descriptor := Classify(domain.Alarm{Type: alarmType})
		if strings.TrimSpace(descriptor.Message) == "" {
			t.Fatalf("type %q produced an empty message", alarmType)
		}
		if strings.Contains(descriptor.Message, "%!") {
			t.Fatalf("type %q leaked a format verb: %q", alarmType, descriptor.Message)
		}
		if descriptor.Severity == "" {
			t.Fatalf("type %q produced no severity", alarmType)
		}
		if descriptor.Position != domain.PositionBottomRight {
			t.Fatalf("type %q expected bottom-right position, got %q", alarmType, descriptor.Position)
		}
	}
}

func TestClassifyEmptyPayloadUsesDefaults(t *testing.T) {
	t.Parallel()

	descriptor := Classify(domain.Alarm{Type: domain.AlarmJoinRequested})
	if !strings.Contains(descriptor.Message, "알 수 없는 사용자") {
		t.Fatalf("expected default nickname in message, got %q", descriptor.Message)
	}
	if !strings.Contains(descriptor.Message, "그룹") {
		t.Fatalf("expected default program name in message, got %q", descriptor.Message)
	}
}

func TestClassifyInviteReceived(t *testing.T) {
	t.Parallel()

	alarm, err := domain.Normalize([]byte(`{
		"type": "GROUP_INVITE_APPLY",
		"payload": {"programId": 7, "inviteId": 3, "userNickname": "홍길동", "programName": "스터디"},
		"message": ""
	}`))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	descriptor := Classify(alarm)
	if !strings.Contains(descriptor.Message, "홍길동") || !strings.Contains(descriptor.Message, "스터디") {
		t.Fatalf("expected nickname and program in message, got %q", descriptor.Message)
	}
	if descriptor.Severity != domain.SeveritySuccess {
		t.Fatalf("expected success severity, got %q", descriptor.Severity)
	}
	if len(descriptor.Actions) != 2 {
		t.Fatalf("expected accept/reject pair, got %d actions", len(descriptor.Actions))
	}

	accept, reject := descriptor.Actions[0], descriptor.Actions[1]
	if accept.Label != "수락" || accept.Command != domain.CommandAcceptInvite {
		t.Fatalf("unexpected accept action %+v", accept)
	}
	if reject.Label != "거절" || reject.Command != domain.CommandRejectInvite {
		t.Fatalf("unexpected reject action %+v", reject)
	}
	for _, action := range descriptor.Actions {
		if action.ProgramID != "7" || action.RequestID != "3" {
			t.Fatalf("expected identifiers 7/3, got %+v", action)
		}
	}
}

func TestClassifyActionsRequireBothIdentifiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{name: "no identifiers", payload: map[string]any{}},
		{name: "program only", payload: map[string]any{"programId": float64(7)}},
		{name: "request only", payload: map[string]any{"inviteId": float64(3)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			descriptor := Classify(domain.Alarm{Type: domain.AlarmInviteReceived, Payload: tc.payload})
			if descriptor.Actions != nil {
				t.Fatalf("expected no actions, got %+v", descriptor.Actions)
			}
			if strings.TrimSpace(descriptor.Message) == "" {
				t.Fatalf("informational toast still needs a message")
			}
		})
	}
}

func TestClassifyResolvedOutcome(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		alarm        domain.Alarm
		wantSeverity domain.Severity
		wantFragment string
	}{
		{
			name: "invite accepted via payload result",
			alarm: domain.Alarm{
				Type:    domain.AlarmInviteResolved,
				Payload: map[string]any{"result": "accepted", "programName": "스터디"},
			},
			wantSeverity: domain.SeveritySuccess,
			wantFragment: "수락",
		},
		{
			name: "invite rejected",
			alarm: domain.Alarm{
				Type:    domain.AlarmInviteResolved,
				Payload: map[string]any{"result": "REJECTED", "programName": "스터디"},
			},
			wantSeverity: domain.SeverityError,
			wantFragment: "거절",
		},
		{
			name: "join accepted via message text",
			alarm: domain.Alarm{
				Type:    domain.AlarmJoinResolved,
				Message: "your request was ACCEPTED",
			},
			wantSeverity: domain.SeveritySuccess,
			wantFragment: "수락",
		},
		{
			name: "join without any marker reads as rejected",
			alarm: domain.Alarm{
				Type: domain.AlarmJoinResolved,
			},
			wantSeverity: domain.SeverityError,
			wantFragment: "거절",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			descriptor := Classify(tc.alarm)
			if descriptor.Severity != tc.wantSeverity {
				t.Fatalf("expected severity %q, got %q", tc.wantSeverity, descriptor.Severity)
			}
			if !strings.Contains(descriptor.Message, tc.wantFragment) {
				t.Fatalf("expected %q in message, got %q", tc.wantFragment, descriptor.Message)
			}
			if len(descriptor.Actions) != 0 {
				t.Fatalf("resolved alarms carry no actions, got %+v", descriptor.Actions)
			}
		})
	}
}

func TestClassifyReviewCTA(t *testing.T) {
	t.Parallel()

	alarm := domain.Alarm{
		Type: domain.AlarmReviewRequired,
		Payload: map[string]any{
			"userNickname": "김철수",
			"programId":    float64(7),
			"submissionId": float64(21),
		},
	}
	descriptor := Classify(alarm)
	if descriptor.Severity != domain.SeverityWarning {
		t.Fatalf("expected warning severity, got %q", descriptor.Severity)
	}
	if descriptor.CTA == nil {
		t.Fatalf("expected review CTA")
	}
	if descriptor.CTA.Route != "/reviews" || descriptor.CTA.Label != "리뷰 보기" {
		t.Fatalf("unexpected CTA %+v", descriptor.CTA)
	}
	if descriptor.CTA.Params["programId"] != "7" || descriptor.CTA.Params["submissionId"] != "21" {
		t.Fatalf("unexpected CTA params %+v", descriptor.CTA.Params)
	}
}

func TestClassifyReviewCTAWithoutIdentifiers(t *testing.T) {
	t.Parallel()

	descriptor := Classify(domain.Alarm{Type: domain.AlarmReviewCreated})
	if descriptor.CTA == nil {
		t.Fatalf("expected CTA even without identifiers")
	}
	if descriptor.CTA.Params != nil {
		t.Fatalf("expected no CTA params, got %+v", descriptor.CTA.Params)
	}
}

func TestClassifyMessageFallbackChain(t *testing.T) {
	t.Parallel()

	withServerMessage := Classify(domain.Alarm{Type: "unmapped", Message: "  서버 메시지  "})
	if withServerMessage.Message != "서버 메시지" {
		t.Fatalf("expected trimmed server message, got %q", withServerMessage.Message)
	}

	withNothing := Classify(domain.Alarm{Type: "unmapped"})
	if withNothing.Message != "새로운 알림이 도착했습니다." {
		t.Fatalf("expected generic fallback, got %q", withNothing.Message)
	}
	if withNothing.Severity != domain.SeverityInfo {
		t.Fatalf("expected info severity for unmapped type, got %q", withNothing.Severity)
	}
}
