package classify

import (
	"fmt"
	"strings"

	"toastd/internal/domain"
)

const (
	defaultNickname = "알 수 없는 사용자"
	defaultProgram  = "그룹"

	acceptedMarker = "ACCEPTED"

	fallbackMessage = "새로운 알림이 도착했습니다."
)

const (
	payloadNickname   = "userNickname"
	payloadProgram    = "programName"
	payloadProgramID  = "programId"
	payloadInviteID   = "inviteId"
	payloadJoinID     = "joinId"
	payloadSubmission = "submissionId"
	payloadResult     = "result"
)

// Classify maps one canonical alarm to a toast descriptor.
// Params: normalized alarm record.
// Returns: severity, rendered Korean message pair, optional CTA and actions.
func Classify(alarm domain.Alarm) domain.ToastDescriptor {
	descriptor := domain.ToastDescriptor{
		Severity: domain.SeverityInfo,
		Position: domain.PositionBottomRight,
	}
	nickname := alarm.PayloadString(payloadNickname, defaultNickname)
	program := alarm.PayloadString(payloadProgram, defaultProgram)

	switch alarm.Type {
	case domain.AlarmJoinRequested:
		descriptor.Severity = domain.SeveritySuccess
		descriptor.Message = fmt.Sprintf("%s님이 '%s' 그룹 가입을 신청했습니다.", nickname, program)
		descriptor.Description = "수락 또는 거절을 선택해 주세요."
		descriptor.Actions = decisionActions(alarm, payloadJoinID, domain.CommandAcceptJoin, domain.CommandRejectJoin)
	case domain.AlarmJoinResolved:
		if resolutionAccepted(alarm) {
			descriptor.Severity = domain.SeveritySuccess
			descriptor.Message = fmt.Sprintf("'%s' 그룹 가입 신청이 수락되었습니다.", program)
		} else {
			descriptor.Severity = domain.SeverityError
			descriptor.Message = fmt.Sprintf("'%s' 그룹 가입 신청이 거절되었습니다.", program)
		}
	case domain.AlarmInviteReceived:
		descriptor.Severity = domain.SeveritySuccess
		descriptor.Message = fmt.Sprintf("%s님이 '%s' 그룹에 초대했습니다.", nickname, program)
		descriptor.Description = "수락 또는 거절을 선택해 주세요."
		descriptor.Actions = decisionActions(alarm, payloadInviteID, domain.CommandAcceptInvite, domain.CommandRejectInvite)
	case domain.AlarmInviteResolved:
		if resolutionAccepted(alarm) {
			descriptor.Severity = domain.SeveritySuccess
			descriptor.Message = fmt.Sprintf("'%s' 그룹 초대가 수락되었습니다.", program)
		} else {
			descriptor.Severity = domain.SeverityError
			descriptor.Message = fmt.Sprintf("'%s' 그룹 초대가 거절되었습니다.", program)
		}
	case domain.AlarmReviewRequired:
		descriptor.Severity = domain.SeverityWarning
		descriptor.Message = fmt.Sprintf("%s님이 코드 리뷰를 요청했습니다.", nickname)
		descriptor.CTA = reviewCTA(alarm)
	case domain.AlarmReviewCreated:
		descriptor.Severity = domain.SeveritySuccess
		descriptor.Message = fmt.Sprintf("%s님이 코드 리뷰를 남겼습니다.", nickname)
		descriptor.CTA = reviewCTA(alarm)
	case domain.AlarmReviewReplied:
		descriptor.Severity = domain.SeveritySuccess
		descriptor.Message = fmt.Sprintf("%s님이 리뷰에 답글을 남겼습니다.", nickname)
		descriptor.CTA = reviewCTA(alarm)
	default:
		descriptor.Message = strings.TrimSpace(alarm.Message)
	}

	// The pipeline never surfaces an empty toast: fall back to the raw server
	// message, then to a generic sentence.
	if strings.TrimSpace(descriptor.Message) == "" {
		descriptor.Message = strings.TrimSpace(alarm.Message)
	}
	if descriptor.Message == "" {
		descriptor.Message = fallbackMessage
	}
	return descriptor
}

// decisionActions builds the (accept, reject) pair when identifiers allow it.
// Params: alarm, payload key of the request id, and the bound command pair.
// Returns: two actions, or nil when either identifier is missing.
func decisionActions(alarm domain.Alarm, requestKey string, accept, reject domain.CommandKind) []domain.ToastAction {
	programID, ok := alarm.PayloadID(payloadProgramID)
	if !ok {
		return nil
	}
	requestID, ok := alarm.PayloadID(requestKey)
	if !ok {
		return nil
	}
	return []domain.ToastAction{
		{Label: "수락", Variant: "primary", Command: accept, ProgramID: programID, RequestID: requestID},
		{Label: "거절", Variant: "danger", Command: reject, ProgramID: programID, RequestID: requestID},
	}
}

// reviewCTA builds the review-screen navigation affordance.
// Params: alarm carrying optional submission/program identifiers.
// Returns: CTA routing to the review screen.
func reviewCTA(alarm domain.Alarm) *domain.CTA {
	params := map[string]string{}
	if programID, ok := alarm.PayloadID(payloadProgramID); ok {
		params["programId"] = programID
	}
	if submissionID, ok := alarm.PayloadID(payloadSubmission); ok {
		params["submissionId"] = submissionID
	}
	cta := &domain.CTA{Label: "리뷰 보기", Route: "/reviews"}
	if len(params) > 0 {
		cta.Params = params
	}
	return cta
}

// resolutionAccepted detects the acceptance marker for resolved invites/joins.
// The wire contract encodes the outcome as an English keyword inside the
// payload result field or the free-text message; a structured enum would be
// the better upstream contract, so the match is kept in this one place.
// Params: resolved-type alarm.
// Returns: true when the outcome reads as accepted.
func resolutionAccepted(alarm domain.Alarm) bool {
	result := alarm.PayloadString(payloadResult, "")
	haystack := strings.ToUpper(result + " " + alarm.Message)
	return strings.Contains(haystack, acceptedMarker)
}
