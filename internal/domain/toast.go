package domain

// Severity ranks one toast by visual weight.
// Params: constants success/error/warning/info.
// Returns: severity value attached to toast descriptors.
type Severity string

const (
	// SeveritySuccess marks positive confirmations.
	SeveritySuccess Severity = "success"
	// SeverityError marks failures and denials.
	SeverityError Severity = "error"
	// SeverityWarning marks items that need the user's action.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks neutral informational toasts.
	SeverityInfo Severity = "info"
)

// Position is the logical viewport slot a toast renders into.
// Params: constants below; viewports filter the queue by position.
// Returns: placement value attached to toast descriptors.
type Position string

const (
	// PositionBottomRight is the asynchronous slot for push-driven toasts.
	PositionBottomRight Position = "bottom-right"
	// PositionTopCenter is the synchronous slot for in-page confirmations.
	PositionTopCenter Position = "top-center"
)

// CommandKind identifies one bound command the dispatcher can execute.
// Params: constants for the four invite/join decisions.
// Returns: command selector carried inside action descriptors.
type CommandKind string

const (
	// CommandAcceptInvite accepts a group invitation the user received.
	CommandAcceptInvite CommandKind = "accept-invite"
	// CommandRejectInvite rejects a group invitation the user received.
	CommandRejectInvite CommandKind = "reject-invite"
	// CommandAcceptJoin accepts a join request sent to the user's group.
	CommandAcceptJoin CommandKind = "accept-join"
	// CommandRejectJoin rejects a join request sent to the user's group.
	CommandRejectJoin CommandKind = "reject-join"
)

// CTA is a single navigation affordance attached to a toast.
// Params: label text, route path, and optional route params.
// Returns: call-to-action descriptor.
type CTA struct {
	Label  string            `json:"label"`
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
}

// ToastAction is one inline button bound to a command at classification time.
// Params: label/variant for rendering plus the command and its identifiers.
// Returns: action as data; a separate dispatcher interprets it.
type ToastAction struct {
	Label     string      `json:"label"`
	Variant   string      `json:"variant"`
	Command   CommandKind `json:"command"`
	ProgramID string      `json:"programId"`
	RequestID string      `json:"requestId"`
}

// ToastDescriptor is the classifier output consumed by the toast queue.
// Params: rendered message pair, severity, placement, and optional cta/actions.
// Returns: everything needed to create one queue entry.
type ToastDescriptor struct {
	Message     string        `json:"message"`
	Description string        `json:"description,omitempty"`
	Severity    Severity      `json:"severity"`
	Position    Position      `json:"position"`
	CTA         *CTA          `json:"cta,omitempty"`
	Actions     []ToastAction `json:"actions,omitempty"`
}
