package dispatch

import (
	"context"
	"log/slog"

	"toastd/internal/domain"
	"toastd/internal/toast"
)

const (
	successMessage = "요청이 처리되었습니다."
	failureMessage = "요청 처리에 실패했습니다."
)

// Commander executes one bound decision command.
// Params: context, command kind, and resolved identifiers.
// Returns: transport or status error.
type Commander interface {
	Do(ctx context.Context, kind domain.CommandKind, programID, requestID string) error
}

// Toaster posts confirmation/error toasts and removes the origin toast.
// Params: descriptor for Post, entry id for Remove.
// Returns: posted entry; Remove reports whether anything was removed.
type Toaster interface {
	Post(descriptor domain.ToastDescriptor) toast.Entry
	Remove(id string) bool
}

// Dispatcher interprets action descriptors and reports outcomes as toasts.
// It carries no branching beyond kind-to-endpoint mapping inside the
// commander; success and failure both end with the origin toast gone.
// Params: commander, toaster, list-invalidation hook, and logger.
// Returns: action invocation entry point for viewports.
type Dispatcher struct {
	commands     Commander
	toasts       Toaster
	onListChange func()
	logger       *slog.Logger
}

// NewDispatcher creates the action dispatcher.
// Params: commander, toaster, alarm-list invalidation hook, and logger.
// Returns: initialized dispatcher.
func NewDispatcher(commands Commander, toasts Toaster, onListChange func(), logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		commands:     commands,
		toasts:       toasts,
		onListChange: onListChange,
		logger:       logger,
	}
}

// Invoke executes one action bound to a toast.
// Removing the origin toast doubles as the single-execution gate: the queue
// removes an id exactly once, so concurrent invokers for the same toast race
// on Remove and only the winner runs the command. Command failures become an
// error toast with a generic message; raw errors go only to the log and are
// never propagated.
// Params: context, origin toast id, and action descriptor.
// Returns: none.
func (d *Dispatcher) Invoke(ctx context.Context, toastID string, action domain.ToastAction) {
	if !d.toasts.Remove(toastID) {
		d.logger.Debug("action ignored for already-removed toast", "toast_id", toastID)
		return
	}

	err := d.commands.Do(ctx, action.Command, action.ProgramID, action.RequestID)
	if err != nil {
		d.logger.Error("action command failed",
			"command", string(action.Command),
			"program_id", action.ProgramID,
			"request_id", action.RequestID,
			"error", err.Error(),
		)
		d.toasts.Post(domain.ToastDescriptor{
			Message:  failureMessage,
			Severity: domain.SeverityError,
			Position: domain.PositionBottomRight,
		})
		return
	}

	d.logger.Info("action command processed",
		"command", string(action.Command),
		"program_id", action.ProgramID,
		"request_id", action.RequestID,
	)
	d.toasts.Post(domain.ToastDescriptor{
		Message:  successMessage,
		Severity: domain.SeveritySuccess,
		Position: domain.PositionBottomRight,
	})
	if d.onListChange != nil {
		d.onListChange()
	}
}
