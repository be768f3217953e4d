package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"toastd/internal/domain"
	"toastd/internal/toast"
)

type commandCall struct {
	kind      domain.CommandKind
	programID string
	requestID string
}

type fakeCommander struct {
	err   error
	calls []commandCall
}

func (f *fakeCommander) Do(_ context.Context, kind domain.CommandKind, programID, requestID string) error {
	f.calls = append(f.calls, commandCall{kind: kind, programID: programID, requestID: requestID})
	return f.err
}

type fakeToaster struct {
	posted  []domain.ToastDescriptor
	removed []string
}

func (f *fakeToaster) Post(descriptor domain.ToastDescriptor) toast.Entry {
	f.posted = append(f.posted, descriptor)
	return toast.Entry{ID: "posted", ToastDescriptor: descriptor}
}

// Remove mimics the queue contract: a given id is removable exactly once.
func (f *fakeToaster) Remove(id string) bool {
	for _, seen := range f.removed {
		if seen == id {
			return false
		}
	}
	f.removed = append(f.removed, id)
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	commander := &fakeCommander{}
	toaster := &fakeToaster{}
	listInvalidations := 0
	dispatcher := NewDispatcher(commander, toaster, func() { listInvalidations++ }, discardLogger())

	dispatcher.Invoke(context.Background(), "origin-toast", domain.ToastAction{
		Label:     "수락",
		Command:   domain.CommandAcceptInvite,
		ProgramID: "7",
		RequestID: "3",
	})

	if len(toaster.removed) != 1 || toaster.removed[0] != "origin-toast" {
		t.Fatalf("expected origin toast removed first, got %v", toaster.removed)
	}
	if len(commander.calls) != 1 {
		t.Fatalf("expected one command call, got %d", len(commander.calls))
	}
	call := commander.calls[0]
	if call.kind != domain.CommandAcceptInvite || call.programID != "7" || call.requestID != "3" {
		t.Fatalf("unexpected command call %+v", call)
	}
	if len(toaster.posted) != 1 {
		t.Fatalf("expected one confirmation toast, got %d", len(toaster.posted))
	}
	confirmation := toaster.posted[0]
	if confirmation.Message != "요청이 처리되었습니다." || confirmation.Severity != domain.SeveritySuccess {
		t.Fatalf("unexpected confirmation toast %+v", confirmation)
	}
	if len(confirmation.Actions) != 0 {
		t.Fatalf("outcome toasts never carry actions")
	}
	if listInvalidations != 1 {
		t.Fatalf("expected one alarm-list invalidation, got %d", listInvalidations)
	}
}

func TestInvokeFailure(t *testing.T) {
	t.Parallel()

	commander := &fakeCommander{err: errors.New("status 409")}
	toaster := &fakeToaster{}
	listInvalidations := 0
	dispatcher := NewDispatcher(commander, toaster, func() { listInvalidations++ }, discardLogger())

	dispatcher.Invoke(context.Background(), "origin-toast", domain.ToastAction{
		Label:     "거절",
		Command:   domain.CommandRejectJoin,
		ProgramID: "7",
		RequestID: "9",
	})

	if len(toaster.removed) != 1 {
		t.Fatalf("origin toast is removed even on failure, got %v", toaster.removed)
	}
	if len(toaster.posted) != 1 {
		t.Fatalf("expected one error toast, got %d", len(toaster.posted))
	}
	failure := toaster.posted[0]
	if failure.Message != "요청 처리에 실패했습니다." || failure.Severity != domain.SeverityError {
		t.Fatalf("unexpected error toast %+v", failure)
	}
	if failure.Message == "status 409" {
		t.Fatalf("raw errors must never surface in toasts")
	}
	if listInvalidations != 0 {
		t.Fatalf("failed commands must not invalidate the alarm list")
	}
}

func TestInvokeAtMostOncePerToast(t *testing.T) {
	t.Parallel()

	commander := &fakeCommander{}
	toaster := &fakeToaster{}
	dispatcher := NewDispatcher(commander, toaster, nil, discardLogger())
	action := domain.ToastAction{
		Label:     "수락",
		Command:   domain.CommandAcceptInvite,
		ProgramID: "7",
		RequestID: "3",
	}

	dispatcher.Invoke(context.Background(), "origin-toast", action)
	dispatcher.Invoke(context.Background(), "origin-toast", action)

	if len(commander.calls) != 1 {
		t.Fatalf("command executed %d times for one toast", len(commander.calls))
	}
	if len(toaster.posted) != 1 {
		t.Fatalf("expected a single outcome toast, got %d", len(toaster.posted))
	}
}

func TestInvokeWithoutListHook(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(&fakeCommander{}, &fakeToaster{}, nil, discardLogger())
	dispatcher.Invoke(context.Background(), "origin-toast", domain.ToastAction{
		Command:   domain.CommandAcceptJoin,
		ProgramID: "1",
		RequestID: "2",
	})
}
