package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"toastd/internal/badge"
	"toastd/internal/clock"
	"toastd/internal/command"
	"toastd/internal/config"
	"toastd/internal/dispatch"
	"toastd/internal/httpapi"
	"toastd/internal/logging"
	"toastd/internal/mirror"
	"toastd/internal/push"
	"toastd/internal/toast"
)

// Service composes runtime dependencies and process lifecycle.
// Params: config snapshot and shared runtime components.
// Returns: runnable notification daemon.
type Service struct {
	cfg        config.Config
	logger     *slog.Logger
	closeLog   func()
	queue      *toast.Queue
	controller *toast.Controller
	unread     *badge.Badge
	center     *Center
	pushMgr    *push.Manager
	httpSrv    *http.Server
	readyFlag  atomic.Bool
	clk        clock.Clock
}

// NewService builds the service from a validated config snapshot.
// Params: config and clock implementation.
// Returns: initialized service or setup error.
func NewService(cfg config.Config, clk clock.Clock) (*Service, error) {
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	queue := toast.NewQueue(cfg.Toast.Capacity, clk.Now)
	controller := toast.NewController(queue, clk, logger, toast.ControllerConfig{
		SimpleDuration: time.Duration(cfg.Toast.SimpleDurationMS) * time.Millisecond,
		ActionDuration: time.Duration(cfg.Toast.ActionDurationMS) * time.Millisecond,
		ExitDelay:      time.Duration(cfg.Toast.ExitDelayMS) * time.Millisecond,
	})

	commands := command.NewClient(
		cfg.Command.BaseURL,
		cfg.Session.Token,
		command.WithTimeout(time.Duration(cfg.Command.TimeoutSec)*time.Second),
	)
	unread := badge.New(commands.UnreadCount, logger)

	var mirrorSink Mirrorer
	if cfg.Mirror.Enabled {
		mirrorSink = mirror.NewTelegramMirror(cfg.Mirror.BotToken, cfg.Mirror.ChatID, logger)
	}

	center := NewCenter(queue, controller, unread, mirrorSink, nil, logger)
	dispatcher := dispatch.NewDispatcher(commands, center, center.InvalidateAlarmList, logger)

	transport, err := buildTransport(cfg.Push, logger)
	if err != nil {
		_ = unread.Close()
		controller.Stop()
		closeLog()
		return nil, err
	}
	pushMgr := push.NewManager(transport, center, center, logger, nil)

	service := &Service{
		cfg:        cfg,
		logger:     logger,
		closeLog:   closeLog,
		queue:      queue,
		controller: controller,
		unread:     unread,
		center:     center,
		pushMgr:    pushMgr,
		clk:        clk,
	}
	service.buildHTTPServer(dispatcher)
	return service, nil
}

// Run starts the service lifecycle and blocks until shutdown signal.
// Params: root context for service runtime.
// Returns: terminal run error.
func (s *Service) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http surface starting", "listen", s.cfg.Service.Listen)
		err := s.httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// A connect failure is surfaced but not fatal: the toast surface keeps
	// serving ad-hoc toasts, and the operator may restart with fresh
	// credentials. No reconnect policy lives here.
	if err := s.pushMgr.Connect(ctx, s.cfg.Session.Token, s.cfg.Session.PrincipalType); err != nil {
		s.logger.Error("push connect failed", "error", err.Error())
	}

	s.readyFlag.Store(true)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		_ = s.shutdown()
		return fmt.Errorf("http surface failed: %w", err)
	case <-sigChan:
		return s.shutdown()
	}
}

// shutdown closes runtime resources in dependency order.
// Params: none.
// Returns: first close error.
func (s *Service) shutdown() error {
	s.readyFlag.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var firstErr error
	markErr := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.pushMgr.Disconnect()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("http shutdown failed", "error", err.Error())
		markErr(fmt.Errorf("http shutdown: %w", err))
	}
	s.controller.Stop()
	if err := s.unread.Close(); err != nil {
		markErr(fmt.Errorf("badge close: %w", err))
	}
	if s.closeLog != nil {
		s.closeLog()
	}
	return firstErr
}

// buildHTTPServer wires the local surface with probe endpoints.
// Params: action dispatcher for the toast routes.
// Returns: none; server stored on the service.
func (s *Service) buildHTTPServer(dispatcher *dispatch.Dispatcher) {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Service.HealthPath, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("ok"))
	})
	mux.HandleFunc(s.cfg.Service.ReadyPath, func(writer http.ResponseWriter, _ *http.Request) {
		if !s.readyFlag.Load() {
			writer.WriteHeader(http.StatusServiceUnavailable)
			_, _ = writer.Write([]byte("not-ready"))
			return
		}
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("ready"))
	})

	handler := httpapi.NewHandler(s.queue, s.controller, s.center, dispatcher, s.unread, s.logger)
	handler.Register(mux)

	s.httpSrv = &http.Server{
		Addr:              s.cfg.Service.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// buildTransport selects the push transport from config.
// Params: push config section and logger.
// Returns: transport implementation or config error.
func buildTransport(cfg config.PushConfig, logger *slog.Logger) (push.Transport, error) {
	switch cfg.Transport {
	case config.PushTransportSSE:
		return push.NewSSETransport(cfg.URL), nil
	case config.PushTransportWebSocket:
		return push.NewWebSocketTransport(cfg.URL, logger), nil
	case config.PushTransportNATS:
		return push.NewNATSTransport(cfg.NATSURL, cfg.Subject, logger), nil
	default:
		return nil, fmt.Errorf("unsupported push transport %q", cfg.Transport)
	}
}
