/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package dmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/datamapper/pkg/lifecycle"
	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/natsutil"
	"github.com/carverauto/datamapper/pkg/registry"
	"github.com/carverauto/datamapper/pkg/wire"
)

const (
	maxAcceptFailures  = 1000
	acceptRetryBackoff = 5 * time.Millisecond

	// Refused connections get a short window to send their first frame and
	// only maxPendingDenials of them are answered at once.
	denyTimeout       = time.Second
	maxPendingDenials = 64
)

// Server is the TCP substrate: it accepts connections, hands each request to
// the Handler and runs the maintenance hooks between requests. It implements
// lifecycle.Service and lifecycle.Terminator.
type Server struct {
	config      *Config
	store       Store
	publisher   Publisher
	natsConn    *nats.Conn
	handler     *Handler
	maintenance *Maintenance
	logger      logger.Logger
	now         func() time.Time

	listener net.Listener
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
	started  atomic.Bool
	denials  atomic.Int32

	mu    sync.Mutex
	conns map[net.Conn]bool // value reports whether a request is in flight
	wg    sync.WaitGroup

	done    chan struct{}
	errMu   sync.Mutex
	loopErr error
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithStore replaces the in-memory registry.
func WithStore(store Store) ServerOption {
	return func(s *Server) {
		s.store = store
	}
}

// WithPublisher sets the event publisher instead of connecting to NATS.
func WithPublisher(publisher Publisher) ServerOption {
	return func(s *Server) {
		s.publisher = publisher
	}
}

// WithClock sets the time source of the maintenance hooks and registry.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

var (
	_ lifecycle.Service    = (*Server)(nil)
	_ lifecycle.Terminator = (*Server)(nil)
)

// NewServer validates cfg and builds a Server around a fresh registry.
func NewServer(cfg *Config, log logger.Logger, opts ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{
		config: cfg,
		logger: log,
		now:    time.Now,
		conns:  make(map[net.Conn]bool),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		regOpts := []registry.Option{
			registry.WithDataTypes(cfg.DataTypes),
			registry.WithClock(s.now),
		}

		if cfg.Persistence.Enabled {
			regOpts = append(regOpts, registry.WithSnapshotPath(cfg.Persistence.Path))
		}

		s.store = registry.NewRegistry(lifecycle.Component(log, "registry"), regOpts...)
	}

	s.maintenance = NewMaintenance(s.store, cfg.Purge, cfg.Persistence, s.now, lifecycle.Component(log, "maintenance"))

	return s, nil
}

// Store returns the registry the server mutates.
func (s *Server) Store() Store {
	return s.store
}

// Addr returns the listening address once Start has returned.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Start restores the snapshot, connects the event publisher, binds the
// listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errServerAlreadyStarted
	}

	if s.config.Persistence.Enabled {
		if err := s.store.LoadSnapshot(); err != nil {
			s.logger.Warn().Err(err).Msg("Starting with an empty registry")
		}
	}

	if err := s.connectEvents(ctx); err != nil {
		s.started.Store(false)
		return err
	}

	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.closeEvents()
		s.started.Store(false)

		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}

	s.listener = listener
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	relay := NewRelay(s.config.RelayTimeout.Std(), s.config.DefaultPort, lifecycle.Component(s.logger, "relay"))
	s.handler = NewHandler(s.store, relay, s.publisher, lifecycle.Component(s.logger, "handler"))

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Int("max_clients", s.config.MaxClients).
		Bool("no_threads", s.config.NoThreads).
		Msg("DataMapper listening")

	go s.serve()

	return nil
}

func (s *Server) connectEvents(ctx context.Context) error {
	if s.publisher != nil || !s.config.Events.Enabled {
		return nil
	}

	publisher, nc, err := natsutil.ConnectWithEventPublisher(ctx, &s.config.Events, lifecycle.Component(s.logger, "events"))
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	s.publisher = publisher
	s.natsConn = nc

	return nil
}

func (s *Server) closeEvents() {
	if s.natsConn == nil {
		return
	}

	if err := s.natsConn.Drain(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to drain NATS connection")
		s.natsConn.Close()
	}

	s.natsConn = nil
}

// Done is closed when the accept loop has exited.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err reports why the accept loop exited on its own, or nil.
func (s *Server) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.loopErr
}

// Stop closes the listener, waits for active connections, saves a final
// snapshot and closes the event publisher. Connections still busy when ctx
// expires are closed forcibly.
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.Load() || !s.stopping.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info().Msg("Stopping DataMapper")

	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug().Err(err).Msg("Listener close")
	}

	// A no_threads connection runs on the accept goroutine.
	s.interruptIdle()

	select {
	case <-s.done:
	case <-ctx.Done():
		s.closeConns()
		<-s.done
	}

	s.interruptIdle()

	if err := s.waitConns(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Closing connections that did not finish in time")
		s.closeConns()
		s.wg.Wait()
	}

	s.cancel()

	var err error

	if s.config.Persistence.Enabled {
		if err = s.store.SaveSnapshot(); err != nil {
			err = fmt.Errorf("failed to save final snapshot: %w", err)
		}
	}

	s.closeEvents()

	return err
}

func (s *Server) serve() {
	defer close(s.done)

	idle := s.config.IdleInterval.Std()
	failures := 0

	for {
		if dl, ok := s.listener.(interface{ SetDeadline(time.Time) error }); ok {
			_ = dl.SetDeadline(time.Now().Add(idle))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping.Load() || errors.Is(err, net.ErrClosed) {
				return
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				failures = 0

				s.maintenance.OnIdle()

				continue
			}

			failures++
			if failures > maxAcceptFailures {
				s.setErr(fmt.Errorf("%w: %w", errTooManyAcceptFailures, err))
				return
			}

			s.logger.Warn().Err(err).Int("failures", failures).Msg("Accept failed")
			time.Sleep(acceptRetryBackoff)

			continue
		}

		failures = 0

		s.dispatch(conn)

		s.maintenance.OnAfterRequest()
		s.maintenance.OnIdle()
	}
}

func (s *Server) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.loopErr = err
	s.logger.Error().Err(err).Msg("Accept loop stopped")
}

func (s *Server) dispatch(conn net.Conn) {
	if !s.acquire(conn) {
		recordRejectedClient(s.baseCtx)

		if s.denials.Add(1) > maxPendingDenials {
			s.denials.Add(-1)
			_ = conn.Close()

			return
		}

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			defer s.denials.Add(-1)
			s.deny(conn)
		}()

		return
	}

	recordActiveClients(s.baseCtx, 1)

	if s.config.NoThreads {
		s.serveConn(conn)
		return
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.serveConn(conn)
	}()
}

func (s *Server) acquire(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.MaxClients != unlimitedClients && len(s.conns) >= s.config.MaxClients {
		return false
	}

	s.conns[conn] = false

	return true
}

func (s *Server) release(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()

	recordActiveClients(s.baseCtx, -1)
}

func (s *Server) setBusy(conn net.Conn, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[conn]; ok {
		s.conns[conn] = busy
	}
}

// deny answers the connection's first request with a refusal and closes it.
func (s *Server) deny(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	s.logger.Warn().
		Str("remote_addr", conn.RemoteAddr().String()).
		Int("max_clients", s.config.MaxClients).
		Msg("Refusing connection")

	timeout := denyTimeout
	if t := s.config.ConnTimeout.Std(); t > 0 && t < timeout {
		timeout = t
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))

	var op wire.Op

	if body, err := wire.ReadFrame(conn); err == nil {
		if req, err := wire.DecodeRequest(body); err == nil {
			op = req.Op
		}
	}

	_ = wire.WriteReply(conn, wire.FailureReply(op, "%v", errTooManyClients))
}

// serveConn answers request frames until the peer closes the connection.
func (s *Server) serveConn(conn net.Conn) {
	defer s.release(conn)
	defer func() { _ = conn.Close() }()

	remote := conn.RemoteAddr().String()
	timeout := s.config.ConnTimeout.Std()

	for {
		if timeout > 0 {
			_ = conn.SetDeadline(time.Now().Add(timeout))
		}

		if s.stopping.Load() {
			return
		}

		body, err := wire.ReadFrame(conn)
		if err != nil {
			s.logReadError(remote, err)
			return
		}

		s.setBusy(conn, true)

		rep := s.handle(body, remote)

		if err := s.writeReply(conn, rep, remote); err != nil {
			s.logger.Debug().Err(err).Str("remote_addr", remote).Msg("Failed to write reply")
			return
		}

		s.setBusy(conn, false)
	}
}

func (s *Server) handle(body []byte, remote string) *wire.Reply {
	req, err := wire.DecodeRequest(body)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", remote).Msg("Rejecting malformed request")
		return wire.FailureReply(0, "%v", err)
	}

	return s.handler.Handle(s.baseCtx, req, remote)
}

// writeReply sends rep, or a failure reply for the same op when rep does not
// fit in a frame.
func (s *Server) writeReply(conn net.Conn, rep *wire.Reply, remote string) error {
	body, err := wire.EncodeReply(rep)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("op", rep.Op.String()).
			Str("remote_addr", remote).
			Int("records", len(rep.Records)).
			Msg("Reply does not fit in a frame")

		if body, err = wire.EncodeReply(wire.FailureReply(rep.Op, "%v", err)); err != nil {
			return err
		}
	}

	return wire.WriteFrame(conn, body)
}

func (s *Server) logReadError(remote string, err error) {
	switch {
	case errors.Is(err, io.EOF):
	case errors.Is(err, wire.ErrFrameTooLarge):
		s.logger.Warn().Err(err).Str("remote_addr", remote).Msg("Closing connection")
	case s.stopping.Load():
	default:
		s.logger.Debug().Err(err).Str("remote_addr", remote).Msg("Connection read ended")
	}
}

// interruptIdle unblocks connections that are waiting for their next request.
func (s *Server) interruptIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	for conn, busy := range s.conns {
		if !busy {
			_ = conn.SetReadDeadline(now)
		}
	}
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) waitConns(ctx context.Context) error {
	finished := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
