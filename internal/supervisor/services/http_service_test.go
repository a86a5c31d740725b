// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// fakeServer stands in for *http.Server. With listenErr nil it blocks until
// Shutdown is called.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	listens   atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stopped   chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 1), stopped: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stopped)
	}
	return f.shutdownErr
}

// sequence hands out servers in order and repeats the last one.
func sequence(servers ...*fakeServer) func() HTTPServer {
	var next atomic.Int32
	return func() HTTPServer {
		i := int(next.Add(1)) - 1
		if i >= len(servers) {
			i = len(servers) - 1
		}
		return servers[i]
	}
}

func TestHTTPServerService_ImplementsService(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)

	svc := NewHTTPServerService(sequence(newFakeServer()), 0, zerolog.Nop())
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s default", svc.shutdownTimeout)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	bindErr := errors.New("bind: address already in use")
	stuckErr := errors.New("connections still open")

	tests := []struct {
		name        string
		listenErr   error
		shutdownErr error
		cancel      bool
		want        error
	}{
		{name: "cancel shuts down", cancel: true, want: context.Canceled},
		{name: "listen failure", listenErr: bindErr, want: bindErr},
		{name: "shutdown failure", shutdownErr: stuckErr, cancel: true, want: stuckErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFakeServer()
			server.listenErr = tt.listenErr
			server.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(sequence(server), time.Second, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			select {
			case <-server.started:
			case <-time.After(time.Second):
				t.Fatal("server did not start")
			}
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-done:
				if !errors.Is(err, tt.want) {
					t.Errorf("Serve() = %v, want %v", err, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}

			wantShutdowns := int32(0)
			if tt.cancel {
				wantShutdowns = 1
			}
			if got := server.shutdowns.Load(); got != wantShutdowns {
				t.Errorf("shutdowns = %d, want %d", got, wantShutdowns)
			}
		})
	}
}

func TestHTTPServerService_RestartsWithFreshServer(t *testing.T) {
	crashed := newFakeServer()
	crashed.listenErr = errors.New("listener closed")
	healthy := newFakeServer()
	svc := NewHTTPServerService(sequence(crashed, healthy), time.Second, zerolog.Nop())

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	select {
	case <-healthy.started:
	case <-time.After(time.Second):
		t.Fatal("replacement server did not start")
	}
	cancel()
	<-errCh

	if got := crashed.listens.Load(); got != 1 {
		t.Errorf("crashed server started %d times, want 1", got)
	}
	if got := healthy.shutdowns.Load(); got != 1 {
		t.Errorf("replacement server shut down %d times, want 1", got)
	}
}
