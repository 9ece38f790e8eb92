package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error

	stopped        chan struct{}
	shutdownCalled atomic.Bool
	closeCalled    atomic.Bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalled.Store(true)
	close(f.stopped)
	return f.shutdownErr
}

func (f *fakeServer) Close() error {
	f.closeCalled.Store(true)
	return nil
}

func (f *fakeServer) Addr() string { return ":0" }

func TestRun_BootstrapFailure(t *testing.T) {
	build := func() (httpServer, func(), error) {
		return nil, nil, errors.New("boom")
	}
	assert.Equal(t, 1, Run(build, make(chan os.Signal), zerolog.Nop()))
}

func TestRun_SignalShutsDown(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := newFakeServer()
	cleaned := false
	build := func() (httpServer, func(), error) {
		return fs, func() { cleaned = true }, nil
	}

	assert.Equal(t, 0, Run(build, sigCh, zerolog.Nop()))
	assert.True(t, fs.shutdownCalled.Load())
	assert.False(t, fs.closeCalled.Load())
	assert.True(t, cleaned)
}

func TestRun_ShutdownFailureForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := newFakeServer()
	fs.shutdownErr = context.DeadlineExceeded
	build := func() (httpServer, func(), error) { return fs, func() {}, nil }

	assert.Equal(t, 0, Run(build, sigCh, zerolog.Nop()))
	assert.True(t, fs.closeCalled.Load())
}

func TestRun_ServerCrash(t *testing.T) {
	fs := newFakeServer()
	fs.listenErr = errors.New("address in use")
	build := func() (httpServer, func(), error) { return fs, func() {}, nil }

	assert.Equal(t, 1, Run(build, make(chan os.Signal), zerolog.Nop()))
	assert.False(t, fs.shutdownCalled.Load())
}
