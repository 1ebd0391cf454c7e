// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/findmyhistory/internal/config"
)

type mockReconfigurable struct {
	mu      sync.Mutex
	configs []config.WidgetConfig
	applied chan struct{}
}

func newMockReconfigurable() *mockReconfigurable {
	return &mockReconfigurable{applied: make(chan struct{}, 8)}
}

func (m *mockReconfigurable) SetConfig(_ context.Context, cfg config.WidgetConfig) error {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()
	m.applied <- struct{}{}
	return nil
}

func (m *mockReconfigurable) last() config.WidgetConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs[len(m.configs)-1]
}

// fakeWatcher captures the change callback so tests can fire it.
type fakeWatcher struct {
	mu       sync.Mutex
	onChange func()
	stopped  bool
	ready    chan struct{}
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{ready: make(chan struct{})}
}

func (f *fakeWatcher) watch(_ string, onChange func()) (func() error, error) {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()
	close(f.ready)
	return func() error {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		return nil
	}, nil
}

func (f *fakeWatcher) fire() {
	f.mu.Lock()
	cb := f.onChange
	f.mu.Unlock()
	cb()
}

func newTestWatchService(w Reconfigurable, watcher *fakeWatcher, load LoadFunc) *ConfigWatchService {
	svc := NewConfigWatchService("/etc/findmyhistory/config.yaml", w)
	svc.watch = watcher.watch
	svc.load = load
	return svc
}

func TestConfigWatchService_AppliesWidgetSection(t *testing.T) {
	t.Parallel()

	target := newMockReconfigurable()
	watcher := newFakeWatcher()

	svc := newTestWatchService(target, watcher, func(string) (*config.Config, error) {
		cfg := &config.Config{Widget: config.DefaultWidgetConfig()}
		cfg.Widget.Devices = []string{"device_tracker.iphone", "device_tracker.ipad"}
		cfg.Logging.Level = "info"
		return cfg, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-watcher.ready
	watcher.fire()

	select {
	case <-target.applied:
	case <-time.After(time.Second):
		t.Fatal("config change was not applied")
	}
	if got := target.last().Devices; len(got) != 2 || got[1] != "device_tracker.ipad" {
		t.Errorf("applied devices = %v", got)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	watcher.mu.Lock()
	stopped := watcher.stopped
	watcher.mu.Unlock()
	if !stopped {
		t.Error("watch should be stopped on shutdown")
	}
}

func TestConfigWatchService_RejectsInvalidFile(t *testing.T) {
	t.Parallel()

	target := newMockReconfigurable()
	watcher := newFakeWatcher()
	loaded := make(chan struct{}, 1)
	svc := newTestWatchService(target, watcher, func(string) (*config.Config, error) {
		loaded <- struct{}{}
		return nil, errors.New("configuration validation failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	<-watcher.ready
	watcher.fire()
	<-loaded

	select {
	case <-target.applied:
		t.Error("invalid config must not reach the widget")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConfigWatchService_WatchError(t *testing.T) {
	t.Parallel()

	svc := NewConfigWatchService("/missing.yaml", newMockReconfigurable())
	watchErr := errors.New("no such file")
	svc.watch = func(string, func()) (func() error, error) { return nil, watchErr }

	if err := svc.Serve(context.Background()); !errors.Is(err, watchErr) {
		t.Errorf("Serve() = %v, want watch error", err)
	}
	if svc.String() != "config-watcher" {
		t.Errorf("String() = %q", svc.String())
	}
}
