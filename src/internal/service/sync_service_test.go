package service

import (
	"context"
	stderrors "errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/mocks"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
)

func init() {
	log.DisableLogs()
}

type noPause struct{}

func (noPause) Wait(context.Context, time.Duration) error { return nil }

var testTarget = addrlist.Target{
	Endpoint: remote.Endpoint{Host: "192.168.88.1", User: "admin"},
	ListName: "RU",
}

func newTestService(registry *mocks.MockRegistry, channel remote.Channel, skip bool) *SyncService {
	syncer := addrlist.New(channel, addrlist.DefaultOptions()).WithPacer(noPause{})
	return NewSyncService(registry, syncer, nil, Options{
		Country:       "RU",
		Target:        testTarget,
		SkipUnchanged: skip,
	})
}

func TestSyncService_Run(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{
		"5.8.0.0/16",
		"10.0.0.0-10.0.0.255",
		"bogus-entry",
	}}
	router := mocks.NewFakeRouter(nil)

	svc := newTestService(registry, router.Channel(), false)
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Succeeded() || result.Skipped {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Fetch.Fetched != 3 || result.Fetch.Blocks != 2 || result.Fetch.Dropped != 1 {
		t.Errorf("unexpected fetch stats: %+v", result.Fetch)
	}
	if result.Sync == nil || result.Sync.State != addrlist.StateCompleted {
		t.Errorf("unexpected sync report: %+v", result.Sync)
	}

	got := router.List("RU")
	if len(got) != 2 || got[0] != "5.8.0.0/16" || got[1] != "10.0.0.0/24" {
		t.Errorf("unexpected device content: %v", got)
	}
	if countries := registry.Countries(); len(countries) != 1 || countries[0] != "RU" {
		t.Errorf("unexpected registry queries: %v", countries)
	}
	if svc.LastResult() != result {
		t.Error("expected last result to be recorded")
	}
	if svc.Progress().State != addrlist.StateCompleted {
		t.Errorf("expected completed progress, got %s", svc.Progress().State)
	}
}

func TestSyncService_RegistryFailure(t *testing.T) {
	registry := &mocks.MockRegistry{
		FetchIPv4Func: func(context.Context, string) ([]string, error) {
			return nil, errors.NewRegistryError("registry returned 503", nil)
		},
	}
	channel := mocks.NewMockChannel()

	result, err := newTestService(registry, channel, false).Run(context.Background())
	if !errors.HasCode(err, errors.ErrCodeRegistry) {
		t.Fatalf("expected registry error, got %v", err)
	}
	if result.ErrorCode != errors.ErrCodeRegistry || result.Succeeded() {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(channel.Calls()) != 0 {
		t.Error("the device must not be touched when the registry fails")
	}
}

func TestSyncService_SkipUnchanged(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16", "31.173.0.0/16"}}
	channel := mocks.NewMockChannel()
	svc := newTestService(registry, channel, true)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstCalls := len(channel.Calls())

	// Same set in a different order.
	registry.Entries = []string{"31.173.0.0/16", "5.8.0.0/16"}
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Skipped {
		t.Error("expected unchanged set to be skipped")
	}
	if len(channel.Calls()) != firstCalls {
		t.Error("skipped run must not reach the device")
	}

	registry.Entries = []string{"5.8.0.0/16"}
	result, err = svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped {
		t.Error("changed set must be synchronized")
	}
}

func TestSyncService_NewServiceAlwaysSynchronizes(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16"}}

	first := mocks.NewFakeRouter(nil)
	if _, err := newTestService(registry, first.Channel(), true).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The list was wiped on the device while no process was running.
	wiped := mocks.NewFakeRouter(nil)
	result, err := newTestService(registry, wiped.Channel(), true).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped {
		t.Error("a new service must not skip its first run")
	}
	if got := wiped.List("RU"); len(got) != 1 || got[0] != "5.8.0.0/16" {
		t.Errorf("expected the list to be restored, got %v", got)
	}
}

func TestSyncService_FailedRunIsNotSkipped(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16"}}
	fail := true
	channel := &mocks.MockChannel{
		RunFunc: func(context.Context, remote.Endpoint, string) (*remote.Result, error) {
			if fail {
				return nil, errors.NewConnectionError("connection refused", nil)
			}
			return &remote.Result{}, nil
		},
	}
	svc := newTestService(registry, channel, true)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	fail = false
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped {
		t.Error("a set that never synchronized successfully must not be skipped")
	}
}

func TestSyncService_TryRunWhileRunning(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16"}}
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	channel := &mocks.MockChannel{
		RunFunc: func(context.Context, remote.Endpoint, string) (*remote.Result, error) {
			once.Do(func() { close(started) })
			<-release
			return &remote.Result{}, nil
		},
	}
	svc := newTestService(registry, channel, false)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()

	<-started
	if !svc.Running() {
		t.Error("expected service to report a run in progress")
	}
	if _, err := svc.TryRun(context.Background()); !stderrors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Running() {
		t.Error("expected run to be finished")
	}

	if _, err := svc.TryRun(context.Background()); err != nil {
		t.Errorf("expected TryRun to succeed when idle, got %v", err)
	}
}

type fakeGeo map[string]string

func (f fakeGeo) CountryCode(ip net.IP) (string, error) {
	return f[ip.String()], nil
}

func TestSyncService_Audit(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16", "185.22.152.0/22"}}
	syncer := addrlist.New(mocks.NewMockChannel(), addrlist.DefaultOptions()).WithPacer(noPause{})
	geo := fakeGeo{"5.8.0.0": "RU", "185.22.152.0": "NL"}
	svc := NewSyncService(registry, syncer, geo, Options{Country: "RU", Target: testTarget})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Audit == nil || len(result.Audit.Mismatches) != 1 {
		t.Fatalf("unexpected audit: %+v", result.Audit)
	}
	if result.Sync.EntriesApplied != 2 {
		t.Error("audit mismatches must not block synchronization")
	}
}

func TestSyncService_AuditDisabled(t *testing.T) {
	svc := newTestService(&mocks.MockRegistry{}, mocks.NewMockChannel(), false)
	if svc.Audit([]string{"5.8.0.0/16"}) != nil {
		t.Error("expected nil report without a geo database")
	}
}

func TestSyncService_StartAsync(t *testing.T) {
	registry := &mocks.MockRegistry{Entries: []string{"5.8.0.0/16"}}
	release := make(chan struct{})
	channel := &mocks.MockChannel{
		RunFunc: func(context.Context, remote.Endpoint, string) (*remote.Result, error) {
			<-release
			return &remote.Result{}, nil
		},
	}
	svc := newTestService(registry, channel, false)

	done, err := svc.StartAsync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StartAsync(context.Background()); !stderrors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	close(release)
	select {
	case result := <-done:
		if !result.Succeeded() {
			t.Errorf("unexpected result: %+v", result)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("background run did not finish")
	}
}
