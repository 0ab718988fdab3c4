package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/cidr"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/geoaudit"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/hashing"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/ripe"
)

// ErrRunInProgress is returned by TryRun while another run holds the service.
var ErrRunInProgress = stderrors.New("synchronization already in progress")

// Options configures a SyncService.
type Options struct {
	Country string
	Target  addrlist.Target
	// SkipUnchanged skips synchronization when the fetched set equals the one of the
	// last successful run of this process.
	SkipUnchanged bool
	// AuditLimit caps the number of mismatches logged by the geo audit (0 = all).
	AuditLimit int
}

// FetchResult is the normalized registry content.
type FetchResult struct {
	Fetched        int      `json:"fetched"`
	CIDRs          []string `json:"-"`
	Blocks         int      `json:"blocks"`
	PassedThrough  int      `json:"passed_through"`
	RangesExpanded int      `json:"ranges_expanded"`
	Dropped        int      `json:"dropped"`
	Fingerprint    string   `json:"fingerprint"`
}

// RunResult describes one pipeline run.
type RunResult struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Country    string    `json:"country"`
	ListName   string    `json:"list_name"`

	Fetch   *FetchResult     `json:"fetch,omitempty"`
	Skipped bool             `json:"skipped"`
	Sync    *addrlist.Report `json:"sync,omitempty"`
	Audit   *geoaudit.Report `json:"audit,omitempty"`

	Error     string           `json:"error,omitempty"`
	ErrorCode errors.ErrorCode `json:"error_code,omitempty"`
}

// Succeeded reports whether the run ended without error.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Error == ""
}

// SyncService runs the fetch, normalize, audit and synchronize pipeline.
// At most one run executes at a time.
type SyncService struct {
	registry ripe.Registry
	syncer   *addrlist.Synchronizer
	geo      geoaudit.CountryLookup
	opts     Options

	runMu sync.Mutex

	mu              sync.RWMutex
	running         bool
	progress        addrlist.Transition
	last            *RunResult
	lastFingerprint string
}

// NewSyncService creates the service. geo may be nil to disable the audit.
func NewSyncService(registry ripe.Registry, syncer *addrlist.Synchronizer, geo geoaudit.CountryLookup, opts Options) *SyncService {
	s := &SyncService{
		registry: registry,
		syncer:   syncer,
		geo:      geo,
		opts:     opts,
	}
	syncer.OnTransition(s.recordTransition)
	return s
}

func (s *SyncService) recordTransition(t addrlist.Transition) {
	s.mu.Lock()
	s.progress = t
	s.mu.Unlock()
}

// Fetch queries the registry and normalizes its entries.
func (s *SyncService) Fetch(ctx context.Context) (*FetchResult, error) {
	raw, err := s.registry.FetchIPv4(ctx, s.opts.Country)
	if err != nil {
		return nil, err
	}

	normalized := cidr.NormalizeWithStats(raw)
	result := &FetchResult{
		Fetched:        len(raw),
		CIDRs:          normalized.CIDRs,
		Blocks:         len(normalized.CIDRs),
		PassedThrough:  normalized.PassedThrough,
		RangesExpanded: normalized.RangesExpanded,
		Dropped:        normalized.Dropped,
		Fingerprint:    hashing.Fingerprint(normalized.CIDRs),
	}

	log.Infof("Got %d CIDR blocks (%d passed through, %d ranges expanded, %d dropped)",
		result.Blocks, result.PassedThrough, result.RangesExpanded, result.Dropped)
	return result, nil
}

// Audit cross-checks blocks against the geolocation database, if one is configured.
func (s *SyncService) Audit(cidrs []string) *geoaudit.Report {
	if s.geo == nil {
		return nil
	}
	report := geoaudit.Audit(s.geo, s.opts.Country, cidrs)
	geoaudit.LogReport(report, s.opts.AuditLimit)
	return report
}

// Run executes the pipeline, waiting for a run in progress to finish first.
func (s *SyncService) Run(ctx context.Context) (*RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// TryRun executes the pipeline or returns ErrRunInProgress immediately.
func (s *SyncService) TryRun(ctx context.Context) (*RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// StartAsync starts a run in the background and returns immediately. The channel
// receives the result once the run finishes.
func (s *SyncService) StartAsync(ctx context.Context) (<-chan *RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}

	done := make(chan *RunResult, 1)
	go func() {
		defer s.runMu.Unlock()
		result, err := s.run(ctx)
		if err != nil {
			log.Errorf("Background synchronization failed: %v", err)
		}
		done <- result
	}()
	return done, nil
}

func (s *SyncService) run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		StartedAt: time.Now(),
		Country:   s.opts.Country,
		ListName:  s.opts.Target.ListName,
	}

	s.mu.Lock()
	s.running = true
	s.progress = addrlist.Transition{State: addrlist.StateIdle}
	s.mu.Unlock()

	err := s.pipeline(ctx, result)

	result.FinishedAt = time.Now()
	if err != nil {
		result.Error = err.Error()
		result.ErrorCode = errors.CodeOf(err)
	}

	s.mu.Lock()
	s.running = false
	s.last = result
	if err == nil && result.Fetch != nil && !result.Skipped {
		s.lastFingerprint = result.Fetch.Fingerprint
	}
	s.mu.Unlock()

	return result, err
}

func (s *SyncService) pipeline(ctx context.Context, result *RunResult) error {
	fetched, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	result.Fetch = fetched

	if s.opts.SkipUnchanged && fetched.Fingerprint == s.lastSyncedFingerprint() {
		log.Infof("Address set unchanged since last run (MD5 %s), skipping synchronization", fetched.Fingerprint)
		result.Skipped = true
		return nil
	}

	result.Audit = s.Audit(fetched.CIDRs)

	report, err := s.syncer.Synchronize(ctx, s.opts.Target, fetched.CIDRs)
	result.Sync = report
	return err
}

func (s *SyncService) lastSyncedFingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFingerprint
}

// Running reports whether a run is in progress.
func (s *SyncService) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Progress returns the last state transition of the synchronizer.
func (s *SyncService) Progress() addrlist.Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// LastResult returns the result of the last finished run, or nil.
func (s *SyncService) LastResult() *RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
