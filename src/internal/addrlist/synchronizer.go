package addrlist

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/routeros"
)

const (
	DefaultBatchSize = 500
	DefaultPause     = 30 * time.Second
)

// Target is the address-list being synchronized and the device holding it.
type Target struct {
	Endpoint remote.Endpoint
	ListName string
}

// Validate checks that the target can be rendered into directives safely.
func (t Target) Validate() error {
	switch {
	case t.Endpoint.Host == "":
		return errors.NewValidationError("remote host is empty", nil)
	case t.Endpoint.User == "":
		return errors.NewValidationError("remote username is empty", nil)
	case t.ListName == "":
		return errors.NewValidationError("address-list name is empty", nil)
	case !routeros.IsSafeValue(t.ListName):
		return errors.NewValidationError(fmt.Sprintf("address-list name %q contains forbidden characters", t.ListName), nil)
	}
	return nil
}

// Options controls batching and pacing.
type Options struct {
	BatchSize int
	Pause     time.Duration
	Comment   string
}

// DefaultOptions returns 500-entry batches, 30 seconds apart.
func DefaultOptions() Options {
	return Options{
		BatchSize: DefaultBatchSize,
		Pause:     DefaultPause,
		Comment:   routeros.DefaultComment,
	}
}

// Report summarizes a run. On failure it tells how many batches are live on the device.
type Report struct {
	State          State  `json:"-"`
	StateName      string `json:"state"`
	Total          int    `json:"total"`
	Batches        int    `json:"batches"`
	BatchesApplied int    `json:"batches_applied"`
	EntriesApplied int    `json:"entries_applied"`
	// FailedBatch is the 1-based batch that failed, 0 if clearing failed or nothing failed.
	FailedBatch int `json:"failed_batch,omitempty"`
	// Rejected counts entries left out because they cannot be quoted into a directive.
	Rejected int `json:"rejected,omitempty"`
}

// Synchronizer replaces the content of a remote address-list.
type Synchronizer struct {
	channel  remote.Channel
	opts     Options
	pacer    Pacer
	observer func(Transition)
}

// New creates a synchronizer. Non-positive batch sizes and an empty comment fall back
// to the defaults; a negative pause is treated as no pause.
func New(channel remote.Channel, opts Options) *Synchronizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	if opts.Comment == "" {
		opts.Comment = routeros.DefaultComment
	}
	return &Synchronizer{
		channel: channel,
		opts:    opts,
		pacer:   TimerPacer{},
	}
}

// WithPacer replaces the pacer used between batches.
func (s *Synchronizer) WithPacer(p Pacer) *Synchronizer {
	s.pacer = p
	return s
}

// OnTransition registers a callback invoked on every state change.
func (s *Synchronizer) OnTransition(fn func(Transition)) *Synchronizer {
	s.observer = fn
	return s
}

// Options returns the effective options.
func (s *Synchronizer) Options() Options {
	return s.opts
}

func (s *Synchronizer) enter(report *Report, t Transition) {
	report.State = t.State
	report.StateName = t.State.String()
	if s.observer != nil {
		s.observer(t)
	}
}

func (s *Synchronizer) fail(report *Report, err error) (*Report, error) {
	s.enter(report, Transition{State: StateFailed, Batches: report.Batches})
	log.Errorf("Synchronization failed after %d/%d batches: %v", report.BatchesApplied, report.Batches, err)
	return report, err
}

// Synchronize clears the target list and adds blocks in paced batches.
//
// Batches run strictly one after another, each as a single remote invocation. A failed
// clear aborts before any add. A failed batch aborts the run; earlier batches stay on
// the device. Entries that cannot be quoted safely are dropped with a warning. The
// returned report is never nil.
func (s *Synchronizer) Synchronize(ctx context.Context, target Target, blocks []string) (*Report, error) {
	blocks, rejected := safeEntries(blocks)
	batches := Plan(blocks, s.opts.BatchSize)
	report := &Report{
		State:     StateIdle,
		StateName: StateIdle.String(),
		Total:     len(blocks),
		Batches:   len(batches),
		Rejected:  rejected,
	}

	if err := target.Validate(); err != nil {
		return s.fail(report, err)
	}

	log.Infof("Connecting to %s, list %q: %d CIDR in %d batch(es) of up to %d, %v apart",
		target.Endpoint, target.ListName, len(blocks), len(batches), s.opts.BatchSize, s.opts.Pause)

	s.enter(report, Transition{State: StateClearing, Batches: len(batches)})
	if err := s.clear(ctx, target); err != nil {
		return s.fail(report, err)
	}

	offset := 0
	for i, batch := range batches {
		number := i + 1
		s.enter(report, Transition{State: StateAdding, Batch: number, Batches: len(batches), Size: len(batch)})
		log.Infof("Batch %d/%d (CIDR %d-%d)", number, len(batches), offset+1, offset+len(batch))

		if err := s.addBatch(ctx, target, batch, number, len(batches)); err != nil {
			report.FailedBatch = number
			return s.fail(report, err)
		}
		offset += len(batch)
		report.BatchesApplied++
		report.EntriesApplied += len(batch)
		log.Infof("Batch %d applied (%d CIDR)", number, len(batch))

		if number < len(batches) {
			s.enter(report, Transition{State: StatePausing, Batch: number, Batches: len(batches)})
			log.Infof("Waiting %v before next batch...", s.opts.Pause)
			if err := s.pacer.Wait(ctx, s.opts.Pause); err != nil {
				return s.fail(report, errors.NewInternalError("pause between batches interrupted", err))
			}
		}
	}

	s.enter(report, Transition{State: StateCompleted, Batches: len(batches)})
	log.Infof("Done: %d CIDR blocks added to %q", report.EntriesApplied, target.ListName)
	return report, nil
}

// safeEntries drops entries that would break out of the quoted address argument.
func safeEntries(blocks []string) ([]string, int) {
	safe := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if !routeros.IsSafeValue(block) {
			log.Warnf("Skipping entry %q: not usable as an address-list address", block)
			continue
		}
		safe = append(safe, block)
	}
	return safe, len(blocks) - len(safe)
}

func (s *Synchronizer) clear(ctx context.Context, target Target) error {
	log.Infof("Clearing address-list %q...", target.ListName)

	res, err := s.channel.Run(ctx, target.Endpoint, routeros.ClearDirective(target.ListName))
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.NewRemoteCommandError(
			fmt.Sprintf("failed to clear address-list %q (exit status %d)", target.ListName, res.ExitCode),
			stderrOf(res))
	}

	log.Infof("Address-list %q cleared", target.ListName)
	return nil
}

func (s *Synchronizer) addBatch(ctx context.Context, target Target, batch []string, number, total int) error {
	script := routeros.AddScript(target.ListName, batch, s.opts.Comment)

	res, err := s.channel.RunScript(ctx, target.Endpoint, script)
	if err != nil {
		return err
	}
	if !res.Success() {
		if res.Stderr != "" {
			log.Errorf("Batch %d stderr: %s", number, strings.TrimSpace(res.Stderr))
		}
		return errors.NewRemoteCommandError(
			fmt.Sprintf("failed to apply batch %d/%d (exit status %d)", number, total, res.ExitCode),
			stderrOf(res))
	}
	return nil
}

func stderrOf(res *remote.Result) error {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return stderrors.New(msg)
	}
	return nil
}
