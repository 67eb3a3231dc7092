// Package pipeline drives a batch of media items through metadata
// generation: a bounded worker pool, retry with backoff, cooperative
// cancellation and progress events.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stocktag/internal/catalog"
	"stocktag/internal/config"
	"stocktag/internal/prompt"
	"stocktag/internal/provider"
	"stocktag/internal/results"
)

// Recorder persists item transitions and results between sessions. The
// scheduler treats persistence as best effort; failures are logged, never
// fatal to the run.
type Recorder interface {
	RecordStatus(item catalog.MediaItem) error
	RecordResult(item catalog.MediaItem, result provider.Result) error
}

// Scheduler owns catalog status and result store writes. Everything else
// reads. One run is active at a time; starting a new run requires the
// previous one to have reached a terminal state.
type Scheduler struct {
	catalog  *catalog.Catalog
	store    *results.Store
	client   provider.Client
	policy   RetryPolicy
	observer Observer
	recorder Recorder // optional

	activeMu sync.Mutex
	active   *Run
}

// NewScheduler creates a scheduler. The policy supplies the backoff shape
// for every run; the retry cap is taken from each run's config. The observer
// may be nil when no one listens for progress; the recorder may be nil when
// persistence is off.
func NewScheduler(cat *catalog.Catalog, store *results.Store, client provider.Client, policy RetryPolicy, observer Observer, recorder Recorder) *Scheduler {
	return &Scheduler{
		catalog:  cat,
		store:    store,
		client:   client,
		policy:   policy,
		observer: observer,
		recorder: recorder,
	}
}

// Start begins a run over the given item ids. Items that are not currently
// pending are skipped with a warning. The returned Run is already executing;
// use Run.Wait for the summary and Run.Cancel to stop it.
func (s *Scheduler) Start(ctx context.Context, cfg config.RunConfig, itemIDs []string) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var enrolled []string
	seen := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		status, ok := s.catalog.StatusOf(id)
		if !ok {
			return nil, fmt.Errorf("unknown item id %s", id)
		}
		if status != catalog.StatusPending {
			log.Warn().Str("itemId", id).Str("status", string(status)).Msg("skipping non-pending item")
			continue
		}
		enrolled = append(enrolled, id)
	}

	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if s.active != nil && !s.active.State().Terminal() {
		return nil, fmt.Errorf("a run is already active")
	}

	// The retry cap comes from the run's config snapshot; the constructor
	// policy only supplies the backoff shape.
	policy := s.policy
	policy.MaxRetries = cfg.RetryCap

	run := &Run{
		ID:       uuid.NewString(),
		Config:   cfg,
		ItemIDs:  enrolled,
		state:    StateRunning,
		counters: Counters{Total: len(enrolled)},
		policy:   policy,
		cancelCh: make(chan struct{}),
		done:     make(chan struct{}),
	}
	run.startedAt = time.Now()
	s.active = run

	log.Info().
		Str("runId", run.ID).
		Int("items", len(enrolled)).
		Str("provider", cfg.Provider).
		Int("concurrency", cfg.Concurrency).
		Msg("pipeline run started")

	go s.execute(ctx, run)

	return run, nil
}

func (s *Scheduler) execute(ctx context.Context, run *Run) {
	g := new(errgroup.Group)
	g.SetLimit(run.Config.Concurrency)

	for _, id := range run.ItemIDs {
		// g.Go blocks while the pool is full, so this check runs before
		// every dispatch. After cancel nothing new goes out; items still
		// pending fall through to the cancelled sweep below.
		if run.Cancelled() || ctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			s.process(ctx, run, id)
			return nil
		})
	}

	_ = g.Wait()

	// Sweep: everything that never got a terminal outcome is cancelled.
	for _, id := range run.ItemIDs {
		status, _ := s.catalog.StatusOf(id)
		if status.Terminal() {
			continue
		}
		if item, ok := s.catalog.Get(id); ok {
			s.finishItem(run, item, catalog.StatusCancelled, "")
		}
	}

	s.finishRun(run)
}

// process drives a single item to a terminal status, applying the retry
// policy between attempts.
func (s *Scheduler) process(ctx context.Context, run *Run, id string) {
	item, ok := s.catalog.Get(id)
	if !ok {
		return
	}
	if run.Cancelled() {
		s.finishItem(run, item, catalog.StatusCancelled, "")
		return
	}

	s.catalog.Mark(id, catalog.StatusInProgress, "")
	s.recordStatus(id)

	req, err := prompt.Build(item, run.Config)
	if err != nil {
		s.finishItem(run, item, catalog.StatusFailed, err.Error())
		return
	}

	for {
		attempt := s.catalog.RecordAttempt(id)

		callCtx, cancel := context.WithTimeout(ctx, run.Config.RequestTimeout)
		result, err := s.client.Generate(callCtx, req)
		cancel()

		if err == nil {
			s.store.Put(id, *result)
			s.finishItem(run, item, catalog.StatusSucceeded, "")
			return
		}

		kind := provider.KindOf(err)
		log.Warn().
			Str("itemId", id).
			Str("file", item.Filename).
			Int("attempt", attempt).
			Str("kind", string(kind)).
			Err(err).
			Msg("generation attempt failed")

		if !run.policy.ShouldRetry(attempt, kind) {
			s.finishItem(run, item, catalog.StatusFailed, err.Error())
			return
		}

		// A retry counts as a new dispatch: once cancellation is requested
		// the item finishes as cancelled instead of retrying.
		select {
		case <-time.After(run.policy.BackoffDelay(attempt)):
		case <-run.cancelCh:
			s.finishItem(run, item, catalog.StatusCancelled, "")
			return
		case <-ctx.Done():
			s.finishItem(run, item, catalog.StatusCancelled, "")
			return
		}
		if run.Cancelled() {
			s.finishItem(run, item, catalog.StatusCancelled, "")
			return
		}
	}
}

// finishItem records a terminal item transition: catalog status, optional
// persistence, counters, and the progress event.
func (s *Scheduler) finishItem(run *Run, item catalog.MediaItem, status catalog.Status, errMsg string) {
	s.catalog.Mark(item.ID, status, errMsg)
	s.recordStatus(item.ID)
	if status == catalog.StatusSucceeded {
		if current, ok := s.catalog.Get(item.ID); ok {
			if result, found := s.store.Get(item.ID); found && s.recorder != nil {
				if err := s.recorder.RecordResult(current, result); err != nil {
					log.Warn().Err(err).Str("itemId", item.ID).Msg("failed to persist result")
				}
			}
		}
	}

	current, _ := s.catalog.Get(item.ID)

	run.mu.Lock()
	var evType EventType
	switch status {
	case catalog.StatusSucceeded:
		run.counters.Succeeded++
		evType = EventItemSucceeded
	case catalog.StatusFailed:
		run.counters.Failed++
		evType = EventItemFailed
	case catalog.StatusCancelled:
		run.counters.Cancelled++
		evType = EventItemCancelled
	}
	ev := Event{
		Type:     evType,
		RunID:    run.ID,
		ItemID:   item.ID,
		Filename: item.Filename,
		Attempts: current.Attempts,
		Err:      errMsg,
		Counters: run.counters,
	}
	observer := s.observer
	run.mu.Unlock()

	if observer != nil {
		observer.Notify(ev)
	}
}

func (s *Scheduler) finishRun(run *Run) {
	run.mu.Lock()
	if run.cancelled {
		run.state = StateCancelled
	} else {
		run.state = StateCompleted
	}
	run.endedAt = time.Now()

	summary := &Summary{
		RunID:     run.ID,
		State:     run.state,
		Counters:  run.counters,
		StartedAt: run.startedAt,
		EndedAt:   run.endedAt,
	}
	for _, id := range run.ItemIDs {
		if item, ok := s.catalog.Get(id); ok {
			summary.Items = append(summary.Items, ItemOutcome{
				ItemID:   item.ID,
				Filename: item.Filename,
				Status:   string(item.Status),
				Attempts: item.Attempts,
				Err:      item.LastErr,
			})
		}
	}
	run.summary = summary
	ev := Event{
		Type:     EventRunFinished,
		RunID:    run.ID,
		Counters: run.counters,
	}
	observer := s.observer
	run.mu.Unlock()

	if observer != nil {
		observer.Notify(ev)
	}

	log.Info().
		Str("runId", run.ID).
		Str("state", string(summary.State)).
		Int("succeeded", summary.Counters.Succeeded).
		Int("failed", summary.Counters.Failed).
		Int("cancelled", summary.Counters.Cancelled).
		Msg("pipeline run finished")

	close(run.done)
}

func (s *Scheduler) recordStatus(id string) {
	if s.recorder == nil {
		return
	}
	if item, ok := s.catalog.Get(id); ok {
		if err := s.recorder.RecordStatus(item); err != nil {
			log.Warn().Err(err).Str("itemId", id).Msg("failed to persist item status")
		}
	}
}
