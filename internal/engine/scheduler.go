package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wordharvest/wordharvest/internal/cache"
	"github.com/wordharvest/wordharvest/internal/checkpoint"
	"github.com/wordharvest/wordharvest/internal/filter"
	"github.com/wordharvest/wordharvest/internal/model"
	"github.com/wordharvest/wordharvest/internal/normalize"
	"github.com/wordharvest/wordharvest/internal/ratelimit"
)

// State is the session lifecycle state.
type State string

const (
	// StateIdle is the state before Run is called.
	StateIdle State = "idle"

	// StateRunning means the driving loop is dispatching tasks.
	StateRunning State = "running"

	// StatePaused means no new tasks are dispatched; in-flight tasks
	// still complete.
	StatePaused State = "paused"

	// StateDraining means Stop was requested and the loop is waiting
	// for in-flight tasks to finish.
	StateDraining State = "draining"

	// StateStopped is the terminal state.
	StateStopped State = "stopped"
)

// ErrAlreadyRunning is returned when Run or Restore is called on a
// scheduler that has left the idle state.
var ErrAlreadyRunning = errors.New("scheduler has already been started")

// Fetcher is the external suggestion API collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, phrase string, limit int, regions []int64, device string) (*model.Response, error)
}

// ResponseCache is the subset of the response cache the scheduler uses.
type ResponseCache interface {
	Get(ctx context.Context, phrase string) (*model.Response, error)
	Set(ctx context.Context, phrase string, resp *model.Response) error
}

// Scheduler drives a keyword discovery session.
//
// Design decision: All session state is guarded by one mutex, and the
// scheduler never calls another component while holding it because:
//  1. One lock per component with no nesting rules out lock-order
//     inversions.
//  2. Workers do all their blocking (rate limiter, HTTP) outside the
//     lock, so contention stays negligible.
//  3. Merges happen in completion order, which is safe: the max-count
//     merge is commutative and dedup is keyed by identity.
type Scheduler struct {
	cfg Config

	fetcher   Fetcher
	norm      *normalize.Normalizer
	filter    *filter.Filter
	limiter   *ratelimit.Limiter
	respCache ResponseCache
	cacheMode cache.Mode
	geo       *normalize.GeoCleaner
	geoMode   normalize.GeoMode
	backoff   func(attempt int) time.Duration
	logger    *slog.Logger

	// events is the bounded progress channel. Closed by Run on exit.
	events chan Event

	// wake nudges the driving loop out of its select after a state
	// transition so pause/resume/stop take effect without waiting for
	// the next tick.
	wake chan struct{}

	mu                sync.Mutex
	state             State
	pending           []model.Task
	enqueued          map[string]struct{}
	queried           map[string]struct{}
	inflight          map[string]model.Task
	failed            map[string]string
	keywords          map[string]*model.KeywordRecord
	completedRequests int
	cacheHits         int
	sessionStart      time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithFilter sets the keyword filter. Default is a filter with default
// bounds and no matchers.
func WithFilter(f *filter.Filter) Option {
	return func(s *Scheduler) {
		s.filter = f
	}
}

// WithNormalizer sets the phrase normalizer shared with the filter.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Scheduler) {
		s.norm = n
	}
}

// WithLimiter sets the rate limiter. Default is a limiter with default
// quotas.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Scheduler) {
		s.limiter = l
	}
}

// WithCache attaches a response cache and its consultation mode.
// Without this option the scheduler behaves as cache mode off.
func WithCache(c ResponseCache, mode cache.Mode) Option {
	return func(s *Scheduler) {
		s.respCache = c
		s.cacheMode = mode
	}
}

// WithGeo sets the geographic token policy applied to retained phrases.
func WithGeo(g *normalize.GeoCleaner, mode normalize.GeoMode) Option {
	return func(s *Scheduler) {
		s.geo = g
		s.geoMode = mode
	}
}

// WithBackoff overrides the retry delay schedule. Used by tests to
// avoid real sleeps.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(s *Scheduler) {
		s.backoff = fn
	}
}

// New creates a Scheduler. The configuration is validated once here and
// never re-checked per call.
func New(cfg Config, fetcher Fetcher, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:       cfg.withDefaults(),
		fetcher:   fetcher,
		cacheMode: cache.ModeOff,
		geoMode:   normalize.GeoOff,
		backoff:   defaultBackoff,
		logger:    slog.New(slog.NewTextHandler(os.Stderr, nil)),
		events:    make(chan Event, 64),
		wake:      make(chan struct{}, 1),
		state:     StateIdle,
		enqueued:  make(map[string]struct{}),
		queried:   make(map[string]struct{}),
		inflight:  make(map[string]model.Task),
		failed:    make(map[string]string),
		keywords:  make(map[string]*model.KeywordRecord),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.norm == nil {
		s.norm = normalize.New()
	}
	if s.filter == nil {
		s.filter = filter.New(s.norm)
	}
	if s.limiter == nil {
		limiter, err := ratelimit.New(ratelimit.DefaultConfig())
		if err != nil {
			return nil, err
		}
		s.limiter = limiter
	}

	return s, nil
}

// defaultBackoff doubles the delay per attempt, capped at maxBackoff.
func defaultBackoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Events returns the scheduler's event channel. It is closed when Run
// returns.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// State returns the current session state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seed normalizes, dedups, and enqueues each non-empty line of raw as a
// depth-1 task with itself as its seed. It returns how many new tasks
// were enqueued; lines that normalize to a phrase already enqueued or
// already queried are no-ops.
func (s *Scheduler) Seed(raw string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, line := range strings.Split(raw, "\n") {
		phrase := s.norm.Normalize(line)
		if phrase == "" {
			continue
		}
		if s.enqueueLocked(model.Task{Phrase: phrase, Depth: 1, Seed: phrase}) {
			added++
		}
	}
	return added
}

// enqueueLocked adds a task to the frontier unless its identity key has
// already been enqueued or queried. Caller holds s.mu.
func (s *Scheduler) enqueueLocked(task model.Task) bool {
	key := task.Key()
	if _, dup := s.enqueued[key]; dup {
		return false
	}
	if _, done := s.queried[key]; done {
		return false
	}
	s.enqueued[key] = struct{}{}
	s.pending = append(s.pending, task)
	return true
}

// Pause suspends dispatch of new tasks. In-flight tasks still complete.
// Idempotent; pausing a non-running scheduler is a no-op.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StatePaused
	}
	s.mu.Unlock()
	s.nudge()
}

// Resume restarts dispatch after a pause. Idempotent.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if s.state == StatePaused {
		s.state = StateRunning
	}
	s.mu.Unlock()
	s.nudge()
}

// Stop requests a graceful shutdown: no new tasks are dispatched and
// Run returns once in-flight tasks have drained. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StatePaused {
		s.state = StateDraining
	}
	s.mu.Unlock()
	s.nudge()
}

// nudge wakes the driving loop without blocking.
func (s *Scheduler) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run drives the discovery session until the frontier and all in-flight
// work are empty, Stop is called, or a fatal error occurs. It blocks
// and may be called once per Scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = StateRunning
	if s.sessionStart.IsZero() {
		s.sessionStart = time.Now()
	}
	s.mu.Unlock()

	results := make(chan taskResult)

	progress := time.NewTicker(s.cfg.ProgressInterval)
	defer progress.Stop()

	var autosave <-chan time.Time
	if s.cfg.AutosaveInterval > 0 {
		t := time.NewTicker(s.cfg.AutosaveInterval)
		defer t.Stop()
		autosave = t.C
	}

	var fatal error
	done := ctx.Done()

	for {
		if s.dispatch(ctx, results) {
			break
		}

		select {
		case res := <-results:
			if err := s.collect(res); err != nil && fatal == nil {
				fatal = err
				s.logger.Error("fatal fetch error, draining session", "error", err)
				s.Stop()
			}
		case <-progress.C:
			s.emit(Event{Kind: EventProgress, Stats: s.Stats()})
		case <-autosave:
			s.emit(Event{Kind: EventAutosave, Stats: s.Stats(), Checkpoint: s.Checkpoint()})
		case <-s.wake:
		case <-done:
			if fatal == nil {
				fatal = ctx.Err()
			}
			s.Stop()
			done = nil
		}
	}

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	s.emit(Event{Kind: EventDone, Stats: s.Stats()})
	close(s.events)
	return fatal
}

// dispatch fills free worker slots from the frontier and reports
// whether the session is finished.
func (s *Scheduler) dispatch(ctx context.Context, results chan<- taskResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		for len(s.inflight) < s.cfg.Workers && len(s.pending) > 0 {
			task := s.pending[0]
			s.pending = s.pending[1:]
			s.inflight[task.Key()] = task
			go s.runTask(ctx, task, results)
		}
	}

	if len(s.inflight) > 0 {
		return false
	}
	switch s.state {
	case StateDraining:
		return true
	case StateRunning:
		return len(s.pending) == 0
	default:
		// Paused with nothing in flight: wait for resume or stop.
		return false
	}
}

// emit delivers an event without blocking. Events are dropped when the
// consumer falls behind; progress is advisory.
func (s *Scheduler) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// Stats returns a point-in-time snapshot of session progress.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var elapsed time.Duration
	if !s.sessionStart.IsZero() {
		elapsed = time.Since(s.sessionStart)
	}

	return Stats{
		FoundCount:        len(s.keywords),
		QueueDepth:        len(s.pending),
		InFlight:          len(s.inflight),
		CompletedRequests: s.completedRequests,
		FailedTasks:       len(s.failed),
		CacheHits:         s.cacheHits,
		Elapsed:           elapsed,
	}
}

// Keywords returns a copy of the keyword map as a slice sorted by count
// descending, ties broken by phrase.
func (s *Scheduler) Keywords() []model.KeywordRecord {
	s.mu.Lock()
	out := make([]model.KeywordRecord, 0, len(s.keywords))
	for _, rec := range s.keywords {
		out = append(out, *rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Phrase < out[j].Phrase
	})
	return out
}

// Failed returns a copy of the failed-task map keyed by task identity.
func (s *Scheduler) Failed() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.failed))
	for k, v := range s.failed {
		out[k] = v
	}
	return out
}

// Checkpoint captures the session state for persistence. In-flight
// tasks are included in the pending list so a restore re-fetches them.
func (s *Scheduler) Checkpoint() *checkpoint.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]model.Task, 0, len(s.pending)+len(s.inflight))
	for _, task := range s.inflight {
		pending = append(pending, task)
	}
	pending = append(pending, s.pending...)

	queried := make([]string, 0, len(s.queried))
	for key := range s.queried {
		queried = append(queried, key)
	}
	sort.Strings(queried)

	failed := make(map[string]string, len(s.failed))
	for k, v := range s.failed {
		failed[k] = v
	}

	keywords := make(map[string]*model.KeywordRecord, len(s.keywords))
	for phrase, rec := range s.keywords {
		clone := *rec
		keywords[phrase] = &clone
	}

	return &checkpoint.Checkpoint{
		SessionStart:      s.sessionStart,
		PendingTasks:      pending,
		QueriedKeys:       queried,
		FailedTasks:       failed,
		Keywords:          keywords,
		CompletedRequests: s.completedRequests,
		CacheHits:         s.cacheHits,
		Quota:             s.limiter.Snapshot(),
	}
}

// Restore reinstates session state from a checkpoint. It must be called
// before Run; restoring a started scheduler returns ErrAlreadyRunning.
// The dedup sets are rebuilt exactly, so a resumed run never re-fetches
// a task the interrupted run completed.
func (s *Scheduler) Restore(cp *checkpoint.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyRunning
	}

	s.pending = append([]model.Task(nil), cp.PendingTasks...)
	s.enqueued = make(map[string]struct{}, len(s.pending))
	for _, task := range s.pending {
		s.enqueued[task.Key()] = struct{}{}
	}

	s.queried = make(map[string]struct{}, len(cp.QueriedKeys))
	for _, key := range cp.QueriedKeys {
		s.queried[key] = struct{}{}
	}

	s.failed = make(map[string]string, len(cp.FailedTasks))
	for k, v := range cp.FailedTasks {
		s.failed[k] = v
	}

	s.keywords = make(map[string]*model.KeywordRecord, len(cp.Keywords))
	for phrase, rec := range cp.Keywords {
		clone := *rec
		s.keywords[phrase] = &clone
	}

	s.completedRequests = cp.CompletedRequests
	s.cacheHits = cp.CacheHits
	s.sessionStart = cp.SessionStart
	s.limiter.Restore(cp.Quota)
	return nil
}
