package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wordharvest/wordharvest/internal/cache"
	"github.com/wordharvest/wordharvest/internal/model"
	"github.com/wordharvest/wordharvest/internal/normalize"
	"github.com/wordharvest/wordharvest/internal/wordstat"
)

// taskResult is what a worker hands back to the driving loop.
type taskResult struct {
	task      model.Task
	resp      *model.Response
	fromCache bool
	err       error
}

// runTask is the worker goroutine body. It only fetches; all session
// state mutation happens in collect on the driving loop.
func (s *Scheduler) runTask(ctx context.Context, task model.Task, results chan<- taskResult) {
	resp, fromCache, err := s.fetch(ctx, task)
	results <- taskResult{task: task, resp: resp, fromCache: fromCache, err: err}
}

// fetch resolves one task: cache consult, rate-limiter admission, then
// the API call with retry on transient failures.
func (s *Scheduler) fetch(ctx context.Context, task model.Task) (*model.Response, bool, error) {
	if s.respCache != nil && s.cacheMode.Reads() {
		resp, err := s.respCache.Get(ctx, task.Phrase)
		if err != nil {
			// Cache trouble must not stall discovery; treat as a miss.
			s.logger.Warn("cache read failed, treating as miss",
				"phrase", task.Phrase,
				"error", err,
			)
		} else if resp != nil {
			return resp, true, nil
		}
	}

	// Read-only mode never calls the API: a miss is an empty result.
	if s.cacheMode == cache.ModeOnly {
		return nil, false, nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		granted, reason := s.limiter.Acquire(ctx, 1, s.cfg.AcquireTimeout)
		if !granted {
			return nil, false, fmt.Errorf("quota rejected: %s", reason)
		}

		resp, err := s.fetcher.Fetch(ctx, task.Phrase, s.cfg.PhrasesPerCall, s.cfg.Regions, s.cfg.Device)
		if err == nil {
			if s.respCache != nil && s.cacheMode.Writes() {
				if cerr := s.respCache.Set(ctx, task.Phrase, resp); cerr != nil {
					s.logger.Warn("cache write failed",
						"phrase", task.Phrase,
						"error", cerr,
					)
				}
			}
			return resp, false, nil
		}

		lastErr = err
		if wordstat.Fatal(err) || !wordstat.Retryable(err) {
			return nil, false, err
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}

		delay := s.backoff(attempt)
		s.logger.Debug("transient fetch failure, retrying",
			"phrase", task.Phrase,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	return nil, false, lastErr
}

// collect folds a completed task into session state. It returns a
// non-nil error only for fatal failures that must stop the session;
// everything else is recorded per-task.
func (s *Scheduler) collect(res taskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := res.task.Key()
	delete(s.inflight, key)
	delete(s.enqueued, key)
	s.queried[key] = struct{}{}

	if res.err != nil {
		s.failed[key] = res.err.Error()
		s.logger.Warn("task failed",
			"phrase", res.task.Phrase,
			"depth", res.task.Depth,
			"error", res.err,
		)
		if wordstat.Fatal(res.err) {
			return res.err
		}
		return nil
	}

	if res.fromCache {
		s.cacheHits++
	} else if res.resp != nil {
		s.completedRequests++
	}
	if res.resp == nil {
		return nil
	}

	origin := model.OriginAPI
	if res.fromCache {
		origin = model.OriginCache
	}

	candidates := res.resp.Merged()
	s.retainLocked(res.task, candidates, origin)
	s.expandLocked(res.task, candidates)
	return nil
}

// retainLocked runs candidates through the filter and geo policy and
// merges survivors into the keyword map. Caller holds s.mu.
func (s *Scheduler) retainLocked(task model.Task, candidates []model.Suggestion, origin string) {
	for _, c := range candidates {
		if c.Count < 0 {
			continue
		}

		ok, reason := s.filter.Apply(c.Phrase, c.Count)
		if !ok {
			s.logger.Debug("phrase rejected",
				"phrase", c.Phrase,
				"reason", reason,
			)
			continue
		}

		phrase := c.Phrase
		var geoTokens []string
		if s.geo != nil && s.geoMode != normalize.GeoOff {
			cleaned, tokens, keep := s.geo.Process(s.norm.Normalize(phrase), s.geoMode)
			if !keep {
				continue
			}
			phrase = cleaned
			geoTokens = tokens
		}

		normalized := s.norm.Normalize(phrase)
		if normalized == "" {
			continue
		}

		if rec, exists := s.keywords[normalized]; exists {
			rec.Merge(c.Count)
			continue
		}
		s.keywords[normalized] = &model.KeywordRecord{
			Phrase:    normalized,
			Count:     c.Count,
			Seed:      task.Seed,
			Depth:     task.Depth,
			Source:    task.Phrase,
			GeoTokens: geoTokens,
			Timestamp: time.Now(),
			Origin:    origin,
		}
	}
}

// expandLocked enqueues the top-N highest-volume candidates at the next
// depth. Caller holds s.mu.
//
// Candidates are ranked by count descending with the stable sort
// preserving original API order on ties. When ExpandFiltered is set a
// candidate is eligible even if the filter rejected it for retention:
// expansion breadth is independent of what is kept.
func (s *Scheduler) expandLocked(task model.Task, candidates []model.Suggestion) {
	if task.Depth >= s.cfg.MaxDepth {
		return
	}

	eligible := make([]model.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if c.Count < 0 {
			continue
		}
		if !s.cfg.ExpandFiltered {
			if ok, _ := s.filter.Apply(c.Phrase, c.Count); !ok {
				continue
			}
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Count > eligible[j].Count
	})
	if len(eligible) > s.cfg.TopN {
		eligible = eligible[:s.cfg.TopN]
	}

	for _, c := range eligible {
		phrase := s.norm.Normalize(c.Phrase)
		if phrase == "" {
			continue
		}
		s.enqueueLocked(model.Task{
			Phrase: phrase,
			Depth:  task.Depth + 1,
			Seed:   task.Seed,
			Source: task.Phrase,
		})
	}
}
