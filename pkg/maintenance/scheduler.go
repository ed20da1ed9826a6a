// Package maintenance implements the offline "sleep mode" pipeline: it
// discovers unprocessed daily logs, drives each day through chunking,
// oracle analysis, fact promotion, and digest rendering, and advances the
// processed-date watermark with per-day failure isolation.
package maintenance

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/memkeep/memkeep/pkg/analysis"
	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/logstore"
	"github.com/memkeep/memkeep/pkg/memstore"
	"github.com/memkeep/memkeep/pkg/metrics"
	"github.com/memkeep/memkeep/pkg/oracle"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Config holds scheduler configuration.
type Config struct {
	// DigestEnabled controls whether per-day digests are written.
	DigestEnabled bool

	// MaxChunkChars bounds analysis chunk size. Zero selects the default.
	MaxChunkChars int

	// DedupLimit caps how many existing memories are fetched as dedup
	// context before the run. Zero selects a sensible default.
	DedupLimit int
}

// RunOptions select what a single maintenance run does.
type RunOptions struct {
	// Date restricts the run to one explicit date. Empty means discover
	// all unprocessed dates.
	Date string

	// DryRun stops after discovery, reporting candidates only.
	DryRun bool
}

// DayReport is the outcome of one date's processing.
type DayReport struct {
	Date     string
	Entries  int
	Chunks   int
	Added    int
	Updated  int
	Skipped  bool
	Err      error
	Duration time.Duration
}

// RunReport summarizes one maintenance run.
type RunReport struct {
	Candidates []string
	DryRun     bool
	Days       []DayReport
}

// Processed counts days that completed (including vacuous skips).
func (r *RunReport) Processed() int {
	n := 0
	for _, d := range r.Days {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts days that hit an isolated failure.
func (r *RunReport) Failed() int {
	return len(r.Days) - r.Processed()
}

// Scheduler orchestrates maintenance runs. Dates are processed one at a
// time; there is deliberately no intra-run concurrency so oracle and store
// call volume stays bounded and the dedup snapshot stays valid.
type Scheduler struct {
	logs    *logstore.Store
	store   memstore.Store
	oracle  oracle.Oracle
	digests *DigestWriter
	metrics *metrics.Manager
	log     logger.Logger
	cfg     Config
}

// NewScheduler wires a scheduler from its collaborators.
func NewScheduler(logs *logstore.Store, store memstore.Store, o oracle.Oracle, digests *DigestWriter, m *metrics.Manager, log logger.Logger, cfg Config) *Scheduler {
	if cfg.DedupLimit <= 0 {
		cfg.DedupLimit = 200
	}
	if m == nil {
		m = metrics.NewManager(metrics.Config{Enabled: false})
	}
	if log == nil {
		log = logger.Global()
	}
	return &Scheduler{
		logs:    logs,
		store:   store,
		oracle:  o,
		digests: digests,
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
}

// Run executes one maintenance pass. An invalid explicit date aborts the
// run before any date is touched; per-day failures are isolated and the
// run itself still succeeds.
func (s *Scheduler) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	report := &RunReport{DryRun: opts.DryRun}

	// Discover.
	var days []logstore.DayFile
	if opts.Date != "" {
		if !datePattern.MatchString(opts.Date) {
			return nil, &InvalidDateError{Input: opts.Date}
		}
		days = []logstore.DayFile{{Date: opts.Date, Path: s.logs.DayPath(opts.Date)}}
	} else {
		var err error
		days, err = s.logs.FindUnprocessed()
		if err != nil {
			return nil, err
		}
	}
	for _, d := range days {
		report.Candidates = append(report.Candidates, d.Date)
	}

	if opts.DryRun {
		s.log.Info("dry run: candidate dates discovered", "dates", report.Candidates)
		return report, nil
	}
	if len(days) == 0 {
		s.log.Info("maintenance: nothing to process")
		return report, nil
	}

	// Dedup context is fetched once so it stays consistent for the whole
	// run. A fetch failure degrades to an empty list.
	dedup := s.fetchDedupContext(ctx)

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			// Interrupted between dates: everything committed so far is
			// watermark-safe, the rest is retried next run.
			return report, err
		}

		start := time.Now()
		dayReport := s.processDay(ctx, day, dedup)
		dayReport.Duration = time.Since(start)
		report.Days = append(report.Days, dayReport)

		switch {
		case dayReport.Err != nil:
			s.metrics.RecordDay("failed", dayReport.Duration)
			s.log.Error("maintenance: day failed, will retry next run", "date", day.Date, "error", dayReport.Err)
		case dayReport.Skipped:
			s.metrics.RecordDay("skipped", dayReport.Duration)
			s.log.Info("maintenance: empty day marked processed", "date", day.Date)
		default:
			s.metrics.RecordDay("processed", dayReport.Duration)
			s.metrics.RecordFactsPromoted(dayReport.Added)
			s.log.Info("maintenance: day processed",
				"date", day.Date,
				"entries", dayReport.Entries,
				"chunks", dayReport.Chunks,
				"added", dayReport.Added,
				"updated", dayReport.Updated,
			)
		}
	}

	s.log.Info("maintenance: run complete",
		"candidates", len(report.Candidates),
		"processed", report.Processed(),
		"failed", report.Failed(),
	)
	return report, nil
}

// fetchDedupContext loads existing memories for the prompt's dedup list.
func (s *Scheduler) fetchDedupContext(ctx context.Context) []string {
	items, err := s.store.GetAll(ctx, memstore.ListOptions{Limit: s.cfg.DedupLimit})
	if err != nil {
		s.log.Warn("maintenance: dedup context unavailable, continuing without", "error", err)
		return nil
	}
	memories := make([]string, 0, len(items))
	for _, item := range items {
		memories = append(memories, item.Memory)
	}
	return memories
}

// processDay runs the per-day state sequence:
// Load -> Chunk -> Analyze -> Promote -> Digest -> MarkProcessed.
func (s *Scheduler) processDay(ctx context.Context, day logstore.DayFile, dedup []string) DayReport {
	report := DayReport{Date: day.Date}

	fail := func(stage string, err error) DayReport {
		report.Err = &DayError{Date: day.Date, Stage: stage, Cause: err}
		return report
	}

	// Load.
	entries, err := logstore.ReadDaily(day.Path)
	if err != nil {
		return fail("load", err)
	}
	report.Entries = len(entries)

	// A day with no entries is vacuously complete.
	if len(entries) == 0 {
		if err := s.logs.MarkProcessed(day.Date); err != nil {
			return fail("mark-processed", err)
		}
		report.Skipped = true
		return report
	}

	// Chunk. The chunks are joined back into one oracle exchange; the
	// chunk count is still reported for observability.
	chunks := analysis.Chunk(entries, s.cfg.MaxChunkChars)
	report.Chunks = len(chunks)
	conversation := strings.Join(chunks, "\n")

	// Analyze.
	prompt := analysis.BuildPrompt(day.Date, conversation, dedup)
	oracleStart := time.Now()
	response, err := s.oracle.Complete(ctx, prompt)
	s.metrics.RecordOracleRequest(time.Since(oracleStart))
	if err != nil {
		return fail("analyze", err)
	}
	result, err := analysis.Parse(response)
	if err != nil {
		return fail("analyze", err)
	}

	// Promote each hot fact individually so the store can classify it as
	// an addition or an update.
	userID := dominantUser(entries)
	for _, fact := range result.HotFacts {
		added, err := s.store.Add(ctx, []memstore.Message{{Role: "user", Content: fact}}, memstore.AddOptions{
			UserID:   userID,
			Metadata: map[string]string{"source": "maintenance", "date": day.Date},
		})
		if err != nil {
			return fail("promote", err)
		}
		for _, change := range added.Results {
			switch change.Event {
			case memstore.EventAdd:
				report.Added++
			case memstore.EventUpdate:
				report.Updated++
			}
		}
	}

	// Digest.
	if s.cfg.DigestEnabled && s.digests != nil {
		stats := s.collectStats(ctx)
		if err := s.digests.Save(day.Date, result, stats); err != nil {
			return fail("digest", err)
		}
	}

	// MarkProcessed commits the day. Everything before this point is
	// replay-safe if the run dies mid-date.
	if err := s.logs.MarkProcessed(day.Date); err != nil {
		return fail("mark-processed", err)
	}
	return report
}

// dominantUser picks the user ID most entries of the day belong to.
func dominantUser(entries []*logstore.LogEntry) string {
	counts := make(map[string]int)
	best := ""
	for _, e := range entries {
		counts[e.UserID]++
		if best == "" || counts[e.UserID] > counts[best] {
			best = e.UserID
		}
	}
	return best
}

// collectStats gathers store statistics for the digest footer. Failures
// degrade to nil stats rather than failing the day.
func (s *Scheduler) collectStats(ctx context.Context) *StoreStats {
	items, err := s.store.GetAll(ctx, memstore.ListOptions{})
	if err != nil {
		s.log.Warn("maintenance: store stats unavailable", "error", err)
		return nil
	}
	return &StoreStats{
		HotMemories: len(items),
		ColdDays:    len(s.logs.ListDays()),
	}
}
