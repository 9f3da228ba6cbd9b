package schedule

import (
	"context"
	"log/slog"
	"sync"
	"maischedule-backend/lib/scrapers/mai"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFetchFailed Outcome = "fetch-failed"
	OutcomeParseEmpty  Outcome = "parse-empty"
	OutcomeSyncFailed  Outcome = "sync-failed"
)

// UnitReport is the audit record of one (group, week) pipeline run.
type UnitReport struct {
	Group   string
	Week    int
	Outcome Outcome
	Err     error
}

type Options struct {
	// the maximum number of units in flight at once, to go easy on
	// the origin and on local resources
	MaxInflight int
}

type Service struct {
	client      *mai.Client
	store       Store
	maxInflight int
}

func NewService(client *mai.Client, store Store, opts Options) Service {
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 4
	}
	return Service{
		client:      client,
		store:       store,
		maxInflight: opts.MaxInflight,
	}
}

// Run works the full groups × weeks cross product with bounded
// concurrency and reports a per-unit outcome. Units are independent:
// one failing never aborts the others. Cancelling the context stops
// launching new units; in-flight units finish on their own.
func (s Service) Run(ctx context.Context, groups []string, weeks []int) []UnitReport {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("groups", len(groups)),
		attribute.Int("weeks", len(weeks)),
	)

	var mu sync.Mutex
	var reports []UnitReport

	eg := errgroup.Group{}
	eg.SetLimit(s.maxInflight)
	for _, group := range groups {
		for _, week := range weeks {
			group, week := group, week
			eg.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				report := s.runUnit(ctx, group, week)
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
				return nil
			})
		}
	}
	eg.Wait()

	return reports
}

func (s Service) runUnit(ctx context.Context, group string, week int) UnitReport {
	page, err := s.client.FetchPage(ctx, group, week)
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to fetch schedule page",
			"group", group, "week", week, "err", err,
		)
		return UnitReport{Group: group, Week: week, Outcome: OutcomeFetchFailed, Err: err}
	}

	parsed, err := mai.Parse(ctx, page)
	if err != nil {
		// structurally invalid page, as opposed to one that
		// legitimately lists no lessons
		slog.ErrorContext(
			ctx, "schedule page failed to parse",
			"group", group, "week", week, "err", err,
		)
		return UnitReport{Group: group, Week: week, Outcome: OutcomeParseEmpty, Err: err}
	}
	if len(parsed.Skipped) > 0 {
		slog.WarnContext(
			ctx, "skipped malformed schedule entries",
			"group", group, "week", week, "count", len(parsed.Skipped),
		)
	}
	if len(parsed.Lessons) == 0 {
		slog.InfoContext(
			ctx, "schedule page lists no lessons",
			"group", group, "week", week,
		)
		return UnitReport{Group: group, Week: week, Outcome: OutcomeParseEmpty}
	}

	err = s.store.Synchronize(ctx, parsed.Group, parsed.Lessons)
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to synchronize schedule",
			"group", group, "week", week, "err", err,
		)
		return UnitReport{Group: group, Week: week, Outcome: OutcomeSyncFailed, Err: err}
	}

	return UnitReport{Group: group, Week: week, Outcome: OutcomeSuccess}
}

// RequestIngestion kicks off a run in the background and returns
// immediately. Outcomes never surface to the caller synchronously;
// they land in the logs and in whatever the completion callback does
// with the reports. `done` may be nil.
func (s Service) RequestIngestion(ctx context.Context, groups []string, weeks []int, done func([]UnitReport)) {
	slog.InfoContext(
		ctx, "ingestion requested",
		"groups", len(groups), "weeks", len(weeks),
	)
	go func() {
		reports := s.Run(ctx, groups, weeks)
		logRunSummary(ctx, reports)
		if done != nil {
			done(reports)
		}
	}()
}

func logRunSummary(ctx context.Context, reports []UnitReport) {
	failed := 0
	for _, r := range reports {
		if r.Outcome == OutcomeSuccess {
			continue
		}
		failed++
		slog.WarnContext(
			ctx, "ingestion unit did not succeed",
			"group", r.Group, "week", r.Week,
			"outcome", string(r.Outcome), "err", r.Err,
		)
	}
	slog.InfoContext(
		ctx, "ingestion run finished",
		"units", len(reports), "failed", failed,
	)
}
