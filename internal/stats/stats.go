// Package stats computes the dashboard snapshot for one owner. Every
// call re-scans the owner's event set; there is no caching layer.
package stats

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/daycast/backend/internal/authz"
	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

// EventStore defines the read-only persistence interface the aggregator
// consumes. The aggregator never mutates state.
type EventStore interface {
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindMany(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Event, error)
	FindPreviews(ctx context.Context, filter bson.M, limit int64) ([]models.EventPreview, error)
	GroupByYearMonth(ctx context.Context, filter bson.M, dateField string) ([]store.YearMonthCount, error)
}

// MonthCount is one bucket of the trailing-6-month distribution.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DayCount is one bucket of the 30-day timeline.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Snapshot is the wire contract the dashboard frontend depends on.
type Snapshot struct {
	TotalEvents          int64                 `json:"totalEvents"`
	MonthlyEvents        int64                 `json:"monthlyEvents"`
	UpcomingEvents       int64                 `json:"upcomingEvents"`
	EventsTrend          int                   `json:"eventsTrend"`
	NextEvents           []models.EventPreview `json:"nextEvents"`
	CategoryDistribution map[string]int        `json:"categoryDistribution"`
	MonthlyDistribution  []MonthCount          `json:"monthlyDistribution"`
	Timeline             []DayCount            `json:"timeline"`
}

var monthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Aggregator produces dashboard snapshots. The clock is injectable so
// window boundaries are testable; all boundaries use server-local time,
// no caller timezone is accepted.
type Aggregator struct {
	store EventStore
	now   func() time.Time
}

func NewAggregator(st EventStore) *Aggregator {
	return &Aggregator{store: st, now: time.Now}
}

// NewAggregatorWithClock injects a clock for tests.
func NewAggregatorWithClock(st EventStore, now func() time.Time) *Aggregator {
	return &Aggregator{store: st, now: now}
}

// trendPercent is the percentage change of this month's count versus
// last month's. A zero last month yields 100 unconditionally, even when
// this month is also zero. Quirk preserved from the dashboard contract.
// Halves round toward positive infinity, so -62.5 becomes -62.
func trendPercent(monthly, lastMonth int64) int {
	if lastMonth == 0 {
		return 100
	}
	return int(math.Floor(float64(monthly-lastMonth)/float64(lastMonth)*100 + 0.5))
}

// startRange builds a filter clause on the event start field. A nil
// bound is omitted; upper selects $lte (inclusive) or $lt.
func startRange(gte, upper *time.Time, upperInclusive bool) bson.M {
	r := bson.M{}
	if gte != nil {
		r["$gte"] = *gte
	}
	if upper != nil {
		if upperInclusive {
			r["$lte"] = *upper
		} else {
			r["$lt"] = *upper
		}
	}
	return bson.M{"start": r}
}

// Snapshot computes the full dashboard for one owner. The sub-queries
// are independent reads and run concurrently; the first failure aborts
// the whole snapshot, never partial results.
func (a *Aggregator) Snapshot(ctx context.Context, ownerID string) (*Snapshot, error) {
	scope := authz.OwnerScope{OwnerID: ownerID}
	now := a.now()

	year, month := now.Year(), now.Month()
	startOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	// Day 0 of the next month normalizes to the last day of this one,
	// at midnight. Events later on that day fall outside the window,
	// matching the dashboard's historical behavior.
	endOfMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location())
	startOfLastMonth := time.Date(year, month-1, 1, 0, 0, 0, 0, now.Location())
	sixMonthsAgo := time.Date(year, month-5, 1, 0, 0, 0, 0, now.Location())
	nextWeek := now.Add(7 * 24 * time.Hour)
	thirtyDaysOut := now.Add(30 * 24 * time.Hour)

	var (
		total, monthly, lastMonth, upcoming int64
		nextEvents                          []models.EventPreview
		allEvents                           []models.Event
		monthBuckets                        []store.YearMonthCount
		timelineEvents                      []models.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = a.store.Count(gctx, scope.Scope())
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = a.store.Count(gctx, scope.ScopeWith(startRange(&startOfMonth, &endOfMonth, true)))
		return err
	})
	g.Go(func() error {
		var err error
		lastMonth, err = a.store.Count(gctx, scope.ScopeWith(startRange(&startOfLastMonth, &startOfMonth, false)))
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = a.store.Count(gctx, scope.ScopeWith(startRange(&now, &nextWeek, true)))
		return err
	})
	g.Go(func() error {
		var err error
		nextEvents, err = a.store.FindPreviews(gctx, scope.ScopeWith(startRange(&now, nil, false)), 5)
		return err
	})
	g.Go(func() error {
		var err error
		allEvents, err = a.store.FindMany(gctx, scope.Scope(), nil, 0)
		return err
	})
	g.Go(func() error {
		var err error
		monthBuckets, err = a.store.GroupByYearMonth(gctx, scope.ScopeWith(startRange(&sixMonthsAgo, nil, false)), "start")
		return err
	})
	g.Go(func() error {
		var err error
		timelineEvents, err = a.store.FindMany(gctx,
			scope.ScopeWith(startRange(&now, &thirtyDaysOut, true)),
			bson.D{{Key: "start", Value: 1}}, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TotalEvents:          total,
		MonthlyEvents:        monthly,
		UpcomingEvents:       upcoming,
		EventsTrend:          trendPercent(monthly, lastMonth),
		NextEvents:           nextEvents,
		CategoryDistribution: categoryDistribution(allEvents),
		MonthlyDistribution:  formatMonthly(monthBuckets),
		Timeline:             timeline(timelineEvents),
	}
	if snap.NextEvents == nil {
		snap.NextEvents = []models.EventPreview{}
	}
	return snap, nil
}

// categoryDistribution tallies all of the owner's events by category,
// not time-bounded.
func categoryDistribution(events []models.Event) map[string]int {
	dist := make(map[string]int)
	for _, ev := range events {
		dist[ev.Category]++
	}
	return dist
}

// formatMonthly labels each (year, month) bucket with its 3-letter
// abbreviation, keeping the store's chronological order.
func formatMonthly(buckets []store.YearMonthCount) []MonthCount {
	out := make([]MonthCount, 0, len(buckets))
	for _, b := range buckets {
		if b.Month < 1 || b.Month > 12 {
			continue
		}
		out = append(out, MonthCount{Month: monthAbbrevs[b.Month-1], Count: b.Count})
	}
	return out
}

// timeline tallies events per calendar day of their start date. Buckets
// are emitted in first-encounter order over the start-ascending input,
// which coincides with chronological order; they are not independently
// re-sorted. Dates are formatted from the UTC instant, matching the
// dashboard's historical ISO date strings.
func timeline(events []models.Event) []DayCount {
	counts := make(map[string]int)
	var order []string
	for _, ev := range events {
		day := ev.Start.UTC().Format("2006-01-02")
		if _, seen := counts[day]; !seen {
			order = append(order, day)
		}
		counts[day]++
	}
	out := make([]DayCount, 0, len(order))
	for _, day := range order {
		out = append(out, DayCount{Date: day, Count: counts[day]})
	}
	return out
}
