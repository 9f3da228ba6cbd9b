package schedule

import (
	"context"
	"sync"
	"testing"
	"time"
	"maischedule-backend/lib/scrapers/mai"
	"maischedule-backend/lib/testutil"
	"maischedule-backend/lib/timezone"
	"maischedule-backend/services/schedule/db"

	"github.com/stretchr/testify/require"
)

func lessonAt(group, subject string, day, hour int) mai.Lesson {
	year := timezone.Now().Year()
	start := time.Date(year, time.February, day, hour, 0, 0, 0, timezone.Location)
	return mai.Lesson{
		Subject:   subject,
		Teacher:   "Иванов И.И.",
		Classroom: "ГУК Б-420",
		Start:     start,
		End:       start.Add(time.Minute * 90),
		Type:      "Лек",
		Group:     group,
	}
}

func spanOf(days ...int) (time.Time, time.Time) {
	year := timezone.Now().Year()
	first := days[0]
	last := days[len(days)-1]
	return time.Date(year, time.February, first, 0, 0, 0, 0, timezone.Location),
		time.Date(year, time.February, last+1, 0, 0, 0, 0, timezone.Location)
}

func TestSynchronizeRoundTrip(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	records := []mai.Lesson{
		lessonAt("М8О-102БВ-24", "История", 3, 10),
		lessonAt("М8О-102БВ-24", "Математика", 4, 9),
	}
	require.NoError(t, store.Synchronize(ctx, "М8О-102БВ-24", records))

	from, to := spanOf(3, 4)
	persisted, err := store.Lessons(ctx, "М8О-102БВ-24", from, to)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	require.Equal(t, "История", persisted[0].Subject)
	require.Equal(t, "Иванов И.И.", persisted[0].Teacher)
	require.Equal(t, "ГУК Б-420", persisted[0].Classroom)
	require.Equal(t, "Лек", persisted[0].Type)
	require.True(t, persisted[0].Start.Equal(records[0].Start))
	require.True(t, persisted[0].End.Equal(records[0].End))
	require.Equal(t, "Математика", persisted[1].Subject)
}

func TestSynchronizeReplacesSpan(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-replace",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Synchronize(ctx, "group", []mai.Lesson{
		lessonAt("group", "История", 3, 10),
		lessonAt("group", "Математика", 3, 12),
		lessonAt("group", "Физика", 4, 9),
	}))

	// the origin stopped reporting Математика and moved Физика
	require.NoError(t, store.Synchronize(ctx, "group", []mai.Lesson{
		lessonAt("group", "История", 3, 10),
		lessonAt("group", "Физика", 4, 11),
	}))

	from, to := spanOf(3, 4)
	persisted, err := store.Lessons(ctx, "group", from, to)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	require.Equal(t, "История", persisted[0].Subject)
	require.Equal(t, "Физика", persisted[1].Subject)
	require.Equal(t, 11, persisted[1].Start.Hour())
}

func TestSynchronizeIdempotent(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-idempotent",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	records := []mai.Lesson{
		lessonAt("group", "История", 3, 10),
		lessonAt("group", "Математика", 4, 9),
	}
	require.NoError(t, store.Synchronize(ctx, "group", records))
	require.NoError(t, store.Synchronize(ctx, "group", records))

	from, to := spanOf(3, 4)
	persisted, err := store.Lessons(ctx, "group", from, to)
	require.NoError(t, err)
	require.Len(t, persisted, 2)

	// dimension rows were reused, not duplicated
	var subjects int
	require.NoError(t, setup.DB.QueryRow("SELECT COUNT(*) FROM subjects").Scan(&subjects))
	require.Equal(t, 2, subjects)
	var teachers int
	require.NoError(t, setup.DB.QueryRow("SELECT COUNT(*) FROM teachers").Scan(&teachers))
	require.Equal(t, 1, teachers)
}

func TestSynchronizeEmptyBatchIsNoOp(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-empty",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Synchronize(ctx, "group", []mai.Lesson{
		lessonAt("group", "История", 3, 10),
	}))
	require.NoError(t, store.Synchronize(ctx, "group", nil))

	from, to := spanOf(3)
	persisted, err := store.Lessons(ctx, "group", from, to)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
}

func TestSynchronizeRejectsMixedGroups(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-mixed",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := store.Synchronize(ctx, "group-a", []mai.Lesson{
		lessonAt("group-b", "История", 3, 10),
	})
	require.Error(t, err)

	from, to := spanOf(1, 28)
	persisted, err := store.Lessons(ctx, "group-a", from, to)
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestSynchronizeConcurrentGroups(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-concurrent",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	groups := []string{"group-a", "group-b", "group-c", "group-d"}
	wg := sync.WaitGroup{}
	errs := make([]error, len(groups))
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g string) {
			defer wg.Done()
			errs[i] = store.Synchronize(ctx, g, []mai.Lesson{
				lessonAt(g, "История", 3, 10),
				lessonAt(g, "Математика", 4, 9),
			})
		}(i, g)
	}
	wg.Wait()

	from, to := spanOf(3, 4)
	for i, g := range groups {
		require.NoError(t, errs[i])
		persisted, err := store.Lessons(ctx, g, from, to)
		require.NoError(t, err)
		require.Len(t, persisted, 2)
	}
}

func TestSynchronizeConcurrentSameGroup(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/schedule/store-same-group",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// overlapping spans for the same group must serialize, never
	// corrupt, and leave exactly one batch's worth of data behind
	batch := []mai.Lesson{
		lessonAt("group", "История", 3, 10),
		lessonAt("group", "Математика", 4, 9),
	}
	wg := sync.WaitGroup{}
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Synchronize(ctx, "group", batch)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	from, to := spanOf(3, 4)
	persisted, err := store.Lessons(ctx, "group", from, to)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
}
