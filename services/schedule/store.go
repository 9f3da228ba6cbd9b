package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"maischedule-backend/lib/scrapers/mai"
	"maischedule-backend/lib/timezone"
	"maischedule-backend/services/schedule/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/schedule")

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	groups *groupLocks
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		groups: &groupLocks{locks: map[string]*sync.Mutex{}},
	}
}

// two synchronizations for the same group must not interleave their
// delete-then-insert sequences; different groups stay fully parallel
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (g *groupLocks) acquire(name string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[name] = lock
	}
	return lock
}

// Synchronize replaces the persisted lessons of one group over the
// date span covered by the batch. All records must belong to the
// given group. The whole batch is one transaction: either every
// record lands or none do. An empty batch is a no-op, since deleting
// a span with no replacement would erase data the origin still
// reports on pages we failed to parse.
func (s Store) Synchronize(ctx context.Context, group string, records []mai.Lesson) error {
	ctx, span := tracer.Start(ctx, "Synchronize")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", group),
		attribute.Int("records", len(records)),
	)

	if len(records) == 0 {
		slog.WarnContext(ctx, "refusing to synchronize an empty batch", "group", group)
		return nil
	}
	for _, r := range records {
		if r.Group != group {
			err := fmt.Errorf("record for group %q in a batch for group %q", r.Group, group)
			span.RecordError(err)
			span.SetStatus(codes.Error, "mixed-group batch")
			return err
		}
	}

	lock := s.groups.acquire(group)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateStudyGroup(ctx, group)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	groupId, err := txqry.GetStudyGroupId(ctx, group)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	after, before := dateSpan(records)
	err = txqry.DeleteLessonsInSpan(ctx, db.DeleteLessonsInSpanParams{
		GroupID: groupId,
		After:   after,
		Before:  before,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, r := range records {
		err := s.upsertRecord(ctx, txqry, groupId, r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Store) upsertRecord(ctx context.Context, txqry *db.Queries, groupId int64, r mai.Lesson) error {
	err := txqry.CreateSubject(ctx, r.Subject)
	if err != nil {
		return err
	}
	subjectId, err := txqry.GetSubjectId(ctx, r.Subject)
	if err != nil {
		return err
	}

	err = txqry.CreateTeacher(ctx, r.Teacher)
	if err != nil {
		return err
	}
	teacherId, err := txqry.GetTeacherId(ctx, r.Teacher)
	if err != nil {
		return err
	}

	err = txqry.CreateClassroom(ctx, r.Classroom)
	if err != nil {
		return err
	}
	classroomId, err := txqry.GetClassroomId(ctx, r.Classroom)
	if err != nil {
		return err
	}

	end := sql.NullInt64{}
	if !r.End.IsZero() {
		end = sql.NullInt64{Int64: r.End.Unix(), Valid: true}
	}
	lessonType := sql.NullString{}
	if r.Type != "" {
		lessonType = sql.NullString{String: r.Type, Valid: true}
	}

	// the unique (group_id, start_time) key makes this an update when
	// a concurrent overlapping-span writer already inserted the slot
	return txqry.UpsertLesson(ctx, db.UpsertLessonParams{
		SubjectID:   subjectId,
		TeacherID:   teacherId,
		ClassroomID: classroomId,
		GroupID:     groupId,
		StartTime:   r.Start.Unix(),
		EndTime:     end,
		LessonType:  lessonType,
	})
}

// the inclusive [earliest, latest] start dates of the batch, widened
// to whole days in Moscow time and returned as a [after, before) unix
// second range
func dateSpan(records []mai.Lesson) (int64, int64) {
	earliest := records[0].Start
	latest := records[0].Start
	for _, r := range records[1:] {
		if r.Start.Before(earliest) {
			earliest = r.Start
		}
		if r.Start.After(latest) {
			latest = r.Start
		}
	}
	return startOfDay(earliest).Unix(), startOfDay(latest).AddDate(0, 0, 1).Unix()
}

func startOfDay(t time.Time) time.Time {
	t = t.In(timezone.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, timezone.Location)
}

type PersistedLesson struct {
	Subject   string
	Teacher   string
	Classroom string
	Start     time.Time
	End       time.Time
	Type      string
}

// Lessons returns the persisted lessons of a group whose start time
// falls within [from, to), ordered by start time. A group that was
// never synchronized yields no rows.
func (s Store) Lessons(ctx context.Context, group string, from, to time.Time) ([]PersistedLesson, error) {
	groupId, err := s.qry.GetStudyGroupId(ctx, group)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.qry.GetLessonsInSpan(ctx, db.GetLessonsInSpanParams{
		GroupID: groupId,
		After:   from.Unix(),
		Before:  to.Unix(),
	})
	if err != nil {
		return nil, err
	}

	lessons := make([]PersistedLesson, len(rows))
	for i, r := range rows {
		lessons[i] = PersistedLesson{
			Subject:   r.Subject,
			Teacher:   r.Teacher,
			Classroom: r.Classroom,
			Start:     time.Unix(r.StartTime, 0).In(timezone.Location),
			Type:      r.LessonType.String,
		}
		if r.EndTime.Valid {
			lessons[i].End = time.Unix(r.EndTime.Int64, 0).In(timezone.Location)
		}
	}
	return lessons, nil
}
