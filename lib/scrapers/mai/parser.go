package mai

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"maischedule-backend/lib/htmlutil"
	"maischedule-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// a page without a group headline is structurally invalid,
// as opposed to a page that legitimately lists no lessons
var ErrNoHeadline = errors.New("schedule page has no group headline")
var ErrNoDayContainer = errors.New("schedule page has no day block container")

// rendered on the page when the lesson lists no teacher
const TeacherUnspecified = "Преподаватель не указан"

type Lesson struct {
	Subject   string
	Teacher   string
	Classroom string
	Start     time.Time
	End       time.Time
	Type      string
	Group     string
}

// SkippedEntry names one lesson or day block that could not be
// extracted. The rest of the page is unaffected.
type SkippedEntry struct {
	Day    string
	Reason string
}

type Schedule struct {
	Group   string
	Lessons []Lesson
	Skipped []SkippedEntry
}

var timeRangeRegex = regexp.MustCompile(`^(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})$`)

// Parse extracts the week's lessons out of a raw schedule page. The
// pages carry no year, so timestamps are stamped with the current
// Moscow calendar year. A malformed lesson block is skipped and
// recorded, never fatal; only a missing headline or day container
// fails the page as a whole.
func Parse(ctx context.Context, page []byte) (Schedule, error) {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreadable html")
		return Schedule{}, err
	}

	group := htmlutil.CleanText(doc.Find("[itemprop=headline]").First().Text())
	if group == "" {
		span.SetStatus(codes.Error, "missing headline")
		return Schedule{}, ErrNoHeadline
	}
	span.SetAttributes(attribute.String("group", group))

	container := doc.Find(".step.mb-5").First()
	if container.Length() == 0 {
		span.SetStatus(codes.Error, "missing day container")
		return Schedule{Group: group}, ErrNoDayContainer
	}

	out := Schedule{Group: group}
	year := timezone.Now().Year()

	container.Find(".step-item").Each(func(_ int, day *goquery.Selection) {
		label := htmlutil.CleanText(day.Find(".step-content span").First().Text())

		dayNum, month, ok := parseDateLabel(label)
		if !ok {
			out.Skipped = append(out.Skipped, SkippedEntry{
				Day:    label,
				Reason: "unrecognized date label",
			})
			return
		}

		day.Find("div.mb-4").Each(func(_ int, block *goquery.Selection) {
			lesson, reason := parseLessonBlock(block, group, year, month, dayNum)
			if reason != "" {
				out.Skipped = append(out.Skipped, SkippedEntry{
					Day:    label,
					Reason: reason,
				})
				return
			}
			out.Lessons = append(out.Lessons, lesson)
		})
	})

	span.SetAttributes(
		attribute.Int("lessons", len(out.Lessons)),
		attribute.Int("skipped", len(out.Skipped)),
	)
	return out, nil
}

// a date label renders as "Пт, 29 января"; the weekday prefix is not
// trusted to be present
func parseDateLabel(label string) (int, time.Month, bool) {
	start := strings.IndexFunc(label, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if start < 0 {
		return 0, 0, false
	}

	fields := strings.Fields(label[start:])
	if len(fields) < 2 {
		return 0, 0, false
	}
	dayNum, err := strconv.Atoi(fields[0])
	if err != nil || dayNum < 1 || dayNum > 31 {
		return 0, 0, false
	}
	month, ok := monthFromToken(fields[1])
	if !ok {
		return 0, 0, false
	}
	return dayNum, month, true
}

func parseLessonBlock(block *goquery.Selection, group string, year int, month time.Month, dayNum int) (Lesson, string) {
	title := htmlutil.CleanText(block.Find("div").First().Text())
	split := strings.LastIndex(title, " ")
	if split <= 0 {
		return Lesson{}, "malformed title: " + title
	}
	subject := strings.TrimRight(title[:split], " ")
	lessonType := title[split+1:]

	var items []string
	block.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		items = append(items, htmlutil.CleanText(li.Text()))
	})
	if len(items) < 2 {
		return Lesson{}, "missing time range or classroom"
	}

	groups := timeRangeRegex.FindStringSubmatch(items[0])
	if groups == nil {
		return Lesson{}, "malformed time range: " + items[0]
	}
	start, ok := clockOnDay(groups[1], year, month, dayNum)
	if !ok {
		return Lesson{}, "malformed start time: " + groups[1]
	}
	end, ok := clockOnDay(groups[2], year, month, dayNum)
	if !ok {
		return Lesson{}, "malformed end time: " + groups[2]
	}

	teacher := TeacherUnspecified
	if len(items) > 2 {
		teacher = strings.Join(items[1:len(items)-1], " | ")
	}
	classroom := items[len(items)-1]

	return Lesson{
		Subject:   subject,
		Teacher:   teacher,
		Classroom: classroom,
		Start:     start,
		End:       end,
		Type:      lessonType,
		Group:     group,
	}, ""
}

func clockOnDay(clock string, year int, month time.Month, dayNum int) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		year, month, dayNum,
		t.Hour(), t.Minute(), 0, 0,
		timezone.Location,
	), true
}
