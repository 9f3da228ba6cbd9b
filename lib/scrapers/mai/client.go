package mai

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"maischedule-backend/lib/pagecache"
	"maischedule-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/mai")

const DefaultBaseUrl = "https://mai.ru/education/studies/schedule/index.php"
const DefaultUserAgent = "ScheduleParserBot/1.0"

const DefaultCacheEntries = 256
const DefaultCacheTtl = time.Second * 300
const DefaultTimeout = time.Second * 15

// FetchError reports a failed page fetch. StatusCode is zero when the
// request never produced a response (timeout, connection failure).
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch schedule page: %s", e.Err.Error())
	}
	return fmt.Sprintf("fetch schedule page: status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Network() bool {
	return e.StatusCode == 0
}

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// Cache may be shared between clients; when nil a private one
	// with the default bounds is created.
	Cache *pagecache.Cache
}

type Client struct {
	http    *resty.Client
	baseUrl string
	cache   *pagecache.Cache
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cache == nil {
		opts.Cache = pagecache.New(DefaultCacheEntries, DefaultCacheTtl)
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	telemetry.InstrumentResty(client, "scrapers/mai/http")

	return &Client{
		http:    client,
		baseUrl: opts.BaseUrl,
		cache:   opts.Cache,
	}
}

// FetchPage returns the raw schedule page for one (group, week),
// serving from the cache when it holds a fresh copy. A miss issues a
// single request; retries are the caller's business.
func (c *Client) FetchPage(ctx context.Context, group string, week int) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", group),
		attribute.Int("week", week),
	)

	if page, hit := c.cache.Get(group, week); hit {
		span.AddEvent("cache hit")
		return page, nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("group", group).
		SetQueryParam("week", strconv.Itoa(week)).
		Get(c.baseUrl)
	if err != nil {
		ferr := &FetchError{Err: err}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "request failed")
		return nil, ferr
	}
	if !res.IsSuccess() {
		ferr := &FetchError{StatusCode: res.StatusCode()}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "non-success status")
		return nil, ferr
	}

	page := res.Body()
	c.cache.Put(group, week, page)
	return page, nil
}
