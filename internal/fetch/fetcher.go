package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jaennil/guide_helper/backend/tileengine/internal/fetch"

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// maxBodySize bounds a single upstream response.
const maxBodySize = 16 << 20

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch tile",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(http.MethodGet),
			semconv.URLFull(url),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.FetchRequests.Inc()

	data, err := f.do(ctx, url, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (f *HTTPFetcher) do(ctx context.Context, url string, span trace.Span) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("request").Inc()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Tile usage policies require an identifying User-Agent.
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchFailures.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.FetchFailures.WithLabelValues("body").Inc()
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return data, nil
}
