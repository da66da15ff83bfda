package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/prensa/internal/backend"
	"github.com/bakkerme/prensa/internal/feed"
	"github.com/bakkerme/prensa/internal/filter"
	"github.com/bakkerme/prensa/internal/metrics"
)

var tracer = otel.Tracer("github.com/bakkerme/prensa/internal/view")

// Fetcher is what the sequencer needs from the backend proxy adapter.
type Fetcher interface {
	Fetch(ctx context.Context, p backend.Params) (*feed.Result, error)
}

// Params are the fetch-affecting parameters. Changing any of them issues a
// new request. Source and search text are local-only and live on the View
// directly; they never cause network activity.
type Params struct {
	Country   string `json:"country"`
	Range     string `json:"range"`
	PerFeed   int    `json:"per_feed"`
	Translate string `json:"translate"`
}

// DefaultParams mirrors the startup defaults of the reference frontend.
func DefaultParams() Params {
	return Params{Country: "mercosur", Range: "3d", PerFeed: 10, Translate: "en"}
}

// View owns the committed fetch result and the request sequencing that keeps
// it consistent under overlapping fetches. Each issued fetch is tagged with a
// strictly increasing epoch; a completion may commit only while its epoch is
// still the latest, so an old response can never overwrite a newer one no
// matter how late it lands.
type View struct {
	fetcher Fetcher
	logger  *slog.Logger
	rules   filter.Rules
	now     func() time.Time

	mu        sync.Mutex
	params    Params
	source    string
	query     string
	lastEpoch uint64
	loading   bool
	result    *feed.Result
	lastErr   *backend.Error

	wg sync.WaitGroup
}

type Options struct {
	Initial Params
	Rules   filter.Rules
	Source  string
	Query   string
}

func New(fetcher Fetcher, logger *slog.Logger, opts Options) *View {
	if logger == nil {
		logger = slog.Default()
	}
	params := opts.Initial
	if params == (Params{}) {
		params = DefaultParams()
	}
	source := opts.Source
	if source == "" {
		source = filter.SourceAll
	}
	return &View{
		fetcher: fetcher,
		logger:  logger,
		rules:   opts.Rules,
		now:     time.Now,
		params:  params,
		source:  source,
		query:   opts.Query,
	}
}

// Params returns the current fetch-affecting parameters.
func (v *View) Params() Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// SetParams replaces the fetch-affecting parameters and issues a soft refresh
// when anything actually changed. Empty fields keep their current value. The
// returned epoch is 0 when no fetch was issued.
func (v *View) SetParams(ctx context.Context, p Params) uint64 {
	v.mu.Lock()
	merged := v.params
	if p.Country != "" {
		merged.Country = p.Country
	}
	if p.Range != "" {
		merged.Range = p.Range
	}
	if p.PerFeed > 0 {
		merged.PerFeed = p.PerFeed
	}
	if p.Translate != "" {
		merged.Translate = p.Translate
	}
	if merged == v.params {
		v.mu.Unlock()
		return 0
	}
	v.params = merged
	v.mu.Unlock()
	return v.Refresh(ctx, false)
}

// SetFilter updates the local-only parameters. It recomputes nothing eagerly;
// the filtered subset is derived on the next Snapshot.
func (v *View) SetFilter(source, query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if source == "" {
		source = filter.SourceAll
	}
	v.source = source
	v.query = query
}

// Refresh issues a fetch with the current parameters. Hard refreshes
// (force=true) forward force_refresh to the backend; both kinds go through
// the same epoch sequencing. The previously displayed items stay visible
// until the fetch settles; only the displayed error is cleared.
func (v *View) Refresh(ctx context.Context, force bool) uint64 {
	v.mu.Lock()
	v.lastEpoch++
	epoch := v.lastEpoch
	v.loading = true
	v.lastErr = nil
	p := v.params
	v.mu.Unlock()

	log := v.logger.With(
		"request_id", uuid.NewString(),
		"epoch", epoch,
		"country", p.Country,
		"range", p.Range,
		"force", force,
	)
	log.Info("fetch started")

	// The fetch must outlive the call that triggered it: an HTTP handler's
	// request context is canceled as soon as the handler returns, long before
	// the backend responds. Only the adapter's own timeout bounds the fetch.
	v.wg.Add(1)
	go v.run(context.WithoutCancel(ctx), epoch, p, force, log)
	return epoch
}

// Close waits for in-flight fetches to settle or be discarded.
func (v *View) Close() {
	v.wg.Wait()
}

func (v *View) run(ctx context.Context, epoch uint64, p Params, force bool, log *slog.Logger) {
	defer v.wg.Done()

	ctx, span := tracer.Start(ctx, "view.fetch", trace.WithAttributes(
		attribute.Int64("epoch", int64(epoch)),
		attribute.String("country", p.Country),
		attribute.String("range", p.Range),
		attribute.Bool("force", force),
	))
	defer span.End()

	start := v.now()
	res, err := v.fetcher.Fetch(ctx, backend.Params{
		Country:      p.Country,
		Range:        p.Range,
		PerFeed:      p.PerFeed,
		Translate:    p.Translate,
		ForceRefresh: force,
	})
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	v.commit(epoch, res, err, log)
}

// commit applies one completed fetch under the epoch rule: a completion whose
// epoch is no longer the latest is discarded without touching any state. This
// is the entire race-handling story; commits are strictly epoch-monotonic.
func (v *View) commit(epoch uint64, res *feed.Result, err error, log *slog.Logger) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if epoch != v.lastEpoch {
		metrics.StaleResponsesDiscarded.Inc()
		log.Debug("discarded stale response", "latest_epoch", v.lastEpoch)
		return
	}

	v.loading = false
	if err != nil {
		var be *backend.Error
		if !errors.As(err, &be) {
			be = &backend.Error{Kind: backend.KindNetwork, Message: err.Error()}
		}
		v.lastErr = be
		metrics.FetchesTotal.WithLabelValues(string(be.Kind)).Inc()
		log.Warn("fetch failed", "kind", be.Kind, "error", be.Message)
		return
	}

	v.result = res
	v.lastErr = nil
	metrics.FetchesTotal.WithLabelValues("success").Inc()
	metrics.ItemsNormalized.Add(float64(len(res.Items)))
	metrics.ItemsDropped.Add(float64(res.Dropped))
	log.Info("fetch committed", "items", len(res.Items), "dropped", res.Dropped)
}
