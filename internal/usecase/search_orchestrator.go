package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
	"farewatch-service/pkg/utils"
)

// ErrNoOffers is the user-visible failure: every fan-out pair came back
// empty. Nothing is cached; the caller falls back to a generic deep link.
var ErrNoOffers = errors.New("no offers found for request")

// maxFanout caps the hub pool for "everywhere" searches, bounding the
// worst case at five upstream calls per logical request.
const maxFanout = 5

// SearchOrchestrator drives one or many fare provider calls per logical
// request, merges the results and persists them as one cache bundle.
// Upstream calls are strictly sequential with a pacing delay between
// them; the provider quota is shared, not per-route.
type SearchOrchestrator struct {
	fareRepo       repository.FareRepository
	cacheRepo      repository.SearchCacheRepository
	placeRepo      repository.PlaceRepository
	logger         logger.Logger
	metrics        *metrics.Metrics
	cacheTTL       time.Duration
	paceDelay      time.Duration
	rateLimitPause time.Duration
	now            func() time.Time
}

// NewSearchOrchestrator creates a new search orchestrator.
func NewSearchOrchestrator(
	fareRepo repository.FareRepository,
	cacheRepo repository.SearchCacheRepository,
	placeRepo repository.PlaceRepository,
	m *metrics.Metrics,
	logger logger.Logger,
	cacheTTL time.Duration,
	paceDelay time.Duration,
	rateLimitPause time.Duration,
) *SearchOrchestrator {
	return &SearchOrchestrator{
		fareRepo:       fareRepo,
		cacheRepo:      cacheRepo,
		placeRepo:      placeRepo,
		logger:         logger,
		metrics:        m,
		cacheTTL:       cacheTTL,
		paceDelay:      paceDelay,
		rateLimitPause: rateLimitPause,
		now:            time.Now,
	}
}

// Search executes one logical request: resolves the candidate pairs,
// fans out sequentially, merges in candidate order and caches the
// result. Individual pair failures degrade to zero offers for that pair;
// only a fully empty aggregate is reported to the caller, as ErrNoOffers.
func (o *SearchOrchestrator) Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
	start := time.Now()
	mode := req.Mode()

	origins, dests, err := o.resolveCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	departDate, err := utils.NormalizeDateAt(req.DepartDate, o.now())
	if err != nil {
		return nil, fmt.Errorf("normalize departure date: %w", err)
	}

	// Fan-out is always priced one-way: grouped multi-destination pricing
	// does not support paired round-trip queries, so the return date is
	// dropped whenever either side is "everywhere".
	returnDate := ""
	if mode == entity.ModeRoute && req.ReturnDate != "" {
		returnDate, err = utils.NormalizeDateAt(req.ReturnDate, o.now())
		if err != nil {
			return nil, fmt.Errorf("normalize return date: %w", err)
		}
	}

	var merged []entity.FareOffer
	first := true
	for _, origin := range origins {
		for _, dest := range dests {
			if origin == dest {
				continue
			}
			if !first {
				if !sleepCtx(ctx, o.paceDelay) {
					return nil, ctx.Err()
				}
			}
			first = false

			offers, err := o.fareRepo.Search(ctx, origin, dest, departDate, returnDate)
			if err != nil {
				if errors.Is(err, repository.ErrRateLimited) {
					o.metrics.UpstreamCalls.WithLabelValues("rate_limited").Inc()
					o.logger.Warn("Fare provider rate limited, cooling down",
						"origin", origin, "dest", dest, "pause", o.rateLimitPause.String())
					if !sleepCtx(ctx, o.rateLimitPause) {
						return nil, ctx.Err()
					}
				} else {
					o.metrics.UpstreamCalls.WithLabelValues("error").Inc()
					o.logger.Warn("Fare search failed for pair", "origin", origin, "dest", dest, "error", err)
				}
				continue
			}

			offers = filterOffers(offers, req.Filter)
			if mode == entity.ModeOriginEverywhere {
				// Grouped responses occasionally include neighboring
				// destinations; keep only what the user asked for.
				offers = keepDestination(offers, req.Destination)
			}

			if len(offers) == 0 {
				o.metrics.UpstreamCalls.WithLabelValues("empty").Inc()
			} else {
				o.metrics.UpstreamCalls.WithLabelValues("ok").Inc()
			}
			merged = append(merged, offers...)
		}
	}

	o.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	o.metrics.OffersReturned.Observe(float64(len(merged)))

	if len(merged) == 0 {
		o.metrics.SearchesTotal.WithLabelValues(string(mode), "empty").Inc()
		o.logger.Info("Search found no offers", "mode", mode, "departDate", departDate)
		return nil, ErrNoOffers
	}

	bundle := o.buildBundle(req, mode, merged)
	cacheID, err := o.cacheRepo.Put(ctx, bundle, o.cacheTTL)
	if err != nil {
		o.metrics.SearchesTotal.WithLabelValues(string(mode), "cache_error").Inc()
		return nil, fmt.Errorf("cache search result: %w", err)
	}

	headline := merged[entity.CheapestOffer(merged)]
	o.metrics.SearchesTotal.WithLabelValues(string(mode), "ok").Inc()
	o.logger.Info("Search completed",
		"mode", mode,
		"offers", len(merged),
		"headlinePrice", headline.EffectivePrice(),
		"cacheId", cacheID,
		"duration", time.Since(start).String())

	return &entity.SearchResult{
		Offers:   merged,
		Headline: headline,
		CacheID:  cacheID,
		Mode:     mode,
	}, nil
}

// resolveCandidates expands each side of the request into its candidate
// code list: a singleton for a concrete side, the ordered hub pool for
// an "everywhere" side.
func (o *SearchOrchestrator) resolveCandidates(ctx context.Context, req *entity.SearchRequest) ([]string, []string, error) {
	origins := []string{req.Origin}
	dests := []string{req.Destination}

	if req.OriginEverywhere {
		hubs, err := o.placeRepo.Hubs(ctx, maxFanout)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve origin hubs: %w", err)
		}
		origins = placeCodes(hubs)
	}
	if req.DestinationEverywhere {
		hubs, err := o.placeRepo.Hubs(ctx, maxFanout)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve destination hubs: %w", err)
		}
		dests = placeCodes(hubs)
	}

	return origins, dests, nil
}

func (o *SearchOrchestrator) buildBundle(req *entity.SearchRequest, mode entity.SearchMode, offers []entity.FareOffer) *entity.SearchResultBundle {
	now := o.now()
	roundtrip := mode == entity.ModeRoute && req.ReturnDate != ""

	bundle := &entity.SearchResultBundle{
		Offers:           offers,
		OriginEverywhere: req.OriginEverywhere,
		DestEverywhere:   req.DestinationEverywhere,
		IsRoundTrip:      roundtrip,
		DepartDate:       req.DepartDate,
		DisplayDepart:    utils.FormatDisplayDateAt(req.DepartDate, now),
		PassengerCode:    req.PassengerCode,
		PassengerDesc:    utils.DescribePassengers(req.PassengerCode),
		Filter:           req.Filter,
	}
	if !req.OriginEverywhere {
		bundle.OriginIATA = req.Origin
	}
	if !req.DestinationEverywhere {
		bundle.DestIATA = req.Destination
	}
	if roundtrip {
		bundle.ReturnDate = req.ReturnDate
		bundle.DisplayReturn = utils.FormatDisplayDateAt(req.ReturnDate, now)
	}
	return bundle
}

func placeCodes(places []entity.Place) []string {
	codes := make([]string, 0, len(places))
	for _, p := range places {
		codes = append(codes, p.Code)
	}
	return codes
}

func filterOffers(offers []entity.FareOffer, filter entity.FlightFilter) []entity.FareOffer {
	switch filter {
	case entity.FilterDirect:
		return filterHaving(offers, func(o *entity.FareOffer) bool { return o.Transfers == 0 })
	case entity.FilterTransfer:
		return filterHaving(offers, func(o *entity.FareOffer) bool { return o.Transfers > 0 })
	default:
		return offers
	}
}

func keepDestination(offers []entity.FareOffer, dest string) []entity.FareOffer {
	return filterHaving(offers, func(o *entity.FareOffer) bool { return o.Destination == dest })
}

func filterHaving(offers []entity.FareOffer, keep func(*entity.FareOffer) bool) []entity.FareOffer {
	out := offers[:0:0]
	for i := range offers {
		if keep(&offers[i]) {
			out = append(out, offers[i])
		}
	}
	return out
}

// sleepCtx sleeps for d unless the context ends first. Reports whether
// the full delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
