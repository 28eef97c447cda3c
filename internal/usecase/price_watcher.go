package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
	"farewatch-service/pkg/utils"
)

const (
	// watchChunkSize bounds how many watches are checked back to back
	// before the loop pauses to spread upstream load across the cycle.
	watchChunkSize  = 5
	watchChunkPause = 3 * time.Second
)

// PriceWatcher re-checks every saved watch on a fixed period and
// notifies owners when a route's price moves past their threshold.
// One failing entry never prevents the rest of the cycle; one failing
// cycle never stops future cycles.
type PriceWatcher struct {
	fareRepo       repository.FareRepository
	watchRepo      repository.WatchRepository
	notifier       repository.NotifierRepository
	placeRepo      repository.PlaceRepository
	logger         logger.Logger
	metrics        *metrics.Metrics
	interval       time.Duration
	chunkPause     time.Duration
	rateLimitPause time.Duration
	marker         string
	subID          string
	now            func() time.Time
}

// CycleStats summarizes one completed check cycle.
type CycleStats struct {
	Checked  int
	Notified int
	Removed  int
}

// NewPriceWatcher creates a new price watcher.
func NewPriceWatcher(
	fareRepo repository.FareRepository,
	watchRepo repository.WatchRepository,
	notifier repository.NotifierRepository,
	placeRepo repository.PlaceRepository,
	m *metrics.Metrics,
	logger logger.Logger,
	interval time.Duration,
	rateLimitPause time.Duration,
	marker string,
	subID string,
) *PriceWatcher {
	return &PriceWatcher{
		fareRepo:       fareRepo,
		watchRepo:      watchRepo,
		notifier:       notifier,
		placeRepo:      placeRepo,
		logger:         logger,
		metrics:        m,
		interval:       interval,
		chunkPause:     watchChunkPause,
		rateLimitPause: rateLimitPause,
		marker:         marker,
		subID:          subID,
		now:            time.Now,
	}
}

// Start runs the periodic check loop until the context is cancelled.
// The first cycle runs immediately; cancellation is honored between
// entries, letting a cycle in flight wind down cleanly.
func (w *PriceWatcher) Start(ctx context.Context) {
	w.logger.Info("Price watcher started", "interval", w.interval.String())
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Price watcher stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *PriceWatcher) runCycle(ctx context.Context) {
	stats, err := w.CheckAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		w.metrics.ErrorsCount.WithLabelValues("watch_cycle").Inc()
		w.logger.Error("Watch cycle failed", "error", err)
		return
	}
	w.logger.Info("Watch cycle completed",
		"checked", stats.Checked,
		"notified", stats.Notified,
		"removed", stats.Removed)
}

// CheckAll runs one full check cycle over every live watch. Routes are
// searched at most once per cycle; identical routes share the memoized
// result.
func (w *PriceWatcher) CheckAll(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	ids, err := w.watchRepo.ListIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("enumerate watches: %w", err)
	}
	if len(ids) == 0 {
		w.logger.Debug("No active watches to check")
		return stats, nil
	}
	w.logger.Info("Checking watches", "count", len(ids))

	memo := make(map[string][]entity.FareOffer)
	for i, id := range ids {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		stats.Checked++
		w.metrics.WatchChecks.Inc()
		switch w.checkWatch(ctx, id, memo) {
		case outcomeNotified:
			stats.Notified++
		case outcomeRemoved:
			stats.Removed++
		}

		if (i+1)%watchChunkSize == 0 && i+1 < len(ids) {
			if !sleepCtx(ctx, w.chunkPause) {
				return stats, ctx.Err()
			}
		}
	}

	return stats, nil
}

type checkOutcome int

const (
	outcomeUnchanged checkOutcome = iota
	outcomeNotified
	outcomeRemoved
	outcomeSkipped
)

func (w *PriceWatcher) checkWatch(ctx context.Context, id string, memo map[string][]entity.FareOffer) checkOutcome {
	watch, err := w.watchRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Already expired or dropped as unreadable by the store.
			w.metrics.WatchesRemoved.WithLabelValues("expired").Inc()
			return outcomeRemoved
		}
		w.logger.Error("Failed to load watch", "watchId", id, "error", err)
		return outcomeSkipped
	}

	offers, outcome := w.fetchRoute(ctx, watch, memo)
	if outcome != outcomeUnchanged {
		return outcome
	}

	if len(offers) == 0 {
		// Route no longer quotable at all: the watch is dead weight.
		if err := w.watchRepo.Delete(ctx, watch.UserID, id); err != nil {
			w.logger.Error("Failed to delete dead watch", "watchId", id, "error", err)
			return outcomeSkipped
		}
		w.metrics.WatchesRemoved.WithLabelValues("route_gone").Inc()
		w.logger.Info("Watch removed, route no longer quotable",
			"watchId", id, "route", watch.Origin+"-"+watch.Dest)
		return outcomeRemoved
	}

	selected := w.selectOffer(watch, offers)
	if !selected.HasPrice() {
		// Nothing comparable this cycle; leave the watch untouched.
		return outcomeSkipped
	}

	newPrice := selected.EffectivePrice()
	delta := watch.LastPrice - newPrice
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 || delta < watch.Threshold {
		return outcomeUnchanged
	}

	return w.notifyAndPersist(ctx, id, watch, newPrice)
}

// fetchRoute returns the memoized re-search result for the watch's
// route, querying upstream once per distinct route per cycle. A non-nil
// outcome other than outcomeUnchanged short-circuits the caller.
func (w *PriceWatcher) fetchRoute(ctx context.Context, watch *entity.WatchEntry, memo map[string][]entity.FareOffer) ([]entity.FareOffer, checkOutcome) {
	departDate, err := utils.NormalizeDateAt(watch.DepartDate, w.now())
	if err != nil {
		w.logger.Warn("Watch has unparseable departure date", "departDate", watch.DepartDate, "error", err)
		return nil, outcomeSkipped
	}
	returnDate := ""
	if watch.ReturnDate != "" {
		returnDate, err = utils.NormalizeDateAt(watch.ReturnDate, w.now())
		if err != nil {
			w.logger.Warn("Watch has unparseable return date", "returnDate", watch.ReturnDate, "error", err)
			return nil, outcomeSkipped
		}
	}

	key := strings.Join([]string{watch.Origin, watch.Dest, departDate, returnDate}, "|")
	if offers, ok := memo[key]; ok {
		return offers, outcomeUnchanged
	}

	offers, err := w.fareRepo.Search(ctx, watch.Origin, watch.Dest, departDate, returnDate)
	if err != nil {
		if errors.Is(err, repository.ErrRateLimited) {
			w.metrics.UpstreamCalls.WithLabelValues("rate_limited").Inc()
			w.logger.Warn("Fare provider rate limited during watch cycle, cooling down",
				"pause", w.rateLimitPause.String())
			sleepCtx(ctx, w.rateLimitPause)
		} else {
			w.metrics.UpstreamCalls.WithLabelValues("error").Inc()
			w.logger.Warn("Watch re-search failed", "route", watch.Origin+"-"+watch.Dest, "error", err)
		}
		// Upstream trouble is not "route gone"; check again next cycle.
		return nil, outcomeSkipped
	}
	if len(offers) == 0 {
		w.metrics.UpstreamCalls.WithLabelValues("empty").Inc()
	} else {
		w.metrics.UpstreamCalls.WithLabelValues("ok").Inc()
	}

	memo[key] = offers
	return offers, outcomeUnchanged
}

// selectOffer picks the offer to compare against: the exact-date match
// first, the cheapest across all returned dates only as a last resort.
// Comparing prices across different dates would make drop detection
// meaningless.
func (w *PriceWatcher) selectOffer(watch *entity.WatchEntry, offers []entity.FareOffer) *entity.FareOffer {
	departDate, _ := utils.NormalizeDateAt(watch.DepartDate, w.now())
	returnDate := ""
	if watch.ReturnDate != "" {
		returnDate, _ = utils.NormalizeDateAt(watch.ReturnDate, w.now())
	}

	for i := range offers {
		if offers[i].DepartureDate() != departDate {
			continue
		}
		if returnDate != "" && offers[i].ReturnDate() != returnDate {
			continue
		}
		return &offers[i]
	}
	return &offers[entity.CheapestOffer(offers)]
}

func (w *PriceWatcher) notifyAndPersist(ctx context.Context, id string, watch *entity.WatchEntry, newPrice int) checkOutcome {
	message := w.buildMessage(ctx, watch, newPrice)

	if err := w.notifier.Notify(ctx, watch.UserID, message); err != nil {
		if errors.Is(err, repository.ErrUnreachable) {
			if delErr := w.watchRepo.Delete(ctx, watch.UserID, id); delErr != nil {
				w.logger.Error("Failed to delete watch for unreachable user", "watchId", id, "error", delErr)
			}
			w.metrics.WatchesRemoved.WithLabelValues("unreachable").Inc()
			w.logger.Warn("Watch removed, user unreachable", "watchId", id, "userId", watch.UserID)
			return outcomeRemoved
		}
		w.metrics.ErrorsCount.WithLabelValues("notify").Inc()
		w.logger.Error("Notification delivery failed", "watchId", id, "userId", watch.UserID, "error", err)
		return outcomeSkipped
	}

	oldPrice := watch.LastPrice
	watch.LastPrice = newPrice
	watch.LastNotified = w.now().Unix()
	if err := w.watchRepo.Update(ctx, id, watch); err != nil {
		w.logger.Error("Failed to persist new watch price", "watchId", id, "error", err)
		return outcomeSkipped
	}

	w.metrics.NotificationsSent.Inc()
	w.logger.Info("Price change notification sent",
		"watchId", id,
		"userId", watch.UserID,
		"route", watch.Origin+"-"+watch.Dest,
		"oldPrice", oldPrice,
		"newPrice", newPrice)
	return outcomeNotified
}

func (w *PriceWatcher) buildMessage(ctx context.Context, watch *entity.WatchEntry, newPrice int) string {
	origin := w.placeName(ctx, watch.Origin)
	dest := w.placeName(ctx, watch.Dest)

	delta := newPrice - watch.LastPrice
	trend := "📉 <b>Price dropped!</b>"
	if delta > 0 {
		trend = "📈 <b>Price went up!</b>"
	}
	if delta < 0 {
		delta = -delta
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", trend)
	fmt.Fprintf(&b, "📍 <b>Route:</b> %s → %s\n", origin, dest)
	fmt.Fprintf(&b, "📅 <b>Departure:</b> %s\n", utils.FormatDisplayDateAt(watch.DepartDate, w.now()))
	if watch.ReturnDate != "" {
		fmt.Fprintf(&b, "📅 <b>Return:</b> %s\n", utils.FormatDisplayDateAt(watch.ReturnDate, w.now()))
	}
	if desc := utils.DescribePassengers(watch.PassengerCode); desc != "" {
		fmt.Fprintf(&b, "👥 <b>Passengers:</b> %s\n", desc)
	}
	fmt.Fprintf(&b, "\n💰 <b>Was:</b> %d\n💰 <b>Now:</b> %d\n<b>Difference:</b> %d\n\n", watch.LastPrice, newPrice, delta)

	link := utils.BookingLink(watch.Origin, watch.Dest, watch.DepartDate, watch.ReturnDate, watch.PassengerCode, w.marker, w.subID)
	fmt.Fprintf(&b, "✈️ <a href=\"%s\">Book for %d</a>", link, newPrice)
	return b.String()
}

func (w *PriceWatcher) placeName(ctx context.Context, code string) string {
	place, err := w.placeRepo.GetByCode(ctx, code)
	if err != nil {
		return code
	}
	return place.City
}
