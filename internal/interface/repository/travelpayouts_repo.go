package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/codeGROOVE-dev/retry"
)

const fareCallTimeout = 10 * time.Second

// TravelpayoutsRepository implements FareRepository against the
// Travelpayouts grouped cheap-prices endpoint.
type TravelpayoutsRepository struct {
	logger   logger.Logger
	client   *http.Client
	endpoint string
	token    string
	currency string
}

// NewTravelpayoutsRepository creates a new Travelpayouts fare repository.
func NewTravelpayoutsRepository(endpoint, token, currency string, logger logger.Logger) repository.FareRepository {
	return &TravelpayoutsRepository{
		logger:   logger,
		client:   &http.Client{Timeout: fareCallTimeout},
		endpoint: endpoint,
		token:    token,
		currency: currency,
	}
}

// cheapPricesResponse is the grouped-by-destination upstream payload:
// data maps destination code to a set of offers keyed by date index.
type cheapPricesResponse struct {
	Success bool                                   `json:"success"`
	Error   string                                 `json:"error"`
	Data    map[string]map[string]entity.FareOffer `json:"data"`
}

// Search queries fares for one origin/destination pair. Transient
// transport errors are retried with backoff inside the call timeout
// budget; a 429 aborts immediately and surfaces as ErrRateLimited.
func (r *TravelpayoutsRepository) Search(ctx context.Context, origin, dest, departDate, returnDate string) ([]entity.FareOffer, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", dest)
	params.Set("depart_date", departDate)
	params.Set("currency", r.currency)
	params.Set("token", r.token)
	if returnDate != "" {
		params.Set("return_date", returnDate)
	}
	reqURL := r.endpoint + "?" + params.Encode()

	var payload cheapPricesResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := r.client.Do(req)
			if err != nil {
				return fmt.Errorf("fare request failed: %w", err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(repository.ErrRateLimited)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("fare provider returned status %d", resp.StatusCode))
			}

			payload = cheapPricesResponse{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode fare response: %w", err))
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(3*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("Fare request retry", "attempt", n+1, "origin", origin, "dest", dest, "error", err)
		}),
	)
	if err != nil {
		if errors.Is(err, repository.ErrRateLimited) {
			return nil, repository.ErrRateLimited
		}
		return nil, err
	}

	if !payload.Success && payload.Error != "" {
		return nil, fmt.Errorf("fare provider error: %s", payload.Error)
	}

	offers := flattenOffers(payload.Data[dest], origin, dest)
	r.logger.Debug("Fare search completed", "origin", origin, "dest", dest, "offers", len(offers))
	return offers, nil
}

// flattenOffers orders grouped offers by their date-index key and tags
// each offer with the codes the request was actually made with.
func flattenOffers(grouped map[string]entity.FareOffer, origin, dest string) []entity.FareOffer {
	if len(grouped) == 0 {
		return nil
	}
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})

	offers := make([]entity.FareOffer, 0, len(keys))
	for _, k := range keys {
		offer := grouped[k]
		offer.Origin = origin
		offer.Destination = dest
		offers = append(offers, offer)
	}
	return offers
}
