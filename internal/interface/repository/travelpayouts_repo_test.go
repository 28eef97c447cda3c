package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravelpayoutsSearch_GroupedResponse(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"origin":      r.URL.Query().Get("origin"),
			"destination": r.URL.Query().Get("destination"),
			"depart_date": r.URL.Query().Get("depart_date"),
			"return_date": r.URL.Query().Get("return_date"),
			"currency":    r.URL.Query().Get("currency"),
			"token":       r.URL.Query().Get("token"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"IST": {
					"0": {"value": 12000, "departure_at": "2025-07-15T10:20:00+03:00", "airline": "SU", "transfers": 0},
					"1": {"value": 9500, "departure_at": "2025-07-15T21:05:00+03:00", "airline": "TK", "transfers": 1},
					"10": {"value": 15000, "departure_at": "2025-07-16T08:00:00+03:00", "airline": "PC", "transfers": 2},
					"2": {"value": 13000, "departure_at": "2025-07-15T23:40:00+03:00", "airline": "SU", "transfers": 1}
				}
			}
		}`))
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	offers, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "")
	require.NoError(t, err)

	assert.Equal(t, "MOW", gotQuery["origin"])
	assert.Equal(t, "IST", gotQuery["destination"])
	assert.Equal(t, "2025-07-15", gotQuery["depart_date"])
	assert.Empty(t, gotQuery["return_date"])
	assert.Equal(t, "rub", gotQuery["currency"])
	assert.Equal(t, "secret", gotQuery["token"])

	// Date-index keys sort numerically, so "10" lands last, not second.
	require.Len(t, offers, 4)
	assert.Equal(t, []int{12000, 9500, 13000, 15000}, []int{
		offers[0].EffectivePrice(),
		offers[1].EffectivePrice(),
		offers[2].EffectivePrice(),
		offers[3].EffectivePrice(),
	})

	// Offers get tagged with the requested pair regardless of payload.
	for _, offer := range offers {
		assert.Equal(t, "MOW", offer.Origin)
		assert.Equal(t, "IST", offer.Destination)
	}
}

func TestTravelpayoutsSearch_ReturnDateForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-07-22", r.URL.Query().Get("return_date"))
		w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	offers, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "2025-07-22")
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestTravelpayoutsSearch_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"AER": {"0": {"value": 5000}}}}`))
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	offers, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "")
	require.NoError(t, err)
	assert.Empty(t, offers, "offers for other destinations do not leak in")
}

func TestTravelpayoutsSearch_RateLimited(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	_, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "")
	assert.ErrorIs(t, err, repository.ErrRateLimited)
	assert.Equal(t, 1, calls, "quota exhaustion is not retried")
}

func TestTravelpayoutsSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	_, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrRateLimited)
}

func TestTravelpayoutsSearch_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success": false, "error": "token is invalid"}`))
	}))
	defer server.Close()

	repo := NewTravelpayoutsRepository(server.URL, "secret", "rub", logger.NopLogger{})
	_, err := repo.Search(context.Background(), "MOW", "IST", "2025-07-15", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is invalid")
}
