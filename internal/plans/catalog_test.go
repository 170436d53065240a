package plans

import (
	"context"
	"fmt"
	"metastor/internal/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_StrictlyIncreasingLimits(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		require.Greater(t, all[i].StorageLimitBytes, all[i-1].StorageLimitBytes)
	}
	require.Equal(t, 100*MiB, GetPlan(models.TierFree).StorageLimitBytes)
}

func TestGetPlan_FallsBackToFree(t *testing.T) {
	require.Equal(t, models.TierPro, GetPlan(models.TierPro).Tier)
	require.Equal(t, models.TierFree, GetPlan(models.Tier("platinum")).Tier)
}

func TestPriceInNativeToken(t *testing.T) {
	tests := []struct {
		fiat, price, want float64
	}{
		{150, 20, 7.5},
		{5, 20, 0.25},
		{15, 3, 5},
		{50, 142.17, 0.3517},
		{0, 20, 0},
		{0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%v@%v", tc.fiat, tc.price), func(t *testing.T) {
			got, err := PriceInNativeToken(tc.fiat, tc.price)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := PriceInNativeToken(10, 0)
	require.Error(t, err)
	_, err = PriceInNativeToken(-1, 20)
	require.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "0 B", FormatBytes(0))
	require.Equal(t, "512 B", FormatBytes(512))
	require.Equal(t, "100.0 MB", FormatBytes(100*MiB))
	require.Equal(t, "1.5 GB", FormatBytes(GiB+GiB/2))
}

func TestHTTPOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"solana":{"usd":142.5}}`))
	}))
	defer srv.Close()

	price, err := NewHTTPOracle(srv.URL, "", "").Price(context.Background())
	require.NoError(t, err)
	require.Equal(t, 142.5, price)

	_, err = NewHTTPOracle(srv.URL, "bitcoin", "usd").Price(context.Background())
	require.Error(t, err)
}

func TestHTTPOracle_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPOracle(srv.URL, "", "").Price(context.Background())
	require.Error(t, err)
}

func TestStaticOracle(t *testing.T) {
	price, err := NewStaticOracle(0).Price(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultStaticPrice, price)
}
