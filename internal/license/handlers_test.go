package license_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afilo-dev/pricing-api/internal/license"
)

func TestListServesLicenseTable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/licenses", nil)
	rec := httptest.NewRecorder()
	license.Handler{}.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data []struct {
			LicenseType     string  `json:"licenseType"`
			MaxSeats        int     `json:"maxSeats"`
			PriceMultiplier float64 `json:"priceMultiplier"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(license.All()))

	byType := make(map[string]float64, len(resp.Data))
	for _, item := range resp.Data {
		byType[item.LicenseType] = item.PriceMultiplier
	}
	require.Equal(t, 1.0, byType["Personal"])
	require.Equal(t, 2.0, byType["Commercial"])
	require.Equal(t, 5.0, byType["Enterprise"])
}
