package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/config"
)

func availabilityContext(e *echo.Echo, clubID, rawQuery string) echo.Context {
	target := "/v1/clubs/" + clubID + "/availability"
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/clubs/:id/availability")
	c.SetParamNames("id")
	c.SetParamValues(clubID)
	return c
}

func TestCacheKeySeparatesClubs(t *testing.T) {
	t.Parallel()

	e := echo.New()
	cfg := config.LoadCacheConfig()

	one := cacheKeyFrom(cfg, availabilityContext(e, "1", "date=2025-06-02"))
	two := cacheKeyFrom(cfg, availabilityContext(e, "2", "date=2025-06-02"))
	if one == two {
		t.Fatalf("cache key %q shared between clubs 1 and 2", one)
	}
}

func TestCacheKeySeparatesQueries(t *testing.T) {
	t.Parallel()

	e := echo.New()
	cfg := config.LoadCacheConfig()

	monday := cacheKeyFrom(cfg, availabilityContext(e, "1", "date=2025-06-02"))
	tuesday := cacheKeyFrom(cfg, availabilityContext(e, "1", "date=2025-06-03"))
	if monday == tuesday {
		t.Fatalf("cache key %q shared between different dates", monday)
	}
}

func TestCacheKeyStableForSameRequest(t *testing.T) {
	t.Parallel()

	e := echo.New()
	cfg := config.LoadCacheConfig()

	first := cacheKeyFrom(cfg, availabilityContext(e, "1", "date=2025-06-02"))
	second := cacheKeyFrom(cfg, availabilityContext(e, "1", "date=2025-06-02"))
	if first != second {
		t.Fatalf("cache key not stable: %q vs %q", first, second)
	}
}
