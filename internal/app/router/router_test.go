package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazi_backend/internal/app/config"
	"bazi_backend/internal/feature/bazi/adapters"
	"bazi_backend/internal/feature/bazi/domain/entity"
	bazihandler "bazi_backend/internal/feature/bazi/transport/handler"
	"bazi_backend/internal/feature/bazi/usecase"
	jwtmw "bazi_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// loadedCalendar は 1990-03-05 14:00 の命式に必要な最小限のデータを持つ MemoryCalendar です。
func loadedCalendar() *adapters.MemoryCalendar {
	utc := func(m time.Month, d, h, min int) time.Time { return time.Date(1990, m, d, h, min, 0, 0, time.UTC) }
	day := entity.CalendarDay{Time: utc(3, 5, 0, 0), DayPillar: "己巳"}
	for i := range day.Hours {
		// 甲己日: 甲子から始まる
		day.Hours[i] = entity.CycleAt(i).String()
	}
	cal := adapters.NewMemoryCalendar()
	cal.Replace([]entity.CalendarDay{
		{Time: utc(2, 4, 11, 14), SolarTerm: "立春", DayPillar: "庚子"},
		day,
		{Time: utc(3, 6, 5, 19), SolarTerm: "惊蛰", DayPillar: "庚午"},
	})
	return cal
}

func newTestRouter(t *testing.T, cfg config.Config, cal *adapters.MemoryCalendar) *gin.Engine {
	t.Helper()
	h := bazihandler.NewBaziHandler(usecase.NewProfileUsecase(cal))
	r, err := NewRouter(cfg, h, cal)
	require.NoError(t, err)
	return r
}

func postBazi(r http.Handler, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bazi", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"birth_time":"1990-03-05 14:00","gender":"男"}`

func TestRouter_NotLoaded(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, config.Config{}, adapters.NewMemoryCalendar())

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}

	w := postBazi(r, validBody, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Loaded(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, config.Config{}, loadedCalendar())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = postBazi(r, validBody, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"year":"庚午"`)
	assert.Contains(t, w.Body.String(), `"month":"丙寅"`)
	assert.Contains(t, w.Body.String(), `"day":"己巳"`)
	assert.Contains(t, w.Body.String(), `"hour":"辛未"`)

	w = postBazi(r, `{"birth_time":"1990-03-07 14:00","gender":"男"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "day absent from reference data")

	w = postBazi(r, `{"birth_time":"1990/03/05 14:00","gender":"男"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_JWT(t *testing.T) {
	t.Parallel()

	const secret = "router-test-secret"
	r := newTestRouter(t, config.Config{JWTSecret: secret}, loadedCalendar())

	w := postBazi(r, validBody, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("router-test")
	require.NoError(t, err)
	w = postBazi(r, validBody, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// ヘルスチェックは認証不要
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, config.Config{RateLimitPerMinute: 2}, loadedCalendar())

	assert.Equal(t, http.StatusOK, postBazi(r, validBody, "").Code)
	assert.Equal(t, http.StatusOK, postBazi(r, validBody, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, postBazi(r, validBody, "").Code)
}
