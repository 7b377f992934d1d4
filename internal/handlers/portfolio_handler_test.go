package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStore is an in-memory PortfolioStore.
type memoryStore struct {
	mu       sync.Mutex
	entries  []models.Entry
	settings models.Portfolio
	err      error
}

func (s *memoryStore) FetchAll(context.Context) ([]models.Entry, models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, models.Portfolio{}, s.err
	}
	return append([]models.Entry{}, s.entries...), s.settings, nil
}

func (s *memoryStore) InsertEntry(_ context.Context, entry *models.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	entry.ID = primitive.NewObjectID()
	s.entries = append(s.entries, *entry)
	return entry.ID.Hex(), nil
}

func (s *memoryStore) ReplaceSettings(_ context.Context, settings models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.settings = settings
	return nil
}

func newTestRouter(store services.PortfolioStore, auth *AuthHandler) *gin.Engine {
	service := services.NewPortfolioService(store, nil, zerolog.Nop())
	return NewRouter(Handlers{
		Portfolio: NewPortfolioHandler(service),
		Auth:      auth,
	}, zerolog.Nop())
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getView(t *testing.T, router http.Handler) ledger.View {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view ledger.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestGetPortfolio_EmptyLedger(t *testing.T) {
	router := newTestRouter(&memoryStore{settings: models.Portfolio{StartingAmount: 500}}, nil)

	rec := do(t, router, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, "null", string(raw["asOfDate"]))
	assert.JSONEq(t, "[]", string(raw["dateSeries"]))
	assert.JSONEq(t, "[]", string(raw["sortedEntries"]))

	view := getView(t, router)
	assert.Equal(t, "500", view.FinalPortfolioAmount.String())
	assert.True(t, view.TotalPnL.IsZero())
}

func TestAddEntry_ThenView(t *testing.T) {
	router := newTestRouter(&memoryStore{}, nil)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/api/portfolio/settings", `{"startingAmount": 1000}`).Code)

	rec := do(t, router, http.MethodPost, "/api/entries",
		`{"date":"2024-01-01","stock":"AAA","quantity":10,"buyingPrice":100,"currentPrice":110}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])

	view := getView(t, router)
	require.Len(t, view.SortedEntries, 1)
	e := view.SortedEntries[0]
	assert.Equal(t, created["id"], e.ID)
	assert.Equal(t, "1000", e.TotalInvested.String())
	assert.Equal(t, "1100", e.TotalCurrent.String())
	assert.Equal(t, "100", e.PnL.String())
	assert.Equal(t, "100", view.TotalPnL.String())
	assert.Equal(t, "1100", view.FinalPortfolioAmount.String())
	date, ok := view.AsOfDate.Get()
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", date)
	require.Len(t, view.DateSeries, 1)
	assert.Equal(t, "2024-01-01", view.DateSeries[0].Date)
	assert.Equal(t, "100", view.DateSeries[0].PnL.String())
}

func TestGetPortfolio_AmountsAreJSONNumbers(t *testing.T) {
	router := newTestRouter(&memoryStore{settings: models.Portfolio{SettingsID: models.SettingsID, StartingAmount: 1000}}, nil)

	rec := do(t, router, http.MethodPost, "/api/entries",
		`{"date":"2024-01-01","stock":"AAA","quantity":10,"buyingPrice":100,"currentPrice":110}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		`"startingAmount":1000`,
		`"totalPnL":100`,
		`"finalPortfolioAmount":1100`,
		`"quantity":10`,
		`"totalInvested":1000`,
		`"dateSeries":[{"date":"2024-01-01","pnl":100}]`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `"totalPnL":"100"`)
}

func TestAddEntry_InvalidLeavesLedgerUnchanged(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store, nil)

	cases := []string{
		`{"date":"2024-01-01","stock":"AAA","buyingPrice":100,"currentPrice":110}`,
		`{"date":"2024-01-01","stock":"AAA","quantity":1,"buyingPrice":-1,"currentPrice":110}`,
		`{"date":"2024-01-01","stock":"AAA","quantity":"ten","buyingPrice":1,"currentPrice":1}`,
		`not json`,
	}
	for _, body := range cases {
		rec := do(t, router, http.MethodPost, "/api/entries", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "error")
	}
	assert.Empty(t, store.entries)
}

func TestWrite_OriginalRequestShape(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store, nil)

	rec := do(t, router, http.MethodPost, "/api/portfolio",
		`{"type":"entry","data":{"date":"2024-02-01","stock":"AAA","quantity":1,"buyingPrice":100,"currentPrice":150}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "insertedId")

	rec = do(t, router, http.MethodPost, "/api/portfolio",
		`{"type":"entry","data":{"date":"2024-02-01","stock":"BBB","quantity":2,"buyingPrice":50,"currentPrice":40}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/portfolio", `{"type":"portfolio","data":{"startingAmount":2000}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"acknowledged":true}`, rec.Body.String())

	view := getView(t, router)
	assert.Equal(t, "30", view.TotalPnL.String())
	assert.Equal(t, "2030", view.FinalPortfolioAmount.String())
	require.Len(t, view.DateSeries, 1)
	assert.Equal(t, "30", view.DateSeries[0].PnL.String())
	assert.Equal(t, "AAA", view.SortedEntries[0].Stock)
	assert.Equal(t, "BBB", view.SortedEntries[1].Stock)
}

func TestWrite_RejectsBadBodies(t *testing.T) {
	router := newTestRouter(&memoryStore{}, nil)

	for _, body := range []string{
		`{"type":"trade","data":{}}`,
		`{"type":"entry"}`,
		`{"type":"portfolio","data":{}}`,
		`{"type":"portfolio","data":{"startingAmount":"lots"}}`,
	} {
		rec := do(t, router, http.MethodPost, "/api/portfolio", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestPortfolioRoutes_StoreFailure(t *testing.T) {
	router := newTestRouter(&memoryStore{err: errors.New("mongo unavailable")}, nil)

	rec := do(t, router, http.MethodGet, "/api/portfolio", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "mongo unavailable")

	rec = do(t, router, http.MethodPost, "/api/entries",
		`{"date":"2024-01-01","stock":"AAA","quantity":1,"buyingPrice":1,"currentPrice":1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/portfolio/settings", `{"startingAmount": 1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBannerAndHealth(t *testing.T) {
	router := newTestRouter(&memoryStore{}, nil)

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GET /api/portfolio")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&memoryStore{}, nil)

	rec := do(t, router, http.MethodOptions, "/api/entries", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
