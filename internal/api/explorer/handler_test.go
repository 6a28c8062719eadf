package explorer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/types"
)

func newTestRouter(t *testing.T, pipeline *fakePipeline) (*chi.Mux, *Service) {
	t.Helper()
	store := newTestStore(t)
	svc := NewService(store, pipeline, nil, nil, testLogger())
	h := NewHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/parks", h.ListParks)
	r.Get("/parks/{code}", h.GetPark)
	r.Get("/parks/{code}/trails", h.GetTrails)
	r.Post("/parks/{code}/ensure", h.Ensure)
	return r, svc
}

func TestGetParkNormalizesRouteParam(t *testing.T) {
	router, svc := newTestRouter(t, &fakePipeline{})
	require.NoError(t, svc.store.SaveFixture("zion", fetcher.FixtureParkDetails, types.Park{
		ParkCode: "zion", FullName: "Zion National Park",
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parks/Zion", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var park types.Park
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &park))
	assert.Equal(t, "zion", park.ParkCode)
}

func TestGetParkUnknownCodeIs404(t *testing.T) {
	router, _ := newTestRouter(t, &fakePipeline{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parks/acad", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetParkNotLoadedIs404(t *testing.T) {
	router, _ := newTestRouter(t, &fakePipeline{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parks/zion", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTrailsQueryFilters(t *testing.T) {
	router, svc := newTestRouter(t, &fakePipeline{})
	require.NoError(t, svc.store.SaveFixture("zion", fetcher.FixtureTrails, []types.Trail{
		{Name: "Riverside Walk", Difficulty: types.DifficultyEasy, LengthMiles: 1.9, AverageRating: 4.5},
		{Name: "Angels Landing Trail", Difficulty: types.DifficultyStrenuous, LengthMiles: 5.4, AverageRating: 4.9},
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parks/zion/trails?difficulty=easy", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var trails []types.Trail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trails))
	require.Len(t, trails, 1)
	assert.Equal(t, "Riverside Walk", trails[0].Name)

	// No filters returns everything.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parks/zion/trails", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trails))
	assert.Len(t, trails, 2)
}

func TestEnsureDefaultsToFullRun(t *testing.T) {
	pipeline := &fakePipeline{}
	router, _ := newTestRouter(t, pipeline)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/parks/yose/ensure", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"yose"}, pipeline.ensured)

	var result EnsureResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "yose", result.ParkCode)
	// Full run: the fake marks amenities skipped only when disabled.
	assert.NotContains(t, result.Operations, "amenities")
}

func TestEnsureHonorsBodyFlags(t *testing.T) {
	pipeline := &fakePipeline{}
	router, _ := newTestRouter(t, pipeline)

	body := strings.NewReader(`{"amenities": false}`)
	req := httptest.NewRequest(http.MethodPost, "/parks/yose/ensure", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result EnsureResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "skipped", result.Operations["amenities"])
}
