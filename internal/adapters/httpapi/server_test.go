package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/internal/adapters/engine/stub"
	"github.com/nambucca-eng/talus/internal/adapters/httpapi"
	"github.com/nambucca-eng/talus/pkg/adapters/memory"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
	"github.com/nambucca-eng/talus/pkg/session"
)

func newTestServer(t *testing.T, engine ports.AnalysisEngine) *httptest.Server {
	t.Helper()
	manager := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(httpapi.NewHandler(manager, engine))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, payload)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// seedSession populates a runnable session over the API.
func seedSession(t *testing.T, base, id string) {
	t.Helper()
	resp := do(t, http.MethodPut, base+"/sessions/"+id+"/slope", domain.NewSlopeConfig(3, domain.Float64(30)))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/sessions/"+id+"/layers", domain.MaterialLayer{
		UnitWeight: 20, FrictionAngle: 45, Cohesion: 2, DepthToBottom: 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "site-a")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/site-a/loads", domain.NewUDL(100, 2, domain.Float64(1)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	assert.Equal(t, "UDL1", created["id"])

	// Run the analysis synchronously.
	resp = do(t, http.MethodPost, srv.URL+"/sessions/site-a/run", map[string]string{"plot_mode": "boundary"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[map[string]any](t, resp)
	assert.Greater(t, run["critical_fos"].(float64), 0.0)

	// Snapshot shows the result but never inlines plot bytes.
	resp = do(t, http.MethodGet, srv.URL+"/sessions/site-a/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[domain.State](t, resp)
	assert.Equal(t, domain.PhaseResult, state.Phase)
	require.NotNil(t, state.Result)
	assert.Nil(t, state.Result.Plots)

	// Plot bytes come from the dedicated endpoint.
	resp = do(t, http.MethodGet, srv.URL+"/sessions/site-a/plot/boundary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Listing and deletion.
	resp = do(t, http.MethodGet, srv.URL+"/sessions/", nil)
	list := decode[map[string][]string](t, resp)
	assert.Contains(t, list["sessions"], "site-a")

	resp = do(t, http.MethodDelete, srv.URL+"/sessions/site-a/", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/sessions/site-a/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RemoveUnknownLayerIs404(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodDelete, srv.URL+"/sessions/s/layers/L9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownPlotModeIs400(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "hologram"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_FailedRunIs422AndStatePreserved(t *testing.T) {
	engine := ports.EngineFunc(func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		return nil, &domain.EngineError{Msg: "analysis did not converge"}
	})
	srv := newTestServer(t, engine)
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "boundary"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Contains(t, body["error"], "did not converge")

	// The session survives with its inputs and the error string.
	resp = do(t, http.MethodGet, srv.URL+"/sessions/s/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[domain.State](t, resp)
	assert.Equal(t, domain.PhaseError, state.Phase)
	assert.Contains(t, state.LastError, "did not converge")
	assert.Len(t, state.Layers, 1)
	assert.Nil(t, state.Result)
}

func TestServer_ValidationFailureIs422(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())

	// Slope only, no materials.
	resp := do(t, http.MethodPut, srv.URL+"/sessions/s/slope", domain.NewSlopeConfig(3, domain.Float64(30)))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "boundary"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Contains(t, body["error"], "material")
}

func TestServer_PlotBeforeRunIs409(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodGet, srv.URL+"/sessions/s/plot/boundary", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_PlotModeNotRenderedIs409(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "boundary"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/sessions/s/plot/all_planes", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_Report(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	// No run yet: conflict.
	resp := do(t, http.MethodGet, srv.URL+"/sessions/s/report", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "critical"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/sessions/s/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Critical Factor of Safety")
}

func TestServer_ProjectMetadata(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPut, srv.URL+"/sessions/s/project", domain.ProjectInfo{Name: "Cutting 7"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/sessions/s/", nil)
	state := decode[domain.State](t, resp)
	assert.Equal(t, "Cutting 7", state.Project.Name)
}

func TestServer_MaxFOSOverridePerRun(t *testing.T) {
	var captured float64
	engine := ports.EngineFunc(func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
		captured = req.MaxFOS
		return &domain.AnalysisResult{CriticalFOS: 1.1, Surfaces: 1}, nil
	})
	srv := newTestServer(t, engine)
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]any{
		"plot_mode": "all_planes",
		"max_fos":   1.5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.5, captured)
}

func TestServer_MetricsExposed(t *testing.T) {
	srv := newTestServer(t, stub.NewEngine())
	seedSession(t, srv.URL, "s")

	resp := do(t, http.MethodPost, srv.URL+"/sessions/s/run", map[string]string{"plot_mode": "boundary"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "talus_analysis_runs_total")
	assert.Contains(t, buf.String(), "talus_analysis_duration_seconds")
}
