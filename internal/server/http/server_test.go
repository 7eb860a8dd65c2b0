package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/internal/runtime"
)

func newTestServer(t *testing.T) (*Server, *runtime.Runtime) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Device = flash.Geometry{Capacity: 4096, BlockSize: 1024}
	cfg.ImagePath = filepath.Join(t.TempDir(), "flash.img")
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt, nil), rt
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	out := map[string]any{}
	if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestAppendRequiresInit(t *testing.T) {
	s, _ := newTestServer(t)
	w, out := doJSON(t, s, http.MethodPost, "/v1/log/append", `{"record":"hello"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (%v)", w.Code, out)
	}
}

func TestAppendPositionResetFlow(t *testing.T) {
	s, _ := newTestServer(t)

	w, _ := doJSON(t, s, http.MethodPost, "/v1/log/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	w, out := doJSON(t, s, http.MethodPost, "/v1/log/append", `{"record":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("append status = %d (%s)", w.Code, w.Body.String())
	}
	if out["position"].(float64) != 5 {
		t.Fatalf("position after append = %v", out["position"])
	}

	w, out = doJSON(t, s, http.MethodGet, "/v1/log/position", "")
	if w.Code != http.StatusOK || out["position"].(float64) != 5 || out["initialized"] != true {
		t.Fatalf("get position: %d %v", w.Code, out)
	}

	w, out = doJSON(t, s, http.MethodPost, "/v1/log/position", `{"addr":1030}`)
	if w.Code != http.StatusOK || out["position"].(float64) != 1024 {
		t.Fatalf("set position: %d %v", w.Code, out)
	}

	w, out = doJSON(t, s, http.MethodPost, "/v1/log/position", `{"addr":4096}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out of bounds set position: %d %v", w.Code, out)
	}
}

func TestAppendFieldsFramesOnePage(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	w, out := doJSON(t, s, http.MethodPost, "/v1/log/append", `{"fields":["telemetry","1","20.5"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("append status = %d (%s)", w.Code, w.Body.String())
	}
	if out["position"].(float64) != 256 {
		t.Fatalf("framed append position = %v, want one page", out["position"])
	}
}

func TestPauseGateOverHTTP(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()

	if w, _ := doJSON(t, s, http.MethodPost, "/v1/log/pause", ""); w.Code != http.StatusNoContent {
		t.Fatalf("pause status = %d", w.Code)
	}
	w, out := doJSON(t, s, http.MethodGet, "/v1/log/paused", "")
	if w.Code != http.StatusOK || out["paused"] != true {
		t.Fatalf("paused: %d %v", w.Code, out)
	}
	if w, _ := doJSON(t, s, http.MethodPost, "/v1/log/append", `{"record":"x"}`); w.Code != http.StatusConflict {
		t.Fatalf("paused append status = %d", w.Code)
	}
	if w, _ := doJSON(t, s, http.MethodPost, "/v1/log/resume", ""); w.Code != http.StatusNoContent {
		t.Fatalf("resume status = %d", w.Code)
	}
	if w, _ := doJSON(t, s, http.MethodPost, "/v1/log/append", `{"record":"x"}`); w.Code != http.StatusOK {
		t.Fatalf("append after resume = %d", w.Code)
	}
}

func TestRecoverSeedsCursor(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	data := make([]byte, 1024)
	if err := rt.Engine().Append(data); err != nil {
		t.Fatalf("append: %v", err)
	}

	w, out := doJSON(t, s, http.MethodPost, "/v1/log/recover", "")
	if w.Code != http.StatusOK {
		t.Fatalf("recover status = %d (%s)", w.Code, w.Body.String())
	}
	if out["position"].(float64) != 1024 {
		t.Fatalf("recovered position = %v", out["position"])
	}
}

func TestDeviceReadHex(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	if err := rt.Engine().Append([]byte{0xAB, 0xCD}); err != nil {
		t.Fatalf("append: %v", err)
	}
	w, out := doJSON(t, s, http.MethodGet, "/v1/device/read?addr=0&len=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	if out["hex"] != "abcd" {
		t.Fatalf("hex = %v", out["hex"])
	}

	if w, _ := doJSON(t, s, http.MethodGet, "/v1/device/read?addr=0&len=0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("zero len status = %d", w.Code)
	}
}

func TestDeviceDumpFormatsAndRestoresGate(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/device/dump", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("dump status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "[00000000] FF FF") {
		t.Fatalf("dump format: %q", body[:80])
	}
	lines := strings.Count(body, "\n")
	if lines != 4096/16 {
		t.Fatalf("dump lines = %d, want %d", lines, 4096/16)
	}
	if rt.Engine().Paused() {
		t.Fatalf("dump left the gate set")
	}
}

func TestDeviceDumpKeepsExistingPause(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	rt.Engine().Pause()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/device/dump", nil))
	if !rt.Engine().Paused() {
		t.Fatalf("dump cleared a gate the client had set")
	}
}

func TestEraseEndpoints(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	if err := rt.Engine().Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}

	w, out := doJSON(t, s, http.MethodPost, "/v1/device/erase", `{"addr":2}`)
	if w.Code != http.StatusOK || out["block"].(float64) != 0 {
		t.Fatalf("erase: %d %v", w.Code, out)
	}

	w, out = doJSON(t, s, http.MethodPost, "/v1/device/erase-range", `{"start":0,"end":2047}`)
	if w.Code != http.StatusOK || out["blocks"].(float64) != 2 {
		t.Fatalf("erase-range: %d %v", w.Code, out)
	}

	w, _ = doJSON(t, s, http.MethodPost, "/v1/device/erase-range", `{"start":100,"end":5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad range status = %d", w.Code)
	}

	if w, _ := doJSON(t, s, http.MethodPost, "/v1/device/erase-all", ""); w.Code != http.StatusNoContent {
		t.Fatalf("erase-all status = %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, rt := newTestServer(t)
	rt.Engine().Reset()
	w, out := doJSON(t, s, http.MethodGet, "/v1/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if out["initialized"] != true {
		t.Fatalf("status body: %v", out)
	}
	if _, ok := out["device"]; !ok {
		t.Fatalf("status missing device info: %v", out)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	w, out := doJSON(t, s, http.MethodGet, "/v1/healthz", "")
	if w.Code != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("healthz: %d %v", w.Code, out)
	}
}
