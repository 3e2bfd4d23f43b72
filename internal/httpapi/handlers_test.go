package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/watt-toolkit/cachegrid/internal/engine"
)

func newTestServer(t *testing.T) (*Router, *engine.Engine) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.MaxEntries = 100
	cfg.CleanupInterval = 10 * time.Millisecond
	eng := engine.New(cfg)
	eng.Start()
	t.Cleanup(eng.Stop)

	h := NewHandlers(eng)
	chain := buildChain(false)

	r := NewRouter()
	r.Add(http.MethodGet, "/", chain(h.Root))
	r.Add(http.MethodGet, "/health", chain(h.Health))
	r.Add(http.MethodGet, "/stats", chain(h.Stats))
	r.Add(http.MethodGet, "/cache/:key", chain(h.GetItem))
	r.Add(http.MethodPut, "/cache/:key", chain(h.SetItemByPath))
	r.Add(http.MethodPost, "/cache", chain(h.SetItemByBody))
	r.Add(http.MethodDelete, "/cache/:key", chain(h.DeleteItem))
	r.Add(http.MethodDelete, "/cache", chain(h.ClearCache))
	r.Add(http.MethodPost, "/cache/batch/get", chain(h.BatchGet))
	r.Add(http.MethodPost, "/cache/batch/set", chain(h.BatchSet))
	r.Add(http.MethodGet, "/admin/keys", chain(h.ListKeys))
	r.Add(http.MethodPost, "/admin/loadtest", chain(h.LoadTest))

	return r, eng
}

func doRequest(r *Router, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers_RootBanner(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != "CacheGrid" || body["status"] != "running" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandlers_HealthHealthyWhenRunning(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandlers_GetMissReturnsExistsFalse(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodGet, "/cache/missing", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body cacheGetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Exists || body.Hit {
		t.Fatalf("body = %+v, want exists=false hit=false", body)
	}
}

func TestHandlers_SetThenGetRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)

	setResp := doRequest(r, http.MethodPut, "/cache/foo", []byte(`"bar"`))
	if setResp.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200: %s", setResp.Code, setResp.Body.String())
	}

	getResp := doRequest(r, http.MethodGet, "/cache/foo", nil)
	var body cacheGetResponse
	if err := json.Unmarshal(getResp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Exists || body.Value != "bar" {
		t.Fatalf("body = %+v, want exists=true value=bar", body)
	}
}

func TestHandlers_SetByBodyValidatesKey(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodPost, "/cache", []byte(`{"value": 1}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlers_DeleteIsIdempotent(t *testing.T) {
	r, _ := newTestServer(t)
	doRequest(r, http.MethodPut, "/cache/k", []byte(`1`))

	first := doRequest(r, http.MethodDelete, "/cache/k", nil)
	var firstBody deleteResultResponse
	json.Unmarshal(first.Body.Bytes(), &firstBody)
	if !firstBody.Deleted {
		t.Fatal("expected first delete to report deleted=true")
	}

	second := doRequest(r, http.MethodDelete, "/cache/k", nil)
	var secondBody deleteResultResponse
	json.Unmarshal(second.Body.Bytes(), &secondBody)
	if secondBody.Deleted {
		t.Fatal("expected second delete to report deleted=false")
	}
}

func TestHandlers_ClearRequiresConfirm(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodDelete, "/cache", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w2 := doRequest(r, http.MethodDelete, "/cache?confirm=true", nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w2.Code)
	}
}

func TestHandlers_BatchGetReturnsPartialHits(t *testing.T) {
	r, _ := newTestServer(t)
	doRequest(r, http.MethodPut, "/cache/a", []byte(`1`))
	doRequest(r, http.MethodPut, "/cache/b", []byte(`2`))

	w := doRequest(r, http.MethodPost, "/cache/batch/get", []byte(`{"keys": ["a", "b", "c"]}`))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["found_keys"].(float64) != 2 {
		t.Fatalf("found_keys = %v, want 2", body["found_keys"])
	}
}

func TestHandlers_BatchSetInsertsAll(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodPost, "/cache/batch/set", []byte(`{"items": {"a":1,"b":2,"c":3}}`))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["items_set"].(float64) != 3 {
		t.Fatalf("items_set = %v, want 3", body["items_set"])
	}
}

func TestHandlers_ListKeysRejectsOutOfRangeLimit(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodGet, "/admin/keys?limit=0", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlers_ListKeysFiltersBySubstring(t *testing.T) {
	r, _ := newTestServer(t)
	doRequest(r, http.MethodPut, "/cache/user:1", []byte(`1`))
	doRequest(r, http.MethodPut, "/cache/session:1", []byte(`1`))

	w := doRequest(r, http.MethodGet, "/admin/keys?pattern=user", nil)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["total_found"].(float64) != 1 {
		t.Fatalf("total_found = %v, want 1", body["total_found"])
	}
}

func TestHandlers_SetRejectsNonPositiveTTL(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodPut, "/cache/k?ttl=-1", []byte(`1`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlers_NotFoundForUnknownRoute(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodGet, "/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandlers_LoadTestRunsMixedWorkload(t *testing.T) {
	r, _ := newTestServer(t)
	w := doRequest(r, http.MethodPost, "/admin/loadtest?num_operations=40", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}
