package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"purchase-explorer/models"
	"purchase-explorer/render"
	"purchase-explorer/utils"
	"purchase-explorer/viewer"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dataset := []models.Purchase{
		{Region: "Massachusetts", Category: "Male", Age: 20, Amount: 50},
		{Region: "Massachusetts", Category: "Female", Age: 25, Amount: 30},
		{Region: "Massachusetts", Category: "Male", Age: 40, Amount: 20},
	}
	logger := utils.NewNopLogger()
	ctrl, err := viewer.New("Massachusetts", dataset, logger)
	if err != nil {
		t.Fatalf("viewer.New: %v", err)
	}
	w, err := render.NewWriter(render.DefaultLayout)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	ts := httptest.NewServer(New(ctrl, w, logger).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postEvent(t *testing.T, ts *httptest.Server, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/events", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /events: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func fetchView(t *testing.T, ts *httptest.Server) viewer.View {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/view")
	if err != nil {
		t.Fatalf("GET /api/view: %v", err)
	}
	defer resp.Body.Close()
	var v viewer.View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestPage(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	out := string(body)
	for _, want := range []string{"Purchase Amount by Gender: Massachusetts", `id="age-slider"`, "Ages: All", `data-category="Male"`} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestAgeEventNarrowsView(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postEvent(t, ts, `{"type":"age_bound_changed","value":25}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, body %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Bound-Label"); got != "Ages: 20-25" {
		t.Errorf("X-Bound-Label: got %q, want %q", got, "Ages: 20-25")
	}
	if got := resp.Header.Get("X-Bound"); got != "25" {
		t.Errorf("X-Bound: got %q, want 25", got)
	}
	if !strings.Contains(body, `data-category="Female"`) {
		t.Error("fragment should draw the Female bar")
	}

	v := fetchView(t, ts)
	if v.SubsetSize != 2 {
		t.Errorf("subset size: got %d, want 2", v.SubsetSize)
	}
	if len(v.Rows) != 2 || v.Rows[0].TotalAmount != 50 || v.Rows[1].TotalAmount != 30 {
		t.Errorf("rows: got %+v", v.Rows)
	}
}

func TestClickTogglesSelection(t *testing.T) {
	ts := newTestServer(t)

	postEvent(t, ts, `{"type":"category_clicked","category":"Male"}`)
	v := fetchView(t, ts)
	if v.SelectionName != "Male" {
		t.Errorf("selection: got %q, want Male", v.SelectionName)
	}
	if v.HistogramSize != 2 {
		t.Errorf("histogram size: got %d, want 2", v.HistogramSize)
	}

	resp, body := postEvent(t, ts, `{"type":"category_clicked","category":"Male"}`)
	if resp.Header.Get("X-Render-Kind") != string(viewer.RenderHistogram) {
		t.Errorf("render kind: got %q", resp.Header.Get("X-Render-Kind"))
	}
	if !strings.Contains(body, "All Customers") {
		t.Error("second click should restore the all-customers histogram")
	}
}

func TestResetEvent(t *testing.T) {
	ts := newTestServer(t)

	postEvent(t, ts, `{"type":"age_bound_changed","value":22}`)
	postEvent(t, ts, `{"type":"category_clicked","category":"Female"}`)
	resp, _ := postEvent(t, ts, `{"type":"reset"}`)

	if got := resp.Header.Get("X-Bound"); got != "40" {
		t.Errorf("X-Bound after reset: got %q, want 40", got)
	}
	v := fetchView(t, ts)
	if v.SelectionName != "none" || v.SubsetSize != 3 {
		t.Errorf("after reset: selection %q, subset %d", v.SelectionName, v.SubsetSize)
	}
}

func TestBadEvents(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown type", `{"type":"zoom"}`},
		{"missing value", `{"type":"age_bound_changed"}`},
		{"missing category", `{"type":"category_clicked"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postEvent(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}

	if v := fetchView(t, ts); v.Bound != 40 || v.SelectionName != "none" {
		t.Errorf("rejected events changed state: bound %d, selection %q", v.Bound, v.SelectionName)
	}
}

func TestHealthMetricsAndStatic(t *testing.T) {
	ts := newTestServer(t)
	postEvent(t, ts, `{"type":"bin_hovered","index":3}`)

	tests := []struct {
		path string
		want string
	}{
		{"/healthz", `"status":"ok"`},
		{"/metrics", "purchase_explorer_events_total"},
		{"/static/app.js", "/events"},
		{"/panels", "<svg"},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", tt.path, resp.StatusCode)
		}
		if !strings.Contains(string(body), tt.want) {
			t.Errorf("GET %s: body missing %q", tt.path, tt.want)
		}
	}
}

func TestPageLoadStartsFreshSession(t *testing.T) {
	ts := newTestServer(t)
	postEvent(t, ts, `{"type":"age_bound_changed","value":25}`)
	postEvent(t, ts, `{"type":"category_clicked","category":"Male"}`)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	for _, want := range []string{`value="40"`, "Ages: All", "Purchase Amount Distribution (All Customers)"} {
		if !strings.Contains(out, want) {
			t.Errorf("reloaded page missing %q", want)
		}
	}
	if strings.Contains(out, "Purchase Amount Distribution (Male)") {
		t.Error("reloaded page kept the previous selection")
	}
	if v := fetchView(t, ts); v.Bound != 40 || v.SelectionName != "none" {
		t.Errorf("after reload: bound %d, selection %q", v.Bound, v.SelectionName)
	}
}

func TestOversizedEvent(t *testing.T) {
	ts := newTestServer(t)
	big := `{"type":"category_clicked","category":"` + strings.Repeat("x", maxEventBytes) + `"}`
	resp, _ := postEvent(t, ts, big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestEventBodyReadError(t *testing.T) {
	dataset := []models.Purchase{{Region: "Massachusetts", Category: "Male", Age: 20, Amount: 50}}
	logger := utils.NewNopLogger()
	ctrl, err := viewer.New("Massachusetts", dataset, logger)
	if err != nil {
		t.Fatalf("viewer.New: %v", err)
	}
	w, err := render.NewWriter(render.DefaultLayout)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/events", failingReader{})
	rec := httptest.NewRecorder()
	New(ctrl, w, logger).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
