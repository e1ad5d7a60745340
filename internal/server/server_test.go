package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func scenarioBody(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(testutil.ScenarioPlan())
	if err != nil {
		t.Fatalf("failed to encode plan: %v", err)
	}
	return data
}

func post(handler http.Handler, path, contentType string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandlePreviewJSON(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	rr := post(handler, "/api/preview", "application/json", scenarioBody(t), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.Totals.NetProfit != 36480 {
		t.Errorf("net profit = %v, expected 36480", resp.Result.Totals.NetProfit)
	}
	if !resp.Result.Blocked || resp.Result.Display.Gap != "20.000,00 €" {
		t.Errorf("unexpected funding outcome: blocked=%v gap=%s", resp.Result.Blocked, resp.Result.Display.Gap)
	}
	if resp.Session != "" || resp.Recomputed != nil {
		t.Error("a stateless preview should not report a session")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandlePreviewYAML(t *testing.T) {
	handler := NewHandler(nil, nil, "")
	body := []byte(`name: Bottega
revenue:
  revenueStreams:
    - id: vendite
      amount: "50.000"
  immediateCollectionPercent: 100
operatingCosts:
  operatingCostItems:
    - id: cogs
      name: Materie prime
      percentage: 40
`)

	rr := post(handler, "/api/preview", "application/x-yaml", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.Name != "Bottega" || resp.Result.Totals.RevenueBase != 50000 {
		t.Errorf("unexpected result %+v", resp.Result.Totals)
	}
	// 50.000 revenue, 20.000 cost, 24% tax on 30.000
	if resp.Result.Totals.NetProfit != 22800 {
		t.Errorf("net profit = %v, expected 22800", resp.Result.Totals.NetProfit)
	}
}

func TestHandlePreviewSession(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")
	body := scenarioBody(t)

	first := post(handler, "/api/preview", "application/json", body, map[string]string{constants.SessionHeader: "new"})
	var resp previewResponse
	if err := json.Unmarshal(first.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Session == "" || resp.Session == "new" {
		t.Fatalf("expected an assigned session id, got %q", resp.Session)
	}
	if len(resp.Recomputed) != len(forecast.Nodes) {
		t.Errorf("first preview should recompute every node, got %v", resp.Recomputed)
	}

	second := post(handler, "/api/preview", "application/json", body, map[string]string{constants.SessionHeader: resp.Session})
	var again previewResponse
	if err := json.Unmarshal(second.Body.Bytes(), &again); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if again.Session != resp.Session {
		t.Errorf("session id changed from %s to %s", resp.Session, again.Session)
	}
	if len(again.Recomputed) != 0 {
		t.Errorf("an unchanged plan should recompute nothing, got %v", again.Recomputed)
	}
	if again.Result.Totals.NetProfit != 36480 {
		t.Errorf("net profit = %v", again.Result.Totals.NetProfit)
	}
}

func TestSessionStoreEvictsOldest(t *testing.T) {
	store := newSessionStore(zap.NewNop(), 2)
	plan := testutil.ScenarioPlan()

	store.recompute("a", plan)
	store.recompute("b", plan)
	store.recompute("c", plan)

	if store.size() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.size())
	}
	if update := store.recompute("a", plan); len(update.Recomputed) != len(forecast.Nodes) {
		t.Error("an evicted session should start over")
	}
	if update := store.recompute("c", plan); len(update.Recomputed) != 0 {
		t.Error("a kept session should remember its inputs")
	}
}

func TestHandlePreviewErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(64)
	handler := NewHandler(zap.NewNop(), cfg, "")

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"Wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"Empty body", http.MethodPost, "", http.StatusBadRequest},
		{"Malformed JSON", http.MethodPost, `{"name": `, http.StatusBadRequest},
		{"Too large", http.MethodPost, `{"name": "` + strings.Repeat("x", 128) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/preview", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusMethodNotAllowed {
				var payload map[string]string
				if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil || payload["error"] == "" {
					t.Errorf("expected an error payload, got %s", rr.Body.String())
				}
			}
		})
	}
}

func TestHandlePreviewHTML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	rr := post(handler, "/api/preview/html", "application/json", scenarioBody(t), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %s", ct)
	}
	if !strings.Contains(rr.Body.String(), "<table>") {
		t.Error("expected an HTML table")
	}
}

func TestHandlePreviewXLSX(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	rr := post(handler, "/api/preview/xlsx", "application/json", scenarioBody(t), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "proforma.xlsx") {
		t.Errorf("unexpected disposition %s", rr.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(rr.Body)
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 3 {
		t.Errorf("unexpected sheets %v", f.GetSheetList())
	}
}

func TestHandleDocuments(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	tests := []struct {
		name    string
		body    string
		status  int
		records int
		revenue float64
	}{
		{"Strict JSON", `[{"financial_data": {"revenue": 120000, "net_income": 8000}}]`, http.StatusOK, 1, 120000},
		{"Repaired JSON", `{"financial_data": {"revenue": 90000,}}`, http.StatusOK, 1, 90000},
		{"Empty", ``, http.StatusOK, 0, 0},
		{"Scalar", `42`, http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(handler, "/api/documents", "application/json", []byte(tt.body), nil)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var resp documentsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Records) != tt.records {
				t.Errorf("expected %d records, got %d", tt.records, len(resp.Records))
			}
			if tt.revenue == 0 {
				if resp.Year0 != nil {
					t.Error("expected no Year 0")
				}
				return
			}
			if resp.Year0 == nil || resp.Year0.Income == nil || resp.Year0.Income.Revenue.Value != tt.revenue {
				t.Errorf("unexpected Year 0 %+v", resp.Year0)
			}
		})
	}
}

func TestHandleCatalog(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp catalogResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Categories) == 0 || len(resp.Categories) != len(resp.FixedInvestments) {
		t.Errorf("expected one blank entry per category, got %d and %d", len(resp.Categories), len(resp.FixedInvestments))
	}
	if last := resp.CostItems[len(resp.CostItems)-1]; last.ID != constants.CostItemTax {
		t.Errorf("expected tax last, got %s", last.ID)
	}
	if len(resp.OutputFormats) != 5 {
		t.Errorf("unexpected output formats %v", resp.OutputFormats)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"", "dev"},
		{" 1.2.3 ", "1.2.3"},
	}
	for _, tt := range tests {
		handler := NewHandler(zap.NewNop(), nil, tt.version)
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		var payload map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload["version"] != tt.expected {
			t.Errorf("version = %q, expected %q", payload["version"], tt.expected)
		}
	}
}
