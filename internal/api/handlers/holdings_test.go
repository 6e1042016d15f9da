package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arniesaha/portfolio-tracker/internal/model"
	"github.com/arniesaha/portfolio-tracker/internal/testutil"
)

func TestHoldingHandler_Holdings(t *testing.T) {
	setupHandler := func(t *testing.T) (*HoldingHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		hs := testutil.NewTestHoldingService(t, db)
		return NewHoldingHandler(hs), db
	}

	t.Run("returns empty array when no holdings exist", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		w := httptest.NewRecorder()

		handler.Holdings(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}

		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d holdings", len(response))
		}
	})

	t.Run("filters to active holdings with ?active=true", func(t *testing.T) {
		handler, db := setupHandler(t)

		active := testutil.NewHolding().WithPosition(10, 100).Build(t, db)
		testutil.NewHolding().WithSymbol("ZRE").WithExchange("TSX").Inactive().Build(t, db)

		req := testutil.NewRequestWithQueryParams(
			http.MethodGet,
			"/api/holdings",
			map[string]string{"active": "true"},
		)
		w := httptest.NewRecorder()

		handler.Holdings(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 holding, got %d", len(response))
		}

		if response[0].ID != active.ID {
			t.Errorf("Expected active holding %s, got %s", active.ID, response[0].ID)
		}
	})

	t.Run("returns all holdings without the filter", func(t *testing.T) {
		handler, db := setupHandler(t)

		testutil.NewHolding().Build(t, db)
		testutil.NewHolding().WithSymbol("ZRE").WithExchange("TSX").Inactive().Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		w := httptest.NewRecorder()

		handler.Holdings(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected 2 holdings, got %d", len(response))
		}
	})
}

func TestHoldingHandler_GetHolding(t *testing.T) {
	setupHandler := func(t *testing.T) (*HoldingHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		hs := testutil.NewTestHoldingService(t, db)
		return NewHoldingHandler(hs), db
	}

	t.Run("returns a holding by ID", func(t *testing.T) {
		handler, db := setupHandler(t)

		holding := testutil.NewHolding().WithPosition(10, 100.5).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/holdings/"+holding.ID,
			map[string]string{"uuid": holding.ID},
		)
		w := httptest.NewRecorder()

		handler.GetHolding(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID != holding.ID {
			t.Errorf("Expected holding %s, got %s", holding.ID, response.ID)
		}
		if response.Quantity != 10 || response.AvgPurchasePrice != 100.5 {
			t.Errorf("Unexpected position: %v @ %v", response.Quantity, response.AvgPurchasePrice)
		}
	})

	t.Run("returns 400 for invalid UUID", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/holdings/not-a-uuid",
			map[string]string{"uuid": "not-a-uuid"},
		)
		w := httptest.NewRecorder()

		handler.GetHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown holding", func(t *testing.T) {
		handler, _ := setupHandler(t)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/holdings/"+id,
			map[string]string{"uuid": id},
		)
		w := httptest.NewRecorder()

		handler.GetHolding(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHoldingHandler_CreateHolding(t *testing.T) {
	setupHandler := func(t *testing.T) (*HoldingHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		hs := testutil.NewTestHoldingService(t, db)
		return NewHoldingHandler(hs), db
	}

	postJSON := func(t *testing.T, body map[string]interface{}) *http.Request {
		t.Helper()
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/holdings", bytes.NewReader(encoded))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("creates a holding with an empty inactive position", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := postJSON(t, map[string]interface{}{
			"symbol":      "XEQT",
			"companyName": "iShares Core Equity ETF Portfolio",
			"exchange":    "TSX",
			"country":     "Canada",
			"currency":    "CAD",
		})
		w := httptest.NewRecorder()

		handler.CreateHolding(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected holding ID to be populated")
		}
		if response.Symbol != "XEQT" {
			t.Errorf("Expected symbol XEQT, got '%s'", response.Symbol)
		}
		if response.Quantity != 0 || response.IsActive {
			t.Errorf("Expected empty inactive position, got %v active=%v", response.Quantity, response.IsActive)
		}
	})

	t.Run("returns 400 when required fields are missing", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := postJSON(t, map[string]interface{}{
			"exchange": "TSX",
		})
		w := httptest.NewRecorder()

		handler.CreateHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/holdings", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.CreateHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
