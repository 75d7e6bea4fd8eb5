package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"matchoracle/internal/oracle"
	"matchoracle/internal/repository/memory"
)

type stubDirectory struct {
	match *oracle.Match
	game  *oracle.Game
}

func (d *stubDirectory) GetMatch(ctx context.Context, matchID string) (*oracle.Match, error) {
	if d.match != nil && d.match.ID == matchID {
		out := *d.match
		return &out, nil
	}
	return nil, nil
}

func (d *stubDirectory) GetGame(ctx context.Context, gameID string) (*oracle.Game, error) {
	if d.game != nil && d.game.ID == gameID {
		out := *d.game
		return &out, nil
	}
	return nil, nil
}

func (d *stubDirectory) SetMatchStatus(ctx context.Context, matchID, status string) error {
	return nil
}

func (d *stubDirectory) SlashStake(ctx context.Context, gameID string, amount decimal.Decimal, reason string) error {
	return nil
}

func (d *stubDirectory) SetReputation(ctx context.Context, gameID string, score int) error {
	return nil
}

type stubSchemas struct{}

func (stubSchemas) IsSchemaActive(ctx context.Context, schemaID string) (bool, error) {
	return true, nil
}

func (stubSchemas) GameSchema(ctx context.Context, gameID string) (string, error) {
	return "", nil
}

func (stubSchemas) Validate(ctx context.Context, schemaID string, payload []byte) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *oracle.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := &oracle.Engine{
		Store: memory.New(),
		Directory: &stubDirectory{
			match: &oracle.Match{
				ID:          "m1",
				GameID:      "game1",
				Status:      oracle.MatchScheduled,
				ScheduledAt: time.Now().Add(-time.Hour),
			},
			game: &oracle.Game{
				ID:                "game1",
				Developer:         "dev1",
				Active:            true,
				Reputation:        500,
				RegistrationStake: decimal.NewFromInt(100),
			},
		},
		Schemas: stubSchemas{},
		Auth:    oracle.NewAccountAuthorizer([]string{"authority"}),
	}

	router := gin.New()
	router.Use(AccountMiddleware())
	(&ResultHandler{Engine: engine}).Register(router)
	(&DisputeHandler{Engine: engine}).Register(router)
	(&RewardHandler{Engine: engine}).Register(router)
	return router, engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path, account string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account", account)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func submitBody() map[string]any {
	return map[string]any{
		"match_id":      "m1",
		"game_contract": "game1",
		"participants":  []string{"alice", "bob"},
		"scores":        []int64{16, 14},
		"winner_index":  0,
		"duration_sec":  1800,
	}
}

func TestSubmitResult_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/results", "dev1", submitBody())
	if w.Code != http.StatusOK || resp.Code != 0 {
		t.Fatalf("status=%d code=%d body=%s", w.Code, resp.Code, w.Body.String())
	}
	if resp.Meta["checks"] == nil {
		t.Fatalf("checks missing from meta")
	}

	// Duplicate submission maps to 409 with a machine-readable reason.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/results", "dev1", submitBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status=%d", w.Code)
	}
	if resp.Meta["reason"] != "already_exists" {
		t.Fatalf("reason=%v", resp.Meta["reason"])
	}
}

func TestSubmitResult_HTTPAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	// No account header.
	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/results", "", submitBody())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status=%d", w.Code)
	}

	// Wrong developer.
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/results", "intruder", submitBody())
	if w.Code != http.StatusForbidden {
		t.Fatalf("wrong developer: status=%d", w.Code)
	}
	if resp.Meta["reason"] != "unauthorized" {
		t.Fatalf("reason=%v", resp.Meta["reason"])
	}
}

func TestDisputeAndResolve_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	if w, _ := doJSON(t, router, http.MethodPost, "/api/v1/results", "dev1", submitBody()); w.Code != http.StatusOK {
		t.Fatalf("submit: status=%d", w.Code)
	}

	// Wrong stake is a 400 value mismatch.
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/results/m1/dispute", "challenger", map[string]any{
		"reason": "score manipulation",
		"stake":  "100",
	})
	if w.Code != http.StatusBadRequest || resp.Meta["reason"] != "value_mismatch" {
		t.Fatalf("wrong stake: status=%d reason=%v", w.Code, resp.Meta["reason"])
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/results/m1/dispute", "challenger", map[string]any{
		"reason": "score manipulation",
		"stake":  "200",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("dispute: status=%d body=%s", w.Code, w.Body.String())
	}

	// Non-resolver cannot resolve.
	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/results/m1/resolve", "challenger", map[string]any{
		"dispute_valid": true,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-resolver: status=%d", w.Code)
	}

	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/results/m1/resolve", "authority", map[string]any{
		"dispute_valid": false,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: status=%d body=%s", w.Code, w.Body.String())
	}
	if resp.Meta["resolution"] == nil {
		t.Fatalf("resolution missing from meta")
	}

	// Rejected dispute returned the stake to the submitter.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/rewards/withdraw", "dev1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw: status=%d body=%s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]any)
	if fmt.Sprint(data["amount"]) != "200" {
		t.Fatalf("amount=%v want 200", data["amount"])
	}

	// Second withdrawal finds an empty ledger.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/rewards/withdraw", "dev1", nil)
	if w.Code != http.StatusBadRequest || resp.Meta["reason"] != "empty_balance" {
		t.Fatalf("empty withdraw: status=%d reason=%v", w.Code, resp.Meta["reason"])
	}
}

func TestGetResult_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/results/unknown", "", nil)
	if w.Code != http.StatusNotFound || resp.Meta["reason"] != "not_found" {
		t.Fatalf("unknown match: status=%d reason=%v", w.Code, resp.Meta["reason"])
	}

	if w, _ := doJSON(t, router, http.MethodPost, "/api/v1/results", "dev1", submitBody()); w.Code != http.StatusOK {
		t.Fatalf("submit: status=%d", w.Code)
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/results/m1/outcome", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("outcome: status=%d", w.Code)
	}
	data := resp.Data.(map[string]any)
	participants := data["participants"].([]any)
	if len(participants) != 2 {
		t.Fatalf("participants=%v", participants)
	}
	if fmt.Sprint(data["winner_index"]) != "0" {
		t.Fatalf("winner_index=%v", data["winner_index"])
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/results/m1/finalized", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finalized: status=%d", w.Code)
	}
	if resp.Data.(map[string]any)["is_finalized"] != false {
		t.Fatalf("fresh result must not be finalized")
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/results/count", "", nil)
	if w.Code != http.StatusOK || fmt.Sprint(resp.Data.(map[string]any)["count"]) != "1" {
		t.Fatalf("count: status=%d data=%v", w.Code, resp.Data)
	}
}
