package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/config"
)

type fakeBlobStore struct {
	rows map[string][]byte
	puts int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{rows: make(map[string][]byte)}
}

func (f *fakeBlobStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	return f.rows[key], nil
}

func (f *fakeBlobStore) PutBlob(ctx context.Context, key string, data []byte) error {
	f.puts++
	f.rows[key] = data
	return nil
}

func (f *fakeBlobStore) DeleteBlob(ctx context.Context, key string) error {
	delete(f.rows, key)
	return nil
}

func newTestAPI(t *testing.T) (*API, *fakeBlobStore) {
	t.Helper()
	rows := newFakeBlobStore()
	store := bank.NewStore(rows)
	cfg := &config.Config{JWTSecret: "test-secret"}
	resolve := func(memberID string) (string, bool) {
		names := map[string]string{"42": "Alice", "7": "Bob"}
		name, ok := names[memberID]
		return name, ok
	}
	return New(cfg, store, resolve), rows
}

func bearerToken(t *testing.T, secret string) string {
	t.Helper()
	claims := &Claims{
		UserID:   "admin",
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func authedRequest(t *testing.T, a *API, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "test-secret"))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	a, _ := newTestAPI(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/bank/ledger?token_type=War+Token", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	a, _ := newTestAPI(t)

	req := httptest.NewRequest("GET", "/api/bank/ledger?token_type=War+Token", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "other-secret"))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleLedger(t *testing.T) {
	a, _ := newTestAPI(t)
	ctx := context.Background()
	if _, err := a.store.AddTokens(ctx, "settler", "42", bank.WarToken, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := a.store.AddTokens(ctx, "officer", "7", bank.EventToken, 2); err != nil {
		t.Fatal(err)
	}

	// Token type matching is case-insensitive.
	rec := authedRequest(t, a, "GET", "/api/bank/ledger?token_type=war+token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TokenType string `json:"token_type"`
		Entries   []struct {
			Role     string `json:"role"`
			MemberID string `json:"member_id"`
			Balance  int    `json:"balance"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TokenType != bank.WarToken {
		t.Errorf("token_type = %q, want %q", resp.TokenType, bank.WarToken)
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(resp.Entries))
	}
	entry := resp.Entries[0]
	if entry.Role != "settler" || entry.MemberID != "42" || entry.Balance != 5 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestHandleLedgerBadTokenType(t *testing.T) {
	a, _ := newTestAPI(t)
	rec := authedRequest(t, a, "GET", "/api/bank/ledger?token_type=Gold+Token", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMemberBalances(t *testing.T) {
	a, _ := newTestAPI(t)
	ctx := context.Background()
	if _, err := a.store.AddTokens(ctx, "settler", "42", bank.WarToken, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := a.store.AddTokens(ctx, "officer", "42", bank.WarToken, 3); err != nil {
		t.Fatal(err)
	}

	rec := authedRequest(t, a, "GET", "/api/bank/members/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		MemberID string         `json:"member_id"`
		Balances map[string]int `json:"balances"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MemberID != "42" {
		t.Errorf("member_id = %q, want 42", resp.MemberID)
	}
	if resp.Balances[bank.WarToken] != 5 {
		t.Errorf("war balance = %d, want 5 (summed across roles)", resp.Balances[bank.WarToken])
	}
}

func TestHandleDryRunPayout(t *testing.T) {
	a, rows := newTestAPI(t)
	ctx := context.Background()
	if _, err := a.store.AddTokens(ctx, "settler", "42", bank.WarToken, 5); err != nil {
		t.Fatal(err)
	}
	putsAfterSeed := rows.puts

	rec := authedRequest(t, a, "POST", "/api/payout/dry-run", `{"income": 1000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		NoPayout bool   `json:"no_payout"`
		Pool     string `json:"pool"`
		Members  []struct {
			MemberID    string `json:"member_id"`
			DisplayName string `json:"display_name"`
			Total       string `json:"total"`
		} `json:"members"`
		Breakdown map[string]string `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.NoPayout {
		t.Fatal("expected a computed payout")
	}
	if resp.Pool != "600.00" {
		t.Errorf("pool = %q, want 600.00", resp.Pool)
	}
	if len(resp.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(resp.Members))
	}
	if resp.Members[0].DisplayName != "Alice" || resp.Members[0].Total != "300.00" {
		t.Errorf("member = %+v", resp.Members[0])
	}
	if resp.Breakdown["war"] != "300.00" {
		t.Errorf("war breakdown = %q, want 300.00", resp.Breakdown["war"])
	}

	// A preview must not mutate balances.
	if rows.puts != putsAfterSeed {
		t.Errorf("dry run persisted %d writes", rows.puts-putsAfterSeed)
	}
	loaded, err := a.store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Get("settler", "42", bank.WarToken); got != 5 {
		t.Errorf("war balance after preview = %d, want 5", got)
	}
}

func TestHandleDryRunPayoutValidation(t *testing.T) {
	a, _ := newTestAPI(t)

	rec := authedRequest(t, a, "POST", "/api/payout/dry-run", `{"income": -5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative income status = %d, want 400", rec.Code)
	}

	rec = authedRequest(t, a, "POST", "/api/payout/dry-run", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	a, _ := newTestAPI(t)

	req := httptest.NewRequest("GET", "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp["auth_url"], "discord.com/api/oauth2/authorize") {
		t.Errorf("auth_url = %q", resp["auth_url"])
	}
	if len(resp["state"]) == 0 {
		t.Error("state should not be empty")
	}
}
