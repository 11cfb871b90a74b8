package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/payout"
)

type ledgerEntry struct {
	Role     string `json:"role"`
	MemberID string `json:"member_id"`
	Balance  int    `json:"balance"`
}

// handleLedger lists nonzero balances for one token type across every role
// scope.
func (a *API) handleLedger(w http.ResponseWriter, r *http.Request) {
	tokenType, ok := bank.NormalizeTokenType(r.URL.Query().Get("token_type"))
	if !ok {
		http.Error(w, "unrecognized token type", http.StatusBadRequest)
		return
	}

	rec, err := a.store.Load(r.Context())
	if err != nil {
		http.Error(w, "failed to load bank data", http.StatusInternalServerError)
		return
	}

	entries := []ledgerEntry{}
	for _, role := range bank.CompanyRoles {
		for memberID, tokens := range rec[role.Name] {
			if balance := tokens[tokenType]; balance > 0 {
				entries = append(entries, ledgerEntry{
					Role:     role.Name,
					MemberID: memberID,
					Balance:  balance,
				})
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token_type": tokenType,
		"entries":    entries,
	})
}

// handleMemberBalances aggregates one member's counts across all role scopes.
func (a *API) handleMemberBalances(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["member_id"]

	totals, err := a.store.MemberBalances(r.Context(), memberID)
	if err != nil {
		http.Error(w, "failed to load bank data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"member_id": memberID,
		"balances":  totals,
	})
}

type dryRunRequest struct {
	Income float64 `json:"income"`
}

// handleDryRunPayout computes a settlement preview without mutating balances
// or sending DMs.
func (a *API) handleDryRunPayout(w http.ResponseWriter, r *http.Request) {
	var req dryRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Income < 0 {
		http.Error(w, "income must not be negative", http.StatusBadRequest)
		return
	}

	rec, err := a.store.Load(r.Context())
	if err != nil {
		http.Error(w, "failed to load bank data", http.StatusInternalServerError)
		return
	}

	result := payout.Compute(rec, decimal.NewFromFloat(req.Income), a.resolveName)

	type memberPayout struct {
		MemberID    string `json:"member_id"`
		DisplayName string `json:"display_name"`
		Total       string `json:"total"`
	}
	members := []memberPayout{}
	for _, mp := range result.Members {
		members = append(members, memberPayout{
			MemberID:    mp.MemberID,
			DisplayName: mp.DisplayName,
			Total:       mp.Total.StringFixed(2),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"no_payout": result.NoPayout,
		"pool":      result.Pool.StringFixed(2),
		"members":   members,
		"breakdown": map[string]string{
			"war":         result.Breakdown.War.StringFixed(2),
			"leadership":  result.Breakdown.Leadership.StringFixed(2),
			"competitive": result.Breakdown.Competitive.StringFixed(2),
		},
	})
}
