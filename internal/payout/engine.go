package payout

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/notify"
)

// Payout weighting: 60% of income is distributable, split across the token
// classes 3:2:1 (war:leadership:competitive).
var (
	distributableShare = decimal.RequireFromString("0.6")
	warRatio           = decimal.NewFromInt(3)
	leadershipRatio    = decimal.NewFromInt(2)
	competitiveRatio   = decimal.NewFromInt(1)
	ratioTotal         = warRatio.Add(leadershipRatio).Add(competitiveRatio)
)

// MemberPayout is one member's computed distribution for a settlement run.
type MemberPayout struct {
	MemberID    string
	DisplayName string

	WarTokens         int
	LeadershipTokens  int
	CompetitiveTokens int

	WarPayout         decimal.Decimal
	LeadershipPayout  decimal.Decimal
	CompetitivePayout decimal.Decimal
	Total             decimal.Decimal
}

// Breakdown totals the distributed gold per token class.
type Breakdown struct {
	War         decimal.Decimal
	Leadership  decimal.Decimal
	Competitive decimal.Decimal
}

// Result is the outcome of a settlement computation.
type Result struct {
	// NoPayout is set when no payout-eligible tokens exist at all; nothing
	// is distributed or reset.
	NoPayout bool

	Pool      decimal.Decimal
	Members   []MemberPayout // sorted by display name
	Breakdown Breakdown

	TotalWarTokens         int
	TotalLeadershipTokens  int
	TotalCompetitiveTokens int
}

// Compute converts the pooled token balances into a proportional gold
// distribution. Exact decimal arithmetic throughout; rounding happens only
// when amounts are formatted. resolve maps a member ID to a display name;
// unresolvable members still count toward the class totals but are excluded
// from the distribution table, matching award processing of departed members.
func Compute(rec bank.Record, income decimal.Decimal, resolve func(memberID string) (string, bool)) *Result {
	result := &Result{Pool: distributableShare.Mul(income)}

	type tally struct {
		war, leadership, competitive int
	}
	tallies := make(map[string]*tally)
	for _, role := range bank.CompanyRoles {
		for memberID, tokens := range rec[role.Name] {
			t, ok := tallies[memberID]
			if !ok {
				t = &tally{}
				tallies[memberID] = t
			}
			t.war += tokens[bank.WarToken]
			t.leadership += tokens[bank.LeadershipToken]
			t.competitive += tokens[bank.CompetitiveToken]
		}
	}
	for _, t := range tallies {
		result.TotalWarTokens += t.war
		result.TotalLeadershipTokens += t.leadership
		result.TotalCompetitiveTokens += t.competitive
	}

	if result.TotalWarTokens+result.TotalLeadershipTokens+result.TotalCompetitiveTokens == 0 {
		result.NoPayout = true
		return result
	}

	unit := result.Pool.Div(ratioTotal)
	warRate := classRate(warRatio.Mul(unit), result.TotalWarTokens)
	leadershipRate := classRate(leadershipRatio.Mul(unit), result.TotalLeadershipTokens)
	competitiveRate := classRate(competitiveRatio.Mul(unit), result.TotalCompetitiveTokens)

	for memberID, t := range tallies {
		name, ok := resolve(memberID)
		if !ok {
			continue
		}
		mp := MemberPayout{
			MemberID:          memberID,
			DisplayName:       name,
			WarTokens:         t.war,
			LeadershipTokens:  t.leadership,
			CompetitiveTokens: t.competitive,
			WarPayout:         warRate.Mul(decimal.NewFromInt(int64(t.war))),
			LeadershipPayout:  leadershipRate.Mul(decimal.NewFromInt(int64(t.leadership))),
			CompetitivePayout: competitiveRate.Mul(decimal.NewFromInt(int64(t.competitive))),
		}
		mp.Total = mp.WarPayout.Add(mp.LeadershipPayout).Add(mp.CompetitivePayout)
		result.Members = append(result.Members, mp)
		result.Breakdown.War = result.Breakdown.War.Add(mp.WarPayout)
		result.Breakdown.Leadership = result.Breakdown.Leadership.Add(mp.LeadershipPayout)
		result.Breakdown.Competitive = result.Breakdown.Competitive.Add(mp.CompetitivePayout)
	}

	sort.Slice(result.Members, func(i, j int) bool {
		return result.Members[i].DisplayName < result.Members[j].DisplayName
	})
	return result
}

// classRate divides a class pool by the class token total. A class with zero
// tokens gets a zero rate: its share of the pool is simply retained, never a
// division fault.
func classRate(classPool decimal.Decimal, totalTokens int) decimal.Decimal {
	if totalTokens == 0 {
		return decimal.Zero
	}
	return classPool.Div(decimal.NewFromInt(int64(totalTokens)))
}

// ResetPayoutBalances zeroes every member's payout-eligible balances in every
// role scope. Event Tokens are not payout-eligible and are left untouched.
func ResetPayoutBalances(rec bank.Record) {
	for _, role := range bank.CompanyRoles {
		for memberID := range rec[role.Name] {
			for _, tokenType := range bank.PayoutTokenTypes {
				if _, ok := rec[role.Name][memberID][tokenType]; ok {
					rec.Set(role.Name, memberID, tokenType, 0)
				}
			}
		}
	}
}

// Notifier delivers paginated DMs; delivery failure is non-fatal.
type Notifier interface {
	SendPaginated(recipientID, title string, fields []notify.Field, pageSize int) bool
}

// Engine runs the weekly settlement: compute, notify, reset, artifact.
type Engine struct {
	store             *bank.Store
	notifier          Notifier
	dryRunRecipientID string
	artifactDir       string
	now               func() time.Time
}

func NewEngine(store *bank.Store, notifier Notifier, dryRunRecipientID, artifactDir string) *Engine {
	return &Engine{
		store:             store,
		notifier:          notifier,
		dryRunRecipientID: dryRunRecipientID,
		artifactDir:       artifactDir,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the settlement clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Run executes a settlement for the given weekly income. Balance reads, the
// computation and the reset all happen inside one locked store cycle; a dry
// run skips the reset. Notifications go out afterwards: every member on a
// real run, only the designated test recipient on a dry run.
func (e *Engine) Run(ctx context.Context, income decimal.Decimal, resolve func(memberID string) (string, bool), dryRun bool) (*Result, error) {
	var result *Result
	err := e.store.Update(ctx, func(rec bank.Record) (bool, error) {
		result = Compute(rec, income, resolve)
		if result.NoPayout || dryRun {
			return false, nil
		}
		ResetPayoutBalances(rec)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run payout: %w", err)
	}
	if result.NoPayout {
		return result, nil
	}

	allDelivered := true
	for _, mp := range result.Members {
		if dryRun && mp.MemberID != e.dryRunRecipientID {
			continue
		}
		fields := []notify.Field{
			{Name: "War Tokens", Value: fmt.Sprintf("%s gold", mp.WarPayout.StringFixed(2))},
			{Name: "Leadership Tokens", Value: fmt.Sprintf("%s gold", mp.LeadershipPayout.StringFixed(2))},
			{Name: "Competitive Tokens", Value: fmt.Sprintf("%s gold", mp.CompetitivePayout.StringFixed(2))},
			{Name: "Overall Total", Value: fmt.Sprintf("%s gold", mp.Total.StringFixed(2))},
		}
		title := fmt.Sprintf("Payout Information for %s", mp.DisplayName)
		if !e.notifier.SendPaginated(mp.MemberID, title, fields, notify.DefaultPageSize) {
			allDelivered = false
		}
	}

	if err := writePayoutFile(e.artifactDir, e.now(), result, allDelivered); err != nil {
		log.Printf("Failed to write payout file: %v", err)
	}
	return result, nil
}
