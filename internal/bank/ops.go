package bank

import (
	"context"
	"errors"
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrNoBalance      = errors.New("member has no balance for that role")
)

// AddTokens credits a member's role-scoped balance and returns the new count.
func (s *Store) AddTokens(ctx context.Context, role, memberID, tokenType string, count int) (int, error) {
	if count < 0 {
		return 0, ErrNegativeAmount
	}
	var newBalance int
	err := s.Update(ctx, func(rec Record) (bool, error) {
		_, newBalance = rec.Add(role, memberID, tokenType, count)
		return true, nil
	})
	return newBalance, err
}

// RemoveTokens debits a member's role-scoped balance, clamping at zero, and
// returns the new count. The member must already hold a balance under role.
func (s *Store) RemoveTokens(ctx context.Context, role, memberID, tokenType string, count int) (int, error) {
	if count < 0 {
		return 0, ErrNegativeAmount
	}
	var newBalance int
	err := s.Update(ctx, func(rec Record) (bool, error) {
		members, ok := rec[role]
		if !ok {
			return false, ErrNoBalance
		}
		tokens, ok := members[memberID]
		if !ok {
			return false, ErrNoBalance
		}
		if _, ok := tokens[tokenType]; !ok {
			return false, ErrNoBalance
		}
		balance := tokens[tokenType] - count
		if balance < 0 {
			balance = 0
		}
		rec.Set(role, memberID, tokenType, balance)
		newBalance = balance
		return true, nil
	})
	return newBalance, err
}

// MemberBalances aggregates a member's counts per token type across every
// company role scope.
func (s *Store) MemberBalances(ctx context.Context, memberID string) (map[string]int, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(TokenTypes))
	for _, tokenType := range TokenTypes {
		totals[tokenType] = 0
	}
	for _, role := range CompanyRoles {
		tokens := rec[role.Name][memberID]
		for _, tokenType := range TokenTypes {
			totals[tokenType] += tokens[tokenType]
		}
	}
	return totals, nil
}

// RoleBalances sums counts per token type across every member holding a
// balance under the role scope.
func (s *Store) RoleBalances(ctx context.Context, role string) (map[string]int, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(TokenTypes))
	for _, tokenType := range TokenTypes {
		totals[tokenType] = 0
	}
	for _, tokens := range rec[role] {
		for _, tokenType := range TokenTypes {
			totals[tokenType] += tokens[tokenType]
		}
	}
	return totals, nil
}

// DropMember removes a departed member from every role scope. Reports
// whether the member held any balance.
func (s *Store) DropMember(ctx context.Context, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if !rec.RemoveMember(memberID) {
		return false, nil
	}
	return true, s.replace(ctx, rec)
}
