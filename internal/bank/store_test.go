package bank

import (
	"context"
	"errors"
	"testing"
)

// fakeRowStore is an in-memory stand-in for the bank_data table.
type fakeRowStore struct {
	rows     map[string][]byte
	puts     int
	failGets bool
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{rows: make(map[string][]byte)}
}

func (f *fakeRowStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if f.failGets {
		return nil, errors.New("connection refused")
	}
	return f.rows[key], nil
}

func (f *fakeRowStore) PutBlob(ctx context.Context, key string, data []byte) error {
	f.puts++
	f.rows[key] = data
	return nil
}

func (f *fakeRowStore) DeleteBlob(ctx context.Context, key string) error {
	delete(f.rows, key)
	return nil
}

func TestStoreLoadEmpty(t *testing.T) {
	store := NewStore(newFakeRowStore())
	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rec) != 0 {
		t.Errorf("Load() on empty store = %v, want empty record", rec)
	}
}

func TestStoreLoadFailure(t *testing.T) {
	rows := newFakeRowStore()
	rows.failGets = true
	store := NewStore(rows)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("Load() should surface persistence errors")
	}
}

func TestAddTokens(t *testing.T) {
	store := NewStore(newFakeRowStore())
	ctx := context.Background()

	balance, err := store.AddTokens(ctx, "settler", "42", WarToken, 3)
	if err != nil {
		t.Fatalf("AddTokens() error = %v", err)
	}
	if balance != 3 {
		t.Errorf("balance = %d, want 3", balance)
	}

	balance, err = store.AddTokens(ctx, "settler", "42", WarToken, 2)
	if err != nil {
		t.Fatalf("AddTokens() error = %v", err)
	}
	if balance != 5 {
		t.Errorf("balance after second add = %d, want 5", balance)
	}

	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative add error = %v, want ErrNegativeAmount", err)
	}
}

func TestRemoveTokensClampsAtZero(t *testing.T) {
	store := NewStore(newFakeRowStore())
	ctx := context.Background()

	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, 5); err != nil {
		t.Fatal(err)
	}
	balance, err := store.RemoveTokens(ctx, "settler", "42", WarToken, 8)
	if err != nil {
		t.Fatalf("RemoveTokens() error = %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0 (clamped)", balance)
	}
}

func TestRemoveTokensValidation(t *testing.T) {
	store := NewStore(newFakeRowStore())
	ctx := context.Background()

	if _, err := store.RemoveTokens(ctx, "settler", "42", WarToken, 1); !errors.Is(err, ErrNoBalance) {
		t.Errorf("remove without balance error = %v, want ErrNoBalance", err)
	}
	if _, err := store.RemoveTokens(ctx, "settler", "42", WarToken, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative remove error = %v, want ErrNegativeAmount", err)
	}
}

func TestUpdateMergePreservesUntouchedEntries(t *testing.T) {
	rows := newFakeRowStore()
	store := NewStore(rows)
	ctx := context.Background()

	if _, err := store.AddTokens(ctx, "officer", "7", LeadershipToken, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, 1); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Get("officer", "7", LeadershipToken); got != 4 {
		t.Errorf("untouched entry after later write = %d, want 4", got)
	}
	if got := rec.Get("settler", "42", WarToken); got != 1 {
		t.Errorf("written entry = %d, want 1", got)
	}
}

func TestUpdateWithoutSaveDoesNotPersist(t *testing.T) {
	rows := newFakeRowStore()
	store := NewStore(rows)
	ctx := context.Background()

	err := store.Update(ctx, func(rec Record) (bool, error) {
		rec.Add("settler", "42", WarToken, 99)
		return false, nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rows.puts != 0 {
		t.Errorf("puts = %d, want 0", rows.puts)
	}
}

func TestDropMember(t *testing.T) {
	store := NewStore(newFakeRowStore())
	ctx := context.Background()

	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddTokens(ctx, "officer", "42", EventToken, 1); err != nil {
		t.Fatal(err)
	}

	removed, err := store.DropMember(ctx, "42")
	if err != nil {
		t.Fatalf("DropMember() error = %v", err)
	}
	if !removed {
		t.Fatal("expected member to be removed")
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, role := range CompanyRoles {
		if _, ok := rec[role.Name]["42"]; ok {
			t.Errorf("member still present under %s after DropMember", role.Name)
		}
	}

	removed, err = store.DropMember(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second DropMember should report nothing removed")
	}
}

func TestClear(t *testing.T) {
	rows := newFakeRowStore()
	store := NewStore(rows)
	ctx := context.Background()

	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, 5); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec) != 0 {
		t.Errorf("record after Clear = %v, want empty", rec)
	}
}

func TestMemberBalancesAcrossRoles(t *testing.T) {
	store := NewStore(newFakeRowStore())
	ctx := context.Background()

	if _, err := store.AddTokens(ctx, "settler", "42", WarToken, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddTokens(ctx, "officer", "42", WarToken, 3); err != nil {
		t.Fatal(err)
	}

	totals, err := store.MemberBalances(ctx, "42")
	if err != nil {
		t.Fatalf("MemberBalances() error = %v", err)
	}
	if totals[WarToken] != 5 {
		t.Errorf("war total across roles = %d, want 5", totals[WarToken])
	}
	if totals[EventToken] != 0 {
		t.Errorf("event total = %d, want 0", totals[EventToken])
	}
}
