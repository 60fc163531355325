package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store storage.Store, name string) string {
	t.Helper()

	user := models.NewUser(name, name+"@example.com", "555-0100", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user.ID
}

func val(f float64) *float64 { return &f }

func shareMap(expense *models.Expense) map[string]float64 {
	m := make(map[string]float64, len(expense.Shares))
	for _, s := range expense.Shares {
		m[s.UserID] = s.Share
	}
	return m
}

func expenseCount(t *testing.T, store storage.Store, userIDs ...string) int {
	t.Helper()

	seen := map[string]bool{}
	for _, id := range userIDs {
		expenses, err := store.ListExpensesForUser(context.Background(), id)
		if err != nil {
			t.Fatalf("ListExpensesForUser failed: %v", err)
		}
		for _, e := range expenses {
			seen[e.ID] = true
		}
	}
	return len(seen)
}

func storedExpense(t *testing.T, store storage.Store, userID, expenseID string) *models.Expense {
	t.Helper()

	expenses, err := store.ListExpensesForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListExpensesForUser failed: %v", err)
	}
	for _, e := range expenses {
		if e.ID == expenseID {
			return e
		}
	}
	t.Fatalf("expense %s not stored", expenseID)
	return nil
}

// recordingCache is an in-memory BalanceCache that records invalidations.
type recordingCache struct {
	entries     map[string][]BalanceEntry
	generations map[string]int64
	invalidated []string
	gets        int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]BalanceEntry{}, generations: map[string]int64{}}
}

func (c *recordingCache) GetBalance(_ context.Context, userID string) ([]BalanceEntry, bool, error) {
	c.gets++
	entries, ok := c.entries[userID]
	return entries, ok, nil
}

func (c *recordingCache) Generation(_ context.Context, userID string) (int64, error) {
	return c.generations[userID], nil
}

func (c *recordingCache) SetBalance(_ context.Context, userID string, gen int64, entries []BalanceEntry) error {
	if c.generations[userID] == gen {
		c.entries[userID] = entries
	}
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		delete(c.entries, id)
		c.generations[id]++
	}
	c.invalidated = append(c.invalidated, userIDs...)
	return nil
}

// failingStore wraps a store so that share inserts fail after failAfter successes.
type failingStore struct {
	storage.Store
	failAfter int
}

var errInjected = errors.New("injected share failure")

func (s *failingStore) RunInTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	return s.Store.RunInTx(ctx, func(tx storage.LedgerTx) error {
		return fn(&failingTx{LedgerTx: tx, failAfter: s.failAfter})
	})
}

type failingTx struct {
	storage.LedgerTx
	failAfter int
	inserted  int
}

func (tx *failingTx) InsertShare(ctx context.Context, share *models.ParticipantShare) error {
	if tx.inserted >= tx.failAfter {
		return errInjected
	}
	tx.inserted++
	return tx.LedgerTx.InsertShare(ctx, share)
}

func TestCreateExpense(t *testing.T) {
	store := newTestStore(t)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")
	svc := NewExpenseService(store, nil, nil)

	tests := []struct {
		name    string
		req     CreateExpenseRequest
		want    map[string]float64
		wantErr error
	}{
		{
			name: "equal split between creator and one participant",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Dinner", Amount: 100, SplitMethod: models.SplitEqual,
				Participants: []calculator.ParticipantInput{{UserID: alice}, {UserID: bob}},
			},
			want: map[string]float64{alice: 50, bob: 50},
		},
		{
			name: "percentage split",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Groceries", Amount: 90, SplitMethod: models.SplitPercentage,
				Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(60)}, {UserID: bob, Value: val(40)}},
			},
			want: map[string]float64{alice: 54, bob: 36},
		},
		{
			name: "exact split that adds up",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Tickets", Amount: 100, SplitMethod: models.SplitExact,
				Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(70)}, {UserID: bob, Value: val(30)}},
			},
			want: map[string]float64{alice: 70, bob: 30},
		},
		{
			name: "creator is appended before defaults are computed",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Taxi", Amount: 90, SplitMethod: models.SplitEqual,
				Participants: []calculator.ParticipantInput{{UserID: bob}, {UserID: carol}},
			},
			want: map[string]float64{bob: 30, carol: 30, alice: 30},
		},
		{
			name: "empty participant list leaves the creator alone",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Coffee", Amount: 4.5, SplitMethod: models.SplitPercentage,
			},
			want: map[string]float64{alice: 4.5},
		},
		{
			name: "exact split that does not add up",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Tickets", Amount: 100, SplitMethod: models.SplitExact,
				Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(70)}, {UserID: bob, Value: val(20)}},
			},
			wantErr: ErrShareMismatch,
		},
		{
			name: "percentages that do not add up",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Rent", Amount: 100, SplitMethod: models.SplitPercentage,
				Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(50)}, {UserID: bob, Value: val(30)}},
			},
			wantErr: ErrShareMismatch,
		},
		{
			name:    "zero amount",
			req:     CreateExpenseRequest{CreatorID: alice, Description: "Nothing", Amount: 0, SplitMethod: models.SplitEqual},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name:    "NaN amount",
			req:     CreateExpenseRequest{CreatorID: alice, Description: "Nothing", Amount: math.NaN(), SplitMethod: models.SplitEqual},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name:    "blank description",
			req:     CreateExpenseRequest{CreatorID: alice, Description: "   ", Amount: 10, SplitMethod: models.SplitEqual},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name:    "unknown split method",
			req:     CreateExpenseRequest{CreatorID: alice, Description: "Lunch", Amount: 10, SplitMethod: "shares"},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name: "duplicate participant",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Lunch", Amount: 10, SplitMethod: models.SplitEqual,
				Participants: []calculator.ParticipantInput{{UserID: bob}, {UserID: bob}},
			},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name: "negative exact value",
			req: CreateExpenseRequest{
				CreatorID: alice, Description: "Lunch", Amount: 10, SplitMethod: models.SplitExact,
				Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(20)}, {UserID: bob, Value: val(-10)}},
			},
			wantErr: ErrInvalidExpenseInput,
		},
		{
			name:    "missing creator",
			req:     CreateExpenseRequest{Description: "Lunch", Amount: 10, SplitMethod: models.SplitEqual},
			wantErr: ErrInvalidExpenseInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense, err := svc.CreateExpense(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateExpense error = %v, want %v", err, tt.wantErr)
				}
				if expense != nil {
					t.Errorf("expected nil expense on error, got %+v", expense)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}

			if expense.ID == "" || expense.CreatedAt == 0 {
				t.Errorf("expected generated id and timestamp, got %+v", expense)
			}
			if expense.CreatedBy != tt.req.CreatorID || expense.SplitMethod != tt.req.SplitMethod {
				t.Errorf("unexpected expense header: %+v", expense)
			}

			got := shareMap(expense)
			if len(got) != len(tt.want) {
				t.Fatalf("shares = %v, want %v", got, tt.want)
			}
			var sum float64
			for userID, want := range tt.want {
				if math.Abs(got[userID]-want) > 1e-9 {
					t.Errorf("share of %s = %v, want %v", userID, got[userID], want)
				}
				sum += got[userID]
			}
			if math.Abs(sum-tt.req.Amount) > 0.01 {
				t.Errorf("shares sum to %v, want %v", sum, tt.req.Amount)
			}

			stored := storedExpense(t, store, expense.CreatedBy, expense.ID)
			if len(stored.Shares) != len(expense.Shares) {
				t.Errorf("stored %d shares, returned %d", len(stored.Shares), len(expense.Shares))
			}
		})
	}
}

func TestCreateExpenseEqualSharesSumToAmount(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store, nil, nil)

	creator := createUser(t, store, "u0")
	participants := []calculator.ParticipantInput{{UserID: creator}}
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		participants = append(participants, calculator.ParticipantInput{UserID: createUser(t, store, name)})
	}

	for _, amount := range []float64{100, 0.01, 33.33, 1234567.89} {
		expense, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
			CreatorID: creator, Description: "Split", Amount: amount,
			SplitMethod: models.SplitEqual, Participants: participants,
		})
		if err != nil {
			t.Fatalf("CreateExpense(%v) failed: %v", amount, err)
		}

		var sum float64
		for _, s := range expense.Shares {
			if math.Abs(s.Share-amount/7) > 1e-9 {
				t.Errorf("amount %v: share %v, want %v", amount, s.Share, amount/7)
			}
			sum += s.Share
		}
		if math.Abs(sum-amount) > 0.01 {
			t.Errorf("amount %v: shares sum to %v", amount, sum)
		}
	}
}

func TestCreateExpenseUnknownParticipant(t *testing.T) {
	store := newTestStore(t)
	alice := createUser(t, store, "alice")
	svc := NewExpenseService(store, nil, nil)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: alice, Description: "Lunch", Amount: 30, SplitMethod: models.SplitEqual,
		Participants: []calculator.ParticipantInput{{UserID: "ghost-1"}, {UserID: "ghost-2"}},
	})

	var unknown *UnknownParticipantError
	if !errors.As(err, &unknown) {
		t.Fatalf("CreateExpense error = %v, want UnknownParticipantError", err)
	}
	if unknown.UserID != "ghost-1" {
		t.Errorf("UnknownParticipantError.UserID = %q, want first missing id ghost-1", unknown.UserID)
	}
	if n := expenseCount(t, store, alice); n != 0 {
		t.Errorf("expected no expenses after failure, got %d", n)
	}
}

func TestCreateExpenseUnknownCreator(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store, nil, nil)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: "nobody", Description: "Lunch", Amount: 30, SplitMethod: models.SplitEqual,
	})

	var unknown *UnknownParticipantError
	if !errors.As(err, &unknown) || unknown.UserID != "nobody" {
		t.Fatalf("CreateExpense error = %v, want UnknownParticipantError for nobody", err)
	}
}

func TestCreateExpenseShareInsertFailureRollsBack(t *testing.T) {
	store := newTestStore(t)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	svc := NewExpenseService(&failingStore{Store: store, failAfter: 1}, nil, nil)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: alice, Description: "Hotel", Amount: 200, SplitMethod: models.SplitEqual,
		Participants: []calculator.ParticipantInput{{UserID: alice}, {UserID: bob}},
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("CreateExpense error = %v, want %v", err, errInjected)
	}
	if n := expenseCount(t, store, alice, bob); n != 0 {
		t.Errorf("expected no expenses after rollback, got %d", n)
	}
}

func TestCreateExpenseInvalidatesCache(t *testing.T) {
	store := newTestStore(t)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	cache := newRecordingCache()
	svc := NewExpenseService(store, cache, nil)

	cache.entries[bob] = []BalanceEntry{{ExpenseID: "stale"}}

	_, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: alice, Description: "Dinner", Amount: 100, SplitMethod: models.SplitEqual,
		Participants: []calculator.ParticipantInput{{UserID: bob}},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	slices.Sort(cache.invalidated)
	want := []string{alice, bob}
	slices.Sort(want)
	if !slices.Equal(cache.invalidated, want) {
		t.Errorf("invalidated = %v, want %v", cache.invalidated, want)
	}
	if _, ok := cache.entries[bob]; ok {
		t.Error("expected bob's cached balance to be dropped")
	}
}

func TestCreateExpenseFailureKeepsCache(t *testing.T) {
	store := newTestStore(t)
	alice := createUser(t, store, "alice")
	cache := newRecordingCache()
	svc := NewExpenseService(store, cache, nil)

	_, err := svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: alice, Description: "Dinner", Amount: 100, SplitMethod: models.SplitExact,
		Participants: []calculator.ParticipantInput{{UserID: alice, Value: val(10)}},
	})
	// A lone participant takes the full amount whatever value was given.
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	cache.invalidated = nil

	_, err = svc.CreateExpense(context.Background(), CreateExpenseRequest{
		CreatorID: alice, Description: "Dinner", Amount: 100, SplitMethod: models.SplitEqual,
		Participants: []calculator.ParticipantInput{{UserID: "ghost"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown participant")
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("expected no invalidation after failure, got %v", cache.invalidated)
	}
}
