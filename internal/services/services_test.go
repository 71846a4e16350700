package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/memory"
	"fintrack/internal/ports"

	"golang.org/x/crypto/bcrypt"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, msg *amqp.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

func (f *fakePublisher) kinds() []amqp.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.EventKind, len(f.events))
	for i, e := range f.events {
		out[i] = e.Kind
	}
	return out
}

type countingStore struct {
	ports.Store
	mu    sync.Mutex
	lists int
}

func (c *countingStore) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.Store.ListTransactions(ctx, userID)
}

func newUser(t *testing.T, s ports.Store, name string) core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), core.User{Username: name, Email: name + "@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestTransactionService_Create(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil)
	u := newUser(t, store, "ada")
	ctx := context.Background()

	tests := []struct {
		name string
		in   TransactionInput
		err  error
		want core.Transaction
	}{
		{
			name: "defaults",
			in:   TransactionInput{Amount: "12,5"},
			want: core.Transaction{Amount: core.Money{Cents: 1250}, Type: core.TypeExpenses, Category: DefaultCategory},
		},
		{
			name: "timestamp date is normalized",
			in:   TransactionInput{Amount: "100", Type: "Income", Date: "2025-09-15T10:00:00Z", Category: " Salary "},
			want: core.Transaction{Amount: core.Money{Cents: 10000}, Type: core.TypeIncome, Date: "2025-09-15", Category: "Salary"},
		},
		{
			name: "invalid date is dropped",
			in:   TransactionInput{Amount: "3", Date: "15/09/2025", Month: "Sep/2025"},
			want: core.Transaction{Amount: core.Money{Cents: 300}, Type: core.TypeExpenses, Month: "Sep/2025", Category: DefaultCategory},
		},
		{name: "zero amount", in: TransactionInput{Amount: "0"}, err: core.ErrInvalidAmount},
		{name: "negative amount", in: TransactionInput{Amount: "-4"}, err: core.ErrInvalidAmount},
		{name: "unknown type", in: TransactionInput{Amount: "4", Type: "transfer"}, err: core.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Create(ctx, u.ID, tt.in)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			tt.want.ID, tt.want.UserID = got.ID, u.ID
			if got != tt.want {
				t.Fatalf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}

	if n := len(pub.kinds()); n != 3 {
		t.Fatalf("expected 3 events, got %d", n)
	}
}

func TestTransactionService_UpdateDelete(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub, nil)
	u := newUser(t, store, "ada")
	other := newUser(t, store, "bob")
	ctx := context.Background()

	created, err := svc.Create(ctx, u.ID, TransactionInput{Amount: "10", Category: "Food", Date: "2025-01-02"})
	if err != nil {
		t.Fatalf("create must succeed even when publishing fails: %v", err)
	}

	updated, err := svc.Update(ctx, u.ID, created.ID, TransactionInput{Amount: "11", Type: "income"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "" || updated.Date != "" || updated.Type != core.TypeIncome {
		t.Fatalf("update must replace every field, got %+v", updated)
	}

	if _, err := svc.Update(ctx, other.ID, created.ID, TransactionInput{Amount: "1"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("cross-user update: %v", err)
	}
	if err := svc.Delete(ctx, other.ID, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("cross-user delete: %v", err)
	}
	if err := svc.Delete(ctx, u.ID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, u.ID, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}

	want := []amqp.EventKind{amqp.TransactionCreated, amqp.TransactionUpdated, amqp.TransactionDeleted}
	got := pub.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestViewService_CachesAndInvalidates(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	views := NewViewService(store, cache.NewLRUCache[[]core.Transaction](10, time.Minute))
	txs := NewTransactionService(store, nil, views)
	u := newUser(t, store, "ada")
	ctx := context.Background()

	for _, in := range []TransactionInput{
		{Amount: "100", Type: "income", Date: "2025-09-01", Category: "Salary"},
		{Amount: "40", Date: "2025-09-03", Category: "Food"},
		{Amount: "15", Date: "2025-08-20", Category: "Food"},
	} {
		if _, err := txs.Create(ctx, u.ID, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	dash, err := views.Dashboard(ctx, u.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Months) != 2 || dash.Months[0].MonthKey != "Aug/2025" || dash.Months[1].Income.Cents != 10000 {
		t.Fatalf("months = %+v", dash.Months)
	}
	if dash.Summary.Balance.Cents != 4500 {
		t.Fatalf("balance = %d", dash.Summary.Balance.Cents)
	}

	hist, err := views.History(ctx, u.ID, core.Criteria{Category: "foo", MonthKey: "all"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Transactions) != 2 || hist.Total != 3 || hist.Summary.TotalExpenses.Cents != 5500 {
		t.Fatalf("history = %+v", hist)
	}
	if len(hist.MonthOptions) != 2 || hist.MonthOptions[0] != "Aug/2025" {
		t.Fatalf("month options = %v", hist.MonthOptions)
	}
	if store.lists != 1 {
		t.Fatalf("expected one store read, got %d", store.lists)
	}

	if _, err := txs.Create(ctx, u.ID, TransactionInput{Amount: "1", Date: "2025-10-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	dash, _ = views.Dashboard(ctx, u.ID)
	if len(dash.Months) != 3 || store.lists != 2 {
		t.Fatalf("write did not invalidate: months=%d lists=%d", len(dash.Months), store.lists)
	}
}

func TestViewService_StaleLoadDoesNotRepopulate(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	c := cache.NewLRUCache[[]core.Transaction](10, time.Minute)
	views := NewViewService(store, c)
	u := newUser(t, store, "ada")

	gen := views.generation(u.ID)
	views.Invalidate(u.ID)
	views.storeIfCurrent(u.ID, gen, []core.Transaction{{ID: 99}})
	if _, ok := c.Get(cacheKey(u.ID)); ok {
		t.Fatal("stale snapshot cached after invalidation")
	}
}

func newAuth(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc, err := NewAuthService(store, store, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenIssuer("0123456789abcdef", time.Hour))
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	return svc, store
}

func TestAuthService_RegisterLoginMe(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	var events []AuthEventKind
	svc.Subscribe(func(_ context.Context, ev AuthEvent) { events = append(events, ev.Kind) })

	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "123"}); !errors.Is(err, core.ErrPasswordTooShort) {
		t.Fatalf("short password: %v", err)
	}
	long := strings.Repeat("p", 73)
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: long}); !errors.Is(err, core.ErrPasswordTooLong) {
		t.Fatalf("long password: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: " ", Email: "x@example.com", Password: "secret"}); !errors.Is(err, core.ErrEmptyUsername) {
		t.Fatalf("empty username: %v", err)
	}

	u, err := svc.Register(ctx, RegisterInput{Username: "ada", Name: "Ada", Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.PasswordHash == "secret" {
		t.Fatal("password stored in clear")
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "other@example.com", Password: "secret"}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate: %v", err)
	}

	if _, err := svc.Login(ctx, "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
	sess, err := svc.Login(ctx, "ada", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" || sess.User.ID != u.ID {
		t.Fatalf("session = %+v", sess)
	}

	me, err := svc.Me(ctx, u.ID)
	if err != nil || me.Email != "ada@example.com" || me.Name != "Ada" {
		t.Fatalf("me = %+v, %v", me, err)
	}

	if len(events) != 2 || events[0] != UserRegistered || events[1] != UserLoggedIn {
		t.Fatalf("events = %v", events)
	}
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	txs := NewTransactionService(store, nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := txs.Create(ctx, u.ID, TransactionInput{Amount: "5"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	var deleted []int64
	svc.Subscribe(func(_ context.Context, ev AuthEvent) {
		if ev.Kind == UserDeleted {
			deleted = append(deleted, ev.User.ID)
		}
	})

	if _, err := svc.DeleteAccount(ctx, u.ID, "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	removed, err := svc.DeleteAccount(ctx, u.ID, "secret")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d", removed)
	}
	if _, err := svc.Me(ctx, u.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("me after delete: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != u.ID {
		t.Fatalf("observers saw %v", deleted)
	}
}
