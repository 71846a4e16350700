package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ports"

	"golang.org/x/sync/singleflight"
)

// State is the explicit per-request input of every derived view: one
// user's transactions as stored, newest first. It must not be mutated.
type State struct {
	UserID       int64
	Transactions []core.Transaction
}

type Dashboard struct {
	Months  []core.MonthSummary
	Summary core.Summary
}

type History struct {
	Transactions []core.Transaction
	Summary      core.Summary
	// MonthOptions lists every month key of the user's data, not only the
	// filtered rows, so the month selector never shrinks.
	MonthOptions []string
	Total        int
}

func (s State) Dashboard() Dashboard {
	return Dashboard{
		Months:  core.Aggregate(s.Transactions),
		Summary: core.Summarize(s.Transactions),
	}
}

func (s State) History(c core.Criteria) History {
	rows := core.Filter(s.Transactions, c)
	return History{
		Transactions: rows,
		Summary:      core.Summarize(rows),
		MonthOptions: core.SortedMonthKeys(core.AvailableMonthKeys(s.Transactions)),
		Total:        len(s.Transactions),
	}
}

// ViewService loads State through a per-user cache. Concurrent misses for
// the same user share one store read.
type ViewService struct {
	store ports.TransactionStore
	cache cache.Cache[[]core.Transaction]
	group singleflight.Group

	mu  sync.Mutex
	gen map[int64]uint64
}

func NewViewService(store ports.TransactionStore, c cache.Cache[[]core.Transaction]) *ViewService {
	return &ViewService{store: store, cache: c, gen: make(map[int64]uint64)}
}

func cacheKey(userID int64) string {
	return "tx:" + strconv.FormatInt(userID, 10)
}

func (v *ViewService) generation(userID int64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen[userID]
}

func (v *ViewService) storeIfCurrent(userID int64, gen uint64, ts []core.Transaction) {
	if v.cache == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gen[userID] == gen {
		v.cache.Set(cacheKey(userID), ts)
	}
}

// Invalidate drops the cached snapshot. A load that started before the
// call will not repopulate the cache.
func (v *ViewService) Invalidate(userID int64) {
	v.mu.Lock()
	v.gen[userID]++
	v.mu.Unlock()
	v.group.Forget(cacheKey(userID))
	if v.cache != nil {
		v.cache.Delete(cacheKey(userID))
	}
}

func (v *ViewService) State(ctx context.Context, userID int64) (State, error) {
	key := cacheKey(userID)
	if v.cache != nil {
		if ts, ok := v.cache.Get(key); ok {
			return State{UserID: userID, Transactions: ts}, nil
		}
	}

	res, err, _ := v.group.Do(key, func() (any, error) {
		gen := v.generation(userID)
		ts, err := v.store.ListTransactions(ctx, userID)
		if err != nil {
			return nil, err
		}
		v.storeIfCurrent(userID, gen, ts)
		return ts, nil
	})
	if err != nil {
		return State{}, fmt.Errorf("load transactions: %w", err)
	}
	return State{UserID: userID, Transactions: res.([]core.Transaction)}, nil
}

func (v *ViewService) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	st, err := v.State(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return st.Dashboard(), nil
}

func (v *ViewService) History(ctx context.Context, userID int64, c core.Criteria) (History, error) {
	st, err := v.State(ctx, userID)
	if err != nil {
		return History{}, err
	}
	return st.History(c), nil
}
