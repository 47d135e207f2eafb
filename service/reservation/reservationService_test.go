package reservationsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mityuk17/library-service-api/model"
)

// fakeStore applies the same compare-and-swap contract the SQL repository
// implements: the swap succeeds only when the stored row still matches the
// expected prior state.

type fakeStore struct {
	mu    sync.Mutex
	books map[int64]model.Book
	users map[int64]model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{books: map[int64]model.Book{}, users: map[int64]model.User{}}
}

func (f *fakeStore) ByID(ctx context.Context, id int64) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	cp := b
	return &cp, nil
}

func (f *fakeStore) CompareAndSwap(ctx context.Context, expected, next *model.Book) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.books[expected.ID]
	if !ok {
		return false, nil
	}
	if cur.ReservedAt != expected.ReservedAt || cur.InStock != expected.InStock ||
		!sameID(cur.ReservedBy, expected.ReservedBy) || !sameID(cur.OwnerID, expected.OwnerID) {
		return false, nil
	}
	f.books[next.ID] = *next
	return true, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type fakeUsers struct{ f *fakeStore }

func (u fakeUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()
	usr, ok := u.f.users[id]
	if !ok {
		return nil, nil
	}
	cp := usr
	return &cp, nil
}

type fakeClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

const ttl = time.Hour

func setup(t *testing.T) (*fakeStore, *fakeClock, Service) {
	t.Helper()
	f := newFakeStore()
	f.books[1] = model.Book{ID: 1, Name: "Solaris", InStock: true}
	f.users[7] = model.User{ID: 7, Login: "reader7", Role: model.RoleUser, Active: true}
	f.users[8] = model.User{ID: 8, Login: "reader8", Role: model.RoleUser, Active: true}
	clk := &fakeClock{at: time.Unix(1_000, 0)}
	return f, clk, New(f, fakeUsers{f}, ttl, clk)
}

func requireInvariant(t *testing.T, b model.Book) {
	t.Helper()
	require.Equal(t, b.ReservedAt != 0, b.ReservedBy != nil,
		"reserved_by must be set iff reserved_at is nonzero")
	require.Equal(t, !b.InStock, b.OwnerID != nil,
		"owner_id must be set iff the book is out of stock")
}

func TestReserveRoundTrip(t *testing.T) {
	ctx := context.Background()
	f, clk, svc := setup(t)

	require.NoError(t, svc.Reserve(ctx, 1, 7))
	b := f.books[1]
	require.Equal(t, clk.Now().Unix(), b.ReservedAt)
	require.NotNil(t, b.ReservedBy)
	require.Equal(t, int64(7), *b.ReservedBy)
	requireInvariant(t, b)

	require.NoError(t, svc.Unreserve(ctx, 1, 7))
	b = f.books[1]
	require.Zero(t, b.ReservedAt)
	require.Nil(t, b.ReservedBy)
	requireInvariant(t, b)
}

func TestReserveConflicts(t *testing.T) {
	ctx := context.Background()
	f, _, svc := setup(t)

	require.NoError(t, svc.Reserve(ctx, 1, 7))
	err := svc.Reserve(ctx, 1, 8)
	require.Equal(t, ErrAlreadyReserved, Code(err))

	out := f.books[1]
	out.InStock = false
	uid := int64(9)
	out.OwnerID = &uid
	out.ReservedAt = 0
	out.ReservedBy = nil
	f.books[1] = out
	require.Equal(t, ErrOutOfStock, Code(svc.Reserve(ctx, 1, 8)))

	require.Equal(t, ErrBookNotFound, Code(svc.Reserve(ctx, 42, 7)))
}

func TestUnreserveGuards(t *testing.T) {
	ctx := context.Background()
	_, clk, svc := setup(t)

	require.Equal(t, ErrNotReserved, Code(svc.Unreserve(ctx, 1, 7)))

	require.NoError(t, svc.Reserve(ctx, 1, 7))
	require.Equal(t, ErrReservedByOther, Code(svc.Unreserve(ctx, 1, 8)))

	// Expired holds cannot be lifted either, there is nothing left to lift.
	clk.advance(ttl + time.Second)
	require.Equal(t, ErrNotReserved, Code(svc.Unreserve(ctx, 1, 7)))
}

func TestLazyExpiry(t *testing.T) {
	ctx := context.Background()
	f, clk, svc := setup(t)

	require.NoError(t, svc.Reserve(ctx, 1, 7))
	clk.advance(ttl + time.Second)

	// The stale fields are still on the row, but the hold no longer blocks
	// another user.
	require.NotZero(t, f.books[1].ReservedAt)
	require.NoError(t, svc.Reserve(ctx, 1, 8))

	b := f.books[1]
	require.NotNil(t, b.ReservedBy)
	require.Equal(t, int64(8), *b.ReservedBy)
	require.Equal(t, clk.Now().Unix(), b.ReservedAt)
	requireInvariant(t, b)
}

func TestGiveHonorsLiveReservation(t *testing.T) {
	ctx := context.Background()
	f, clk, svc := setup(t)

	require.NoError(t, svc.Reserve(ctx, 1, 7))

	require.Equal(t, ErrReservedByOther, Code(svc.Give(ctx, 1, 8)))

	require.NoError(t, svc.Give(ctx, 1, 7))
	b := f.books[1]
	require.False(t, b.InStock)
	require.NotNil(t, b.OwnerID)
	require.Equal(t, int64(7), *b.OwnerID)
	require.Zero(t, b.ReservedAt)
	require.Nil(t, b.ReservedBy)
	requireInvariant(t, b)

	// Once expired, a leftover reservation does not block a give either.
	f.books[1] = model.Book{ID: 1, Name: "Solaris", InStock: true, ReservedAt: clk.Now().Unix()}
	rb := int64(7)
	withRes := f.books[1]
	withRes.ReservedBy = &rb
	f.books[1] = withRes
	clk.advance(ttl + time.Second)
	require.NoError(t, svc.Give(ctx, 1, 8))
	requireInvariant(t, f.books[1])
}

func TestGiveGuards(t *testing.T) {
	ctx := context.Background()
	f, _, svc := setup(t)

	require.Equal(t, ErrUserNotFound, Code(svc.Give(ctx, 1, 99)))

	require.NoError(t, svc.Give(ctx, 1, 7))
	require.Equal(t, ErrOutOfStock, Code(svc.Give(ctx, 1, 8)))
	requireInvariant(t, f.books[1])
}

func TestTake(t *testing.T) {
	ctx := context.Background()
	f, _, svc := setup(t)

	require.Equal(t, ErrAlreadyInStock, Code(svc.Take(ctx, 1)))

	require.NoError(t, svc.Give(ctx, 1, 7))
	require.NoError(t, svc.Take(ctx, 1))
	b := f.books[1]
	require.True(t, b.InStock)
	require.Nil(t, b.OwnerID)
	requireInvariant(t, b)
}

// The scenario from the lifecycle design: reserve, give to the reserver,
// then a second give bounces off the held book.
func TestReserveThenGiveScenario(t *testing.T) {
	ctx := context.Background()
	f, clk, svc := setup(t)

	require.NoError(t, svc.Reserve(ctx, 1, 7))
	b := f.books[1]
	require.Equal(t, clk.Now().Unix(), b.ReservedAt)

	require.NoError(t, svc.Give(ctx, 1, 7))
	b = f.books[1]
	require.False(t, b.InStock)
	require.Equal(t, int64(7), *b.OwnerID)
	require.Zero(t, b.ReservedAt)

	require.Equal(t, ErrOutOfStock, Code(svc.Give(ctx, 1, 8)))
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	f, _, svc := setup(t)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, uid := range []int64{7, 8} {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			errs <- svc.Reserve(ctx, 1, uid)
		}(uid)
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case Code(err) == ErrAlreadyReserved:
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok, "exactly one reservation must win")
	require.Equal(t, 1, conflict)
	requireInvariant(t, f.books[1])
}

// flakyStore drops the first n swaps to simulate rows changing between the
// read and the write.
type flakyStore struct {
	*fakeStore
	mu    sync.Mutex
	drops int
}

func (s *flakyStore) CompareAndSwap(ctx context.Context, expected, next *model.Book) (bool, error) {
	s.mu.Lock()
	drop := s.drops > 0
	if drop {
		s.drops--
	}
	s.mu.Unlock()
	if drop {
		return false, nil
	}
	return s.fakeStore.CompareAndSwap(ctx, expected, next)
}

func TestSwapRetry(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.books[1] = model.Book{ID: 1, Name: "Solaris", InStock: true}
	f.users[7] = model.User{ID: 7, Active: true, Role: model.RoleUser}
	clk := &fakeClock{at: time.Unix(1_000, 0)}

	// One lost swap: the engine re-reads and succeeds on the next attempt.
	flaky := &flakyStore{fakeStore: f, drops: 1}
	svc := New(flaky, fakeUsers{f}, ttl, clk)
	require.NoError(t, svc.Reserve(ctx, 1, 7))

	// Permanent contention: the retry budget runs out and surfaces a conflict.
	f.books[2] = model.Book{ID: 2, Name: "Ubik", InStock: true}
	flaky = &flakyStore{fakeStore: f, drops: maxAttempts}
	svc = New(flaky, fakeUsers{f}, ttl, clk)
	require.Equal(t, ErrStaleWrite, Code(svc.Reserve(ctx, 2, 7)))
}
