package reservationsvc

import (
	"context"
	"errors"
	"time"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/metrics"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrAlreadyReserved ErrCode = "ALREADY_RESERVED"
	ErrNotReserved     ErrCode = "NOT_RESERVED"
	ErrReservedByOther ErrCode = "RESERVED_BY_OTHER"
	ErrOutOfStock      ErrCode = "OUT_OF_STOCK"
	ErrAlreadyInStock  ErrCode = "ALREADY_IN_STOCK"
	ErrStaleWrite      ErrCode = "STALE_WRITE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Clock supplies the time reservation expiry is evaluated against.
type Clock interface{ Now() time.Time }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// BookStore is the persistence surface the engine needs. CompareAndSwap must
// apply next atomically iff the row still equals expected.
type BookStore interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	CompareAndSwap(ctx context.Context, expected, next *model.Book) (bool, error)
}

type UserStore interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Reserve places a soft hold on an available book for userID.
	Reserve(ctx context.Context, bookID, userID int64) error

	// Unreserve lifts the caller's own live reservation.
	Unreserve(ctx context.Context, bookID, userID int64) error

	// Give hands the book to userID and clears any reservation; librarian action.
	Give(ctx context.Context, bookID, userID int64) error

	// Take receives a handed-out book back into stock; librarian action.
	Take(ctx context.Context, bookID int64) error
}

// Retry budget for optimistic-write conflicts. A transition that keeps losing
// the swap surfaces STALE_WRITE instead of looping.
const maxAttempts = 3

type service struct {
	books BookStore
	users UserStore
	ttl   time.Duration
	clk   Clock
}

func New(books BookStore, users UserStore, ttl time.Duration, clk Clock) Service {
	return &service{books: books, users: users, ttl: ttl, clk: clk}
}

func (s *service) Reserve(ctx context.Context, bookID, userID int64) error {
	return s.transition(ctx, "reserve", bookID, func(b *model.Book, now time.Time) error {
		if b.IsReserved(now, s.ttl) {
			return makeErr(ErrAlreadyReserved)
		}
		if !b.InStock {
			return makeErr(ErrOutOfStock)
		}
		// An expired reservation left on the row is simply overwritten.
		b.ReservedAt = now.Unix()
		b.ReservedBy = &userID
		return nil
	})
}

func (s *service) Unreserve(ctx context.Context, bookID, userID int64) error {
	return s.transition(ctx, "unreserve", bookID, func(b *model.Book, now time.Time) error {
		if !b.IsReserved(now, s.ttl) {
			return makeErr(ErrNotReserved)
		}
		if b.ReservedBy == nil || *b.ReservedBy != userID {
			return makeErr(ErrReservedByOther)
		}
		b.ReservedAt = 0
		b.ReservedBy = nil
		return nil
	})
}

func (s *service) Give(ctx context.Context, bookID, userID int64) error {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return makeErr(ErrUserNotFound)
	}
	return s.transition(ctx, "give", bookID, func(b *model.Book, now time.Time) error {
		if b.IsReserved(now, s.ttl) && (b.ReservedBy == nil || *b.ReservedBy != userID) {
			return makeErr(ErrReservedByOther)
		}
		if !b.InStock {
			return makeErr(ErrOutOfStock)
		}
		b.InStock = false
		b.OwnerID = &userID
		b.ReservedAt = 0
		b.ReservedBy = nil
		return nil
	})
}

func (s *service) Take(ctx context.Context, bookID int64) error {
	return s.transition(ctx, "take", bookID, func(b *model.Book, now time.Time) error {
		if b.InStock {
			return makeErr(ErrAlreadyInStock)
		}
		// Reservation state stays as-is: a freshly returned book is not
		// implicitly re-reserved.
		b.InStock = true
		b.OwnerID = nil
		return nil
	})
}

// transition runs one guarded state change: fresh read, precondition check,
// compare-and-swap against the observed state. A lost swap means another
// writer got there first, so the whole check is redone from a fresh read.
func (s *service) transition(ctx context.Context, op string, bookID int64, step func(b *model.Book, now time.Time) error) error {
	err := s.run(ctx, bookID, step)
	metrics.ReservationOps.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func (s *service) run(ctx context.Context, bookID int64, step func(b *model.Book, now time.Time) error) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cur, err := s.books.ByID(ctx, bookID)
		if err != nil {
			return err
		}
		if cur == nil {
			return makeErr(ErrBookNotFound)
		}

		expected := *cur
		if err := step(cur, s.clk.Now()); err != nil {
			return err
		}

		ok, err := s.books.CompareAndSwap(ctx, &expected, cur)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return makeErr(ErrStaleWrite)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch Code(err) {
	case ErrBookNotFound, ErrUserNotFound:
		return "not_found"
	case ErrReservedByOther:
		return "forbidden"
	case ErrAlreadyReserved, ErrNotReserved, ErrOutOfStock, ErrAlreadyInStock, ErrStaleWrite:
		return "conflict"
	}
	return "error"
}
