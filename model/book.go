// model/book.go
package model

import "time"

// Book is a single physical book. Reservation and possession state live on
// the row itself: ReservedAt is a unix timestamp (0 = no reservation) and
// OwnerID is set while the book is handed out (InStock = false).
type Book struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AuthorID    *int64 `json:"author_id"`
	PublisherID *int64 `json:"publisher_id"`
	GenreID     *int64 `json:"genre_id"`
	ReservedAt  int64  `json:"reserved_at"`
	ReservedBy  *int64 `json:"reserved_by,omitempty"`
	InStock     bool   `json:"in_stock"`
	OwnerID     *int64 `json:"owner_id,omitempty"`
}

// IsReserved reports whether the book carries a live reservation at now.
// Expiry is lazy: once the TTL elapses the stale ReservedAt/ReservedBy
// fields simply stop counting, nothing sweeps them.
func (b *Book) IsReserved(now time.Time, ttl time.Duration) bool {
	if b.ReservedAt == 0 {
		return false
	}
	return time.Unix(b.ReservedAt, 0).Add(ttl).After(now)
}

// BookPatch is a partial book update; nil fields keep the current value.
// Reservation and stock state belong to the reservation engine and are not
// patchable.
type BookPatch struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	AuthorID    *int64  `json:"author_id"`
	PublisherID *int64  `json:"publisher_id"`
	GenreID     *int64  `json:"genre_id"`
}

// Apply merges the patch over b and returns the result.
func (p BookPatch) Apply(b Book) Book {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.AuthorID != nil {
		b.AuthorID = p.AuthorID
	}
	if p.PublisherID != nil {
		b.PublisherID = p.PublisherID
	}
	if p.GenreID != nil {
		b.GenreID = p.GenreID
	}
	return b
}
