package store

import (
	"context"
	"fmt"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/id"
)

// Document is implemented by pointers to catalog records.
type Document[T any] interface {
	*T
	Base() *domain.Record
}

// Collection is the repository for one record type. Identities are
// generated here on insert; callers never choose them.
type Collection[T any, PT Document[T]] struct {
	entity   *Entity[T]
	idPrefix string
}

// NewCollection creates a collection storing documents under keyPrefix and
// issuing identities of the form idPrefix-<nanoid>.
func NewCollection[T any, PT Document[T]](s *Store, keyPrefix, idPrefix string) *Collection[T, PT] {
	return &Collection[T, PT]{
		entity:   NewEntity[T](s, keyPrefix),
		idPrefix: idPrefix,
	}
}

// Find returns every record in the collection.
func (c *Collection[T, PT]) Find(ctx context.Context) ([]*T, error) {
	return c.entity.All(ctx)
}

// FindByID returns the record with the given identity or ErrNotFound.
func (c *Collection[T, PT]) FindByID(ctx context.Context, recordID string) (*T, error) {
	if !id.Valid(c.idPrefix, recordID) {
		return nil, ErrNotFound
	}
	return c.entity.Get(ctx, recordID)
}

// FindBy returns every record whose index has value.
func (c *Collection[T, PT]) FindBy(ctx context.Context, index, value string) ([]*T, error) {
	return c.entity.ListByIndex(ctx, index, value)
}

// Insert assigns a new identity to record and stores it.
func (c *Collection[T, PT]) Insert(ctx context.Context, record *T) error {
	recordID, err := id.Generate(c.idPrefix)
	if err != nil {
		return err
	}

	base := PT(record).Base()
	base.SetID(recordID)
	base.InitTimestamps()

	if err := c.entity.Create(ctx, recordID, record); err != nil {
		return fmt.Errorf("insert %s: %w", c.idPrefix, err)
	}
	return nil
}

// Upsert replaces the record stored under the record's identity in place,
// inserting it under that identity if nothing is stored there yet. The
// original creation time is kept.
func (c *Collection[T, PT]) Upsert(ctx context.Context, record *T) error {
	base := PT(record).Base()
	if !id.Valid(c.idPrefix, base.ID) {
		return ErrInvalidInput.WithMessage("invalid " + c.idPrefix + " id")
	}

	_, err := c.entity.Put(ctx, base.ID, record, func(old *T) {
		if old == nil {
			base.InitTimestamps()
			return
		}
		base.CreatedAt = PT(old).Base().CreatedAt
		base.Touch()
	})
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", c.idPrefix, base.ID, err)
	}
	return nil
}

// Remove deletes the record with the given identity. Removing a missing
// record, or one whose identity this collection could never have issued,
// is not an error.
func (c *Collection[T, PT]) Remove(ctx context.Context, recordID string) error {
	if !id.Valid(c.idPrefix, recordID) {
		return nil
	}
	if err := c.entity.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("remove %s %s: %w", c.idPrefix, recordID, err)
	}
	return nil
}

// Count returns the number of records.
func (c *Collection[T, PT]) Count(ctx context.Context) (int, error) {
	return c.entity.Count(ctx)
}

// CountBy returns the number of records whose index has value.
func (c *Collection[T, PT]) CountBy(ctx context.Context, index, value string) (int, error) {
	return c.entity.CountByIndex(ctx, index, value)
}
