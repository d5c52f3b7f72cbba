package core

import (
	"context"
)

// ProviderClient defines the interface for talking to the email provider.
// Implementations normalize every transport response into the core types
// before it crosses this boundary.
type ProviderClient interface {
	// Send submits one message and returns the provider-issued id.
	Send(ctx context.Context, payload *SendPayload) (string, error)

	// ListDomains returns the sending domains registered with the provider.
	ListDomains(ctx context.Context) ([]Domain, error)

	// ListEmails returns recent message metadata, newest first. Body content
	// is not included; returned records have unfetched HTML/Text.
	ListEmails(ctx context.Context, limit int) ([]*EmailRecord, bool, error)

	// GetEmail returns the full record for one message. HTML/Text are always
	// fetched in the result, empty when the provider has none.
	GetEmail(ctx context.Context, id string) (*EmailRecord, error)
}

// EmailStore defines the interface for the local email cache.
type EmailStore interface {
	// Get retrieves a record by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*EmailRecord, error)

	// Save upserts a record by id. On update every field is overwritten
	// except HTML/Text, which are only overwritten when the incoming record
	// carries a fetched value. CachedAt is assigned by the store.
	Save(ctx context.Context, record *EmailRecord) error

	// List returns a page of records ordered newest created_at first,
	// together with the total record count.
	List(ctx context.Context, limit, offset int) ([]*EmailRecord, int, error)

	// HasFullDetails reports whether the record's body has been hydrated.
	HasFullDetails(ctx context.Context, id string) (bool, error)

	// BulkSave applies Save per record and returns how many succeeded.
	// One failing record does not abort the batch.
	BulkSave(ctx context.Context, records []*EmailRecord) int

	// Cleanup deletes records cached more than ageDays ago and returns the
	// number removed.
	Cleanup(ctx context.Context, ageDays int) (int64, error)
}
