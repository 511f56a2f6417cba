package profiles

import "context"

// Repo defines persistence operations for profiles and their embedded
// file lists. File lists are ordered newest-first; InsertFile prepends.
// All mutating operations persist immediately and return the resulting
// Profile. Concurrent updates to the same user's profile are
// last-write-wins; the store only guarantees atomicity per statement.
type Repo interface {
	GetByUser(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, userID string, update ProfileUpdate) (Profile, error)
	InsertFile(ctx context.Context, userID string, rec FileRecord) (Profile, error)
	RemoveFile(ctx context.Context, userID, fileID string) (Profile, error)
	GetFile(ctx context.Context, userID, fileID string) (FileRecord, error)
}
