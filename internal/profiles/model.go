package profiles

import "time"

// Profile is the per-user record holding account-level fields and the
// metadata of every file the user has uploaded. At most one Profile
// exists per user; it is created lazily on the first upsert or upload.
type Profile struct {
	ID        string
	UserID    string
	UserName  string
	Company   string
	Files     []FileRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileRecord describes one uploaded object. It is embedded in a Profile
// and has no existence outside it. StorageKey is a weak reference into
// the object store: nothing enforces that the referenced object exists.
type FileRecord struct {
	ID           string
	OriginalName string
	Encoding     string
	MimeType     string
	SizeBytes    int64
	Bucket       string
	StorageKey   string
	Location     string
	CreatedAt    time.Time
}

// ProfileUpdate carries a partial update. Nil fields are left untouched;
// a non-nil pointer overwrites, so absence is distinguished from clear.
type ProfileUpdate struct {
	Company *string
}
