package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. File ordering relies on the
// position sequence: higher position means more recently inserted, so
// newest-first reads survive created_at ties.
type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `
SELECT p.id, p.user_id, p.company, u.full_name, p.created_at, p.updated_at
FROM profiles p
LEFT JOIN users u ON u.id = p.user_id`

// GetByUser returns the profile for a user with its file list and the
// owner's display name projected from users.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) (Profile, error) {
	const query = profileColumns + `
WHERE p.user_id = $1
LIMIT 1`
	profile, err := r.scanProfile(ctx, query, userID)
	if err != nil {
		return Profile{}, err
	}
	files, err := r.listFiles(ctx, profile.ID)
	if err != nil {
		return Profile{}, err
	}
	profile.Files = files
	return profile, nil
}

// Upsert creates the profile if absent, otherwise merges the supplied
// fields. COALESCE keeps existing values for fields absent from the
// update, so a nil pointer never overwrites.
func (r *PGRepo) Upsert(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	const query = `
INSERT INTO profiles (id, user_id, company, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  company = COALESCE($3, profiles.company),
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, uuid.NewString(), userID, nullableStringPtr(update.Company))
	if err != nil {
		return Profile{}, err
	}
	return r.GetByUser(ctx, userID)
}

// InsertFile creates the profile for userID if absent, then prepends rec
// to its file list.
func (r *PGRepo) InsertFile(ctx context.Context, userID string, rec FileRecord) (Profile, error) {
	profile, err := r.Upsert(ctx, userID, ProfileUpdate{})
	if err != nil {
		return Profile{}, err
	}

	const query = `
INSERT INTO profile_files (
    id,
    profile_id,
    original_name,
    encoding,
    mime_type,
    size_bytes,
    bucket,
    storage_key,
    location,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		profile.ID,
		rec.OriginalName,
		rec.Encoding,
		rec.MimeType,
		rec.SizeBytes,
		rec.Bucket,
		rec.StorageKey,
		rec.Location,
		rec.CreatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	return r.GetByUser(ctx, userID)
}

// RemoveFile removes the file with the given id from the user's profile.
func (r *PGRepo) RemoveFile(ctx context.Context, userID, fileID string) (Profile, error) {
	const query = `
DELETE FROM profile_files
WHERE id = $1 AND profile_id = (SELECT id FROM profiles WHERE user_id = $2)`
	res, err := r.DB.ExecContext(ctx, query, fileID, userID)
	if err != nil {
		return Profile{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Profile{}, err
	}
	if affected == 0 {
		if _, err := r.GetByUser(ctx, userID); err != nil {
			return Profile{}, err
		}
		return Profile{}, ErrFileNotFound
	}
	return r.GetByUser(ctx, userID)
}

// GetFile returns the file with the given id from the user's profile.
func (r *PGRepo) GetFile(ctx context.Context, userID, fileID string) (FileRecord, error) {
	const query = `
SELECT f.id, f.original_name, f.encoding, f.mime_type, f.size_bytes, f.bucket, f.storage_key, f.location, f.created_at
FROM profile_files f
JOIN profiles p ON p.id = f.profile_id
WHERE p.user_id = $1 AND f.id = $2
LIMIT 1`
	var rec FileRecord
	err := r.DB.QueryRowContext(ctx, query, userID, fileID).Scan(
		&rec.ID,
		&rec.OriginalName,
		&rec.Encoding,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.Bucket,
		&rec.StorageKey,
		&rec.Location,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileRecord{}, ErrFileNotFound
		}
		return FileRecord{}, err
	}
	return rec, nil
}

func (r *PGRepo) scanProfile(ctx context.Context, query string, args ...any) (Profile, error) {
	var profile Profile
	var company sql.NullString
	var userName sql.NullString
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&company,
		&userName,
		&profile.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if company.Valid {
		profile.Company = company.String
	}
	if userName.Valid {
		profile.UserName = userName.String
	}
	if updatedAt.Valid {
		profile.UpdatedAt = updatedAt.Time
	} else {
		profile.UpdatedAt = time.Now().UTC()
	}
	return profile, nil
}

func (r *PGRepo) listFiles(ctx context.Context, profileID string) ([]FileRecord, error) {
	const query = `
SELECT id, original_name, encoding, mime_type, size_bytes, bucket, storage_key, location, created_at
FROM profile_files
WHERE profile_id = $1
ORDER BY position DESC`
	rows, err := r.DB.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.OriginalName,
			&rec.Encoding,
			&rec.MimeType,
			&rec.SizeBytes,
			&rec.Bucket,
			&rec.StorageKey,
			&rec.Location,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
