package profiles

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"profile-backend/internal/shared/metrics"
	"profile-backend/internal/shared/storage/object"
	"profile-backend/internal/shared/telemetry"
	"profile-backend/internal/shared/util"
)

// UserLookup resolves a user ID to a display name for read projections.
type UserLookup interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Service composes the profile store and the object storage gateway.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Users UserLookup
}

// FileUpload carries the declared metadata and body of one upload.
type FileUpload struct {
	OriginalName string
	Encoding     string
	ContentType  string
	Body         io.Reader
}

// Get returns the profile for a user, or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrInvalidInput
	}
	profile, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.project(ctx, profile), nil
}

// CreateOrUpdate creates the user's profile or merges the supplied
// fields into it. Idempotent under identical input.
func (s *Service) CreateOrUpdate(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrInvalidInput
	}
	profile, err := s.Repo.Upsert(ctx, userID, update)
	if err != nil {
		return Profile{}, err
	}
	return s.project(ctx, profile), nil
}

// UploadFile streams the body to object storage and records the file on
// the user's profile, creating the profile if absent. On storage failure
// no metadata is written. If the metadata write fails after a successful
// put, the object is left orphaned in storage; that is surfaced as a
// structured warning, not rolled back.
func (s *Service) UploadFile(ctx context.Context, userID string, up FileUpload) (Profile, error) {
	if strings.TrimSpace(userID) == "" || up.Body == nil {
		return Profile{}, ErrInvalidInput
	}
	sanitized, err := util.SanitizeFileName(up.OriginalName)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	encoding := up.Encoding
	if encoding == "" {
		encoding = "binary"
	}

	// The storage key is generated, never the raw client name, so two
	// uploads of same-named files cannot overwrite each other's bytes.
	key := util.HashUserKey(userID) + "/" + randomID() + "_" + sanitized

	stored, size, err := s.Store.Put(ctx, key, contentType, up.Body)
	if err != nil {
		metrics.IncStorageError()
		return Profile{}, err
	}

	rec := FileRecord{
		ID:           uuid.NewString(),
		OriginalName: sanitized,
		Encoding:     encoding,
		MimeType:     contentType,
		SizeBytes:    size,
		Bucket:       stored.Bucket,
		StorageKey:   stored.Key,
		Location:     stored.Location,
		CreatedAt:    time.Now().UTC(),
	}

	profile, err := s.Repo.InsertFile(ctx, userID, rec)
	if err != nil {
		telemetry.Warn("upload.orphaned_object", map[string]any{
			"user_id":     userID,
			"bucket":      stored.Bucket,
			"storage_key": stored.Key,
			"error":       err.Error(),
		})
		return Profile{}, err
	}

	metrics.IncFileUpload(size)
	return s.project(ctx, profile), nil
}

// OpenFile resolves a file record and opens its backing object for
// reading. The caller owns the returned stream and must close it.
func (s *Service) OpenFile(ctx context.Context, userID, fileID string) (FileRecord, io.ReadCloser, error) {
	rec, err := s.Repo.GetFile(ctx, userID, fileID)
	if err != nil {
		return FileRecord{}, nil, err
	}
	rc, err := s.Store.Open(ctx, rec.StorageKey)
	if err != nil {
		if !errors.Is(err, object.ErrNotFound) {
			metrics.IncStorageError()
		}
		return FileRecord{}, nil, err
	}
	metrics.IncFileDownload()
	return rec, rc, nil
}

// DeleteFile removes the backing object first and only then the file
// record. A hard storage failure keeps the record so metadata is never
// dropped for an object that was not actually deleted. An object that is
// already gone does not block metadata removal.
func (s *Service) DeleteFile(ctx context.Context, userID, fileID string) (Profile, error) {
	rec, err := s.Repo.GetFile(ctx, userID, fileID)
	if err != nil {
		return Profile{}, err
	}

	if err := s.Store.Delete(ctx, rec.StorageKey); err != nil {
		if !errors.Is(err, object.ErrNotFound) {
			metrics.IncStorageError()
			return Profile{}, err
		}
		telemetry.Warn("delete.object_already_missing", map[string]any{
			"user_id":     userID,
			"file_id":     fileID,
			"storage_key": rec.StorageKey,
		})
	}

	profile, err := s.Repo.RemoveFile(ctx, userID, fileID)
	if err != nil {
		return Profile{}, err
	}
	metrics.IncFileDelete()
	return s.project(ctx, profile), nil
}

func (s *Service) project(ctx context.Context, profile Profile) Profile {
	if s.Users == nil {
		return profile
	}
	name, err := s.Users.DisplayName(ctx, profile.UserID)
	if err != nil {
		return profile
	}
	profile.UserName = name
	return profile
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
