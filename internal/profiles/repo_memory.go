package profiles

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile // userID -> profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

// GetByUser returns the profile for a user.
func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return cloneProfile(profile), nil
}

// Upsert creates the profile if absent, otherwise merges the supplied
// fields into it. Nil update fields are left untouched.
func (r *MemoryRepo) Upsert(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	profile, ok := r.profiles[userID]
	if !ok {
		profile = Profile{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
		}
	}
	if update.Company != nil {
		profile.Company = *update.Company
	}
	profile.UpdatedAt = now
	r.profiles[userID] = profile
	return cloneProfile(profile), nil
}

// InsertFile creates the profile if absent, then prepends rec to its
// file list.
func (r *MemoryRepo) InsertFile(ctx context.Context, userID string, rec FileRecord) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	profile, ok := r.profiles[userID]
	if !ok {
		profile = Profile{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
		}
	}
	profile.Files = append([]FileRecord{rec}, profile.Files...)
	profile.UpdatedAt = now
	r.profiles[userID] = profile
	return cloneProfile(profile), nil
}

// RemoveFile removes the file with the given id from the user's profile.
func (r *MemoryRepo) RemoveFile(ctx context.Context, userID, fileID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	for i := range profile.Files {
		if profile.Files[i].ID == fileID {
			profile.Files = append(profile.Files[:i:i], profile.Files[i+1:]...)
			profile.UpdatedAt = time.Now().UTC()
			r.profiles[userID] = profile
			return cloneProfile(profile), nil
		}
	}
	return Profile{}, ErrFileNotFound
}

// GetFile returns the file with the given id from the user's profile.
// A miss is an explicit ErrFileNotFound, never an empty result.
func (r *MemoryRepo) GetFile(ctx context.Context, userID, fileID string) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return FileRecord{}, ErrFileNotFound
	}
	for i := range profile.Files {
		if profile.Files[i].ID == fileID {
			return profile.Files[i], nil
		}
	}
	return FileRecord{}, ErrFileNotFound
}

func cloneProfile(p Profile) Profile {
	out := p
	out.Files = append([]FileRecord(nil), p.Files...)
	return out
}

var _ Repo = (*MemoryRepo)(nil)
