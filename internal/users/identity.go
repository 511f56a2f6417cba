package users

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin"

	"profile-backend/internal/shared/server/middleware"
)

// SyncIdentity seeds a user record from the verified token the first
// time a user is seen, so display-name projections have a row to join
// against. Existing records are left alone; richer data written by
// account flows wins.
func SyncIdentity(svc *Service) gin.HandlerFunc {
	var mu sync.Mutex
	seen := make(map[string]struct{})
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			c.Next()
			return
		}

		mu.Lock()
		_, done := seen[userID]
		mu.Unlock()
		if done {
			c.Next()
			return
		}

		synced := false
		_, err := svc.GetByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			synced = true
		case errors.Is(err, ErrNotFound):
			insert := User{
				ID:       userID,
				FullName: middleware.UserNameFromContext(c),
			}
			synced = svc.UpsertIdentity(c.Request.Context(), insert) == nil
		}
		if synced {
			mu.Lock()
			seen[userID] = struct{}{}
			mu.Unlock()
		}

		c.Next()
	}
}
