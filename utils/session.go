package utils

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const guestCartSessionKey = "guest_cart_id"

// GuestCartID returns the guest cart id stored in the session cookie,
// minting and saving a new one on first use.
func GuestCartID(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if id, ok := session.Get(guestCartSessionKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.New().String()
	session.Set(guestCartSessionKey, id)
	if err := session.Save(); err != nil {
		return "", fmt.Errorf("failed to save guest cart session: %w", err)
	}
	return id, nil
}
