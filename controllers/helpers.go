// Package controllers holds the gin handlers. Handlers bind and validate
// the request, call one service and write the standard response envelope.
package controllers

import (
	"github.com/Govind-619/Clomora/middleware"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// currentUser returns the signed-in identity or writes a 401.
func currentUser(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrSignInRequired)
		return models.Identity{}, false
	}
	return identity, true
}

// cartKey resolves the cart of the caller: the user's cart when signed in,
// otherwise the guest cart kept in the session cookie.
func cartKey(c *gin.Context) (string, error) {
	if identity, ok := middleware.CurrentIdentity(c); ok {
		return services.UserCartKey(identity.UID), nil
	}
	guestID, err := utils.GuestCartID(c)
	if err != nil {
		return "", err
	}
	return services.GuestCartKey(guestID), nil
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		utils.LogDebug("Invalid request body for %s: %v", c.FullPath(), err)
		utils.BadRequest(c, utils.ErrInvalidRequest, err.Error())
		return false
	}
	return true
}
