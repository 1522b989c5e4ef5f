package controllers

import (
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// CartController serves the cart of a signed-in user or a guest session.
type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// UpdateCartItemRequest changes the quantity of one line.
type UpdateCartItemRequest struct {
	models.CartKey
	Quantity int `json:"quantity"`
}

func (ctl *CartController) key(c *gin.Context) (string, bool) {
	key, err := cartKey(c)
	if err != nil {
		utils.LogError("Failed to resolve cart key: %v", err)
		utils.InternalServerError(c, "Failed to load cart", nil)
		return "", false
	}
	return key, true
}

// GetCart returns the cart priced from the live catalog.
func (ctl *CartController) GetCart(c *gin.Context) {
	key, ok := ctl.key(c)
	if !ok {
		return
	}
	view, err := ctl.carts.View(c.Request.Context(), key)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Cart retrieved successfully", gin.H{"cart": view})
}

// AddToCart adds a product, merging with an identical line.
func (ctl *CartController) AddToCart(c *gin.Context) {
	key, ok := ctl.key(c)
	if !ok {
		return
	}
	var req services.AddItemInput
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctl.carts.AddItem(c.Request.Context(), key, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Item added to cart", gin.H{"cart": view})
}

// UpdateCartItem sets a line's quantity. Zero removes the line.
func (ctl *CartController) UpdateCartItem(c *gin.Context) {
	key, ok := ctl.key(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctl.carts.SetQuantity(c.Request.Context(), key, req.CartKey, req.Quantity)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Cart updated", gin.H{"cart": view})
}

// RemoveFromCart drops one line.
func (ctl *CartController) RemoveFromCart(c *gin.Context) {
	key, ok := ctl.key(c)
	if !ok {
		return
	}
	var req models.CartKey
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctl.carts.RemoveItem(c.Request.Context(), key, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Item removed from cart", gin.H{"cart": view})
}

// ClearCart empties the cart.
func (ctl *CartController) ClearCart(c *gin.Context) {
	key, ok := ctl.key(c)
	if !ok {
		return
	}
	view, err := ctl.carts.Clear(c.Request.Context(), key)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Cart cleared", gin.H{"cart": view})
}
