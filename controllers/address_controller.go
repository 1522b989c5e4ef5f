package controllers

import (
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// AddressController serves the customer's address book.
type AddressController struct {
	addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

// GetAddresses lists the user's addresses, default first.
func (ctl *AddressController) GetAddresses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.addresses.List(c.Request.Context(), user.UID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Addresses retrieved successfully", gin.H{"addresses": list})
}

// AddAddress stores a new address.
func (ctl *AddressController) AddAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AddressInput
	if !bindJSON(c, &req) {
		return
	}

	address, err := ctl.addresses.Add(c.Request.Context(), user.UID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, utils.MsgAddressAdded, gin.H{"address": address})
}

// UpdateAddress applies a partial update.
func (ctl *AddressController) UpdateAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AddressPatch
	if !bindJSON(c, &req) {
		return
	}

	address, err := ctl.addresses.Update(c.Request.Context(), user.UID, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgAddressUpdated, gin.H{"address": address})
}

// DeleteAddress removes an address. The default is not re-elected.
func (ctl *AddressController) DeleteAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := ctl.addresses.Delete(c.Request.Context(), user.UID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgAddressDeleted, nil)
}

// SetDefaultAddress makes one address the default.
func (ctl *AddressController) SetDefaultAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := ctl.addresses.SetDefault(c.Request.Context(), user.UID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgDefaultAddressSet, gin.H{"id": c.Param("id")})
}
