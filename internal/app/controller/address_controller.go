package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/ikkim/shopfront/pkg/util"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type ParseAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// ListAddresses returns the caller's address book.
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.List(upstreamContext(c), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// GetAddress returns one address ready for the edit screen.
// GET /api/v1/addresses/:id
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	address, err := ctrl.addressService.Get(upstreamContext(c), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.addressService.PrepareForEdit(address))
}

// CreateAddress adds an address.
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.AddressInput
	if !bindJSON(c, &req) {
		return
	}

	address, err := ctrl.addressService.Create(upstreamContext(c), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Address created", map[string]interface{}{
		"address_id": address.ID,
	})
	c.JSON(http.StatusCreated, address)
}

// UpdateAddress edits an address.
// PATCH /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.AddressInput
	if !bindJSON(c, &req) {
		return
	}

	address, err := ctrl.addressService.Update(upstreamContext(c), userID, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// DeleteAddress removes an address.
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.addressService.Delete(upstreamContext(c), userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ParseAddress splits a single-line address into structured parts.
// POST /api/v1/addresses/parse
func (ctrl *AddressController) ParseAddress(c *gin.Context) {
	var req ParseAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	parts := util.ParseAddress(req.Address)
	c.JSON(http.StatusOK, gin.H{
		"parts":     parts,
		"formatted": util.JoinAddress(parts.Street, parts.Ward, parts.District, parts.Province),
	})
}
