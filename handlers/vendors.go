package handlers

import (
	"net/http"

	"caresaviour/models"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NearbyVendors handles POST /api/user/nearby-vendors.
func (h *BookingHandler) NearbyVendors(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	var req struct {
		Latitude    *float64           `json:"latitude" binding:"required,gte=-90,lte=90"`
		Longitude   *float64           `json:"longitude" binding:"required,gte=-180,lte=180"`
		ServiceType models.ServiceType `json:"serviceType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("Latitude, Longitude and Service Type are required"))
		return
	}
	if !req.ServiceType.Valid() {
		utils.RespondError(c, utils.NewValidationError("invalid serviceType: "+string(req.ServiceType)))
		return
	}

	point := models.NewGeoPoint(*req.Longitude, *req.Latitude)
	vendors, err := h.MatchingSvc.NearbyVendors(c.Request.Context(), point, req.ServiceType)
	if err != nil {
		h.Logger.Error("NearbyVendors: lookup failed", zap.Error(err))
		utils.RespondError(c, utils.NewInternalError("Server Error", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(vendors), "data": vendors})
}
