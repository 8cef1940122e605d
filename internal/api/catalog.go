package api

import (
	"net/http"

	"pharmahub-service/internal/service"
	"pharmahub-service/internal/store"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listMedicines(c *gin.Context) {
	filter := store.MedicineFilter{
		Category:    c.Query("category"),
		SellerEmail: c.Query("seller"),
	}

	medicines, err := h.svc.Medicines.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list medicines", err)
		return
	}
	c.JSON(http.StatusOK, medicines)
}

func (h *Handler) getMedicine(c *gin.Context) {
	medicine, err := h.svc.Medicines.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Medicine not found", err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

func (h *Handler) createMedicine(c *gin.Context) {
	var req service.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	medicine, err := h.svc.Medicines.Create(c.Request.Context(), callerEmail(c), &req)
	if err != nil {
		respondError(c, "Failed to create medicine", err)
		return
	}
	c.JSON(http.StatusCreated, medicine)
}

func (h *Handler) updateMedicine(c *gin.Context) {
	var update store.MedicineUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.Medicines.Update(c.Request.Context(), callerEmail(c), c.Param("id"), update); err != nil {
		respondError(c, "Failed to update medicine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) deleteMedicine(c *gin.Context) {
	if err := h.svc.Medicines.Delete(c.Request.Context(), callerEmail(c), c.Param("id")); err != nil {
		respondError(c, "Failed to delete medicine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) activeAdvertisements(c *gin.Context) {
	ads, err := h.svc.Advertisements.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list advertisements", err)
		return
	}
	c.JSON(http.StatusOK, ads)
}

func (h *Handler) submitAdvertisement(c *gin.Context) {
	var req service.SubmitAdvertisementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ad, err := h.svc.Advertisements.Submit(c.Request.Context(), callerEmail(c), &req)
	if err != nil {
		respondError(c, "Failed to submit advertisement", err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

func (h *Handler) myAdvertisements(c *gin.Context) {
	ads, err := h.svc.Advertisements.ListMine(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, "Failed to list advertisements", err)
		return
	}
	c.JSON(http.StatusOK, ads)
}

func (h *Handler) listAdvertisements(c *gin.Context) {
	ads, err := h.svc.Advertisements.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list advertisements", err)
		return
	}
	c.JSON(http.StatusOK, ads)
}

func (h *Handler) updateAdvertisementStatus(c *gin.Context) {
	var req service.UpdateAdStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.Advertisements.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, "Failed to update advertisement", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "status": req.Status})
}
