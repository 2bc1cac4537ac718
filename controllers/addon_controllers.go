package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

type AddonController struct {
	DB *gorm.DB
}

func NewAddonController(db *gorm.DB) *AddonController {
	return &AddonController{DB: db}
}

// GetAllAddons
func (ac *AddonController) GetAllAddons(c *gin.Context) {
	var addons []models.Addon
	if err := ac.DB.Order("name asc").Find(&addons).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All add-ons", addons)
}

// CreateAddon
func (ac *AddonController) CreateAddon(c *gin.Context) {
	var body struct {
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	addon := models.Addon{
		Name:        body.Name,
		Price:       body.Price,
		Stock:       body.Stock,
		Description: body.Description,
	}
	if err := ac.DB.Create(&addon).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Add-on created", addon)
}

// GetAddonByID
func (ac *AddonController) GetAddonByID(c *gin.Context) {
	idStr := c.Param("addon_id")
	id, _ := strconv.Atoi(idStr)

	var addon models.Addon
	if err := ac.DB.First(&addon, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Add-on detail", addon)
}

// UpdateAddon
func (ac *AddonController) UpdateAddon(c *gin.Context) {
	idStr := c.Param("addon_id")
	id, _ := strconv.Atoi(idStr)

	var addon models.Addon
	if err := ac.DB.First(&addon, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		Description *string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		addon.Name = *body.Name
	}
	if body.Price != nil {
		addon.Price = *body.Price
	}
	if body.Stock != nil {
		addon.Stock = *body.Stock
	}
	if body.Description != nil {
		addon.Description = *body.Description
	}

	if err := ac.DB.Save(&addon).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Add-on updated", addon)
}

// DeleteAddon
func (ac *AddonController) DeleteAddon(c *gin.Context) {
	idStr := c.Param("addon_id")
	id, _ := strconv.Atoi(idStr)

	if err := ac.DB.Delete(&models.Addon{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on deleted", gin.H{"addon_id": id})
}
