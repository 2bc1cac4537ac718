package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// PackageController -> CRUD paket harga plus pengaturan menu yang
// tercakup tiap paket
type PackageController struct {
	DB *gorm.DB
}

func NewPackageController(db *gorm.DB) *PackageController {
	return &PackageController{DB: db}
}

// GetAllPackages
func (pc *PackageController) GetAllPackages(c *gin.Context) {
	var packages []models.Package
	if err := pc.DB.Preload("Menus").Order("price asc").Find(&packages).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All packages", packages)
}

// CreatePackage
func (pc *PackageController) CreatePackage(c *gin.Context) {
	var body struct {
		Name         string  `json:"name" binding:"required"`
		Price        float64 `json:"price" binding:"required"`
		MaxCustomers int     `json:"max_customers"`
		Unlimited    bool    `json:"unlimited"`
		Description  string  `json:"description"`
		MenuIDs      []uint  `json:"menu_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.MaxCustomers <= 0 {
		body.MaxCustomers = 8
	}

	pkg := models.Package{
		Name:         body.Name,
		Price:        body.Price,
		MaxCustomers: body.MaxCustomers,
		Unlimited:    body.Unlimited,
		Description:  body.Description,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pkg).Error; err != nil {
			return err
		}
		if len(body.MenuIDs) > 0 {
			var menus []models.Menu
			if err := tx.Find(&menus, body.MenuIDs).Error; err != nil {
				return err
			}
			if len(menus) != len(body.MenuIDs) {
				return errors.New("one or more menu_ids do not exist")
			}
			if err := tx.Model(&pkg).Association("Menus").Append(&menus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Package created", pkg)
}

// GetPackageByID
func (pc *PackageController) GetPackageByID(c *gin.Context) {
	idStr := c.Param("package_id")
	id, _ := strconv.Atoi(idStr)

	var pkg models.Package
	if err := pc.DB.Preload("Menus").First(&pkg, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Package detail", pkg)
}

// UpdatePackage -> perubahan harga hanya berlaku untuk sesi yang dibuka
// setelahnya; sesi berjalan tetap memakai harga saat open/upgrade
func (pc *PackageController) UpdatePackage(c *gin.Context) {
	idStr := c.Param("package_id")
	id, _ := strconv.Atoi(idStr)

	var pkg models.Package
	if err := pc.DB.First(&pkg, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		Name         *string  `json:"name"`
		Price        *float64 `json:"price"`
		MaxCustomers *int     `json:"max_customers"`
		Unlimited    *bool    `json:"unlimited"`
		Description  *string  `json:"description"`
		MenuIDs      *[]uint  `json:"menu_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		pkg.Name = *body.Name
	}
	if body.Price != nil {
		pkg.Price = *body.Price
	}
	if body.MaxCustomers != nil {
		pkg.MaxCustomers = *body.MaxCustomers
	}
	if body.Unlimited != nil {
		pkg.Unlimited = *body.Unlimited
	}
	if body.Description != nil {
		pkg.Description = *body.Description
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&pkg).Error; err != nil {
			return err
		}
		if body.MenuIDs != nil {
			var menus []models.Menu
			if len(*body.MenuIDs) > 0 {
				if err := tx.Find(&menus, *body.MenuIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&pkg).Association("Menus").Replace(&menus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Package updated", pkg)
}

// DeletePackage -> tolak jika masih ada sesi open yang memakai paket ini
func (pc *PackageController) DeletePackage(c *gin.Context) {
	idStr := c.Param("package_id")
	id, _ := strconv.Atoi(idStr)

	var open int64
	err := pc.DB.Model(&models.Order{}).
		Where("package_id = ? AND status IN ?", id, []models.OrderStatus{models.OrderPending, models.OrderActive}).
		Count(&open).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if open > 0 {
		utils.RespondDomainError(c, utils.Preconditionf("package %d is in use by %d open session(s)", id, open))
		return
	}

	if err := pc.DB.Delete(&models.Package{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Package deleted", gin.H{"package_id": id})
}
