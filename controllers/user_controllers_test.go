package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:usr_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupUserRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	userCtrl := NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)
	return router
}

func TestRegisterEndpoint(t *testing.T) {
	db := setupUserTestDB(t)
	router := setupUserRouter(db)

	w := postJSON(router, "/register", gin.H{
		"name":     "Dina Staff",
		"email":    "dina@grillhouse.id",
		"password": "rahasia123",
		"role":     "staff",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	assert.NoError(t, db.Where("email = ?", "dina@grillhouse.id").First(&user).Error)
	assert.Equal(t, "staff", user.Role)
	// password harus tersimpan sebagai hash bcrypt
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("rahasia123")))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	db := setupUserTestDB(t)
	router := setupUserRouter(db)

	w := postJSON(router, "/register", gin.H{
		"name":     "Siapa",
		"email":    "siapa@grillhouse.id",
		"password": "rahasia123",
		"role":     "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLoginEndpoint(t *testing.T) {
	db := setupUserTestDB(t)
	router := setupUserRouter(db)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Budi Kitchen",
		Email:    "budi@grillhouse.id",
		Password: string(hashed),
		Role:     "kitchen",
	})

	w := postJSON(router, "/login", gin.H{
		"email":    "budi@grillhouse.id",
		"password": "rahasia123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "kitchen", data["user_role"])

	w = postJSON(router, "/login", gin.H{
		"email":    "budi@grillhouse.id",
		"password": "salah",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
