package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Table{}, &models.MenuCategory{}, &models.Menu{},
		&models.Addon{}, &models.Package{}, &models.Order{},
		&models.OrderItem{}, &models.OrderAddon{}, &models.QRCode{},
		&models.DBChange{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupSessionRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	sessionCtrl := NewSessionController(db)
	router.POST("/sessions", sessionCtrl.OpenSession)
	router.POST("/sessions/:order_id/terminate", sessionCtrl.TerminateSession)
	router.GET("/sessions", sessionCtrl.GetAllSessions)
	router.GET("/sessions/check/:code", sessionCtrl.CheckToken)
	return router
}

func seedSessionFixtures(db *gorm.DB) (models.Table, models.Package) {
	table := models.Table{TableNumber: "A1", Capacity: 6, Status: models.TableAvailable}
	db.Create(&table)
	pkg := models.Package{Name: "Paket Reguler", Price: 99000, MaxCustomers: 8}
	db.Create(&pkg)
	return table, pkg
}

func postJSON(router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOpenSessionEndpoint(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg := seedSessionFixtures(db)
	router := setupSessionRouter(db)

	w := postJSON(router, "/sessions", gin.H{
		"table_id":       table.ID,
		"package_id":     pkg.ID,
		"customer_count": 3,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Session opened", response["message"])

	data := response["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	qr := data["qr_code"].(map[string]interface{})
	assert.Equal(t, "active", order["status"])
	assert.NotEmpty(t, qr["code"])
}

func TestOpenSessionConflictStatus(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg := seedSessionFixtures(db)
	router := setupSessionRouter(db)

	payload := gin.H{"table_id": table.ID, "package_id": pkg.ID, "customer_count": 2}
	w := postJSON(router, "/sessions", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	// meja sudah diklaim, pembuka kedua dapat 409
	w = postJSON(router, "/sessions", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTerminateSessionEndpoint(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg := seedSessionFixtures(db)
	router := setupSessionRouter(db)

	w := postJSON(router, "/sessions", gin.H{"table_id": table.ID, "package_id": pkg.ID, "customer_count": 2})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	orderID := uint(created["data"].(map[string]interface{})["order"].(map[string]interface{})["id"].(float64))

	url := fmt.Sprintf("/sessions/%d/terminate", orderID)
	w = postJSON(router, url, gin.H{"outcome": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	// terminasi ganda tetap 200
	w = postJSON(router, url, gin.H{"outcome": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	// outcome di luar completed/cancelled ditolak
	w = postJSON(router, url, gin.H{"outcome": "active"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.Table
	db.First(&reloaded, table.ID)
	assert.Equal(t, models.TableAvailable, reloaded.Status)
}

func TestCheckTokenEndpoint(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg := seedSessionFixtures(db)
	router := setupSessionRouter(db)

	w := postJSON(router, "/sessions", gin.H{"table_id": table.ID, "package_id": pkg.ID, "customer_count": 2})
	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	code := created["data"].(map[string]interface{})["qr_code"].(map[string]interface{})["code"].(string)

	req, _ := http.NewRequest("GET", "/sessions/check/"+code, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "valid", response["data"].(map[string]interface{})["state"])

	req, _ = http.NewRequest("GET", "/sessions/check/kode-ngawur", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "invalid-no-session", response["data"].(map[string]interface{})["state"])
}
