// internal/handlers/bot_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradeforge/tradeforge-backend/internal/middleware"
	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/services"
)

// PollingGatewayTestSuite exercises the terminal-facing routes end to end:
// license-key middleware, handler, service and store.
type PollingGatewayTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	owner    *models.User
	artifact *models.Artifact
}

func (suite *PollingGatewayTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.T().Cleanup(func() { sqlDB.Close() })

	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Artifact{},
		&models.LicenseAssignment{},
		&models.BotControl{},
	))
	suite.db = db

	suite.owner = &models.User{
		Name:   "Owner",
		Email:  "owner@example.com",
		Role:   models.UserRoleTrader,
		Status: models.UserStatusActive,
	}
	suite.Require().NoError(suite.owner.SetPassword("Str0ngPass"))
	suite.Require().NoError(db.Create(suite.owner).Error)

	suite.artifact = &models.Artifact{
		OwnerID:     suite.owner.ID,
		Type:        models.ArtifactTypeScript,
		Name:        "Grid bot",
		Description: "Grid trading bot for ranging markets",
		LicenseKey:  "EA-DDDD000000000000000000000000000A",
	}
	suite.Require().NoError(db.Create(suite.artifact).Error)

	botHandler := NewBotHandler(services.NewBotService(db))
	licenseHandler := NewLicenseHandler(services.NewLicenseService(db))

	suite.router = gin.New()
	agent := suite.router.Group("/v1/terminal")
	agent.Use(middleware.LicenseKeyRequired())
	{
		agent.GET("/bot/status/:artifact_id", botHandler.PollBotStatus)
		agent.POST("/assignments/:id/usage", licenseHandler.RecordUsageForAgent)
	}
}

func (suite *PollingGatewayTestSuite) poll(key string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/v1/terminal/bot/status/"+suite.artifact.ID.String(), nil)
	if key != "" {
		req.Header.Set("X-License-Key", key)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *PollingGatewayTestSuite) TestPollDefaultDisarmed() {
	w := suite.poll(suite.artifact.LicenseKey)
	suite.Equal(http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			ArtifactID string `json:"artifact_id"`
			IsActive   bool   `json:"is_active"`
		} `json:"data"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response.Success)
	suite.Equal(suite.artifact.ID.String(), response.Data.ArtifactID)
	suite.False(response.Data.IsActive)
}

func (suite *PollingGatewayTestSuite) TestPollReflectsToggle() {
	_, err := services.NewBotService(suite.db).Toggle(suite.owner.ID, &services.ToggleBotRequest{
		ArtifactID: suite.artifact.ID,
		IsActive:   func(b bool) *bool { return &b }(true),
	})
	suite.NoError(err)

	w := suite.poll(suite.artifact.LicenseKey)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"is_active":true`)
}

func (suite *PollingGatewayTestSuite) TestPollWithoutKeyRejected() {
	w := suite.poll("")
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *PollingGatewayTestSuite) TestPollWrongKeyRejected() {
	w := suite.poll("EA-WRONGKEY000000000000000000000000")
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "FORBIDDEN")
}

func (suite *PollingGatewayTestSuite) TestPollUnknownArtifact() {
	req, _ := http.NewRequest("GET", "/v1/terminal/bot/status/"+uuid.NewString(), nil)
	req.Header.Set("X-License-Key", suite.artifact.LicenseKey)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PollingGatewayTestSuite) TestAgentReportsUsage() {
	assignment := &models.LicenseAssignment{
		ArtifactID:    suite.artifact.ID,
		LicenseKey:    suite.artifact.LicenseKey,
		CustomerName:  "Customer",
		CustomerEmail: "customer@example.com",
	}
	suite.Require().NoError(suite.db.Create(assignment).Error)

	for i := 1; i <= 2; i++ {
		req, _ := http.NewRequest("POST", "/v1/terminal/assignments/"+assignment.ID.String()+"/usage", nil)
		req.Header.Set("X-License-Key", suite.artifact.LicenseKey)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		suite.Equal(http.StatusOK, w.Code)
		suite.Contains(w.Body.String(), fmt.Sprintf(`"usage_count":%d`, i))
	}
}

func TestPollingGatewaySuite(t *testing.T) {
	suite.Run(t, new(PollingGatewayTestSuite))
}
