// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())

	utils.SetJWTSecret("test-secret")
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 1
	cfg.JWT.RefreshTokenTTL = 24

	suite.service = NewAuthService(suite.db, cfg, NewNotificationService(suite.db, cfg))
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	resp, err := suite.service.Register(&RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.NotEmpty(resp.RefreshToken)
	suite.Equal("bearer", resp.TokenType)
	suite.Equal(models.UserRoleTrader, resp.User.Role)
	suite.Equal(models.UserStatusActive, resp.User.Status)

	login, err := suite.service.Login(&LoginRequest{
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)
	suite.Equal(resp.User.ID, login.User.ID)
	suite.NotNil(login.User.LastLoginAt)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	_, err := suite.service.Register(&RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)

	_, err = suite.service.Register(&RegisterRequest{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "Str0ngPass2",
	})
	suite.ErrorIs(err, ErrConflict)
}

func (suite *AuthServiceTestSuite) TestRegisterWeakPassword() {
	_, err := suite.service.Register(&RegisterRequest{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "alllowercase",
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	_, err := suite.service.Register(&RegisterRequest{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)

	_, err = suite.service.Login(&LoginRequest{
		Email:    "carol@example.com",
		Password: "WrongPass1",
	})
	suite.EqualError(err, "invalid credentials")
}

func (suite *AuthServiceTestSuite) TestLoginSuspendedAccount() {
	resp, err := suite.service.Register(&RegisterRequest{
		Name:     "Dave",
		Email:    "dave@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)

	suite.NoError(suite.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = suite.service.Login(&LoginRequest{
		Email:    "dave@example.com",
		Password: "Str0ngPass",
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp, err := suite.service.Register(&RegisterRequest{
		Name:     "Erin",
		Email:    "erin@example.com",
		Password: "Str0ngPass",
	})
	suite.NoError(err)

	refreshed, err := suite.service.RefreshToken(resp.RefreshToken)
	suite.NoError(err)
	suite.Equal(resp.User.ID, refreshed.User.ID)
	suite.NotEmpty(refreshed.AccessToken)

	_, err = suite.service.RefreshToken("not-a-token")
	suite.Error(err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
