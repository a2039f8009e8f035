// internal/services/terminal_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/models"
)

type TerminalServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TerminalService
	user    *models.User
}

func (suite *TerminalServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewTerminalService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, models.UserRoleTrader)
}

func (suite *TerminalServiceTestSuite) TestConnectStoresHashedPassword() {
	account, err := suite.service.Connect(suite.user.ID, &ConnectTerminalRequest{
		AccountNumber: "10023456",
		Server:        "ICMarkets-Demo",
		Password:      "terminal-secret",
	})
	suite.NoError(err)
	suite.True(account.Connected)
	suite.NotEqual("terminal-secret", account.Password)
}

func (suite *TerminalServiceTestSuite) TestConnectDuplicateConflicts() {
	req := &ConnectTerminalRequest{
		AccountNumber: "10023456",
		Server:        "ICMarkets-Demo",
		Password:      "terminal-secret",
	}

	_, err := suite.service.Connect(suite.user.ID, req)
	suite.NoError(err)

	_, err = suite.service.Connect(suite.user.ID, req)
	suite.ErrorIs(err, ErrConflict)

	// A different user may link the same account number.
	other := createTestUser(suite.T(), suite.db, models.UserRoleTrader)
	_, err = suite.service.Connect(other.ID, req)
	suite.NoError(err)
}

func (suite *TerminalServiceTestSuite) TestDisconnect() {
	account, err := suite.service.Connect(suite.user.ID, &ConnectTerminalRequest{
		AccountNumber: "10023456",
		Server:        "ICMarkets-Demo",
		Password:      "terminal-secret",
	})
	suite.NoError(err)

	suite.NoError(suite.service.Disconnect(suite.user.ID, account.ID))

	accounts, err := suite.service.ListAccounts(suite.user.ID)
	suite.NoError(err)
	suite.Empty(accounts)

	suite.ErrorIs(suite.service.Disconnect(suite.user.ID, uuid.New()), ErrNotFound)
}

func (suite *TerminalServiceTestSuite) TestDisconnectOtherUsersAccount() {
	account, err := suite.service.Connect(suite.user.ID, &ConnectTerminalRequest{
		AccountNumber: "10023456",
		Server:        "ICMarkets-Demo",
		Password:      "terminal-secret",
	})
	suite.NoError(err)

	other := createTestUser(suite.T(), suite.db, models.UserRoleTrader)
	suite.ErrorIs(suite.service.Disconnect(other.ID, account.ID), ErrNotFound)
}

func TestTerminalServiceSuite(t *testing.T) {
	suite.Run(t, new(TerminalServiceTestSuite))
}
