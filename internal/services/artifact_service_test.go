// internal/services/artifact_service_test.go
package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/codegen"
	"github.com/tradeforge/tradeforge-backend/internal/models"
)

type ArtifactServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ArtifactService
	owner   *models.User
}

func (suite *ArtifactServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewArtifactService(suite.db, codegen.NewTemplateGenerator(), nil)
	suite.owner = createTestUser(suite.T(), suite.db, models.UserRoleTrader)
}

func (suite *ArtifactServiceTestSuite) TestGenerateMintsKeyAndDisarmedControl() {
	artifact, err := suite.service.Generate(suite.owner.ID, &GenerateArtifactRequest{
		Type:        models.ArtifactTypeScript,
		Description: "Momentum breakout strategy on GBPUSD H1",
		Tags:        []string{"momentum", "breakout"},
	})
	suite.NoError(err)
	suite.True(strings.HasPrefix(artifact.LicenseKey, "EA-"))
	suite.NotEmpty(artifact.Code)

	var control models.BotControl
	suite.NoError(suite.db.Where("artifact_id = ?", artifact.ID).First(&control).Error)
	suite.False(control.IsActive)
}

func (suite *ArtifactServiceTestSuite) TestGenerateUniqueKeysPerArtifact() {
	keys := make(map[string]bool)
	for i := 0; i < 5; i++ {
		artifact, err := suite.service.Generate(suite.owner.ID, &GenerateArtifactRequest{
			Type:        models.ArtifactTypeIndicator,
			Description: "Custom RSI divergence indicator for scalping",
		})
		suite.NoError(err)
		suite.False(keys[artifact.LicenseKey])
		keys[artifact.LicenseKey] = true
	}
}

func (suite *ArtifactServiceTestSuite) TestGenerateNameTruncatesOnRunes() {
	description := strings.Repeat("т", 60) + " trend strategy"

	artifact, err := suite.service.Generate(suite.owner.ID, &GenerateArtifactRequest{
		Type:        models.ArtifactTypeScript,
		Description: description,
	})
	suite.NoError(err)
	suite.True(utf8.ValidString(artifact.Name))
	suite.Equal(50, utf8.RuneCountInString(artifact.Name))
}

func (suite *ArtifactServiceTestSuite) TestGenerateRejectsShortDescription() {
	_, err := suite.service.Generate(suite.owner.ID, &GenerateArtifactRequest{
		Type:        models.ArtifactTypeScript,
		Description: "short",
	})
	suite.ErrorIs(err, ErrValidation)
}

func (suite *ArtifactServiceTestSuite) TestGenerateSuspendedOwnerForbidden() {
	suite.NoError(suite.db.Model(suite.owner).Update("status", models.UserStatusSuspended).Error)

	_, err := suite.service.Generate(suite.owner.ID, &GenerateArtifactRequest{
		Type:        models.ArtifactTypeScript,
		Description: "Momentum breakout strategy on GBPUSD H1",
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ArtifactServiceTestSuite) TestDeleteCascades() {
	artifact := createTestArtifact(suite.T(), suite.db, suite.owner.ID, "EA-CCCC000000000000000000000000000A")
	createTestAssignment(suite.T(), suite.db, artifact, nil, nil)
	suite.NoError(suite.db.Create(&models.BotControl{ArtifactID: artifact.ID}).Error)

	suite.NoError(suite.service.DeleteArtifact(artifact.ID, suite.owner.ID))

	var assignments int64
	suite.NoError(suite.db.Model(&models.LicenseAssignment{}).
		Where("artifact_id = ?", artifact.ID).Count(&assignments).Error)
	suite.Equal(int64(0), assignments)

	var controls int64
	suite.NoError(suite.db.Model(&models.BotControl{}).
		Where("artifact_id = ?", artifact.ID).Count(&controls).Error)
	suite.Equal(int64(0), controls)
}

func (suite *ArtifactServiceTestSuite) TestDeleteNotOwner() {
	other := createTestUser(suite.T(), suite.db, models.UserRoleTrader)
	artifact := createTestArtifact(suite.T(), suite.db, suite.owner.ID, "EA-CCCC000000000000000000000000000B")

	suite.ErrorIs(suite.service.DeleteArtifact(artifact.ID, other.ID), ErrForbidden)
}

func TestArtifactServiceSuite(t *testing.T) {
	suite.Run(t, new(ArtifactServiceTestSuite))
}
