package tests

import (
	"context"
	"testing"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/app/services"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	testingutil "github.com/coverbase/coverbase/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCaptchaService accepts a fixed challenge ID so the login path can be
// exercised without solving a rotation puzzle.
type stubCaptchaService struct {
	challengeID string
}

func (s *stubCaptchaService) GenerateRotate(ctx context.Context) (*services.RotateChallenge, error) {
	return &services.RotateChallenge{ID: s.challengeID, MasterImageBase64: "master", ThumbImageBase64: "thumb"}, nil
}

func (s *stubCaptchaService) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	return challengeID == s.challengeID
}

func TestAdminAuthFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		adminRepo := repository.NewAdminRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		tokenService, err := services.NewTokenService(1*time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-hmac-signing")
		require.NoError(t, err)

		captchaSvc := &stubCaptchaService{challengeID: "test-challenge"}
		authFlow := businessflow.NewAdminAuthFlow(adminRepo, auditRepo, tokenService, captchaSvc)

		admin, err := fixtures.CreateAdmin("root", "Sup3rSecret!")
		require.NoError(t, err)

		verifyReq := func() *dto.AdminCaptchaVerifyRequest {
			return &dto.AdminCaptchaVerifyRequest{
				ChallengeID: "test-challenge",
				Username:    "root",
				Password:    "Sup3rSecret!",
				UserAngle:   42,
			}
		}

		t.Run("InitCaptcha", func(t *testing.T) {
			resp, err := authFlow.InitCaptcha(ctx)
			require.NoError(t, err)
			assert.Equal(t, "test-challenge", resp.ChallengeID)
			assert.NotEmpty(t, resp.MasterImageBase64)
			assert.NotEmpty(t, resp.ThumbImageBase64)
		})

		t.Run("SuccessfulLogin", func(t *testing.T) {
			resp, err := authFlow.Verify(ctx, verifyReq(), testMetadata())
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, admin.ID, resp.Admin.ID)
			assert.Equal(t, "root", resp.Admin.Username)
			assert.NotEmpty(t, resp.Session.AccessToken)
			assert.NotEmpty(t, resp.Session.RefreshToken)

			claims, err := tokenService.ValidateAdminToken(resp.Session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, admin.ID, claims.AdminID)
			assert.Equal(t, "access", claims.TokenType)

			stored, err := adminRepo.ByUsername(ctx, "root")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.NotNil(t, stored.LastLoginAt)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			req := verifyReq()
			req.Password = "WrongPass123!"
			_, err := authFlow.Verify(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownUsername", func(t *testing.T) {
			req := verifyReq()
			req.Username = "nobody"
			_, err := authFlow.Verify(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAdminNotFound(err))
		})

		t.Run("InactiveAdmin", func(t *testing.T) {
			dormant, err := fixtures.CreateAdmin("dormant", "Sup3rSecret!")
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Admin{}).Where("id = ?", dormant.ID).Update("is_active", false).Error
			require.NoError(t, err)

			req := verifyReq()
			req.Username = "dormant"
			_, err = authFlow.Verify(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAdminInactive(err))
		})

		t.Run("BadCaptcha", func(t *testing.T) {
			req := verifyReq()
			req.ChallengeID = "forged-challenge"
			_, err := authFlow.Verify(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidCaptcha(err))
		})

		t.Run("RefreshTokens", func(t *testing.T) {
			resp, err := authFlow.Verify(ctx, verifyReq(), testMetadata())
			require.NoError(t, err)

			access, refresh, err := tokenService.RefreshAdminToken(resp.Session.RefreshToken)
			require.NoError(t, err)
			assert.NotEmpty(t, access)
			assert.NotEmpty(t, refresh)

			// Access tokens must not be usable for refresh
			_, _, err = tokenService.RefreshAdminToken(resp.Session.AccessToken)
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
