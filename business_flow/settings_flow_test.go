package businessflow_test

import (
	"testing"

	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
	testingutil "github.com/appestoicismo/newsllater/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewSettingsFlow(repository.NewSettingRepository(testDB.DB))
		ctx := testingutil.CreateTestContext()

		t.Run("GetAllDefaults", func(t *testing.T) {
			all, err := flow.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Alex Dantas", all[models.SettingSignatureName])
			assert.Equal(t, "equilibrado", all[models.SettingDefaultTone])
			assert.Equal(t, "", all[models.SettingAnthropicAPIKey])
		})

		t.Run("UpdateManyStringifies", func(t *testing.T) {
			require.NoError(t, flow.UpdateMany(ctx, map[string]any{
				models.SettingAnthropicAPIKey: "sk-live",
				"max_items":                   float64(3),
				"enabled":                     true,
			}))

			all, err := flow.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, "sk-live", all[models.SettingAnthropicAPIKey])
			assert.Equal(t, "3", all["max_items"])
			assert.Equal(t, "true", all["enabled"])
		})

		t.Run("UpdateManyRejectsNil", func(t *testing.T) {
			err := flow.UpdateMany(ctx, nil)
			assert.True(t, businessflow.IsValidationError(err))
		})

		t.Run("UpdateOne", func(t *testing.T) {
			require.NoError(t, flow.UpdateOne(ctx, models.SettingDefaultTone, "direto"))
			all, err := flow.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, "direto", all[models.SettingDefaultTone])

			err = flow.UpdateOne(ctx, " ", "x")
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}
