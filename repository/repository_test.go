package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
	testingutil "github.com/appestoicismo/newsllater/testing"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudienceRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAudienceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByID", func(t *testing.T) {
			audience := &models.Audience{Name: "Insones", Description: "Adults with insomnia"}
			require.NoError(t, repo.Save(ctx, audience))
			assert.NotZero(t, audience.ID)

			found, err := repo.ByID(ctx, audience.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Adults with insomnia", found.Description)
			assert.Equal(t, 0, found.UsageCount)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, 99999)
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("IncrementUsage", func(t *testing.T) {
			audience, err := fixtures.CreateTestAudience("Parents")
			require.NoError(t, err)

			require.NoError(t, repo.IncrementUsage(ctx, audience.ID))
			require.NoError(t, repo.IncrementUsage(ctx, audience.ID))

			found, err := repo.ByID(ctx, audience.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, found.UsageCount)

			err = repo.IncrementUsage(ctx, 99999)
			assert.Error(t, err)
		})

		t.Run("ListWithStats", func(t *testing.T) {
			audience, err := fixtures.CreateTestAudience("Runners")
			require.NoError(t, err)
			_, err = fixtures.CreateTestNewsletter(&audience.ID, "Runners", "knee pain")
			require.NoError(t, err)
			_, err = fixtures.CreateTestNewsletter(&audience.ID, "Runners", "motivation")
			require.NoError(t, err)

			stats, err := repo.ByIDWithStats(ctx, audience.ID)
			require.NoError(t, err)
			require.NotNil(t, stats)
			assert.Equal(t, int64(2), stats.NewsletterCount)
			assert.Equal(t, audience.Name, stats.Name)

			all, err := repo.ListWithStats(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(all), 1)
		})

		t.Run("Update", func(t *testing.T) {
			audience, err := fixtures.CreateTestAudience("Old description")
			require.NoError(t, err)

			updated, err := repo.Update(ctx, audience.ID, "New name", "New description")
			require.NoError(t, err)
			assert.True(t, updated)

			found, err := repo.ByID(ctx, audience.ID)
			require.NoError(t, err)
			assert.Equal(t, "New name", found.Name)
			assert.Equal(t, "New description", found.Description)

			updated, err = repo.Update(ctx, 99999, "x", "y")
			require.NoError(t, err)
			assert.False(t, updated)
		})

		t.Run("DeleteNullsNewsletterAudience", func(t *testing.T) {
			audience, err := fixtures.CreateTestAudience("Students")
			require.NoError(t, err)
			newsletter, err := fixtures.CreateTestNewsletter(&audience.ID, "Students", "exams")
			require.NoError(t, err)

			deleted, err := repo.Delete(ctx, audience.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			newsletterRepo := repository.NewNewsletterRepository(testDB.DB)
			found, err := newsletterRepo.ByID(ctx, newsletter.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Nil(t, found.AudienceID)
			assert.Equal(t, "Students", found.AudienceDescription)

			deleted, err = repo.Delete(ctx, audience.ID)
			require.NoError(t, err)
			assert.False(t, deleted)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNewsletterRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewNewsletterRepository(testDB.DB)
		sourceFileRepo := repository.NewSourceFileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		audience, err := fixtures.CreateTestAudience("Adults with insomnia")
		require.NoError(t, err)

		first, err := fixtures.CreateTestNewsletter(&audience.ID, "Adults with insomnia", "waking at 3am")
		require.NoError(t, err)
		second, err := fixtures.CreateTestNewsletter(nil, "Busy parents", "no time for insomnia routines")
		require.NoError(t, err)
		_, err = fixtures.CreateTestNewsletter(nil, "Runners", "knee pain")
		require.NoError(t, err)

		t.Run("ListNewestFirst", func(t *testing.T) {
			rows, err := repo.ListWithAudience(ctx, models.NewsletterFilter{}, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Greater(t, rows[0].ID, rows[2].ID)
		})

		t.Run("ListJoinsAudienceName", func(t *testing.T) {
			rows, err := repo.ListWithAudience(ctx, models.NewsletterFilter{AudienceID: &audience.ID}, 10, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].AudienceName)
			assert.Equal(t, audience.Name, *rows[0].AudienceName)
		})

		t.Run("SearchSubstring", func(t *testing.T) {
			filter := models.NewsletterFilter{Search: utils.ToPtr("insomnia")}
			rows, err := repo.ListWithAudience(ctx, filter, 0, 0)
			require.NoError(t, err)

			ids := make([]uint, 0, len(rows))
			for _, row := range rows {
				ids = append(ids, row.ID)
			}
			assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

			count, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("SearchIsCaseSensitive", func(t *testing.T) {
			count, err := repo.Count(ctx, models.NewsletterFilter{Search: utils.ToPtr("INSOMNIA")})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("Pagination", func(t *testing.T) {
			rows, err := repo.ListWithAudience(ctx, models.NewsletterFilter{}, 2, 2)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		t.Run("ByIDWithAudience", func(t *testing.T) {
			row, err := repo.ByIDWithAudience(ctx, second.ID)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Nil(t, row.AudienceName)
			assert.Equal(t, "Busy parents", row.AudienceDescription)

			row, err = repo.ByIDWithAudience(ctx, 99999)
			require.NoError(t, err)
			assert.Nil(t, row)
		})

		t.Run("UpdateContent", func(t *testing.T) {
			updated, err := repo.UpdateContent(ctx, first.ID, "edited", nil)
			require.NoError(t, err)
			assert.True(t, updated)

			found, err := repo.ByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "edited", found.GeneratedContent)
			assert.Nil(t, found.FrameworkExtracted)
			require.NotNil(t, found.AudienceID)
			assert.Equal(t, audience.ID, *found.AudienceID)

			updated, err = repo.UpdateContent(ctx, 99999, "edited", nil)
			require.NoError(t, err)
			assert.False(t, updated)
		})

		t.Run("DeleteCascadesSourceFiles", func(t *testing.T) {
			newsletter, err := fixtures.CreateTestNewsletter(nil, "Temporary", "temporary")
			require.NoError(t, err)
			_, err = fixtures.CreateTestSourceFile(newsletter.ID, "notes.txt", models.FileTypeTXT, "content")
			require.NoError(t, err)

			deleted, err := repo.Delete(ctx, newsletter.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			count, err := sourceFileRepo.Count(ctx, models.SourceFileFilter{NewsletterID: &newsletter.ID})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSourceFileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSourceFileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		newsletter, err := fixtures.CreateTestNewsletter(nil, "Readers", "focus")
		require.NoError(t, err)

		t.Run("SaveBatchAndListMeta", func(t *testing.T) {
			files := []*models.SourceFile{
				{NewsletterID: newsletter.ID, FileName: "a.pdf", FileType: models.FileTypePDF, FileContent: "pdf text"},
				{NewsletterID: newsletter.ID, FileName: "b.md", FileType: models.FileTypeMarkdown, FileContent: "# md"},
			}
			require.NoError(t, repo.SaveBatch(ctx, files))

			meta, err := repo.ListMetaByNewsletter(ctx, newsletter.ID)
			require.NoError(t, err)
			require.Len(t, meta, 2)
			assert.Equal(t, "a.pdf", meta[0].FileName)
			assert.Equal(t, models.FileTypeMarkdown, meta[1].FileType)
			assert.Empty(t, meta[0].FileContent)
		})

		t.Run("ByFilterFileType", func(t *testing.T) {
			pdf := models.FileTypePDF
			rows, err := repo.ByFilter(ctx, models.SourceFileFilter{NewsletterID: &newsletter.ID, FileType: &pdf}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "pdf text", rows[0].FileContent)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSettingRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSettingRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("DefaultsSeeded", func(t *testing.T) {
			setting, err := repo.ByKey(ctx, models.SettingSignatureName)
			require.NoError(t, err)
			require.NotNil(t, setting)
			assert.Equal(t, "Alex Dantas", setting.Value)

			all, err := repo.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, len(models.DefaultSettings))
		})

		t.Run("ByKeyMissing", func(t *testing.T) {
			setting, err := repo.ByKey(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, setting)
		})

		t.Run("UpsertMany", func(t *testing.T) {
			require.NoError(t, repo.UpsertMany(ctx, map[string]string{
				models.SettingAnthropicAPIKey: "sk-test",
				"custom":                      "value",
			}))

			setting, err := repo.ByKey(ctx, models.SettingAnthropicAPIKey)
			require.NoError(t, err)
			assert.Equal(t, "sk-test", setting.Value)

			setting, err = repo.ByKey(ctx, "custom")
			require.NoError(t, err)
			assert.Equal(t, "value", setting.Value)
		})

		t.Run("EnsureDefaultsKeepsExisting", func(t *testing.T) {
			require.NoError(t, repo.Upsert(ctx, models.SettingDefaultTone, "direto"))
			require.NoError(t, repo.EnsureDefaults(ctx, models.DefaultSettings))

			setting, err := repo.ByKey(ctx, models.SettingDefaultTone)
			require.NoError(t, err)
			assert.Equal(t, "direto", setting.Value)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestWithTransactionRollback(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAudienceRepository(testDB.DB)
		transact := repository.NewTransactor(testDB.DB)
		ctx := testingutil.CreateTestContext()
		boom := errors.New("boom")

		err := transact(ctx, func(txCtx context.Context) error {
			if err := repo.Save(txCtx, &models.Audience{Name: "Rolled back", Description: "x"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		exists, err := repo.Exists(ctx, models.AudienceFilter{Name: utils.ToPtr("Rolled back")})
		require.NoError(t, err)
		assert.False(t, exists)

		return nil
	})
	require.NoError(t, err)
}
