package businessflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/app/services"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
	testingutil "github.com/appestoicismo/newsllater/testing"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerationClient records calls and returns a canned answer
type fakeGenerationClient struct {
	text    string
	err     error
	calls   int
	apiKey  string
	prompts []string
}

func (c *fakeGenerationClient) Generate(_ context.Context, apiKey, prompt string) (string, error) {
	c.calls++
	c.apiKey = apiKey
	c.prompts = append(c.prompts, prompt)
	return c.text, c.err
}

// failingSourceFileRepository fails every batch insert
type failingSourceFileRepository struct {
	repository.SourceFileRepository
}

func (failingSourceFileRepository) SaveBatch(context.Context, []*models.SourceFile) error {
	return errors.New("disk full")
}

type generationEnv struct {
	db       *testingutil.TestDB
	fixtures *testingutil.TestFixtures
	client   *fakeGenerationClient
	flow     businessflow.NewsletterGenerationFlow
}

func newGenerationEnv(testDB *testingutil.TestDB, sourceFiles repository.SourceFileRepository) *generationEnv {
	client := &fakeGenerationClient{text: "Título\n\nPasso 1: respire\nPasso 2: durma"}
	if sourceFiles == nil {
		sourceFiles = repository.NewSourceFileRepository(testDB.DB)
	}
	flow := businessflow.NewNewsletterGenerationFlow(
		repository.NewAudienceRepository(testDB.DB),
		repository.NewNewsletterRepository(testDB.DB),
		sourceFiles,
		repository.NewSettingRepository(testDB.DB),
		repository.NewTransactor(testDB.DB),
		client,
	)
	return &generationEnv{
		db:       testDB,
		fixtures: testingutil.NewTestFixtures(testDB),
		client:   client,
		flow:     flow,
	}
}

func spoolFile(t *testing.T, name, content string) dto.UploadedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file-"+name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return dto.UploadedFile{Path: path, OriginalName: name}
}

func assertRemoved(t *testing.T, files []dto.UploadedFile) {
	t.Helper()
	for _, f := range files {
		_, err := os.Stat(f.Path)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", f.Path)
	}
}

func TestNewsletterGenerationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newGenerationEnv(testDB, nil)
		ctx := testingutil.CreateTestContext()
		require.NoError(t, env.fixtures.SetTestSetting(models.SettingAnthropicAPIKey, "sk-test"))

		t.Run("EndToEnd", func(t *testing.T) {
			env.client.text = "Acordar às 3h\n\nPasso 1: anote o horário\nPasso 2: respire"
			audience, err := env.fixtures.CreateTestAudience("Adults with insomnia")
			require.NoError(t, err)
			files := []dto.UploadedFile{spoolFile(t, "notes.txt", "Dormir   bem\r\n")}

			resp, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceID: &audience.ID,
				PainPoint:  "waking at 3am",
				Files:      files,
			})
			require.NoError(t, err)
			require.NotNil(t, resp)

			require.NotNil(t, resp.AudienceID)
			assert.Equal(t, audience.ID, *resp.AudienceID)
			assert.Equal(t, "Adults with insomnia", resp.AudienceDescription)
			assert.Equal(t, "waking at 3am", resp.PainPoint)
			assert.Nil(t, resp.AdditionalContext)
			require.NotNil(t, resp.FrameworkExtracted)
			assert.Equal(t, "Passo 1: anote o horário\nPasso 2: respire", *resp.FrameworkExtracted)
			require.Len(t, resp.SourceFiles, 1)
			assert.Equal(t, "notes.txt", resp.SourceFiles[0].FileName)
			assert.Equal(t, "txt", resp.SourceFiles[0].FileType)

			assert.Equal(t, "sk-test", env.client.apiKey)
			last := env.client.prompts[len(env.client.prompts)-1]
			assert.Contains(t, last, "MATERIAIS DE CONHECIMENTO:\n[Arquivo: notes.txt]\nDormir bem\n")

			rows, err := repository.NewSourceFileRepository(testDB.DB).ByFilter(ctx, models.SourceFileFilter{NewsletterID: &resp.ID}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Dormir bem", rows[0].FileContent)
			assert.Equal(t, models.FileTypeTXT, rows[0].FileType)

			stored, err := repository.NewAudienceRepository(testDB.DB).ByID(ctx, audience.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, stored.UsageCount)

			assertRemoved(t, files)
		})

		t.Run("SourceMaterialsLayout", func(t *testing.T) {
			files := []dto.UploadedFile{
				spoolFile(t, "a.txt", "alpha"),
				spoolFile(t, "b.md", "# beta"),
			}
			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Readers",
				PainPoint:           "focus",
				SourceText:          "gamma",
				Files:               files,
			})
			require.NoError(t, err)

			last := env.client.prompts[len(env.client.prompts)-1]
			assert.Contains(t, last, "[Arquivo: a.txt]\nalpha\n\n---\n\n[Arquivo: b.md]\n# beta\n\n\n[Texto fornecido diretamente]\ngamma")
		})

		t.Run("AudienceSnapshotAndUsage", func(t *testing.T) {
			audience, err := env.fixtures.CreateTestAudience("Parents of toddlers")
			require.NoError(t, err)

			resp, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceID:          &audience.ID,
				AudienceDescription: "ignored when an audience is selected",
				PainPoint:           "bedtime battles",
				SourceText:          "rotina",
				AdditionalContext:   "edição especial",
			})
			require.NoError(t, err)
			assert.Equal(t, "Parents of toddlers", resp.AudienceDescription)
			require.NotNil(t, resp.AudienceName)
			assert.Equal(t, audience.Name, *resp.AudienceName)
			require.NotNil(t, resp.AdditionalContext)
			assert.Equal(t, "edição especial", *resp.AdditionalContext)

			found, err := repository.NewAudienceRepository(testDB.DB).ByID(ctx, audience.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, found.UsageCount)
		})

		t.Run("UnknownAudience", func(t *testing.T) {
			calls := env.client.calls
			before, err := env.fixtures.CountRows(&models.Newsletter{})
			require.NoError(t, err)
			files := []dto.UploadedFile{spoolFile(t, "notes.txt", "x")}

			_, err = env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceID: utils.ToPtr(uint(99999)),
				PainPoint:  "anything",
				Files:      files,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAudienceNotFound(err))
			assert.True(t, businessflow.IsNotFound(err))

			after, err := env.fixtures.CountRows(&models.Newsletter{})
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Equal(t, calls, env.client.calls)
			assertRemoved(t, files)
		})

		t.Run("EmptyPainPoint", func(t *testing.T) {
			audience, err := env.fixtures.CreateTestAudience("Athletes")
			require.NoError(t, err)
			calls := env.client.calls
			files := []dto.UploadedFile{spoolFile(t, "broken.pdf", "not a pdf")}

			_, err = env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceID: &audience.ID,
				PainPoint:  "   ",
				Files:      files,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err), "validation precedes extraction: %v", err)

			var be *businessflow.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, "pain_point", be.Field)
			assert.Equal(t, calls, env.client.calls)

			found, err := repository.NewAudienceRepository(testDB.DB).ByID(ctx, audience.ID)
			require.NoError(t, err)
			assert.Zero(t, found.UsageCount)
			assertRemoved(t, files)
		})

		t.Run("MissingAudienceDescription", func(t *testing.T) {
			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				PainPoint:  "stress",
				SourceText: "text",
			})
			var be *businessflow.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, businessflow.CodeValidation, be.Code)
			assert.Equal(t, "audience_description", be.Field)
		})

		t.Run("NoSourceMaterials", func(t *testing.T) {
			calls := env.client.calls
			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				SourceText:          "  \n ",
			})
			var be *businessflow.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, businessflow.CodeValidation, be.Code)
			assert.Equal(t, "source_materials", be.Field)
			assert.Equal(t, calls, env.client.calls)
		})

		t.Run("ExtractionFailure", func(t *testing.T) {
			files := []dto.UploadedFile{
				spoolFile(t, "ok.txt", "fine"),
				spoolFile(t, "broken.pdf", "not a pdf"),
			}
			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				Files:               files,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsExtractionFailure(err))
			assertRemoved(t, files)
		})

		t.Run("UnsupportedFileType", func(t *testing.T) {
			files := []dto.UploadedFile{spoolFile(t, "image.png", "png")}
			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				Files:               files,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsUnsupportedFileType(err))
			assertRemoved(t, files)
		})

		t.Run("ProviderError", func(t *testing.T) {
			env.client.err = &services.ProviderError{StatusCode: 401, Message: "invalid x-api-key"}
			defer func() { env.client.err = nil }()

			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				SourceText:          "text",
			})
			var be *businessflow.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, businessflow.CodeProviderError, be.Code)
			assert.Equal(t, 401, be.StatusCode)
			assert.Contains(t, be.Message, "invalid x-api-key")
		})

		t.Run("TransportError", func(t *testing.T) {
			env.client.err = &services.TransportError{Err: context.DeadlineExceeded}
			defer func() { env.client.err = nil }()

			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				SourceText:          "text",
			})
			assert.True(t, businessflow.IsTransportError(err))
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})

		t.Run("MissingAPIKey", func(t *testing.T) {
			require.NoError(t, env.fixtures.SetTestSetting(models.SettingAnthropicAPIKey, ""))
			defer func() {
				require.NoError(t, env.fixtures.SetTestSetting(models.SettingAnthropicAPIKey, "sk-test"))
			}()
			calls := env.client.calls

			_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
				AudienceDescription: "Adults",
				PainPoint:           "stress",
				SourceText:          "text",
			})
			assert.True(t, businessflow.IsConfigurationError(err))
			assert.Equal(t, calls, env.client.calls)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNewsletterGenerationFlowRollback(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newGenerationEnv(testDB, failingSourceFileRepository{repository.NewSourceFileRepository(testDB.DB)})
		ctx := testingutil.CreateTestContext()
		require.NoError(t, env.fixtures.SetTestSetting(models.SettingAnthropicAPIKey, "sk-test"))

		files := []dto.UploadedFile{spoolFile(t, "notes.txt", "content")}
		_, err := env.flow.Generate(ctx, &dto.GenerateNewsletterRequest{
			AudienceDescription: "Adults",
			PainPoint:           "stress",
			Files:               files,
		})
		require.Error(t, err)
		assert.True(t, businessflow.IsPersistenceError(err))

		count, err := env.fixtures.CountRows(&models.Newsletter{})
		require.NoError(t, err)
		assert.Zero(t, count)
		assertRemoved(t, files)

		return nil
	})
	require.NoError(t, err)
}
