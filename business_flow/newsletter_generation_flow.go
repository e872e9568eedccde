package businessflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/app/services"
	"github.com/appestoicismo/newsllater/app/services/extractor"
	"github.com/appestoicismo/newsllater/app/services/framework"
	"github.com/appestoicismo/newsllater/app/services/prompt"
	"github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
	"github.com/appestoicismo/newsllater/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_generations_total",
			Help: "Newsletter generation requests by outcome",
		},
		[]string{"outcome"},
	)

	generationStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsletter_generation_stage_duration_seconds",
			Help:    "Duration of each newsletter generation stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

const (
	stageValidate    = "validate"
	stageResolve     = "resolve_audience"
	stageIngest      = "ingest"
	stageCredential  = "credential"
	stageGenerate    = "generate"
	stagePostProcess = "post_process"
	stagePersist     = "persist"
	stageCleanup     = "cleanup"
)

const (
	fileBlockSeparator = "\n---\n\n"
	pastedTextHeader   = "\n\n[Texto fornecido diretamente]\n"
)

// NewsletterGenerationFlow runs the generation pipeline for one request
type NewsletterGenerationFlow interface {
	Generate(ctx context.Context, req *dto.GenerateNewsletterRequest) (*dto.NewsletterResponse, error)
}

// NewsletterGenerationFlowImpl implements the generation pipeline
type NewsletterGenerationFlowImpl struct {
	audienceRepo   repository.AudienceRepository
	newsletterRepo repository.NewsletterRepository
	sourceFileRepo repository.SourceFileRepository
	settingRepo    repository.SettingRepository
	transact       repository.Transactor
	client         services.GenerationClient
}

// NewNewsletterGenerationFlow creates a new generation flow instance
func NewNewsletterGenerationFlow(
	audienceRepo repository.AudienceRepository,
	newsletterRepo repository.NewsletterRepository,
	sourceFileRepo repository.SourceFileRepository,
	settingRepo repository.SettingRepository,
	transact repository.Transactor,
	client services.GenerationClient,
) NewsletterGenerationFlow {
	return &NewsletterGenerationFlowImpl{
		audienceRepo:   audienceRepo,
		newsletterRepo: newsletterRepo,
		sourceFileRepo: sourceFileRepo,
		settingRepo:    settingRepo,
		transact:       transact,
		client:         client,
	}
}

// extractedFile is a source document after text extraction
type extractedFile struct {
	name     string
	fileType models.FileType
	content  string
}

// Generate validates the request, builds the source materials, calls the
// provider and stores the result. Spooled files are removed on every path.
func (f *NewsletterGenerationFlowImpl) Generate(ctx context.Context, req *dto.GenerateNewsletterRequest) (resp *dto.NewsletterResponse, err error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	defer func() {
		f.cleanup(ctx, req.Files)

		outcome := "success"
		if err != nil {
			outcome = CodeOf(err)
			if outcome == "" {
				outcome = "unknown"
			}
			log.Warn("newsletter generation failed", "code", outcome, "error", err.Error(), "duration", time.Since(started))
		} else {
			log.Info("newsletter generated", "newsletter_id", resp.ID, "duration", time.Since(started))
		}
		generationsTotal.WithLabelValues(outcome).Inc()
	}()

	// Stage 1: validate the request before touching files or the provider
	var audienceDescription string
	err = f.stage(ctx, stageValidate, func() error {
		var verr error
		audienceDescription, verr = f.validate(ctx, req)
		return verr
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: count the selected audience as used
	err = f.stage(ctx, stageResolve, func() error {
		return f.resolveAudience(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: extract sources in upload order
	var (
		files     []extractedFile
		materials string
	)
	err = f.stage(ctx, stageIngest, func() error {
		var ierr error
		files, materials, ierr = f.ingest(ctx, req)
		return ierr
	})
	if err != nil {
		return nil, err
	}

	// Stage 4: provider credential
	var apiKey string
	err = f.stage(ctx, stageCredential, func() error {
		var cerr error
		apiKey, cerr = f.apiKey(ctx)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	// Stage 5: render the prompt and call the provider
	var content string
	err = f.stage(ctx, stageGenerate, func() error {
		text, perr := prompt.Build(prompt.Input{
			AudienceDescription: audienceDescription,
			PainPoint:           req.PainPoint,
			AdditionalContext:   req.AdditionalContext,
			SourceMaterials:     materials,
		})
		if perr != nil {
			return NewValidationError("prompt", perr.Error(), perr)
		}

		content, perr = f.client.Generate(ctx, apiKey, text)
		return mapProviderError(perr)
	})
	if err != nil {
		return nil, err
	}

	// Stage 6: post-process
	var frameworkText string
	_ = f.stage(ctx, stagePostProcess, func() error {
		frameworkText = framework.Extract(content)
		return nil
	})

	// Stage 7: persist atomically
	newsletter := &models.Newsletter{
		AudienceID:          req.AudienceID,
		AudienceDescription: audienceDescription,
		PainPoint:           req.PainPoint,
		AdditionalContext:   utils.NilIfBlank(req.AdditionalContext),
		GeneratedContent:    content,
		FrameworkExtracted:  &frameworkText,
	}
	var sourceFiles []*models.SourceFile
	err = f.stage(ctx, stagePersist, func() error {
		terr := f.transact(ctx, func(txCtx context.Context) error {
			if err := f.newsletterRepo.Save(txCtx, newsletter); err != nil {
				return err
			}
			sourceFiles = make([]*models.SourceFile, 0, len(files))
			for _, file := range files {
				sourceFiles = append(sourceFiles, &models.SourceFile{
					NewsletterID: newsletter.ID,
					FileName:     file.name,
					FileType:     file.fileType,
					FileContent:  file.content,
				})
			}
			return f.sourceFileRepo.SaveBatch(txCtx, sourceFiles)
		})
		if terr != nil {
			return NewBusinessError(CodePersistenceError, "Failed to save newsletter", terr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 8: respond with the stored row
	stored, err := f.newsletterRepo.ByIDWithAudience(ctx, newsletter.ID)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to load newsletter", err)
	}
	if stored == nil {
		return nil, NewBusinessErrorf(CodePersistenceError, "Newsletter %d vanished after save", nil, newsletter.ID)
	}

	out := ToNewsletterDTO(*stored)
	for _, sf := range sourceFiles {
		out.SourceFiles = append(out.SourceFiles, ToSourceFileDTO(*sf))
	}
	return &out, nil
}

// stage runs fn and records its duration
func (f *NewsletterGenerationFlowImpl) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	generationStageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	logger.FromContext(ctx).Debug("generation stage finished",
		"stage", name,
		"duration", elapsed,
		"ok", err == nil,
	)
	return err
}

// validate checks the request and returns the audience description to
// snapshot: the selected audience wins over the free-text one.
func (f *NewsletterGenerationFlowImpl) validate(ctx context.Context, req *dto.GenerateNewsletterRequest) (string, error) {
	if blank(req.PainPoint) {
		return "", NewValidationError("pain_point", "Pain point is required", ErrPainPointRequired)
	}

	description := req.AudienceDescription
	if req.AudienceID != nil {
		audience, err := f.audienceRepo.ByID(ctx, *req.AudienceID)
		if err != nil {
			return "", NewBusinessError(CodePersistenceError, "Failed to load audience", err)
		}
		if audience == nil {
			return "", NewBusinessErrorf(CodeAudienceNotFound, "Audience %d not found", ErrAudienceNotFound, *req.AudienceID)
		}
		description = audience.Description
	}

	if blank(description) {
		return "", NewValidationError("audience_description", "Audience description is required", ErrAudienceDescriptionRequired)
	}
	return description, nil
}

// resolveAudience bumps the usage counter outside the persistence transaction
func (f *NewsletterGenerationFlowImpl) resolveAudience(ctx context.Context, req *dto.GenerateNewsletterRequest) error {
	if req.AudienceID == nil {
		return nil
	}
	if err := f.audienceRepo.IncrementUsage(ctx, *req.AudienceID); err != nil {
		return NewBusinessError(CodePersistenceError, "Failed to update audience usage", err)
	}
	return nil
}

// ingest extracts every file and assembles the source materials block
func (f *NewsletterGenerationFlowImpl) ingest(ctx context.Context, req *dto.GenerateNewsletterRequest) ([]extractedFile, string, error) {
	files := make([]extractedFile, 0, len(req.Files))
	blocks := make([]string, 0, len(req.Files))

	for _, upload := range req.Files {
		fileType := extractor.FileTypeFromName(upload.OriginalName)
		content, err := extractor.Extract(ctx, upload.Path, fileType)
		if err != nil {
			return nil, "", mapExtractionError(upload.OriginalName, err)
		}

		files = append(files, extractedFile{name: upload.OriginalName, fileType: fileType, content: content})
		blocks = append(blocks, fmt.Sprintf("[Arquivo: %s]\n%s\n", upload.OriginalName, content))
	}

	materials := strings.Join(blocks, fileBlockSeparator)
	if req.SourceText != "" {
		materials += pastedTextHeader + req.SourceText
	}

	if blank(materials) {
		return nil, "", NewValidationError("source_materials", "Source materials are required (files or text)", ErrSourceMaterialsRequired)
	}

	return files, materials, nil
}

func (f *NewsletterGenerationFlowImpl) apiKey(ctx context.Context) (string, error) {
	setting, err := f.settingRepo.ByKey(ctx, models.SettingAnthropicAPIKey)
	if err != nil {
		return "", NewBusinessError(CodePersistenceError, "Failed to read settings", err)
	}
	if setting == nil || blank(setting.Value) {
		return "", NewBusinessError(CodeConfiguration, "Anthropic API key is not configured", ErrAPIKeyNotConfigured)
	}
	return strings.TrimSpace(setting.Value), nil
}

// cleanup removes spooled uploads; failures are only logged
func (f *NewsletterGenerationFlowImpl) cleanup(ctx context.Context, files []dto.UploadedFile) {
	_ = f.stage(ctx, stageCleanup, func() error {
		for _, file := range files {
			if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.FromContext(ctx).Warn("failed to remove uploaded file", "path", file.Path, "error", err.Error())
			}
		}
		return nil
	})
}

func mapExtractionError(name string, err error) error {
	if extractor.IsUnsupportedType(err) {
		return NewBusinessErrorf(CodeUnsupportedFileType, "Unsupported file type: %s", err, name)
	}
	return NewBusinessErrorf(CodeExtractionFailure, "Failed to process file %s", err, name)
}

func mapProviderError(err error) error {
	if err == nil {
		return nil
	}

	var pe *services.ProviderError
	if errors.As(err, &pe) {
		return &BusinessError{
			Code:       CodeProviderError,
			Message:    "Claude API Error: " + pe.Message,
			StatusCode: pe.StatusCode,
			Err:        err,
		}
	}

	var te *services.TransportError
	if errors.As(err, &te) {
		return NewBusinessError(CodeTransportError, "Failed to reach Claude API", err)
	}

	return NewBusinessError(CodeTransportError, "Failed to generate newsletter", err)
}
