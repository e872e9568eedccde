package businessflow

import (
	"context"
	"strings"

	"github.com/appestoicismo/newsllater/app/dto"
	"github.com/appestoicismo/newsllater/models"
	"github.com/appestoicismo/newsllater/repository"
)

// AudienceFlow handles saved audiences
type AudienceFlow interface {
	Create(ctx context.Context, req *dto.AudienceRequest) (*dto.AudienceResponse, error)
	List(ctx context.Context) ([]dto.AudienceResponse, error)
	Get(ctx context.Context, id uint) (*dto.AudienceResponse, error)
	Update(ctx context.Context, id uint, req *dto.AudienceRequest) (*dto.AudienceResponse, error)
	Delete(ctx context.Context, id uint) error
}

// AudienceFlowImpl implements AudienceFlow
type AudienceFlowImpl struct {
	audienceRepo repository.AudienceRepository
}

// NewAudienceFlow creates a new audience flow instance
func NewAudienceFlow(audienceRepo repository.AudienceRepository) AudienceFlow {
	return &AudienceFlowImpl{audienceRepo: audienceRepo}
}

func validateAudienceRequest(req *dto.AudienceRequest) error {
	if blank(req.Name) {
		return NewValidationError("name", "Name and description are required", ErrAudienceFieldsRequired)
	}
	if blank(req.Description) {
		return NewValidationError("description", "Name and description are required", ErrAudienceFieldsRequired)
	}
	return nil
}

// Create stores a new audience
func (f *AudienceFlowImpl) Create(ctx context.Context, req *dto.AudienceRequest) (*dto.AudienceResponse, error) {
	if err := validateAudienceRequest(req); err != nil {
		return nil, err
	}

	audience := &models.Audience{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := f.audienceRepo.Save(ctx, audience); err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to create audience", err)
	}

	return f.Get(ctx, audience.ID)
}

// List returns every audience with newsletter counts, newest first
func (f *AudienceFlowImpl) List(ctx context.Context) ([]dto.AudienceResponse, error) {
	rows, err := f.audienceRepo.ListWithStats(ctx)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to list audiences", err)
	}

	out := make([]dto.AudienceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToAudienceDTO(*row))
	}
	return out, nil
}

// Get returns a single audience with its newsletter count
func (f *AudienceFlowImpl) Get(ctx context.Context, id uint) (*dto.AudienceResponse, error) {
	row, err := f.audienceRepo.ByIDWithStats(ctx, id)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to load audience", err)
	}
	if row == nil {
		return nil, NewBusinessErrorf(CodeAudienceNotFound, "Audience %d not found", ErrAudienceNotFound, id)
	}

	out := ToAudienceDTO(*row)
	return &out, nil
}

// Update replaces name and description
func (f *AudienceFlowImpl) Update(ctx context.Context, id uint, req *dto.AudienceRequest) (*dto.AudienceResponse, error) {
	if err := validateAudienceRequest(req); err != nil {
		return nil, err
	}

	updated, err := f.audienceRepo.Update(ctx, id, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return nil, NewBusinessError(CodePersistenceError, "Failed to update audience", err)
	}
	if !updated {
		return nil, NewBusinessErrorf(CodeAudienceNotFound, "Audience %d not found", ErrAudienceNotFound, id)
	}

	return f.Get(ctx, id)
}

// Delete removes an audience; its newsletters keep their snapshot and lose the link
func (f *AudienceFlowImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := f.audienceRepo.Delete(ctx, id)
	if err != nil {
		return NewBusinessError(CodePersistenceError, "Failed to delete audience", err)
	}
	if !deleted {
		return NewBusinessErrorf(CodeAudienceNotFound, "Audience %d not found", ErrAudienceNotFound, id)
	}
	return nil
}
