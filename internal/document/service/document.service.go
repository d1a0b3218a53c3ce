package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"trameserve/internal/document/model"
	"trameserve/internal/document/repository"
	"trameserve/internal/trame"
)

type DocumentService struct {
	Repo *repository.DocumentRepository
}

func NewDocumentService(repo *repository.DocumentRepository) *DocumentService {
	return &DocumentService{Repo: repo}
}

// Save validates and upserts one submission. A missing slug is derived
// from the title; a missing piece count is recomputed from the content,
// which is the durable source of truth anyway.
func (s *DocumentService) Save(ctx context.Context, req model.SaveRequest) (model.Document, error) {
	if strings.TrimSpace(req.Content) == "" {
		return model.Document{}, errors.New("markdown_content is required")
	}
	if req.Username == "" {
		return model.Document{}, errors.New("username is required")
	}
	if req.Slug == "" {
		req.Slug = Slugify(req.Title)
	}
	if req.Slug == "" {
		return model.Document{}, errors.New("slug is required when no title is given")
	}
	if req.SavingOrigin == "" {
		req.SavingOrigin = "manual"
	}
	if req.PieceCount <= 0 {
		req.PieceCount = trame.Parse(req.Slug, []byte(req.Content)).PieceCount()
	}
	return s.Repo.Upsert(ctx, req)
}

func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.Repo.ListAll(ctx)
}

func (s *DocumentService) GetByID(ctx context.Context, id int64) (model.Document, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DocumentService) GetBySlug(ctx context.Context, slug string) (model.Document, error) {
	return s.Repo.GetBySlug(ctx, slug)
}

func (s *DocumentService) DeleteBySlug(ctx context.Context, slug string) error {
	return s.Repo.DeleteBySlug(ctx, slug)
}

// Slugify lowercases and collapses anything that is not a letter or
// digit into single hyphens.
func Slugify(title string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			sb.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
