package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/intake-relay/internal/models"
	"github.com/parisxmas/intake-relay/internal/repository"
)

var ErrUnknownKind = errors.New("unknown submission kind")

// Appender writes one row at the end of a named tab.
type Appender interface {
	Append(ctx context.Context, tab string, row []string) error
}

type SubmissionService struct {
	schemas *repository.SchemaRepo
	store   Appender
	now     func() time.Time
	logger  *zap.Logger
}

func NewSubmissionService(schemas *repository.SchemaRepo, store Appender, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{schemas: schemas, store: store, now: time.Now, logger: logger}
}

// Submit validates payload against the kind's schema and appends the
// resulting row. The store is not called when validation fails.
func (s *SubmissionService) Submit(ctx context.Context, kind string, payload map[string]any) (*models.Submission, error) {
	schema, ok := s.schemas.FindByKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	sub, err := Map(schema, payload, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Append(ctx, schema.Tab, sub.Row()); err != nil {
		return nil, err
	}

	s.logger.Info("submission appended", zap.String("kind", kind), zap.String("tab", schema.Tab))
	return sub, nil
}

// Preview maps payload without touching the store.
func (s *SubmissionService) Preview(kind string, payload map[string]any) (*models.Submission, error) {
	schema, ok := s.schemas.FindByKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return Map(schema, payload, s.now())
}

func (s *SubmissionService) Schemas() []models.TabSchema {
	return s.schemas.All()
}
