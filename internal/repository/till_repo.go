package repository

import (
	"context"
	"errors"
	"time"

	"github.com/artenioreis/loja-caixa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TillRepository interface {
	Create(ctx context.Context, s *model.TillSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TillSession, error)
	// FindOpenByUser returns (nil, nil) when the operator has no open
	// session — absence is an expected state, not an error.
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.TillSession, error)
	// LatestByUser returns the most recent session by opening time, or
	// (nil, nil) when the operator never opened a till.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*model.TillSession, error)
	// ListOpenBefore returns sessions still open whose opening time is
	// before t — the "forgotten tills" the dashboard flags.
	ListOpenBefore(ctx context.Context, t time.Time) ([]model.TillSession, error)
	Update(ctx context.Context, s *model.TillSession) error
}

type tillRepo struct{ db *gorm.DB }

func NewTillRepository(db *gorm.DB) TillRepository { return &tillRepo{db: db} }

func (r *tillRepo) Create(ctx context.Context, s *model.TillSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *tillRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TillSession, error) {
	var s model.TillSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *tillRepo) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.TillSession, error) {
	var s model.TillSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.TillOpen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *tillRepo) LatestByUser(ctx context.Context, userID uuid.UUID) (*model.TillSession, error) {
	var s model.TillSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("opened_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *tillRepo) ListOpenBefore(ctx context.Context, t time.Time) ([]model.TillSession, error) {
	var sessions []model.TillSession
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND opened_at < ?", model.TillOpen, t).
		Order("opened_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *tillRepo) Update(ctx context.Context, s *model.TillSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}
