package repository

import (
	"context"
	"errors"

	"github.com/Kiranppatil21/glass/internal/settings/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindByType(ctx context.Context, db *gorm.DB, settingType string) (*domain.Setting, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) FindByType(ctx context.Context, db *gorm.DB, settingType string) (*domain.Setting, error) {
	var setting domain.Setting
	err := db.WithContext(ctx).
		Where("type = ?", settingType).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}
