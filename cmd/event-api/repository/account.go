package repository

import (
	"context"
	"errors"
	"fmt"

	"event-rest-api/cmd/event-api/model"

	"gorm.io/gorm"
)

type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{
		db: db,
	}
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {

	var account model.Account

	result := r.db.
		WithContext(ctx).
		Model(&model.Account{}).
		Where("email = ?", email).
		Take(&account)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, ErrNotFound
	}
	if result.Error != nil {
		return model.Account{}, fmt.Errorf("find account: %w", result.Error)
	}

	return account, nil
}

func (r *AccountRepo) CreateAccount(ctx context.Context, account *model.Account) error {

	result := r.db.
		WithContext(ctx).
		Create(account)

	if result.Error != nil {
		return fmt.Errorf("create account: %w", result.Error)
	}

	return nil
}

// Migrate creates or updates the tables backing both repositories.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.Account{}, &model.Event{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
