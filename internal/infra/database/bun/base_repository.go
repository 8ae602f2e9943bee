package bun

import (
	"context"
	"errors"
	"fmt"
	"github.com/uptrace/bun"
	"github.com/gopublicist/publicist/pkg/logger"
)

type BaseRepository[T any] struct {
	db    *bun.DB
	model *T
}

func NewRepository[T any](db *bun.DB, model *T) *BaseRepository[T] {
	return &BaseRepository[T]{
		db:    db,
		model: model,
	}
}

func (r *BaseRepository[T]) DB() *bun.DB {
	return r.db
}

// Find - find by ID
func (r *BaseRepository[T]) Find(ctx context.Context, id int64) (*T, error) {
	model := new(T)
	err := r.db.NewSelect().
		Model(model).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		return nil, err
	}
	return model, nil
}

// FindBy - find by custom field
func (r *BaseRepository[T]) FindBy(ctx context.Context, field string, value interface{}) (*T, error) {
	model := new(T)
	err := r.db.NewSelect().
		Model(model).
		Where("? = ?", bun.Ident(field), value).
		Scan(ctx)

	if err != nil {
		return nil, err
	}
	return model, nil
}

// Create - create new record
func (r *BaseRepository[T]) Create(ctx context.Context, model *T) (*T, error) {
	res, err := r.DB().NewInsert().
		Model(&model).
		Exec(ctx)
	if err != nil {
		logger.Errorf("Error creating record with data: %+v, err: %+v", model, err)
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logger.Errorf("Error getting rows affected when creating with data: %+v, err: %+v", model, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("no rows inserted")
	}

	logger.Debugf("Data created with result: %+v", model)
	return model, nil
}

// Update - update existing record
func (r *BaseRepository[T]) Update(ctx context.Context, model *T) (*T, error) {
	res, err := r.db.NewUpdate().
		Model(model).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		logger.Errorf("Error updating record with data: %+v, err: %+v", model, err)
		return nil, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logger.Errorf("Error getting rows affected when updating with data: %+v, err: %+v", model, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, errors.New("no rows updated")
	}

	logger.Debugf("Data updated with result: %+v", model)
	return model, nil
}
