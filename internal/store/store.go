// Package store persists curated condition content in Postgres.
package store

import (
	"context"
	"errors"

	"github.com/pielsanaia/pielsana/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error)
	ListConditions(ctx context.Context) ([]*models.ConditionInfo, error)
	UpsertCondition(ctx context.Context, info *models.ConditionInfo) (*models.ConditionInfo, error)
	DeleteCondition(ctx context.Context, slug string) error
}
