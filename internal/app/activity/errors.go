package activity

import (
	"errors"

	"dominion/internal/domain/campaign"
)

var (
	ErrInvalidRequest        = errors.New("invalid activity request")
	ErrInvalidParams         = errors.New("invalid activity params")
	ErrActivityNotFound      = errors.New("activity not found")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrTerritoryRequired     = errors.New("activity requires a territory")
	ErrCatalogFrozen         = errors.New("activity catalog is frozen")
	ErrDuplicateActivity     = errors.New("activity already registered")
)

type InsufficientResourcesError struct {
	ActivityKey string
	Underflow   map[campaign.Category]campaign.Underflow
}

func (e *InsufficientResourcesError) Error() string {
	return ErrInsufficientResources.Error()
}

func (e *InsufficientResourcesError) Unwrap() error {
	return ErrInsufficientResources
}
