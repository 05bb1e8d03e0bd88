package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

type UpsertTariffRequest struct {
	ApartmentID snowflake.ID
	UtilityType utility.Type
	Rate        float64
	ValidFrom   time.Time
}

type Service interface {
	// Upsert inserts a tariff or, when one already exists for the same
	// (apartment, utility, valid_from), replaces its rate.
	Upsert(ctx context.Context, req UpsertTariffRequest) (Tariff, error)
	List(ctx context.Context, apartmentID snowflake.ID) ([]Tariff, error)
	// ResolveRate returns the rate in effect at asOf.
	ResolveRate(ctx context.Context, apartmentID snowflake.ID, utilityType utility.Type, asOf time.Time) (Tariff, error)
}

var (
	ErrInvalidApartment = errors.New("invalid_apartment")
	ErrInvalidUtility   = errors.New("invalid_utility")
	ErrInvalidRate      = errors.New("invalid_rate")
	ErrInvalidValidFrom = errors.New("invalid_valid_from")
	ErrNotFound         = errors.New("not_found")
)
