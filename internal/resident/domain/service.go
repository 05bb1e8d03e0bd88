package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type EnsureResidentRequest struct {
	TelegramID int64
	FullName   string
}

type AddResidentRequest struct {
	ApartmentID snowflake.ID
	TelegramID  int64
	FullName    string
	IsAdmin     bool
}

// ApartmentResident is a resident joined with its residency flags, as shown
// on the dashboard.
type ApartmentResident struct {
	ID         snowflake.ID `json:"id"`
	TelegramID int64        `json:"telegram_id"`
	FullName   string       `json:"full_name"`
	IsAdmin    bool         `json:"is_admin"`
}

type Service interface {
	// EnsureResident returns the resident matching the telegram identity,
	// creating it on first contact. Idempotent under concurrent calls.
	EnsureResident(ctx context.Context, req EnsureResidentRequest) (Resident, error)
	// FindApartment returns the apartment the telegram identity belongs to,
	// or ErrNotFound when the resident is not linked to one.
	FindApartment(ctx context.Context, telegramID int64) (Apartment, error)
	GetApartment(ctx context.Context, id snowflake.ID) (Apartment, error)
	IsAdmin(ctx context.Context, telegramID int64, apartmentID snowflake.ID) (bool, error)
	List(ctx context.Context, apartmentID snowflake.ID) ([]ApartmentResident, error)
	// Add registers a resident in an apartment, reusing an existing resident
	// row when the telegram identity is already known.
	Add(ctx context.Context, req AddResidentRequest) (Resident, error)
}

var (
	ErrInvalidTelegramID = errors.New("invalid_telegram_id")
	ErrInvalidFullName   = errors.New("invalid_full_name")
	ErrInvalidApartment  = errors.New("invalid_apartment")
	ErrAlreadyResident   = errors.New("already_resident")
	ErrNotFound          = errors.New("not_found")
)
