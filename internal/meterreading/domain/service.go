package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

type SubmitReadingRequest struct {
	ApartmentID snowflake.ID
	UtilityType utility.Type
	Reading     float64
	ReadingDate time.Time
	SubmittedBy snowflake.ID
}

type Service interface {
	// Submit records a cumulative reading. A value below the previous
	// reading is rejected; a second reading for the same utility and date
	// is a conflict.
	Submit(ctx context.Context, req SubmitReadingRequest) (MeterReading, error)
	List(ctx context.Context, apartmentID snowflake.ID, utilityType utility.Type) ([]MeterReading, error)
}

var (
	ErrInvalidApartment = errors.New("invalid_apartment")
	ErrInvalidUtility   = errors.New("invalid_utility")
	ErrInvalidReading   = errors.New("invalid_reading")
	ErrReadingDecreased = errors.New("reading_decreased")
	ErrDuplicateReading = errors.New("duplicate_reading")
	ErrInvalidSubmitter = errors.New("invalid_submitter")
)
