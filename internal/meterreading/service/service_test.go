package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kvartplata/kvartplata/internal/meterreading/domain"
	"github.com/kvartplata/kvartplata/internal/meterreading/repository"
	"github.com/kvartplata/kvartplata/internal/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MeterReading{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSubmit_AppendsHistory(t *testing.T) {
	svc, node := setupService(t)
	ctx := context.Background()
	apartmentID := node.Generate()
	submittedBy := node.Generate()

	first, err := svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.WaterCold,
		Reading:     120.5,
		ReadingDate: date(2025, 1, 1),
		SubmittedBy: submittedBy,
	})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 1), first.ReadingDate)

	_, err = svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.WaterCold,
		Reading:     131.0,
		ReadingDate: date(2025, 2, 1),
		SubmittedBy: submittedBy,
	})
	require.NoError(t, err)

	readings, err := svc.List(ctx, apartmentID, utility.WaterCold)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.InDelta(t, 120.5, readings[0].Reading, 1e-9)
	assert.InDelta(t, 131.0, readings[1].Reading, 1e-9)
}

func TestSubmit_RejectsDecrease(t *testing.T) {
	svc, node := setupService(t)
	ctx := context.Background()
	apartmentID := node.Generate()
	submittedBy := node.Generate()

	_, err := svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Gas,
		Reading:     500,
		ReadingDate: date(2025, 1, 1),
		SubmittedBy: submittedBy,
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Gas,
		Reading:     499,
		ReadingDate: date(2025, 2, 1),
		SubmittedBy: submittedBy,
	})
	assert.ErrorIs(t, err, domain.ErrReadingDecreased)
}

func TestSubmit_RejectsDuplicateDate(t *testing.T) {
	svc, node := setupService(t)
	ctx := context.Background()
	apartmentID := node.Generate()
	submittedBy := node.Generate()

	_, err := svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		Reading:     1000,
		ReadingDate: date(2025, 3, 1),
		SubmittedBy: submittedBy,
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: apartmentID,
		UtilityType: utility.Electricity,
		Reading:     1001,
		ReadingDate: date(2025, 3, 1),
		SubmittedBy: submittedBy,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReading)
}

func TestSubmit_Validation(t *testing.T) {
	svc, node := setupService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: node.Generate(),
		UtilityType: utility.Electricity,
		Reading:     -1,
		SubmittedBy: node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReading)

	_, err = svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: node.Generate(),
		UtilityType: "heating",
		Reading:     1,
		SubmittedBy: node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUtility)

	_, err = svc.Submit(ctx, domain.SubmitReadingRequest{
		ApartmentID: node.Generate(),
		UtilityType: utility.Electricity,
		Reading:     1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSubmitter)
}
