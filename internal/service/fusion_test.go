package service

import (
	"context"
	"testing"

	"campground-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A (1 person, responsible, 1 tent) folds into B (3 persons, 1 tent)
// under the sum policy.
func TestFuseStays_SumPolicy(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	source := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-04",
		PersonCount: 1, TentCount: 1, PersonNights: 3, State: domain.StayStateActive,
	})
	target := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-02", PlannedExitDate: "2026-09-05",
		PersonCount: 3, TentCount: 1, PersonNights: 9, State: domain.StayStateActive,
	})
	mover := store.addOccupant(domain.Occupant{
		Phone: "111", Name: "Ana", StayID: source.ID, IsResponsibleParty: true,
	})

	fused, err := svc.FuseStays(ctx, source.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, target.ID, fused.ID)
	assert.Equal(t, int32(4), fused.PersonCount)
	assert.Equal(t, int32(2), fused.TentCount)
	assert.Equal(t, int32(12), fused.PersonNights)
	assert.Equal(t, "2026-09-01", fused.EntryDate)
	assert.Equal(t, "2026-09-05", fused.PlannedExitDate)

	assert.Equal(t, domain.StayStateCancelled, store.stay(source.ID).State)

	moved, err := store.Occupants().GetByID(ctx, mover.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.StayID)
	assert.False(t, moved.IsResponsibleParty)
}

func TestFuseStays_MinPolicyStillSumsPersons(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeMin)
	ctx := context.Background()

	source := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-04",
		PersonCount: 2, TentCount: 3, PersonNights: 6, State: domain.StayStateActive,
	})
	target := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-04",
		PersonCount: 3, TentCount: 1, PersonNights: 9, State: domain.StayStateActive,
	})

	fused, err := svc.FuseStays(ctx, source.ID, target.ID)
	require.NoError(t, err)

	// Tents follow the policy; people are physical and always sum.
	assert.Equal(t, int32(1), fused.TentCount)
	assert.Equal(t, int32(5), fused.PersonCount)
	assert.Equal(t, int32(15), fused.PersonNights)
}

func TestFuseStays_VehiclePriority(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	source := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, Vehicle: domain.VehicleCar, State: domain.StayStateActive,
	})
	target := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, Vehicle: domain.VehicleMotorcycle, State: domain.StayStateActive,
	})

	fused, err := svc.FuseStays(ctx, source.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleCar, fused.Vehicle)
}

func TestFuseStays_PaymentsStayOnSource(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	source := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateActive,
	})
	target := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 2, PersonNights: 4, State: domain.StayStateActive,
	})
	require.NoError(t, store.Payments().Create(ctx, &domain.Payment{
		StayID: source.ID, AmountCents: 3000, Method: domain.PaymentMethodCash, ReceiptNumber: "r-1",
	}))

	_, err := svc.FuseStays(ctx, source.ID, target.ID)
	require.NoError(t, err)

	// The money never moves; the group statement reads across both.
	sum, err := store.Payments().SumByStay(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)

	sum, err = store.Payments().SumByStay(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

func TestFuseStays_MigratesParcelLinks(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	source := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateActive, ParcelNames: "4",
	})
	target := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateActive,
	})
	parcel := store.addParcel(domain.Parcel{
		Name: "4", State: domain.ParcelStateOccupied, OccupantCount: 1, OwningStayID: &source.ID,
	})
	require.NoError(t, store.Parcels().LinkStay(ctx, parcel.ID, source.ID))

	fused, err := svc.FuseStays(ctx, source.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", fused.ParcelNames)

	after := store.parcel(parcel.ID)
	require.NotNil(t, after.OwningStayID)
	assert.Equal(t, target.ID, *after.OwningStayID)
	assert.Equal(t, int32(1), after.OccupantCount)

	linked, err := store.Parcels().ListByStay(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, parcel.ID, linked[0].ID)
}

func TestFuseStays_Guards(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	stay := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateActive,
	})
	finalized := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateFinalized,
	})

	_, err := svc.FuseStays(ctx, stay.ID, stay.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.FuseStays(ctx, stay.ID, finalized.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.FuseStays(ctx, stay.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeResponsible_KeepsEarliest(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	stay := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 2, PersonNights: 4, State: domain.StayStateActive,
	})
	// Created in order; the memstore stamps CreatedOn on insert.
	var first, second *domain.Occupant
	first = &domain.Occupant{Phone: "111", Name: "Ana", StayID: stay.ID, IsResponsibleParty: true}
	require.NoError(t, store.Occupants().Create(ctx, first))
	second = &domain.Occupant{Phone: "222", Name: "Ben", StayID: stay.ID, IsResponsibleParty: true}
	require.NoError(t, store.Occupants().Create(ctx, second))

	require.NoError(t, svc.NormalizeResponsible(ctx, stay.ID))

	kept, err := store.Occupants().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsResponsibleParty)

	demoted, err := store.Occupants().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsResponsibleParty)
}

func TestReassignOccupant_Demotes(t *testing.T) {
	store := newMemStore()
	store.setRates(defaultRates())
	svc := NewFusionService(store, TentMergeSum)
	ctx := context.Background()

	from := store.addStay(domain.Stay{
		ResponsiblePhone: "111", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 2, PersonNights: 4, State: domain.StayStateActive,
	})
	to := store.addStay(domain.Stay{
		ResponsiblePhone: "222", EntryDate: "2026-09-01", PlannedExitDate: "2026-09-03",
		PersonCount: 1, PersonNights: 2, State: domain.StayStateActive,
	})
	occupant := store.addOccupant(domain.Occupant{
		Phone: "111", StayID: from.ID, IsResponsibleParty: true,
	})

	moved, err := svc.ReassignOccupant(ctx, occupant.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.StayID)
	assert.False(t, moved.IsResponsibleParty)

	_, err = svc.ReassignOccupant(ctx, occupant.ID, to.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
