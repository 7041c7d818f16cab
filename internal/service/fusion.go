package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"
	"campground-backend/internal/utils"
)

// TentMergePolicy picks how tent counts combine when two stays fuse.
// "sum" treats both cohorts' tents as kept; "min" assumes the duplicate
// registration re-declared the same tents.
const (
	TentMergeSum = "sum"
	TentMergeMin = "min"
)

type fusionService struct {
	store           repository.Store
	tentMergePolicy string
}

func NewFusionService(store repository.Store, tentMergePolicy string) FusionService {
	if tentMergePolicy != TentMergeMin {
		tentMergePolicy = TentMergeSum
	}
	return &fusionService{store: store, tentMergePolicy: tentMergePolicy}
}

// FuseStays folds the source stay into the target. Occupants move over
// demoted, resources aggregate, the parcel links migrate, and the source
// ends CANCELLED. Payments already recorded stay attached to the source;
// the group statement reads across both, so no money is lost or moved.
func (s *fusionService) FuseStays(ctx context.Context, sourceID, targetID int64) (*domain.Stay, error) {
	logger.EnterMethod("fusionService.FuseStays", "sourceID", sourceID, "targetID", targetID)

	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot fuse a stay with itself", ErrInvalidInput)
	}

	var target *domain.Stay
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		// Lock both in ID order so two concurrent fusions over the same
		// pair cannot deadlock.
		firstID, secondID := sourceID, targetID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		locked := map[int64]*domain.Stay{}
		for _, id := range []int64{firstID, secondID} {
			stay, err := getStayLocked(ctx, store, id)
			if err != nil {
				return err
			}
			locked[id] = stay
		}
		source, tgt := locked[sourceID], locked[targetID]
		target = tgt

		for _, stay := range []*domain.Stay{source, target} {
			if stay.State == domain.StayStateFinalized || stay.State == domain.StayStateCancelled {
				return fmt.Errorf("%w: stay %d is %s and cannot be fused", ErrInvalidState, stay.ID, stay.State)
			}
		}

		// Move every occupant; none of them may outrank the target's
		// existing responsible party.
		occupants, err := store.Occupants().ListByStay(ctx, source.ID)
		if err != nil {
			return err
		}
		for i := range occupants {
			o := &occupants[i]
			o.StayID = target.ID
			o.IsResponsibleParty = false
			if err := store.Occupants().Update(ctx, o); err != nil {
				return err
			}
		}

		target.PersonCount += source.PersonCount
		target.ChairCount += source.ChairCount
		target.TableCount += source.TableCount
		switch s.tentMergePolicy {
		case TentMergeMin:
			if source.TentCount < target.TentCount {
				target.TentCount = source.TentCount
			}
		default:
			target.TentCount += source.TentCount
		}
		target.Vehicle = domain.MergeVehicle(target.Vehicle, source.Vehicle)
		target.PersonNights += source.PersonNights
		target.DiscountCents += source.DiscountCents
		target.EntryDate = utils.MinDate(target.EntryDate, source.EntryDate)
		target.PlannedExitDate = utils.MaxDate(target.PlannedExitDate, source.PlannedExitDate)
		if source.State == domain.StayStateActive {
			target.State = domain.StayStateActive
		}

		// Re-point the parcel links. Parcels owned by the source pass
		// ownership to the target; shared parcels keep their owner and
		// only get recounted.
		parcels, err := store.Parcels().ListByStay(ctx, source.ID)
		if err != nil {
			return err
		}
		for i := range parcels {
			parcel, err := store.Parcels().GetByIDForUpdate(ctx, parcels[i].ID)
			if err != nil {
				return err
			}
			if err := store.Parcels().UnlinkStay(ctx, parcel.ID, source.ID); err != nil {
				return err
			}
			if err := store.Parcels().LinkStay(ctx, parcel.ID, target.ID); err != nil {
				return err
			}
			if parcel.OwningStayID != nil && *parcel.OwningStayID == source.ID {
				id := target.ID
				parcel.OwningStayID = &id
			}
			count, err := store.Parcels().CountActiveStays(ctx, parcel.ID, 0)
			if err != nil {
				return err
			}
			parcel.OccupantCount = count
			if err := store.Parcels().Update(ctx, parcel); err != nil {
				return err
			}
		}

		source.State = domain.StayStateCancelled
		if err := store.Stays().Update(ctx, source); err != nil {
			return err
		}

		if err := regenerateParcelNames(ctx, store, target); err != nil {
			return err
		}
		return store.Stays().Update(ctx, target)
	})
	if err != nil {
		logger.ExitMethodWithError("fusionService.FuseStays", err, "sourceID", sourceID, "targetID", targetID)
		return nil, err
	}

	logger.ExitMethod("fusionService.FuseStays", "targetID", target.ID, "persons", target.PersonCount)
	return target, nil
}

// ReassignOccupant moves a single person to another stay, demoted. The
// source stay keeps its counts; use FuseStays when the whole group was
// double-registered.
func (s *fusionService) ReassignOccupant(ctx context.Context, occupantID, newStayID int64) (*domain.Occupant, error) {
	logger.EnterMethod("fusionService.ReassignOccupant", "occupantID", occupantID, "newStayID", newStayID)

	var occupant *domain.Occupant
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, newStayID)
		if err != nil {
			return err
		}
		if stay.State == domain.StayStateFinalized || stay.State == domain.StayStateCancelled {
			return fmt.Errorf("%w: stay %d is %s", ErrInvalidState, stay.ID, stay.State)
		}
		occupant, err = store.Occupants().GetByID(ctx, occupantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: occupant %d", ErrNotFound, occupantID)
			}
			return err
		}
		if occupant.StayID == newStayID {
			return fmt.Errorf("%w: occupant %d already belongs to stay %d", ErrInvalidInput, occupantID, newStayID)
		}
		occupant.StayID = newStayID
		occupant.IsResponsibleParty = false
		return store.Occupants().Update(ctx, occupant)
	})
	if err != nil {
		logger.ExitMethodWithError("fusionService.ReassignOccupant", err, "occupantID", occupantID)
		return nil, err
	}

	logger.ExitMethod("fusionService.ReassignOccupant", "occupantID", occupantID, "newStayID", newStayID)
	return occupant, nil
}

// NormalizeResponsible demotes all but the earliest-registered
// responsible party of a stay. Legacy imports and fused stays can end up
// with two; a stay must have at most one payer.
func (s *fusionService) NormalizeResponsible(ctx context.Context, stayID int64) error {
	logger.EnterMethod("fusionService.NormalizeResponsible", "stayID", stayID)

	err := s.store.WithTx(ctx, func(store repository.Store) error {
		if _, err := getStayLocked(ctx, store, stayID); err != nil {
			return err
		}
		occupants, err := store.Occupants().ListByStay(ctx, stayID)
		if err != nil {
			return err
		}
		var keeper *domain.Occupant
		for i := range occupants {
			o := &occupants[i]
			if !o.IsResponsibleParty {
				continue
			}
			if keeper == nil || o.CreatedOn.Before(keeper.CreatedOn) {
				keeper = o
			}
		}
		if keeper == nil {
			return nil
		}
		for i := range occupants {
			o := &occupants[i]
			if o.IsResponsibleParty && o.ID != keeper.ID {
				o.IsResponsibleParty = false
				if err := store.Occupants().Update(ctx, o); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("fusionService.NormalizeResponsible", err, "stayID", stayID)
		return err
	}

	logger.ExitMethod("fusionService.NormalizeResponsible", "stayID", stayID)
	return nil
}
