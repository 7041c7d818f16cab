package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"

	"github.com/google/uuid"
)

type parcelService struct {
	store        repository.Store
	selectionTTL time.Duration
}

func NewParcelService(store repository.Store, selectionTTL time.Duration) ParcelService {
	return &parcelService{store: store, selectionTTL: selectionTTL}
}

func getParcelLockedByName(ctx context.Context, store repository.Store, name string) (*domain.Parcel, error) {
	parcel, err := store.Parcels().GetByNameForUpdate(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: parcel %q", ErrNotFound, name)
		}
		return nil, err
	}
	return parcel, nil
}

// occupyParcelLocked links a stay to a locked parcel. An occupied parcel
// is shared, not an error: the count grows and the original occupant
// keeps the ownership reference.
func occupyParcelLocked(ctx context.Context, store repository.Store, parcel *domain.Parcel, stayID int64) error {
	if err := store.Parcels().LinkStay(ctx, parcel.ID, stayID); err != nil {
		return err
	}
	count, err := store.Parcels().CountActiveStays(ctx, parcel.ID, 0)
	if err != nil {
		return err
	}
	parcel.State = domain.ParcelStateOccupied
	parcel.OccupantCount = count
	if parcel.OwningStayID == nil {
		id := stayID
		parcel.OwningStayID = &id
	}
	return store.Parcels().Update(ctx, parcel)
}

// releaseParcelLocked re-derives a locked parcel's occupancy after one
// stay leaves it. The recount is authoritative: the count is never
// blindly decremented. With no active stays left the parcel goes free
// and loses its owner; otherwise it stays occupied at the recounted
// value and the remaining occupants keep precedence.
func releaseParcelLocked(ctx context.Context, store repository.Store, parcel *domain.Parcel, excludingStayID int64) error {
	count, err := store.Parcels().CountActiveStays(ctx, parcel.ID, excludingStayID)
	if err != nil {
		return err
	}
	if count == 0 {
		parcel.State = domain.ParcelStateFree
		parcel.OwningStayID = nil
		parcel.OccupantCount = 0
	} else {
		parcel.State = domain.ParcelStateOccupied
		parcel.OccupantCount = count
		if parcel.OwningStayID != nil && *parcel.OwningStayID == excludingStayID {
			parcel.OwningStayID = nil
		}
	}
	return store.Parcels().Update(ctx, parcel)
}

// regenerateParcelNames rebuilds the stay's display string from the
// association table. Only ever derived, never parsed back.
func regenerateParcelNames(ctx context.Context, store repository.Store, stay *domain.Stay) error {
	parcels, err := store.Parcels().ListByStay(ctx, stay.ID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(parcels))
	for _, p := range parcels {
		names = append(names, p.Name)
	}
	stay.ParcelNames = strings.Join(names, ", ")
	return nil
}

func (s *parcelService) CreateParcel(ctx context.Context, name string, posX, posY int32, isBedUnit bool) (*domain.Parcel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: parcel name is required", ErrInvalidInput)
	}
	if _, err := s.store.Parcels().GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: parcel %q already exists", ErrConflict, name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	parcel := &domain.Parcel{
		Name:      name,
		State:     domain.ParcelStateFree,
		PosX:      posX,
		PosY:      posY,
		IsBedUnit: isBedUnit,
	}
	if err := s.store.Parcels().Create(ctx, parcel); err != nil {
		return nil, err
	}
	return parcel, nil
}

func (s *parcelService) ListParcels(ctx context.Context) ([]domain.Parcel, error) {
	return s.store.Parcels().List(ctx)
}

// SelectParcels buffers provisional picks for a reserved stay. Picking
// an occupied parcel is allowed (sharing); the UI confirms intent, the
// engine accepts. Selections expire if liquidation never commits them.
func (s *parcelService) SelectParcels(ctx context.Context, stayID int64, names []string) ([]domain.ParcelSelection, error) {
	logger.EnterMethod("parcelService.SelectParcels", "stayID", stayID, "parcels", names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no parcels selected", ErrInvalidInput)
	}

	var selections []domain.ParcelSelection
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateReserved {
			return fmt.Errorf("%w: stay %d is %s, selections only buffer before liquidation", ErrInvalidState, stayID, stay.State)
		}
		// Replace any previous buffer for this stay.
		if err := store.Parcels().DeleteSelections(ctx, stayID); err != nil {
			return err
		}
		expiry := time.Now().Add(s.selectionTTL)
		for _, name := range names {
			parcel, err := store.Parcels().GetByName(ctx, name)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("%w: parcel %q", ErrNotFound, name)
				}
				return err
			}
			sel := domain.ParcelSelection{
				StayID:    stayID,
				ParcelID:  parcel.ID,
				Token:     uuid.NewString(),
				ExpiresAt: expiry,
			}
			if err := store.Parcels().CreateSelection(ctx, &sel); err != nil {
				return err
			}
			selections = append(selections, sel)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("parcelService.SelectParcels", err, "stayID", stayID)
		return nil, err
	}

	logger.ExitMethod("parcelService.SelectParcels", "stayID", stayID, "count", len(selections))
	return selections, nil
}

// AssignParcels links an active stay to the named parcels immediately.
// Parcels are locked in name order so two concurrent assignments cannot
// deadlock, and a shared parcel's count comes from the recount under the
// lock, never from overlapping reads.
func (s *parcelService) AssignParcels(ctx context.Context, stayID int64, names []string) (*domain.Stay, error) {
	logger.EnterMethod("parcelService.AssignParcels", "stayID", stayID, "parcels", names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no parcels given", ErrInvalidInput)
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var stay *domain.Stay
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		var err error
		stay, err = getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateReserved && stay.State != domain.StayStateActive {
			return fmt.Errorf("%w: stay %d is %s", ErrInvalidState, stayID, stay.State)
		}
		for _, name := range sorted {
			parcel, err := getParcelLockedByName(ctx, store, name)
			if err != nil {
				return err
			}
			if err := occupyParcelLocked(ctx, store, parcel, stay.ID); err != nil {
				return err
			}
		}
		if err := regenerateParcelNames(ctx, store, stay); err != nil {
			return err
		}
		return store.Stays().Update(ctx, stay)
	})
	if err != nil {
		logger.ExitMethodWithError("parcelService.AssignParcels", err, "stayID", stayID)
		return nil, err
	}

	logger.ExitMethod("parcelService.AssignParcels", "stayID", stayID, "parcelNames", stay.ParcelNames)
	return stay, nil
}

func (s *parcelService) ReleaseParcel(ctx context.Context, stayID int64, name string) error {
	logger.EnterMethod("parcelService.ReleaseParcel", "stayID", stayID, "parcel", name)

	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		parcel, err := getParcelLockedByName(ctx, store, name)
		if err != nil {
			return err
		}
		if err := store.Parcels().UnlinkStay(ctx, parcel.ID, stay.ID); err != nil {
			return err
		}
		if err := releaseParcelLocked(ctx, store, parcel, stay.ID); err != nil {
			return err
		}
		if err := regenerateParcelNames(ctx, store, stay); err != nil {
			return err
		}
		return store.Stays().Update(ctx, stay)
	})
	if err != nil {
		logger.ExitMethodWithError("parcelService.ReleaseParcel", err, "stayID", stayID)
		return err
	}

	logger.ExitMethod("parcelService.ReleaseParcel", "stayID", stayID, "parcel", name)
	return nil
}

// MoveOccupancy relocates a stay from one parcel to another — the whole
// stay when occupantIDs is empty, otherwise a subset (the stay then
// spans both parcels). The source is recounted exactly like a release;
// the target keeps its original owner when it is already occupied.
func (s *parcelService) MoveOccupancy(ctx context.Context, stayID int64, fromName, toName string, occupantIDs []int64) error {
	logger.EnterMethod("parcelService.MoveOccupancy", "stayID", stayID, "from", fromName, "to", toName)

	if fromName == toName {
		return fmt.Errorf("%w: source and destination parcel are the same", ErrInvalidInput)
	}

	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateActive {
			return fmt.Errorf("%w: stay %d is %s, expected %s", ErrInvalidState, stayID, stay.State, domain.StayStateActive)
		}

		// Lock both parcels in name order to avoid deadlock with a
		// concurrent move in the opposite direction.
		first, second := fromName, toName
		if second < first {
			first, second = second, first
		}
		locked := map[string]*domain.Parcel{}
		for _, name := range []string{first, second} {
			parcel, err := getParcelLockedByName(ctx, store, name)
			if err != nil {
				return err
			}
			locked[name] = parcel
		}
		from, to := locked[fromName], locked[toName]

		wholeStay := len(occupantIDs) == 0
		if wholeStay {
			// The stay leaves the source entirely.
			if err := store.Parcels().UnlinkStay(ctx, from.ID, stay.ID); err != nil {
				return err
			}
			if err := releaseParcelLocked(ctx, store, from, stay.ID); err != nil {
				return err
			}
		} else {
			// Subset move: verify the occupants belong to this stay. The
			// stay then spans both parcels, so the source keeps its link
			// and stays as it was.
			occupants, err := store.Occupants().ListByStay(ctx, stay.ID)
			if err != nil {
				return err
			}
			byID := make(map[int64]bool, len(occupants))
			for _, o := range occupants {
				byID[o.ID] = true
			}
			for _, id := range occupantIDs {
				if !byID[id] {
					return fmt.Errorf("%w: occupant %d does not belong to stay %d", ErrInvalidInput, id, stayID)
				}
			}
		}
		if err := occupyParcelLocked(ctx, store, to, stay.ID); err != nil {
			return err
		}

		if err := regenerateParcelNames(ctx, store, stay); err != nil {
			return err
		}
		return store.Stays().Update(ctx, stay)
	})
	if err != nil {
		logger.ExitMethodWithError("parcelService.MoveOccupancy", err, "stayID", stayID)
		return err
	}

	logger.ExitMethod("parcelService.MoveOccupancy", "stayID", stayID, "from", fromName, "to", toName)
	return nil
}
