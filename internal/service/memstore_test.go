package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests.
// WithTx applies the function directly; the settlement logic under test
// is exercised against real state transitions, not SQL.
type memStore struct {
	mu sync.Mutex

	tariffs   []domain.Tariff
	parcels   map[int64]*domain.Parcel
	stays     map[int64]*domain.Stay
	occupants map[int64]*domain.Occupant
	payments  map[int64]*domain.Payment
	extras    map[int64]*domain.ExtraCharge
	users     map[int64]*domain.StaffUser

	// parcelID -> stayID -> linked
	links      map[int64]map[int64]bool
	selections []domain.ParcelSelection

	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		parcels:   map[int64]*domain.Parcel{},
		stays:     map[int64]*domain.Stay{},
		occupants: map[int64]*domain.Occupant{},
		payments:  map[int64]*domain.Payment{},
		extras:    map[int64]*domain.ExtraCharge{},
		users:     map[int64]*domain.StaffUser{},
		links:     map[int64]map[int64]bool{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

func (m *memStore) Tariffs() repository.TariffRepository           { return memTariffs{m} }
func (m *memStore) Parcels() repository.ParcelRepository           { return memParcels{m} }
func (m *memStore) Stays() repository.StayRepository               { return memStays{m} }
func (m *memStore) Occupants() repository.OccupantRepository       { return memOccupants{m} }
func (m *memStore) Payments() repository.PaymentRepository         { return memPayments{m} }
func (m *memStore) ExtraCharges() repository.ExtraChargeRepository { return memExtras{m} }
func (m *memStore) Users() repository.UserRepository               { return memUsers{m} }

// setRates seeds one tariff row per category, effective well in the past.
func (m *memStore) setRates(rates map[domain.TariffCategory]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := time.Now().AddDate(-1, 0, 0)
	for cat, amount := range rates {
		m.tariffs = append(m.tariffs, domain.Tariff{
			ID: m.id(), Category: cat, AmountCents: amount, EffectiveFrom: from,
		})
	}
}

func (m *memStore) addStay(st domain.Stay) *domain.Stay {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.ID == 0 {
		st.ID = m.id()
	}
	cp := st
	m.stays[cp.ID] = &cp
	return &cp
}

func (m *memStore) addParcel(p domain.Parcel) *domain.Parcel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.id()
	}
	cp := p
	m.parcels[cp.ID] = &cp
	return &cp
}

func (m *memStore) addOccupant(o domain.Occupant) *domain.Occupant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		o.ID = m.id()
	}
	cp := o
	m.occupants[cp.ID] = &cp
	return &cp
}

func (m *memStore) stay(id int64) domain.Stay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.stays[id]
}

func (m *memStore) parcel(id int64) domain.Parcel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.parcels[id]
}

type memTariffs struct{ m *memStore }

func (r memTariffs) Insert(ctx context.Context, t *domain.Tariff) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.ID = r.m.id()
	t.CreatedOn = time.Now()
	r.m.tariffs = append(r.m.tariffs, *t)
	return nil
}

func (r memTariffs) Snapshot(ctx context.Context, at time.Time) (domain.TariffSnapshot, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	snap := domain.TariffSnapshot{}
	latest := map[domain.TariffCategory]time.Time{}
	for _, t := range r.m.tariffs {
		if t.EffectiveFrom.After(at) {
			continue
		}
		if prev, ok := latest[t.Category]; ok && t.EffectiveFrom.Before(prev) {
			continue
		}
		latest[t.Category] = t.EffectiveFrom
		snap[t.Category] = t.AmountCents
	}
	return snap, nil
}

func (r memTariffs) ListHistory(ctx context.Context, category domain.TariffCategory) ([]domain.Tariff, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Tariff
	for _, t := range r.m.tariffs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

type memParcels struct{ m *memStore }

func (r memParcels) Create(ctx context.Context, p *domain.Parcel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.id()
	cp := *p
	r.m.parcels[cp.ID] = &cp
	return nil
}

func (r memParcels) GetByID(ctx context.Context, id int64) (*domain.Parcel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.parcels[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r memParcels) GetByName(ctx context.Context, name string) (*domain.Parcel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.parcels {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memParcels) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Parcel, error) {
	return r.GetByID(ctx, id)
}

func (r memParcels) GetByNameForUpdate(ctx context.Context, name string) (*domain.Parcel, error) {
	return r.GetByName(ctx, name)
}

func (r memParcels) List(ctx context.Context) ([]domain.Parcel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Parcel
	for _, p := range r.m.parcels {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memParcels) Update(ctx context.Context, p *domain.Parcel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.parcels[p.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *p
	r.m.parcels[cp.ID] = &cp
	return nil
}

func (r memParcels) LinkStay(ctx context.Context, parcelID, stayID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.links[parcelID] == nil {
		r.m.links[parcelID] = map[int64]bool{}
	}
	r.m.links[parcelID][stayID] = true
	return nil
}

func (r memParcels) UnlinkStay(ctx context.Context, parcelID, stayID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.links[parcelID], stayID)
	return nil
}

func (r memParcels) ListByStay(ctx context.Context, stayID int64) ([]domain.Parcel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Parcel
	for parcelID, stays := range r.m.links {
		if stays[stayID] {
			out = append(out, *r.m.parcels[parcelID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memParcels) CountActiveStays(ctx context.Context, parcelID, excludingStayID int64) (int32, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int32
	for stayID := range r.m.links[parcelID] {
		if stayID == excludingStayID {
			continue
		}
		st, ok := r.m.stays[stayID]
		if !ok {
			continue
		}
		if st.State == domain.StayStateReserved || st.State == domain.StayStateActive {
			count++
		}
	}
	return count, nil
}

func (r memParcels) CreateSelection(ctx context.Context, sel *domain.ParcelSelection) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sel.ID = r.m.id()
	r.m.selections = append(r.m.selections, *sel)
	return nil
}

func (r memParcels) ListSelections(ctx context.Context, stayID int64) ([]domain.ParcelSelection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.ParcelSelection
	for _, sel := range r.m.selections {
		if sel.StayID == stayID {
			out = append(out, sel)
		}
	}
	return out, nil
}

func (r memParcels) DeleteSelections(ctx context.Context, stayID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	kept := r.m.selections[:0]
	for _, sel := range r.m.selections {
		if sel.StayID != stayID {
			kept = append(kept, sel)
		}
	}
	r.m.selections = kept
	return nil
}

func (r memParcels) DeleteExpiredSelections(ctx context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	var deleted int64
	kept := r.m.selections[:0]
	for _, sel := range r.m.selections {
		if sel.ExpiresAt.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, sel)
	}
	r.m.selections = kept
	return deleted, nil
}

type memStays struct{ m *memStore }

func (r memStays) Create(ctx context.Context, st *domain.Stay) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st.ID = r.m.id()
	st.CreatedOn = time.Now()
	cp := *st
	r.m.stays[cp.ID] = &cp
	return nil
}

func (r memStays) GetByID(ctx context.Context, id int64) (*domain.Stay, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.stays[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *st
	return &cp, nil
}

func (r memStays) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Stay, error) {
	return r.GetByID(ctx, id)
}

func (r memStays) Update(ctx context.Context, st *domain.Stay) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.stays[st.ID]; !ok {
		return sql.ErrNoRows
	}
	st.UpdatedOn = time.Now()
	cp := *st
	r.m.stays[cp.ID] = &cp
	return nil
}

func (r memStays) FindActiveByPhone(ctx context.Context, phone string) (*domain.Stay, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, st := range r.m.stays {
		if st.ResponsiblePhone != phone {
			continue
		}
		if st.State == domain.StayStateReserved || st.State == domain.StayStateActive {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memStays) ListByPhone(ctx context.Context, phone string, includeCancelled bool) ([]domain.Stay, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Stay
	for _, st := range r.m.stays {
		if st.ResponsiblePhone != phone {
			continue
		}
		if !includeCancelled && st.State == domain.StayStateCancelled {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStays) ListByState(ctx context.Context, state domain.StayState) ([]domain.Stay, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Stay
	for _, st := range r.m.stays {
		if st.State == state {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStays) ListOverdue(ctx context.Context, date string) ([]domain.Stay, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Stay
	for _, st := range r.m.stays {
		if st.State == domain.StayStateActive && st.PlannedExitDate < date {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStays) ListResponsiblePhones(ctx context.Context) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, st := range r.m.stays {
		if st.State == domain.StayStateCancelled {
			continue
		}
		if !seen[st.ResponsiblePhone] {
			seen[st.ResponsiblePhone] = true
			out = append(out, st.ResponsiblePhone)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memOccupants struct{ m *memStore }

func (r memOccupants) Create(ctx context.Context, o *domain.Occupant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o.ID = r.m.id()
	o.CreatedOn = time.Now()
	cp := *o
	r.m.occupants[cp.ID] = &cp
	return nil
}

func (r memOccupants) GetByID(ctx context.Context, id int64) (*domain.Occupant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.occupants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (r memOccupants) GetByPhone(ctx context.Context, phone string) (*domain.Occupant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.occupants {
		if o.Phone == phone {
			cp := *o
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memOccupants) Update(ctx context.Context, o *domain.Occupant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.occupants[o.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *o
	r.m.occupants[cp.ID] = &cp
	return nil
}

func (r memOccupants) ListByStay(ctx context.Context, stayID int64) ([]domain.Occupant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Occupant
	for _, o := range r.m.occupants {
		if o.StayID == stayID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memOccupants) CountResponsible(ctx context.Context, stayID int64) (int32, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int32
	for _, o := range r.m.occupants {
		if o.StayID == stayID && o.IsResponsibleParty {
			count++
		}
	}
	return count, nil
}

type memPayments struct{ m *memStore }

func (r memPayments) Create(ctx context.Context, p *domain.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.id()
	if p.PaidOn.IsZero() {
		p.PaidOn = time.Now()
	}
	cp := *p
	r.m.payments[cp.ID] = &cp
	return nil
}

func (r memPayments) ListByStay(ctx context.Context, stayID int64) ([]domain.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.m.payments {
		if p.StayID == stayID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPayments) SumByStay(ctx context.Context, stayID int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var sum int64
	for _, p := range r.m.payments {
		if p.StayID == stayID {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

func (r memPayments) SumByStays(ctx context.Context, stayIDs []int64) (int64, error) {
	var sum int64
	for _, id := range stayIDs {
		s, _ := r.SumByStay(ctx, id)
		sum += s
	}
	return sum, nil
}

func (r memPayments) ListByDate(ctx context.Context, date string) ([]domain.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.m.payments {
		if p.PaidOn.Format("2006-01-02") == date {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPayments) MarkReceiptIssued(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.payments[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.ReceiptIssued = true
	return nil
}

type memExtras struct{ m *memStore }

func (r memExtras) Create(ctx context.Context, c *domain.ExtraCharge) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = r.m.id()
	c.CreatedOn = time.Now()
	cp := *c
	r.m.extras[cp.ID] = &cp
	return nil
}

func (r memExtras) ListByStay(ctx context.Context, stayID int64) ([]domain.ExtraCharge, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.ExtraCharge
	for _, c := range r.m.extras {
		if c.StayID == stayID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memExtras) SumByStay(ctx context.Context, stayID int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var sum int64
	for _, c := range r.m.extras {
		if c.StayID == stayID {
			sum += c.TotalCents
		}
	}
	return sum, nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(ctx context.Context, u *domain.StaffUser) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u.ID = r.m.id()
	cp := *u
	r.m.users[cp.ID] = &cp
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.StaffUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// noopNotifier satisfies NotifierService and records nothing; the
// service tests assert settlement state, not messaging.
type noopNotifier struct{}

func (noopNotifier) Notify(recipients []string, message string, kind domain.NotificationKind, delay time.Duration) {
}
