package postgres

import (
	"context"
	"testing"

	"campground-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupantRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOccupantRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		o := &domain.Occupant{Phone: "555-0001", Name: "Ana", StayID: 3}

		mock.ExpectQuery("INSERT INTO occupants").
			WithArgs(o.Phone, o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

		err := repo.Create(ctx, o)
		assert.NoError(t, err)
		assert.Equal(t, int64(9), o.ID)
	})

	t.Run("RetriesWithSuffixOnDuplicatePhone", func(t *testing.T) {
		o := &domain.Occupant{Phone: "555-0002", Name: "Ben", StayID: 3}

		mock.ExpectQuery("INSERT INTO occupants").
			WithArgs("555-0002", o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, sqlmock.AnyArg()).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectQuery("INSERT INTO occupants").
			WithArgs("555-0002-2", o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		err := repo.Create(ctx, o)
		assert.NoError(t, err)
		assert.Equal(t, "555-0002-2", o.Phone)
		assert.Equal(t, int64(10), o.ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOccupantRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOccupantRepository(db)
	ctx := context.Background()

	o := &domain.Occupant{ID: 9, Phone: "555-0001", Name: "Ana", StayID: 4}

	mock.ExpectExec("UPDATE occupants SET").
		WithArgs(o.Phone, o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, o.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(ctx, o))
	assert.NoError(t, mock.ExpectationsWereMet())
}
