package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-rest-api/cmd/event-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock database: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to create GORM instance: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	return gormDB, mock
}

var eventColumns = []string{
	"id", "name", "description",
	"begin_enrollment_date_time", "close_enrollment_date_time",
	"begin_event_date_time", "end_event_date_time",
	"location", "base_price", "max_price", "limit_of_enrollment",
	"offline", "free", "event_status", "manager_id",
}

func eventRow(rows *sqlmock.Rows, id int, name string, when time.Time) *sqlmock.Rows {
	return rows.AddRow(id, name, "rest api", when, when, when, when,
		"강남", 100, 200, 100, true, false, "DRAFT", nil)
}

func TestEventRepo_ListEvents_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	now := time.Now()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))

	rows := sqlmock.NewRows(eventColumns)
	eventRow(rows, 11, "event 11", now)
	eventRow(rows, 12, "event 12", now)
	mock.ExpectQuery(`SELECT \* FROM "events" ORDER BY "name" DESC,"id" LIMIT`).
		WillReturnRows(rows)

	events, total, err := repo.ListEvents(context.Background(), model.PageRequest{
		Page: 1,
		Size: 10,
		Sort: []model.SortOrder{{Property: "name", Desc: true}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.Len(t, events, 2)
	assert.Equal(t, 11, events[0].ID)
	assert.Equal(t, model.Draft, events[0].EventStatus)
	assert.True(t, events[0].Offline)
	assert.Nil(t, events[0].ManagerID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListEvents_IgnoresUnknownSortProperty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "events" ORDER BY "id" LIMIT`).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	events, total, err := repo.ListEvents(context.Background(), model.PageRequest{
		Size: 20,
		Sort: []model.SortOrder{{Property: "id; DROP TABLE events"}},
	})

	assert.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListEvents_OrdersByID(t *testing.T) {
	tests := []struct {
		name  string
		sort  []model.SortOrder
		query string
	}{
		{name: "no sort", query: `SELECT \* FROM "events" ORDER BY "id" LIMIT \$1 OFFSET \$2`},
		{name: "id desc", sort: []model.SortOrder{{Property: "id", Desc: true}}, query: `SELECT \* FROM "events" ORDER BY "id" DESC LIMIT`},
		{name: "name then id", sort: []model.SortOrder{{Property: "name"}}, query: `SELECT \* FROM "events" ORDER BY "name","id" LIMIT`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock := setupMockDB(t)
			repo := NewEventRepo(gormDB)

			mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))
			mock.ExpectQuery(tt.query).
				WillReturnRows(sqlmock.NewRows(eventColumns))

			_, _, err := repo.ListEvents(context.Background(), model.PageRequest{Page: 1, Size: 20, Sort: tt.sort})

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepo_ListEvents_DatabaseError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WillReturnError(errors.New("database connection failed"))

	events, _, err := repo.ListEvents(context.Background(), model.PageRequest{Size: 20})

	assert.Error(t, err)
	assert.Nil(t, events)
	assert.Contains(t, err.Error(), "database connection failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_FindEvent_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	rows := sqlmock.NewRows(eventColumns)
	eventRow(rows, 7, "spring", time.Now())
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE id = \$1`).
		WillReturnRows(rows)

	event, err := repo.FindEvent(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, 7, event.ID)
	assert.Equal(t, "spring", event.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_FindEvent_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.FindEvent(context.Background(), 22222)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_CreateEvent_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	event := model.Event{
		Name:        "New Test Event",
		EventStatus: model.Draft,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	err := repo.CreateEvent(context.Background(), &event)

	assert.NoError(t, err)
	assert.Equal(t, 42, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_CreateEvent_DatabaseError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	event := model.Event{Name: "New Test Event", EventStatus: model.Draft}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnError(errors.New("database insert failed"))
	mock.ExpectRollback()

	err := repo.CreateEvent(context.Background(), &event)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_SaveEvent_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewEventRepo(gormDB)

	event := model.Event{ID: 5, Name: "updated", EventStatus: model.Draft}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveEvent(context.Background(), &event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
