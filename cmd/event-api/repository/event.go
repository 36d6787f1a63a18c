package repository

import (
	"context"
	"errors"
	"fmt"

	"event-rest-api/cmd/event-api/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{
		db: db,
	}
}

func (r *EventRepo) ListEvents(ctx context.Context, page model.PageRequest) ([]model.Event, int64, error) {

	var total int64

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{}).
		Count(&total)

	if result.Error != nil {
		return nil, 0, fmt.Errorf("count events: %w", result.Error)
	}

	var events []model.Event

	query := r.db.
		WithContext(ctx).
		Model(&model.Event{})

	sortedByID := false
	for _, order := range page.Sort {
		column, ok := model.EventSortColumns[order.Property]
		if !ok {
			continue
		}
		sortedByID = sortedByID || column == "id"
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: column},
			Desc:   order.Desc,
		})
	}
	// stable paging needs a total order
	if !sortedByID {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	result = query.
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&events)

	if result.Error != nil {
		return nil, 0, fmt.Errorf("list events: %w", result.Error)
	}

	return events, total, nil
}

func (r *EventRepo) FindEvent(ctx context.Context, id int) (model.Event, error) {

	var event model.Event

	result := r.db.
		WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Take(&event)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return model.Event{}, ErrNotFound
	}
	if result.Error != nil {
		return model.Event{}, fmt.Errorf("find event %d: %w", id, result.Error)
	}

	return event, nil
}

func (r *EventRepo) CreateEvent(ctx context.Context, event *model.Event) error {

	result := r.db.
		WithContext(ctx).
		Create(event)

	if result.Error != nil {
		return fmt.Errorf("create event: %w", result.Error)
	}

	return nil

}

func (r *EventRepo) SaveEvent(ctx context.Context, event *model.Event) error {

	result := r.db.
		WithContext(ctx).
		Save(event)

	if result.Error != nil {
		return fmt.Errorf("save event %d: %w", event.ID, result.Error)
	}

	return nil
}
