package model

import (
	"strings"
	"time"
)

type EventStatus string

var (
	Draft           EventStatus = "DRAFT"
	Published       EventStatus = "PUBLISHED"
	BeganEnrollment EventStatus = "BEGAN_ENROLLMENT"
)

type Event struct {
	ID                      int         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                    string      `gorm:"column:name" json:"name"`
	Description             string      `gorm:"column:description" json:"description"`
	BeginEnrollmentDateTime time.Time   `gorm:"column:begin_enrollment_date_time" json:"beginEnrollmentDateTime"`
	CloseEnrollmentDateTime time.Time   `gorm:"column:close_enrollment_date_time" json:"closeEnrollmentDateTime"`
	BeginEventDateTime      time.Time   `gorm:"column:begin_event_date_time" json:"beginEventDateTime"`
	EndEventDateTime        time.Time   `gorm:"column:end_event_date_time" json:"endEventDateTime"`
	Location                string      `gorm:"column:location" json:"location,omitempty"`
	BasePrice               int         `gorm:"column:base_price" json:"basePrice"`
	MaxPrice                int         `gorm:"column:max_price" json:"maxPrice"`
	LimitOfEnrollment       int         `gorm:"column:limit_of_enrollment" json:"limitOfEnrollment"`
	Offline                 bool        `gorm:"column:offline" json:"offline"`
	Free                    bool        `gorm:"column:free" json:"free"`
	EventStatus             EventStatus `gorm:"column:event_status" json:"eventStatus"`
	ManagerID               *int        `gorm:"column:manager_id" json:"managerId,omitempty"`
}

func (m *Event) TableName() string {
	return "events"
}

// Update recomputes the derived free and offline flags.
func (m *Event) Update() {
	m.Free = m.BasePrice == 0 && m.MaxPrice == 0
	m.Offline = strings.TrimSpace(m.Location) != ""
}

// Apply copies the mutable fields of dto onto the event. Derived flags are
// not touched; call Update afterwards.
func (m *Event) Apply(dto EventDto) {
	m.Name = dto.Name
	m.Description = dto.Description
	m.BeginEnrollmentDateTime = dto.BeginEnrollmentDateTime
	m.CloseEnrollmentDateTime = dto.CloseEnrollmentDateTime
	m.BeginEventDateTime = dto.BeginEventDateTime
	m.EndEventDateTime = dto.EndEventDateTime
	m.Location = dto.Location
	m.BasePrice = dto.BasePrice
	m.MaxPrice = dto.MaxPrice
	m.LimitOfEnrollment = dto.LimitOfEnrollment
}

// NewEvent builds a draft event from dto with its derived flags computed.
func NewEvent(dto EventDto) Event {
	event := Event{EventStatus: Draft}
	event.Apply(dto)
	event.Update()
	return event
}
