package model

import "time"

// EventDto is the client supplied payload for creating and updating events.
// The csv tags let the import endpoint reuse it for uploaded rows.
type EventDto struct {
	Name                    string    `json:"name" csv:"name" validate:"required"`
	Description             string    `json:"description" csv:"description" validate:"required"`
	BeginEnrollmentDateTime time.Time `json:"beginEnrollmentDateTime" csv:"begin_enrollment_date_time" validate:"required"`
	CloseEnrollmentDateTime time.Time `json:"closeEnrollmentDateTime" csv:"close_enrollment_date_time" validate:"required"`
	BeginEventDateTime      time.Time `json:"beginEventDateTime" csv:"begin_event_date_time" validate:"required"`
	EndEventDateTime        time.Time `json:"endEventDateTime" csv:"end_event_date_time" validate:"required"`
	Location                string    `json:"location,omitempty" csv:"location"`
	BasePrice               int       `json:"basePrice" csv:"base_price" validate:"min=0"`
	MaxPrice                int       `json:"maxPrice" csv:"max_price" validate:"min=0"`
	LimitOfEnrollment       int       `json:"limitOfEnrollment" csv:"limit_of_enrollment" validate:"min=0"`
}
