package validation

import "event-rest-api/cmd/event-api/model"

const CodeWrongValue = "wrongValue"

const CodeWrongPrices = "wrongPrices"

type EventValidator struct{}

func NewEventValidator() *EventValidator {
	return &EventValidator{}
}

// Validate checks the business rules between the prices and the four
// timestamps of dto. Every rule runs regardless of earlier failures.
func (v *EventValidator) Validate(dto model.EventDto, errs *Errors) {
	if dto.MaxPrice != 0 && dto.BasePrice > dto.MaxPrice {
		errs.Reject(CodeWrongPrices, "basePrice must not be greater than maxPrice when maxPrice is set")
	}

	endEvent := dto.EndEventDateTime
	beginEvent := dto.BeginEventDateTime
	closeEnrollment := dto.CloseEnrollmentDateTime
	beginEnrollment := dto.BeginEnrollmentDateTime

	if endEvent.Before(beginEvent) ||
		endEvent.Before(closeEnrollment) ||
		endEvent.Before(beginEnrollment) {
		errs.RejectValue("endEventDateTime", CodeWrongValue,
			"endEventDateTime must not be before the event begins or enrollment closes", endEvent)
	}

	if closeEnrollment.Before(beginEnrollment) {
		errs.RejectValue("closeEnrollmentDateTime", CodeWrongValue,
			"closeEnrollmentDateTime must not be before beginEnrollmentDateTime", closeEnrollment)
	}

	if beginEvent.Before(beginEnrollment) || beginEvent.Before(closeEnrollment) {
		errs.RejectValue("beginEventDateTime", CodeWrongValue,
			"beginEventDateTime must not be before enrollment begins or closes", beginEvent)
	}
}
