package validation

import "event-rest-api/cmd/event-api/model"

const EventDtoObjectName = "eventDto"

// Stage names which check rejected a payload.
type Stage string

const (
	StageNone       Stage = ""
	StageStructural Stage = "structural"
	StageBusiness   Stage = "business"
)

// EventPipeline runs the struct tag constraints and, only when those pass,
// the business rules of EventValidator.
type EventPipeline struct {
	structural *StructValidator
	business   *EventValidator
}

func NewEventPipeline() *EventPipeline {
	return &EventPipeline{
		structural: NewStructValidator(),
		business:   NewEventValidator(),
	}
}

func (p *EventPipeline) Validate(dto model.EventDto) (*Errors, Stage, error) {
	errs := NewErrors(EventDtoObjectName)

	if err := p.structural.Validate(dto, errs); err != nil {
		return nil, StageNone, err
	}
	if errs.HasErrors() {
		return errs, StageStructural, nil
	}

	p.business.Validate(dto, errs)
	if errs.HasErrors() {
		return errs, StageBusiness, nil
	}
	return errs, StageNone, nil
}
