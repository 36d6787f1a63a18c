package apis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"event-rest-api/cmd/event-api/metrics"
	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/repository"
	"event-rest-api/cmd/event-api/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	CodeUnknownProperty = "unknownProperty"
	CodeTypeMismatch    = "typeMismatch"
	CodeUnreadable      = "unreadable"
	CodeInvalidSort     = "invalidSort"
)

type IEventRepo interface {
	ListEvents(ctx context.Context, page model.PageRequest) ([]model.Event, int64, error)
	FindEvent(ctx context.Context, id int) (model.Event, error)
	CreateEvent(ctx context.Context, event *model.Event) error
	SaveEvent(ctx context.Context, event *model.Event) error
}

type EventAPI struct {
	eventRepo IEventRepo
	pipeline  *validation.EventPipeline
	links     LinkBuilder
}

func NewEventAPI(eventRepo IEventRepo, links LinkBuilder) *EventAPI {
	return &EventAPI{
		eventRepo: eventRepo,
		pipeline:  validation.NewEventPipeline(),
		links:     links,
	}
}

// Setup registers the event routes. Reads are public; writes go through
// the given middleware.
func (a *EventAPI) Setup(g *echo.Group, writeMiddleware ...echo.MiddlewareFunc) {
	g.GET("/events", a.listEvents)
	g.GET("/events/:id", a.getEvent)
	g.POST("/events", a.createEvent, writeMiddleware...)
	g.PUT("/events/:id", a.updateEvent, writeMiddleware...)
}

func (a *EventAPI) listEvents(c echo.Context) error {

	ctx := c.Request().Context()

	page, errs := parsePageRequest(c.QueryParams())
	if errs != nil {
		return a.badRequest(c, errs)
	}

	events, total, err := a.eventRepo.ListEvents(ctx, page)
	if err != nil {
		return internalError(c, err)
	}

	resp := model.PagedEventsResponse{
		Links: a.pageLinks(c, page, total),
		Page: model.PageMetadata{
			Size:          page.Size,
			TotalElements: total,
			TotalPages:    page.TotalPages(total),
			Number:        page.Page,
		},
	}

	if len(events) > 0 {
		resp.Embedded = &model.EventsEmbedded{
			EventList: make([]model.EventResource, 0, len(events)),
		}
		for _, event := range events {
			resp.Embedded.EventList = append(resp.Embedded.EventList, model.EventResource{
				Event: event,
				Links: model.Links{}.Add("self", a.links.Event(c, event.ID)),
			})
		}
	}

	return hal(c, http.StatusOK, resp)
}

func (a *EventAPI) getEvent(c echo.Context) error {

	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	event, err := a.eventRepo.FindEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return internalError(c, err)
	}

	return hal(c, http.StatusOK, model.EventResource{
		Event: event,
		Links: model.Links{}.
			Add("self", a.links.Event(c, event.ID)).
			Add("profile", a.links.Profile(profileEventsGet)),
	})
}

func (a *EventAPI) createEvent(c echo.Context) error {

	ctx := c.Request().Context()

	dto, errs, err := decodeEventDto(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return a.badRequest(c, errs)
	}

	if errs, err := a.validate(dto); err != nil {
		return internalError(c, err)
	} else if errs != nil {
		return a.badRequest(c, errs)
	}

	event := model.NewEvent(dto)
	if claims, ok := ClaimsFrom(c); ok && claims.AccountID != 0 {
		managerID := claims.AccountID
		event.ManagerID = &managerID
	}

	if err := a.eventRepo.CreateEvent(ctx, &event); err != nil {
		return internalError(c, err)
	}

	metrics.EventsCreated.WithLabelValues("api").Inc()
	zerolog.Ctx(ctx).Info().Int("event_id", event.ID).Msg("event created")

	self := a.links.Event(c, event.ID)
	c.Response().Header().Set(echo.HeaderLocation, self)

	return hal(c, http.StatusCreated, model.EventResource{
		Event: event,
		Links: model.Links{}.
			Add("self", self).
			Add("query-events", a.links.Events(c)).
			Add("update-event", self).
			Add("profile", a.links.Profile(profileEventsCreate)),
	})
}

func (a *EventAPI) updateEvent(c echo.Context) error {

	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	event, err := a.eventRepo.FindEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return internalError(c, err)
	}

	dto, errs, err := decodeEventDto(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return a.badRequest(c, errs)
	}

	if errs, err := a.validate(dto); err != nil {
		return internalError(c, err)
	} else if errs != nil {
		return a.badRequest(c, errs)
	}

	event.Apply(dto)
	event.Update()

	if err := a.eventRepo.SaveEvent(ctx, &event); err != nil {
		return internalError(c, err)
	}

	metrics.EventsUpdated.Inc()
	zerolog.Ctx(ctx).Info().Int("event_id", event.ID).Msg("event updated")

	return hal(c, http.StatusOK, model.EventResource{
		Event: event,
		Links: model.Links{}.
			Add("self", a.links.Event(c, event.ID)).
			Add("profile", a.links.Profile(profileEventsUpdate)),
	})
}

// validate returns nil errors when dto passes every check.
func (a *EventAPI) validate(dto model.EventDto) (*validation.Errors, error) {
	errs, stage, err := a.pipeline.Validate(dto)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		metrics.ValidationFailures.WithLabelValues(string(stage)).Inc()
		return errs, nil
	}
	return nil, nil
}

func (a *EventAPI) badRequest(c echo.Context, errs *validation.Errors) error {
	return c.JSON(http.StatusBadRequest, ErrorsResponse{
		Errors: errs,
		Links:  model.Links{}.Add("index", a.links.Index(c)),
	})
}

// pageLinks follows the usual paged collection relations: first and last
// only when there is more than one page to move between.
func (a *EventAPI) pageLinks(c echo.Context, page model.PageRequest, total int64) model.Links {
	href := func(number int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(number))
		q.Set("size", strconv.Itoa(page.Size))
		for _, order := range page.Sort {
			q.Add("sort", order.String())
		}
		return a.links.Events(c) + "?" + q.Encode()
	}

	totalPages := page.TotalPages(total)
	last := max(totalPages-1, 0)
	hasPrevious := page.Page > 0
	hasNext := page.Page+1 < totalPages

	links := model.Links{}
	if hasPrevious || hasNext {
		links.Add("first", href(0))
	}
	if hasPrevious {
		// a page past the end steps back to the last real page
		links.Add("prev", href(min(page.Page-1, last)))
	}
	links.Add("self", href(page.Page))
	if hasNext {
		links.Add("next", href(page.Page+1))
	}
	if hasPrevious || hasNext {
		links.Add("last", href(last))
	}
	links.Add("profile", a.links.Profile(profileEventsList))
	return links
}

func parsePageRequest(query url.Values) (model.PageRequest, *validation.Errors) {
	page := model.PageRequest{Page: 0, Size: model.DefaultPageSize}

	if raw := query.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Page = n
		}
	}
	if raw := query.Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = min(n, model.MaxPageSize)
		}
	}

	for _, raw := range query["sort"] {
		order, err := model.ParseSortOrder(raw)
		if err != nil {
			errs := validation.NewErrors("pageable")
			errs.RejectValue("sort", CodeInvalidSort, err.Error(), raw)
			return model.PageRequest{}, errs
		}
		page.Sort = append(page.Sort, order)
	}

	return page, nil
}

// decodeEventDto reads the request body strictly: properties the payload
// type does not declare are rejected. Errors raised by the body reader
// itself, such as the body limit, are returned as they are.
func decodeEventDto(c echo.Context) (model.EventDto, *validation.Errors, error) {
	var dto model.EventDto

	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&dto)
	if err == nil {
		return dto, nil, nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return dto, nil, he
	}

	errs := validation.NewErrors(validation.EventDtoObjectName)

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		errs.RejectValue(typeErr.Field, CodeTypeMismatch, "must be a "+typeErr.Type.String(), typeErr.Value)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field, uerr := strconv.Unquote(strings.TrimPrefix(err.Error(), "json: unknown field "))
		if uerr != nil {
			field = strings.TrimPrefix(err.Error(), "json: unknown field ")
		}
		errs.RejectValue(field, CodeUnknownProperty, "unknown property", nil)
	default:
		errs.Reject(CodeUnreadable, "request body is not a readable event")
	}
	return dto, errs, nil
}
