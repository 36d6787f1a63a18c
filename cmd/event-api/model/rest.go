package model

type BaseResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

type Link struct {
	Href string `json:"href"`
}

// Links maps relation names to links, serialized as the HAL "_links" object.
type Links map[string]Link

func (l Links) Add(rel, href string) Links {
	l[rel] = Link{Href: href}
	return l
}

type IndexResponse struct {
	Links Links `json:"_links"`
}

// EventResource is an event rendered with its hypermedia links.
type EventResource struct {
	Event
	Links Links `json:"_links"`
}

type PageMetadata struct {
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
}

type EventsEmbedded struct {
	EventList []EventResource `json:"eventList"`
}

type PagedEventsResponse struct {
	Embedded *EventsEmbedded `json:"_embedded,omitempty"`
	Links    Links           `json:"_links"`
	Page     PageMetadata    `json:"page"`
}

type ImportRowResult struct {
	Row    int    `json:"row"`
	ID     int    `json:"id,omitempty"`
	Errors any    `json:"errors,omitempty"`
	Status string `json:"status"`
}

type ImportResponse struct {
	Imported int               `json:"imported"`
	Rejected int               `json:"rejected"`
	Rows     []ImportRowResult `json:"rows"`
	Links    Links             `json:"_links"`
}
