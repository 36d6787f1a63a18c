package validation

import (
	"encoding/json"
	"fmt"
	"time"
)

type FieldError struct {
	Field          string
	ObjectName     string
	Code           string
	DefaultMessage string
	RejectedValue  any
}

type ObjectError struct {
	ObjectName     string
	Code           string
	DefaultMessage string
}

// Errors collects field scoped and object scoped (global) validation errors
// for one bound object. Rejections are recorded, never returned as error values.
type Errors struct {
	objectName   string
	fieldErrors  []FieldError
	globalErrors []ObjectError
}

func NewErrors(objectName string) *Errors {
	return &Errors{objectName: objectName}
}

func (e *Errors) ObjectName() string {
	return e.objectName
}

func (e *Errors) RejectValue(field, code, message string, rejected any) {
	e.fieldErrors = append(e.fieldErrors, FieldError{
		Field:          field,
		ObjectName:     e.objectName,
		Code:           code,
		DefaultMessage: message,
		RejectedValue:  rejected,
	})
}

func (e *Errors) Reject(code, message string) {
	e.globalErrors = append(e.globalErrors, ObjectError{
		ObjectName:     e.objectName,
		Code:           code,
		DefaultMessage: message,
	})
}

func (e *Errors) HasErrors() bool {
	return e.ErrorCount() > 0
}

func (e *Errors) ErrorCount() int {
	return len(e.fieldErrors) + len(e.globalErrors)
}

func (e *Errors) FieldErrors() []FieldError {
	return e.fieldErrors
}

func (e *Errors) GlobalErrors() []ObjectError {
	return e.globalErrors
}

func (e *Errors) HasFieldErrors(field string) bool {
	for _, fe := range e.fieldErrors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type SerializedError struct {
	Field          string  `json:"field,omitempty"`
	ObjectName     string  `json:"objectName"`
	Code           string  `json:"code"`
	DefaultMessage string  `json:"defaultMessage"`
	RejectedValue  *string `json:"rejectedValue,omitempty"`
}

// Serialize flattens the collection into field errors followed by global
// errors. Global errors never carry a field or a rejected value.
func (e *Errors) Serialize() []SerializedError {
	out := make([]SerializedError, 0, e.ErrorCount())
	for _, fe := range e.fieldErrors {
		se := SerializedError{
			Field:          fe.Field,
			ObjectName:     fe.ObjectName,
			Code:           fe.Code,
			DefaultMessage: fe.DefaultMessage,
		}
		if fe.RejectedValue != nil {
			value := stringify(fe.RejectedValue)
			se.RejectedValue = &value
		}
		out = append(out, se)
	}
	for _, ge := range e.globalErrors {
		out = append(out, SerializedError{
			ObjectName:     ge.ObjectName,
			Code:           ge.Code,
			DefaultMessage: ge.DefaultMessage,
		})
	}
	return out
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Serialize())
}

func stringify(v any) string {
	switch value := v.(type) {
	case time.Time:
		return value.Format(time.RFC3339)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
