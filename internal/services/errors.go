package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrClassificationUnavailable is returned by classifiers that cannot
// produce a result. The submission pipeline treats it as a fallback signal.
var ErrClassificationUnavailable = errors.New("classification unavailable")

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (fieldErr FieldError) Message() string {
	if fieldErr.Param == "" {
		return fmt.Sprintf("%s is %s", fieldErr.Field, fieldErr.Rule)
	}
	return fmt.Sprintf("%s must satisfy %s=%s", fieldErr.Field, fieldErr.Rule, fieldErr.Param)
}

// ValidationError means the payload broke a field constraint. Callers fix
// the input; it is never retried.
type ValidationError struct {
	Fields []FieldError
}

func (validationErr *ValidationError) Error() string {
	messages := make([]string, 0, len(validationErr.Fields))
	for _, field := range validationErr.Fields {
		messages = append(messages, field.Message())
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// CooldownError means the owner submitted within the cooldown window.
type CooldownError struct {
	NextAvailableAt time.Time
}

func (cooldownErr *CooldownError) Error() string {
	return "submission cooldown active until " + cooldownErr.NextAvailableAt.UTC().Format(time.RFC3339)
}

// StoreError wraps persistence failures. The whole submission may be retried.
type StoreError struct {
	Op  string
	Err error
}

func (storeErr *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", storeErr.Op, storeErr.Err)
}

func (storeErr *StoreError) Unwrap() error {
	return storeErr.Err
}
