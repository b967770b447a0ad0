package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxKeyLength = 255

type CreateLogRequest struct {
	Key string `json:"key" example:"mood"`
	// Any JSON value
	Value json.RawMessage `json:"value" swaggertype:"object"`
}

func (r *CreateLogRequest) Validate() error {
	if err := validateKey(r.Key); err != nil {
		return err
	}
	if len(r.Value) == 0 {
		return errors.New("value is required")
	}
	if !json.Valid(r.Value) {
		return errors.New("value must be valid JSON")
	}
	return nil
}

// UpdateLogRequest carries the caller-mutable columns. Nil fields are left
// unchanged.
type UpdateLogRequest struct {
	Key   *string         `json:"key,omitempty" example:"mood"`
	Value json.RawMessage `json:"value,omitempty" swaggertype:"object"`
}

func (r *UpdateLogRequest) Validate() error {
	if r.Key == nil && len(r.Value) == 0 {
		return errors.New("at least one of key or value is required")
	}
	if r.Key != nil {
		if err := validateKey(*r.Key); err != nil {
			return err
		}
	}
	if len(r.Value) > 0 && !json.Valid(r.Value) {
		return errors.New("value must be valid JSON")
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	if utf8.RuneCountInString(key) > MaxKeyLength {
		return fmt.Errorf("key must be at most %d characters", MaxKeyLength)
	}
	return nil
}
