package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title  string `json:"title" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=draft published"`
}

func TestValidationDetails(t *testing.T) {
	err := Validate.Struct(sample{Status: "archived"})

	details := ValidationDetails(err)
	assert.Equal(t, "is required", details["title"])
	assert.Equal(t, "must be one of: draft published", details["status"])
	assert.True(t, HasFieldError(err, "status"))
	assert.False(t, HasFieldError(err, "thumbnail"))
}

func TestValidationDetails_InvalidJSON(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"title":`), &s)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"title": 5}`), &s)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ValidationDetails(err))
}

func TestValidationDetails_Nil(t *testing.T) {
	assert.Nil(t, ValidationDetails(nil))
	assert.NoError(t, Validate.Struct(sample{Title: "t", Status: "draft"}))
}
