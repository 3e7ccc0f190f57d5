package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataErrorMessage(t *testing.T) {
	err := &DataError{Day: "03/01/2025", Provider: "Alice Ngugi", Individual: "DD", Reason: "negative hours"}
	assert.Equal(t, `data error on 03/01/2025, provider "Alice Ngugi", individual "DD": negative hours`, err.Error())

	bare := &DataError{Day: "03/01/2025", Reason: "no individuals"}
	assert.Equal(t, "data error on 03/01/2025: no individuals", bare.Error())
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "oversight", Reason: "at least one oversight provider is required"}
	assert.Equal(t, "configuration error: oversight: at least one oversight provider is required", err.Error())
}
