package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "alice@example.com", false},
		{"subdomain", "bob.smith@corp.example.co", false},
		{"plus tag", "carol+claims@example.com", false},
		{"missing at", "dave.example.com", true},
		{"missing tld", "eve@example", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.NewFromFloat(187.50)))
	assert.NoError(t, ValidateAmount(decimal.NewFromFloat(0.01)))
	assert.Error(t, ValidateAmount(decimal.Zero))
	assert.Error(t, ValidateAmount(decimal.NewFromFloat(-10)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "team lunch", SanitizeString("team\x00 lunch\x1f"))
	assert.Equal(t, "plain", SanitizeString("plain"))
}
