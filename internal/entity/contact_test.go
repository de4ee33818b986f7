package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContact(t *testing.T) {
	contact, err := NewContact("Maria Silva", "maria@exemplo.com", "11999990000", "Loja da Maria", "5000.00")

	assert.NoError(t, err)
	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, "Maria Silva", contact.FullName)
	assert.Equal(t, "maria@exemplo.com", contact.Email)
	assert.False(t, contact.CreatedAt.IsZero())
}

func TestNewContactRequiresEmail(t *testing.T) {
	_, err := NewContact("Maria Silva", "", "11999990000", "", "0")
	assert.Error(t, err)
}

func TestNewContactRequiresName(t *testing.T) {
	_, err := NewContact("", "maria@exemplo.com", "", "", "0")
	assert.Error(t, err)
}

func TestNormalizeRevenue(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"R$1.234,56", "1234.56"},
		{"1.000", "1000"},
		{"500,00", "500.00"},
		{"", "0"},
		{"   ", "0"},
		{"R$ ", "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeRevenue(tt.raw), "raw=%q", tt.raw)
	}
}
