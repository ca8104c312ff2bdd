package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleFinance))
	assert.True(t, ValidRole(RoleSales))
	assert.False(t, ValidRole("MANAGER"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("admin")) // roles are uppercase
}

func TestEditableCategories(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected []string
	}{
		{
			name:     "admin gets every category",
			role:     RoleAdmin,
			expected: []string{"commercial", "costs", "financial", "pricing"},
		},
		{
			name:     "finance gets pricing, costs and financial",
			role:     RoleFinance,
			expected: []string{"costs", "financial", "pricing"},
		},
		{
			name:     "sales gets commercial only",
			role:     RoleSales,
			expected: []string{"commercial"},
		},
		{
			name:     "unknown role gets nothing",
			role:     "INTERN",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, EditableCategories(tt.role))
		})
	}
}
