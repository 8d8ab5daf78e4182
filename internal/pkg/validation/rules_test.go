package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTeacherTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want bool
	}{
		{"plain keyword", "teacher", true},
		{"capitalized", "Teacher / Level 1", true},
		{"uppercase", "SENIOR TEACHER", true},
		{"embedded", "math-teacher-badge", true},
		{"unrelated tag", "Consultant", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTeacherTag(tt.tag))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("manager@example.com"))
	assert.True(t, IsValidEmail("Manager@Example.COM"), "matching is case-insensitive")
	assert.True(t, IsValidEmail("admin@openacademy.local"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail(""))
}

func TestStringValidation(t *testing.T) {
	assert.True(t, NewStringValidation("Advanced Go").WithMinLength(1).WithMaxLength(200).Validate())
	assert.False(t, NewStringValidation("").Validate(), "required by default")
	assert.True(t, NewStringValidation("").WithRequired(false).Validate())
	assert.False(t, NewStringValidation("ab").WithMinLength(3).Validate())
	assert.False(t, NewStringValidation("abcd").WithMaxLength(3).Validate())
	assert.True(t, NewStringValidation("manager@example.com").WithPattern(CompiledPatterns.Email).Validate())
	assert.False(t, NewStringValidation("nope").WithPattern(CompiledPatterns.Email).Validate())
}
