package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostalCode5(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12345", true},
		{"00000", true},
		{"1234", false},
		{"123456", false},
		{"12a45", false},
		{" 1234", false},
		{"১২৩৪৫", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostalCode5(tt.in))
		})
	}
}

type addressInput struct {
	PostalCode string `json:"postal_code" validate:"required,postal_code_5"`
}

type signupInput struct {
	Email           string       `json:"email" validate:"required,email"`
	Password        string       `json:"password" validate:"required,min=8"`
	PasswordConfirm string       `json:"password_confirm" validate:"required,eqfield=Password"`
	DateOfBirth     string       `json:"date_of_birth" validate:"omitempty,iso_date,past_date"`
	Address         addressInput `json:"present_address"`
}

func TestFieldErrors_KeysAreJSONPaths(t *testing.T) {
	v := New()

	err := v.Struct(signupInput{
		Email:           "not-an-email",
		Password:        "short",
		PasswordConfirm: "different",
		DateOfBirth:     "31/12/1990",
		Address:         addressInput{PostalCode: "12a45"},
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Email is not a valid email address", fields["email"])
	assert.Equal(t, "Password must be at least 8 characters", fields["password"])
	assert.Equal(t, "Password confirmation does not match", fields["password_confirm"])
	assert.Equal(t, "Date of birth must be a date in YYYY-MM-DD format", fields["date_of_birth"])
	assert.Equal(t, "Postal code must be exactly 5 digits", fields["present_address.postal_code"])
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}

func TestPastDate(t *testing.T) {
	v := New()
	type in struct {
		D string `json:"d" validate:"past_date"`
	}

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format(DateLayout)
	assert.Error(t, v.Struct(in{D: tomorrow}))
	assert.NoError(t, v.Struct(in{D: "1990-05-17"}))
}

func TestMaxCurrentYear(t *testing.T) {
	v := New()
	type in struct {
		Year int `json:"year" validate:"max_current_year"`
	}

	assert.NoError(t, v.Struct(in{Year: time.Now().Year()}))
	assert.Error(t, v.Struct(in{Year: time.Now().Year() + 1}))
}
