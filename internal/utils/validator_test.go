package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneNormalizer_Normalize(t *testing.T) {
	p := NewPhoneNormalizer("KR")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "domestic mobile", raw: "01012345678", want: "+821012345678"},
		{name: "domestic with dashes", raw: "010-1234-5678", want: "+821012345678"},
		{name: "international prefix", raw: "+82 10 1234 5678", want: "+821012345678"},
		{name: "foreign number", raw: "+1 650-253-0000", want: "+16502530000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneNormalizer_Invalid(t *testing.T) {
	p := NewPhoneNormalizer("KR")

	for _, raw := range []string{"", "WrongNumber", "Wrong phone number"} {
		_, err := p.Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidPhone, raw)
	}
}

func TestEmailValidator_Valid(t *testing.T) {
	v := NewEmailValidator()

	assert.True(t, v.Valid("test@a-bly.com"))
	assert.True(t, v.Valid("first.last+tag@example.co.kr"))
	assert.False(t, v.Valid(""))
	assert.False(t, v.Valid("Wrong email"))
	assert.False(t, v.Valid("01012345678"))
}
