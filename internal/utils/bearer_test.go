package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"empty header", "", "", false},
		{"no prefix", "abc.def.ghi", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"missing space", "Bearerabc", "", false},
		{"empty token", "Bearer ", "", false},
		{"whitespace token", "Bearer    ", "", false},
		{"trailing space", "Bearer abc ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBearer(tc.header)
			if tc.ok {
				assert.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			assert.ErrorIs(t, err, ErrMalformedBearer)
		})
	}
}
