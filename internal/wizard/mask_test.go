package wizard

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var fullMask = regexp.MustCompile(`^\(\d{2}\) \d \d{4}-\d{4}$`)

func TestMaskRoundTripOverDigits(t *testing.T) {
	for i := 0; i < 500; i++ {
		d := fmt.Sprintf("%011d", int64(i)*200400037+11900000000)
		d = d[len(d)-11:]

		masked := Mask(d)

		assert.Regexp(t, fullMask, masked)
		assert.Equal(t, d, Digits(masked))
	}
}

func TestMaskPartialInputs(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"9", "9"},
		{"92", "92"},
		{"929", "(92) 9"},
		{"9290", "(92) 9 0"},
		{"9290000", "(92) 9 0000"},
		{"92900001", "(92) 9 0000-1"},
		{"92900000000", "(92) 9 0000-0000"},
		{"929000000001234", "(92) 9 0000-0000"},
		{"(11) 9 1234-5678", "(11) 9 1234-5678"},
		{"abc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Mask(tc.in))
		})
	}
}

func TestMaskIsIdempotent(t *testing.T) {
	inputs := []string{"", "1", "11 9", "(11) 9 12", "+55 (11) 91234-5678", "119123456789999", "x1y2z3"}

	for _, in := range inputs {
		assert.Equal(t, Mask(in), Mask(Digits(in)), in)
		assert.Equal(t, Mask(in), Mask(Mask(in)), in)
	}
}
