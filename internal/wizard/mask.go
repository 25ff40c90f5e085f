package wizard

import "strings"

const whatsAppDigits = 11

// Digits remove tudo que não for dígito ASCII.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Mask formata até 11 dígitos de s como "(DD) D DDDD-DDDD". O resultado só
// depende dos dígitos de s, então Mask(Mask(s)) == Mask(s).
func Mask(s string) string {
	d := Digits(s)
	if len(d) > whatsAppDigits {
		d = d[:whatsAppDigits]
	}

	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return d
	case len(d) <= 3:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:3] + " " + d[3:]
	default:
		return "(" + d[:2] + ") " + d[2:3] + " " + d[3:7] + "-" + d[7:]
	}
}
