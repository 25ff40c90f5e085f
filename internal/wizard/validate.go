package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type ValidationError struct {
	Field   Field
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgName    = "Digite seu nome completo."
	msgEmail   = "Digite um e-mail válido."
	msgPhone   = "Digite um WhatsApp válido."
	msgOption  = "Por favor, selecione uma opção."
	msgCompany = "Digite o nome da empresa."
	msgShort   = "Digite um nome válido."
)

// Validate confere uma resposta. Devolve nil ou um ValidationError.
func Validate(f Field, value string) error {
	trimmed := strings.TrimSpace(value)

	switch f {
	case FieldName:
		if trimmed == "" || len(strings.Fields(trimmed)) < 2 {
			return ValidationError{f, msgName}
		}
	case FieldEmail:
		if trimmed == "" || !emailRegex.MatchString(value) {
			return ValidationError{f, msgEmail}
		}
	case FieldWhatsApp:
		if trimmed == "" || len(Digits(value)) != whatsAppDigits {
			return ValidationError{f, msgPhone}
		}
	case FieldProfile:
		if _, ok := entity.ParseProfileCategory(trimmed); !ok {
			return ValidationError{f, msgOption}
		}
	case FieldCompany:
		if trimmed == "" {
			return ValidationError{f, msgCompany}
		}
		if utf8.RuneCountInString(trimmed) < 2 {
			return ValidationError{f, msgShort}
		}
	case FieldRevenue:
		if _, ok := entity.ParseRevenueBracket(trimmed); !ok {
			return ValidationError{f, msgOption}
		}
	default:
		return ValidationError{f, "campo desconhecido"}
	}

	return nil
}

// Normalize é aplicado a cada digitação antes de guardar o valor.
func Normalize(f Field, value string) string {
	switch f {
	case FieldWhatsApp:
		return Mask(value)
	case FieldEmail:
		return strings.ToLower(value)
	default:
		return value
	}
}
