package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

var (
	ErrLeadNotFound         = errors.New("lead não encontrado")
	ErrLeadAlreadyCompleted = errors.New("lead já foi completado")
	ErrIncompleteLead       = errors.New("dados insuficientes para completar o lead")
	ErrInconsistentLead     = errors.New("perfil não coleta empresa nem faturamento")
)

// ProfileCategory é a resposta de "Você é?". O valor é o rótulo persistido.
type ProfileCategory string

const (
	ProfileOwner    ProfileCategory = "Empresário"
	ProfileDirector ProfileCategory = "Diretor ou Gestor"
	ProfileStaff    ProfileCategory = "Profissional de marketing, vendas e operações"
	ProfileStudent  ProfileCategory = "Estudante"
	ProfileOther    ProfileCategory = "Outros"
)

var ProfileCategories = []ProfileCategory{
	ProfileOwner,
	ProfileDirector,
	ProfileStaff,
	ProfileStudent,
	ProfileOther,
}

func ParseProfileCategory(s string) (ProfileCategory, bool) {
	for _, p := range ProfileCategories {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// CollectsCompany diz se o funil segue pedindo empresa e faturamento.
func (p ProfileCategory) CollectsCompany() bool {
	return p == ProfileOwner || p == ProfileDirector
}

type RevenueBracket string

const (
	RevenueBelow700k RevenueBracket = "Abaixo de 700 mil por ano"
	RevenueUpTo1M    RevenueBracket = "Fatura até 1 milhão por ano"
	Revenue1MTo5M    RevenueBracket = "De R$ 1 milhão a R$ 5 milhões"
	Revenue5MTo20M   RevenueBracket = "De R$ 5 milhões a R$ 20 milhões"
	RevenueAbove20M  RevenueBracket = "Acima de R$ 20 milhões"
)

var RevenueBrackets = []RevenueBracket{
	RevenueBelow700k,
	RevenueUpTo1M,
	Revenue1MTo5M,
	Revenue5MTo20M,
	RevenueAbove20M,
}

func ParseRevenueBracket(s string) (RevenueBracket, bool) {
	for _, r := range RevenueBrackets {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

type Lead struct {
	ID              string          `json:"id"`
	Name            string          `json:"nome"`
	Email           string          `json:"email"`
	WhatsApp        string          `json:"whatsapp"`
	ProfileCategory ProfileCategory `json:"perfil,omitempty"`
	Company         string          `json:"empresa,omitempty"`
	RevenueBracket  RevenueBracket  `json:"faturamento,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Completed       bool            `json:"completed"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

// WhatsAppE164 devolve o número no formato +55DDXXXXXXXXX, ou os dígitos crus se não for válido.
func (l *Lead) WhatsAppE164() string {
	return NormalizeWhatsApp(l.WhatsApp)
}

func NormalizeWhatsApp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, "BR")
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Completion carrega os campos da segunda escrita de um lead.
type Completion struct {
	ProfileCategory ProfileCategory `json:"perfil"`
	Company         string          `json:"empresa,omitempty"`
	RevenueBracket  RevenueBracket  `json:"faturamento,omitempty"`
}

func (c Completion) Validate() error {
	if _, ok := ParseProfileCategory(string(c.ProfileCategory)); !ok {
		return ErrIncompleteLead
	}
	if !c.ProfileCategory.CollectsCompany() {
		if strings.TrimSpace(c.Company) != "" || c.RevenueBracket != "" {
			return ErrInconsistentLead
		}
		return nil
	}
	if strings.TrimSpace(c.Company) == "" {
		return ErrIncompleteLead
	}
	if _, ok := ParseRevenueBracket(string(c.RevenueBracket)); !ok {
		return ErrIncompleteLead
	}
	return nil
}

// EarlyExit é true quando só o perfil é gravado.
func (c Completion) EarlyExit() bool {
	return !c.ProfileCategory.CollectsCompany()
}

type LeadRepositoryInterface interface {
	// Create persiste o lead parcial e preenche ID e CreatedAt.
	Create(ctx context.Context, lead *Lead) error
	Complete(ctx context.Context, id string, c Completion) error
	List(ctx context.Context) ([]*Lead, error)
}
