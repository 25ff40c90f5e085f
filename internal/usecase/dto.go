package usecase

import "github.com/xavierca1/dsx-leads/internal/wizard"

type Status string

const (
	StatusOpen         Status = "open"
	StatusInvalid      Status = "invalid"
	StatusAdvanced     Status = "advanced"
	StatusInFlight     Status = "in_flight"
	StatusCreateFailed Status = "create_failed"
	StatusCompleted    Status = "completed"
)

const ThankYouPath = "/obrigado"

// WizardOutput é o que a página de registro renderiza após cada ação.
type WizardOutput struct {
	SessionID      string          `json:"session_id"`
	Status         Status          `json:"status"`
	Step           int             `json:"step"`
	TotalSteps     int             `json:"total_steps"`
	Question       wizard.Question `json:"question"`
	Value          string          `json:"value"`
	Error          string          `json:"error,omitempty"`
	Message        string          `json:"message,omitempty"`
	CompletedSteps []int           `json:"completed_steps"`
	CanGoBack      bool            `json:"can_go_back"`
	CanGoForward   bool            `json:"can_go_forward"`
	Redirect       string          `json:"redirect,omitempty"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
