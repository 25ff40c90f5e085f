package wizard

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

var (
	ErrClosed     = errors.New("registro já finalizado")
	ErrCannotMove = errors.New("passo indisponível")
)

// CreatePhase acompanha a escrita do lead parcial da sessão.
type CreatePhase string

const (
	CreateIdle     CreatePhase = "idle"
	CreateInFlight CreatePhase = "creating"
	Created        CreatePhase = "created"
)

// FinalizePhase acompanha a conclusão. Nunca volta para idle.
type FinalizePhase string

const (
	FinalizeIdle FinalizePhase = "idle"
	Finalizing   FinalizePhase = "finalizing"
	Finalized    FinalizePhase = "done"
)

type OutcomeKind string

const (
	OutcomeInvalid       OutcomeKind = "invalid"
	OutcomeContinue      OutcomeKind = "continue"
	OutcomeCompleteEarly OutcomeKind = "complete_early"
	OutcomeCompleteAtEnd OutcomeKind = "complete_at_end"
	OutcomeClosed        OutcomeKind = "closed"
)

// Outcome é o resultado de Advance. Next só vale para OutcomeContinue.
type Outcome struct {
	Kind        OutcomeKind
	Next        int
	NeedsCreate bool
	Err         error
}

func (o Outcome) Completes() bool {
	return o.Kind == OutcomeCompleteEarly || o.Kind == OutcomeCompleteAtEnd
}

// BranchFor decide o que vem depois da pergunta de perfil.
func BranchFor(p entity.ProfileCategory) Outcome {
	if p.CollectsCompany() {
		return Outcome{Kind: OutcomeContinue, Next: StepCompany}
	}
	return Outcome{Kind: OutcomeCompleteEarly}
}

type State struct {
	Step      int              `json:"step"`
	Completed []int            `json:"completed_steps"`
	Values    map[Field]string `json:"values"`
	Errors    map[Field]string `json:"errors"`
	LeadID    string           `json:"lead_id,omitempty"`
	Create    CreatePhase      `json:"create"`
	Finalize  FinalizePhase    `json:"finalize"`
}

func NewState() *State {
	return &State{
		Completed: []int{},
		Values:    map[Field]string{},
		Errors:    map[Field]string{},
		Create:    CreateIdle,
		Finalize:  FinalizeIdle,
	}
}

func (s *State) init() {
	if s.Values == nil {
		s.Values = map[Field]string{}
	}
	if s.Errors == nil {
		s.Errors = map[Field]string{}
	}
	if s.Create == "" {
		s.Create = CreateIdle
	}
	if s.Finalize == "" {
		s.Finalize = FinalizeIdle
	}
}

func (s *State) Closed() bool {
	return s.Finalize == Finalizing || s.Finalize == Finalized
}

func (s *State) Field() Field {
	return Fields[s.Step]
}

func (s *State) Value(f Field) string {
	return s.Values[f]
}

func (s *State) IsCompleted(step int) bool {
	for _, c := range s.Completed {
		if c == step {
			return true
		}
	}
	return false
}

func (s *State) markCompleted(step int) {
	if s.IsCompleted(step) {
		return
	}
	s.Completed = append(s.Completed, step)
	sort.Ints(s.Completed)
}

// Input guarda a resposta normalizada de um passo de texto e limpa o erro.
// Passos de múltipla escolha só mudam via Select.
func (s *State) Input(value string) error {
	s.init()
	if s.Closed() {
		return ErrClosed
	}
	if q, _ := QuestionAt(s.Step); q.IsRadio() {
		return ErrCannotMove
	}
	s.setValue(value)
	return nil
}

func (s *State) setValue(value string) {
	f := s.Field()
	s.Values[f] = Normalize(f, value)
	delete(s.Errors, f)
}

// Advance valida o passo atual e diz para onde o funil vai. Não move o passo:
// quem chama faz isso depois que os efeitos colaterais dão certo.
func (s *State) Advance() Outcome {
	s.init()
	if s.Closed() {
		return Outcome{Kind: OutcomeClosed, Err: ErrClosed}
	}

	f := s.Field()
	if err := Validate(f, s.Values[f]); err != nil {
		var ve ValidationError
		if errors.As(err, &ve) {
			s.Errors[f] = ve.Message
		}
		return Outcome{Kind: OutcomeInvalid, Err: err}
	}

	delete(s.Errors, f)
	s.markCompleted(s.Step)

	switch s.Step {
	case StepProfile:
		profile, _ := entity.ParseProfileCategory(strings.TrimSpace(s.Values[f]))
		return BranchFor(profile)
	case LastStep:
		return Outcome{Kind: OutcomeCompleteAtEnd}
	default:
		return Outcome{
			Kind:        OutcomeContinue,
			Next:        s.Step + 1,
			NeedsCreate: s.Step == StepWhatsApp && s.LeadID == "",
		}
	}
}

// Select responde uma pergunta de múltipla escolha e já avança.
func (s *State) Select(value string) (Outcome, error) {
	if s.Closed() {
		return Outcome{Kind: OutcomeClosed, Err: ErrClosed}, nil
	}
	if q, _ := QuestionAt(s.Step); !q.IsRadio() {
		return Outcome{}, ErrCannotMove
	}
	s.init()
	s.setValue(value)
	return s.Advance(), nil
}

// MoveTo é chamado depois que Advance devolveu OutcomeContinue.
func (s *State) MoveTo(step int) {
	if step < 0 || step > LastStep {
		return
	}
	s.Step = step
}

func (s *State) Retreat() error {
	if s.Closed() {
		return ErrClosed
	}
	if s.Step == 0 {
		return ErrCannotMove
	}
	s.Step--
	return nil
}

// JumpForward só avança para um passo já validado, e só se a resposta atual
// ainda leva até ele: um perfil de saída antecipada não chega a empresa/faturamento.
func (s *State) JumpForward() error {
	s.init()
	if s.Closed() {
		return ErrClosed
	}
	if s.Step >= LastStep || !s.IsCompleted(s.Step+1) {
		return ErrCannotMove
	}

	f := s.Field()
	if Validate(f, s.Values[f]) != nil {
		return ErrCannotMove
	}
	switch s.Step {
	case StepWhatsApp:
		if s.LeadID == "" {
			return ErrCannotMove
		}
	case StepProfile:
		profile, _ := entity.ParseProfileCategory(strings.TrimSpace(s.Values[f]))
		if BranchFor(profile).Kind != OutcomeContinue {
			return ErrCannotMove
		}
	}

	s.Step++
	return nil
}

func (s *State) JumpBackward(to int) error {
	if s.Closed() {
		return ErrClosed
	}
	if to < 0 || to >= s.Step {
		return ErrCannotMove
	}
	s.Step = to
	return nil
}

func (s *State) FirstName() string {
	parts := strings.Fields(s.Values[FieldName])
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// Label devolve a pergunta atual, com o primeiro nome nos passos 1, 3, 4 e 5.
func (s *State) Label() string {
	q, ok := QuestionAt(s.Step)
	if !ok {
		return ""
	}

	first := s.FirstName()
	if first == "" || s.Step == 0 || (s.Step%2 == 0 && s.Step != StepCompany) {
		return q.Label
	}

	r, size := utf8.DecodeRuneInString(q.Label)
	return first + ", " + string(unicode.ToLower(r)) + q.Label[size:]
}

// Lead monta o registro parcial da primeira escrita.
func (s *State) Lead() *entity.Lead {
	return &entity.Lead{
		Name:     strings.TrimSpace(s.Values[FieldName]),
		Email:    strings.TrimSpace(s.Values[FieldEmail]),
		WhatsApp: Digits(s.Values[FieldWhatsApp]),
	}
}

// Completion monta os campos da conclusão para o desfecho informado.
func (s *State) Completion(kind OutcomeKind) entity.Completion {
	c := entity.Completion{
		ProfileCategory: entity.ProfileCategory(strings.TrimSpace(s.Values[FieldProfile])),
	}
	if kind == OutcomeCompleteAtEnd {
		c.Company = strings.TrimSpace(s.Values[FieldCompany])
		c.RevenueBracket = entity.RevenueBracket(strings.TrimSpace(s.Values[FieldRevenue]))
	}
	return c
}
