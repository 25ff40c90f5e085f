package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/infra/queue"
	"github.com/xavierca1/dsx-leads/internal/infra/session"
	"github.com/xavierca1/dsx-leads/internal/wizard"
)

const defaultCompleteTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/xavierca1/dsx-leads/internal/usecase")

// RegisterLeadUseCase conduz o formulário de registro. O lead parcial é gravado
// uma vez quando o passo do WhatsApp passa e concluído uma vez no fim do ramo.
// O lock da sessão serializa as requisições e as reservas (claims) garantem
// no máximo uma escrita de cada.
type RegisterLeadUseCase struct {
	Sessions SessionStore
	Leads    entity.LeadRepositoryInterface
	Events   LeadEventPublisher
	Changes  ChangeNotifier
	Metrics  FunnelMetrics

	// CompleteTimeout limita a escrita de conclusão, que sobrevive à requisição.
	CompleteTimeout time.Duration
}

func NewRegisterLeadUseCase(sessions SessionStore, leads entity.LeadRepositoryInterface) *RegisterLeadUseCase {
	return &RegisterLeadUseCase{
		Sessions:        sessions,
		Leads:           leads,
		Metrics:         nopMetrics{},
		CompleteTimeout: defaultCompleteTimeout,
	}
}

func (uc *RegisterLeadUseCase) Start(ctx context.Context) (*WizardOutput, error) {
	id := uuid.NewString()
	st := wizard.NewState()
	if err := uc.save(ctx, id, st); err != nil {
		return nil, err
	}
	return uc.output(id, st, StatusOpen), nil
}

func (uc *RegisterLeadUseCase) View(ctx context.Context, id string) (*WizardOutput, error) {
	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Closed() {
		return uc.output(id, st, StatusCompleted), nil
	}
	return uc.output(id, st, StatusOpen), nil
}

// Input espera a vez da sessão: uma digitação nunca é descartada.
func (uc *RegisterLeadUseCase) Input(ctx context.Context, id, value string) (*WizardOutput, error) {
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.Input(value); err != nil {
		return nil, moveError(err)
	}
	if err := uc.save(ctx, id, st); err != nil {
		return nil, err
	}
	return uc.output(id, st, StatusOpen), nil
}

// Next valida a resposta atual e avança, criando ou concluindo o lead quando o
// passo pede. Um envio repetido com a sessão ocupada não espera.
func (uc *RegisterLeadUseCase) Next(ctx context.Context, id string) (*WizardOutput, error) {
	unlock, ok, err := uc.Sessions.TryLock(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !ok {
		return uc.busy(ctx, id)
	}
	defer unlock()

	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, id, st, st.Advance())
}

func (uc *RegisterLeadUseCase) Select(ctx context.Context, id, value string) (*WizardOutput, error) {
	unlock, ok, err := uc.Sessions.TryLock(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !ok {
		return uc.busy(ctx, id)
	}
	defer unlock()

	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := st.Select(value)
	if err != nil {
		return nil, moveError(err)
	}
	return uc.apply(ctx, id, st, out)
}

func (uc *RegisterLeadUseCase) Back(ctx context.Context, id string) (*WizardOutput, error) {
	return uc.navigate(ctx, id, (*wizard.State).Retreat)
}

func (uc *RegisterLeadUseCase) Forward(ctx context.Context, id string) (*WizardOutput, error) {
	return uc.navigate(ctx, id, (*wizard.State).JumpForward)
}

func (uc *RegisterLeadUseCase) JumpTo(ctx context.Context, id string, step int) (*WizardOutput, error) {
	return uc.navigate(ctx, id, func(st *wizard.State) error {
		return st.JumpBackward(step)
	})
}

func (uc *RegisterLeadUseCase) navigate(ctx context.Context, id string, move func(*wizard.State) error) (*WizardOutput, error) {
	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := move(st); err != nil {
		return nil, moveError(err)
	}
	if err := uc.save(ctx, id, st); err != nil {
		return nil, err
	}
	return uc.output(id, st, StatusOpen), nil
}

func (uc *RegisterLeadUseCase) lock(ctx context.Context, id string) (func(), error) {
	unlock, err := uc.Sessions.Lock(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return unlock, nil
}

// busy responde a um envio repetido enquanto outro envio da mesma sessão
// ainda está criando ou concluindo o lead.
func (uc *RegisterLeadUseCase) busy(ctx context.Context, id string) (*WizardOutput, error) {
	st, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Closed() {
		return uc.output(id, st, StatusCompleted), nil
	}
	log.Printf("⏳ Envio repetido ignorado, sessão %s ocupada", id)
	return uc.output(id, st, StatusInFlight), nil
}

func (uc *RegisterLeadUseCase) apply(ctx context.Context, id string, st *wizard.State, out wizard.Outcome) (*WizardOutput, error) {
	switch out.Kind {
	case wizard.OutcomeClosed:
		return uc.output(id, st, StatusCompleted), nil

	case wizard.OutcomeInvalid:
		if err := uc.save(ctx, id, st); err != nil {
			return nil, err
		}
		return uc.output(id, st, StatusInvalid), nil

	case wizard.OutcomeContinue:
		if out.NeedsCreate {
			return uc.create(ctx, id, st, out.Next)
		}
		st.MoveTo(out.Next)
		if err := uc.save(ctx, id, st); err != nil {
			return nil, err
		}
		return uc.output(id, st, StatusAdvanced), nil

	default:
		return uc.complete(ctx, id, st, out.Kind)
	}
}

func (uc *RegisterLeadUseCase) create(ctx context.Context, id string, st *wizard.State, next int) (*WizardOutput, error) {
	ctx, span := tracer.Start(ctx, "RegisterLead.create", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	won, err := uc.Sessions.Claim(ctx, id, session.GuardCreate)
	if err != nil {
		return nil, storeError(err)
	}
	if !won {
		log.Printf("⏳ Criação do lead já em andamento (sessão %s)", id)
		return uc.output(id, st, StatusInFlight), nil
	}

	st.Create = wizard.CreateInFlight
	lead := st.Lead()

	if err := uc.Leads.Create(ctx, lead); err != nil {
		log.Printf("❌ Erro ao criar lead parcial (sessão %s): %v", id, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		uc.metrics().LeadCreateFailed()

		st.Create = wizard.CreateIdle
		if relErr := uc.Sessions.Release(ctx, id, session.GuardCreate); relErr != nil {
			log.Printf("⚠️ Falha ao liberar guarda de criação (sessão %s): %v", id, relErr)
		}
		if err := uc.save(ctx, id, st); err != nil {
			return nil, err
		}
		o := uc.output(id, st, StatusCreateFailed)
		o.Message = "Não foi possível salvar seus dados. Tente novamente."
		return o, nil
	}

	st.LeadID = lead.ID
	st.Create = wizard.Created
	st.MoveTo(next)
	span.SetAttributes(attribute.String("lead.id", lead.ID))
	log.Printf("✅ Lead parcial criado: %s (sessão %s)", lead.ID, id)
	uc.metrics().LeadCreated()

	if err := uc.save(ctx, id, st); err != nil {
		return nil, err
	}

	uc.publish(ctx, queue.RoutingLeadCreated, lead)
	uc.notify()

	return uc.output(id, st, StatusAdvanced), nil
}

func (uc *RegisterLeadUseCase) complete(ctx context.Context, id string, st *wizard.State, kind wizard.OutcomeKind) (*WizardOutput, error) {
	// A conclusão precisa chegar ao banco mesmo se o visitante já saiu.
	ctx = context.WithoutCancel(ctx)
	ctx, span := tracer.Start(ctx, "RegisterLead.complete", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("funnel.outcome", string(kind)),
	))
	defer span.End()

	won, err := uc.Sessions.Claim(ctx, id, session.GuardFinalize)
	if err != nil {
		return nil, storeError(err)
	}
	if !won {
		st.Finalize = wizard.Finalizing
		return uc.output(id, st, StatusCompleted), nil
	}

	st.Finalize = wizard.Finalizing
	if err := uc.save(ctx, id, st); err != nil {
		log.Printf("⚠️ Falha ao gravar sessão em finalização (sessão %s): %v", id, err)
	}

	completion := st.Completion(kind)
	branch := "end"
	if kind == wizard.OutcomeCompleteEarly {
		branch = "early"
	}

	switch {
	case st.LeadID == "":
		log.Printf("⚠️ Conclusão ignorada: sessão %s sem lead criado", id)
		uc.metrics().LeadCompletionFailed("missing_lead")

	default:
		cctx, cancel := context.WithTimeout(ctx, uc.completeTimeout())
		err := completion.Validate()
		if err == nil {
			err = uc.Leads.Complete(cctx, st.LeadID, completion)
		}
		cancel()

		if err != nil {
			log.Printf("❌ Erro ao concluir lead %s: %v", st.LeadID, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "complete failed")
			uc.metrics().LeadCompletionFailed("store")
			break
		}

		log.Printf("🎉 Lead %s concluído (%s)", st.LeadID, completion.ProfileCategory)
		uc.metrics().LeadCompleted(branch)

		lead := st.Lead()
		lead.ID = st.LeadID
		lead.ProfileCategory = completion.ProfileCategory
		lead.Company = completion.Company
		lead.RevenueBracket = completion.RevenueBracket
		lead.Completed = true
		uc.publish(ctx, queue.RoutingLeadCompleted, lead)
		uc.notify()
	}

	st.Finalize = wizard.Finalized
	if err := uc.save(ctx, id, st); err != nil {
		log.Printf("⚠️ Falha ao gravar sessão concluída (sessão %s): %v", id, err)
	}

	return uc.output(id, st, StatusCompleted), nil
}

func (uc *RegisterLeadUseCase) publish(ctx context.Context, eventType string, lead *entity.Lead) {
	if uc.Events == nil {
		return
	}

	ev := queue.LeadEvent{
		Type:            eventType,
		LeadID:          lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		WhatsApp:        lead.WhatsApp,
		ProfileCategory: string(lead.ProfileCategory),
		Company:         lead.Company,
		RevenueBracket:  string(lead.RevenueBracket),
		OccurredAt:      time.Now().UTC(),
	}
	if err := uc.Events.PublishLeadEvent(ctx, ev); err != nil {
		log.Printf("⚠️ Falha ao publicar %s do lead %s: %v", eventType, lead.ID, err)
		uc.metrics().IntegrationError("rabbitmq")
	}
}

func (uc *RegisterLeadUseCase) notify() {
	if uc.Changes != nil {
		uc.Changes.Notify()
	}
}

func (uc *RegisterLeadUseCase) load(ctx context.Context, id string) (*wizard.State, error) {
	ctx, span := tracer.Start(ctx, "SessionStore.Load")
	defer span.End()

	st, err := uc.Sessions.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, storeError(err)
	}
	return st, nil
}

func (uc *RegisterLeadUseCase) save(ctx context.Context, id string, st *wizard.State) error {
	ctx, span := tracer.Start(ctx, "SessionStore.Save")
	defer span.End()

	if err := uc.Sessions.Save(ctx, id, st); err != nil {
		span.RecordError(err)
		return storeError(err)
	}
	return nil
}

func (uc *RegisterLeadUseCase) output(id string, st *wizard.State, status Status) *WizardOutput {
	q, _ := wizard.QuestionAt(st.Step)
	q.Label = st.Label()

	o := &WizardOutput{
		SessionID:      id,
		Status:         status,
		Step:           st.Step,
		TotalSteps:     len(wizard.Fields),
		Question:       q,
		Value:          st.Value(st.Field()),
		Error:          st.Errors[st.Field()],
		CompletedSteps: append([]int{}, st.Completed...),
	}

	if status == StatusCompleted {
		o.Redirect = ThankYouPath
		return o
	}

	o.CanGoBack = st.Step > 0
	o.CanGoForward = st.Step < wizard.LastStep && st.IsCompleted(st.Step+1)
	return o
}

func (uc *RegisterLeadUseCase) metrics() FunnelMetrics {
	if uc.Metrics == nil {
		return nopMetrics{}
	}
	return uc.Metrics
}

func (uc *RegisterLeadUseCase) completeTimeout() time.Duration {
	if uc.CompleteTimeout <= 0 {
		return defaultCompleteTimeout
	}
	return uc.CompleteTimeout
}

func storeError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return &DomainError{Code: CodeSessionNotFound, Message: "Sessão de registro não encontrada ou expirada."}
	}
	return &TechnicalError{Code: CodeSessionStore, Message: "falha no armazenamento da sessão", Err: err}
}

func moveError(err error) error {
	switch {
	case errors.Is(err, wizard.ErrClosed):
		return &DomainError{Code: CodeSessionClosed, Message: "Seu cadastro já foi concluído."}
	case errors.Is(err, wizard.ErrCannotMove):
		return &DomainError{Code: CodeInvalidStep, Message: "Esse passo não está disponível."}
	default:
		return err
	}
}
