package usecase

import (
	"context"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/infra/queue"
	"github.com/xavierca1/dsx-leads/internal/infra/session"
	"github.com/xavierca1/dsx-leads/internal/wizard"
)

// SessionStore guarda o estado do formulário. Lock/TryLock serializam o
// ciclo load-modify-save de uma sessão; o unlock devolvido é idempotente.
type SessionStore interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
	TryLock(ctx context.Context, id string) (unlock func(), ok bool, err error)
	Load(ctx context.Context, id string) (*wizard.State, error)
	Save(ctx context.Context, id string, st *wizard.State) error
	Claim(ctx context.Context, id string, g session.Guard) (bool, error)
	Release(ctx context.Context, id string, g session.Guard) error
}

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, ev queue.LeadEvent) error
}

// ChangeNotifier acorda os assinantes do painel depois de uma escrita.
type ChangeNotifier interface {
	Notify()
}

// ChangeSource é o lado assinante do ChangeNotifier.
type ChangeSource interface {
	Subscribe() <-chan struct{}
	Unsubscribe(ch <-chan struct{})
}

type LeadLister interface {
	List(ctx context.Context) ([]*entity.Lead, error)
}

type FunnelMetrics interface {
	LeadCreated()
	LeadCreateFailed()
	LeadCompleted(branch string)
	LeadCompletionFailed(reason string)
	IntegrationError(service string)
}

type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) error
}

type CRM interface {
	UpsertContact(ctx context.Context, lead *entity.Lead) (int, error)
	CreateLead(ctx context.Context, contactID int, lead *entity.Lead) error
}

type SalesNotifier interface {
	SendNewLead(lead *entity.Lead) error
}

type WelcomeMessenger interface {
	SendWelcome(ctx context.Context, lead *entity.Lead) error
}

type nopMetrics struct{}

func (nopMetrics) LeadCreated()                {}
func (nopMetrics) LeadCreateFailed()           {}
func (nopMetrics) LeadCompleted(string)        {}
func (nopMetrics) LeadCompletionFailed(string) {}
func (nopMetrics) IntegrationError(string)     {}
