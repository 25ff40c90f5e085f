package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/infra/queue"
)

// NotifyLeadUseCase repassa um evento de lead para os canais de follow-up.
// Destinos nil não estão configurados e são pulados. O evento só falha quando
// todos os destinos configurados falharam; uma integração instável não faz a
// DLQ reenviar para as outras.
type NotifyLeadUseCase struct {
	CRM      CRM
	Mail     SalesNotifier
	WhatsApp WelcomeMessenger
	Metrics  FunnelMetrics
}

func (uc *NotifyLeadUseCase) Dispatch(ctx context.Context, ev queue.LeadEvent) error {
	lead := leadFromEvent(ev)

	var attempted int
	var errs []error
	run := func(service string, fn func() error) {
		attempted++
		if err := fn(); err != nil {
			log.Printf("⚠️ [%s] Falha ao notificar lead %s: %v", service, ev.LeadID, err)
			uc.metrics().IntegrationError(service)
			errs = append(errs, fmt.Errorf("%s: %w", service, err))
		}
	}

	switch ev.Type {
	case queue.RoutingLeadCreated:
		if uc.CRM != nil {
			run("kommo", func() error {
				_, err := uc.CRM.UpsertContact(ctx, lead)
				return err
			})
		}

	case queue.RoutingLeadCompleted:
		if uc.CRM != nil {
			run("kommo", func() error {
				contactID, err := uc.CRM.UpsertContact(ctx, lead)
				if err != nil {
					return err
				}
				return uc.CRM.CreateLead(ctx, contactID, lead)
			})
		}
		if uc.Mail != nil {
			run("mail", func() error {
				return uc.Mail.SendNewLead(lead)
			})
		}
		if uc.WhatsApp != nil {
			run("whatsapp", func() error {
				return uc.WhatsApp.SendWelcome(ctx, lead)
			})
		}

	default:
		return nil
	}

	if attempted > 0 && len(errs) == attempted {
		return errors.Join(errs...)
	}
	return nil
}

func (uc *NotifyLeadUseCase) metrics() FunnelMetrics {
	if uc.Metrics == nil {
		return nopMetrics{}
	}
	return uc.Metrics
}

func leadFromEvent(ev queue.LeadEvent) *entity.Lead {
	return &entity.Lead{
		ID:              ev.LeadID,
		Name:            ev.Name,
		Email:           ev.Email,
		WhatsApp:        ev.WhatsApp,
		ProfileCategory: entity.ProfileCategory(ev.ProfileCategory),
		Company:         ev.Company,
		RevenueBracket:  entity.RevenueBracket(ev.RevenueBracket),
		Completed:       ev.Type == queue.RoutingLeadCompleted,
		CreatedAt:       ev.OccurredAt,
	}
}
