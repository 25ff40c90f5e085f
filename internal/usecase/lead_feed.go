package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// LeadFeed alimenta o stream do painel: a lista atual ao assinar e uma lista
// nova a cada aviso de mudança.
type LeadFeed struct {
	Leads   LeadLister
	Changes ChangeSource
}

func NewLeadFeed(leads LeadLister, changes ChangeSource) *LeadFeed {
	return &LeadFeed{Leads: leads, Changes: changes}
}

// Subscription é um stream aberto. Snapshots fecha quando o stream termina e
// Errors guarda a falha de listagem, se houve. Cancel deve ser chamado quando
// o consumidor terminar.
type Subscription struct {
	Snapshots <-chan []*entity.Lead
	Errors    <-chan error

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

func (f *LeadFeed) Subscribe(ctx context.Context) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	changes := f.Changes.Subscribe()

	snapshots := make(chan []*entity.Lead, 1)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer f.Changes.Unsubscribe(changes)
		defer close(errs)
		defer close(snapshots)

		for {
			leads, err := f.Leads.List(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("❌ Erro ao listar leads para o painel: %v", err)
					errs <- err
				}
				return
			}

			select {
			case snapshots <- leads:
			case <-ctx.Done():
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()

	return &Subscription{
		Snapshots: snapshots,
		Errors:    errs,
		cancel:    cancel,
		done:      done,
	}
}
