package worker

import (
	"context"
	"log"
	"time"
)

type AbandonedLeadCounter interface {
	CountAbandoned(ctx context.Context, cutoff time.Time) (int, error)
}

// AbandonedLeadWorker mede leads parciais que nunca foram concluídos.
// Só lê: um lead abandonado continua parcial no banco.
type AbandonedLeadWorker struct {
	repo         AbandonedLeadCounter
	report       func(n int)
	window       time.Duration
	tickInterval time.Duration
	now          func() time.Time
}

func NewAbandonedLeadWorker(repo AbandonedLeadCounter, window time.Duration, report func(n int)) *AbandonedLeadWorker {
	return &AbandonedLeadWorker{
		repo:         repo,
		report:       report,
		window:       window,
		tickInterval: 1 * time.Minute,
		now:          time.Now,
	}
}

func (w *AbandonedLeadWorker) Start(ctx context.Context) {
	log.Printf("🕒 Abandoned Lead Worker iniciado (janela de %s)", w.window)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.measure(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Abandoned Lead Worker encerrado")
			return
		case <-ticker.C:
			w.measure(ctx)
		}
	}
}

func (w *AbandonedLeadWorker) measure(ctx context.Context) {
	n, err := w.repo.CountAbandoned(ctx, w.now().Add(-w.window))
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("❌ Erro ao contar leads abandonados: %v", err)
		}
		return
	}

	w.report(n)
	if n > 0 {
		log.Printf("⏱️ %d lead(s) parciais há mais de %s", n, w.window)
	}
}
