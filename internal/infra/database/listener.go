package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

const LeadsChangedChannel = "leads_changed"

// Notifier é acordado a cada mudança vista no canal.
type Notifier interface {
	Notify()
}

// Listener transforma o NOTIFY de leads_changed em avisos do hub; escritas de
// outras instâncias também atualizam os painéis abertos.
type Listener struct {
	connString string
	target     Notifier
}

func NewListener(connString string, target Notifier) *Listener {
	return &Listener{connString: connString, target: target}
}

func (l *Listener) Run(ctx context.Context) error {
	pl := pq.NewListener(l.connString, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("⚠️ Listener Postgres: %v", err)
		}
	})
	defer pl.Close()

	if err := pl.Listen(LeadsChangedChannel); err != nil {
		return fmt.Errorf("erro ao escutar %s: %w", LeadsChangedChannel, err)
	}
	log.Printf("👂 Escutando NOTIFY em '%s'", LeadsChangedChannel)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pl.Notify:
			// nil chega após reconexão; a lista pode ter mudado no intervalo.
			l.target.Notify()
		case <-ping.C:
			go func() {
				if err := pl.Ping(); err != nil {
					log.Printf("⚠️ Ping do listener falhou: %v", err)
				}
			}()
		}
	}
}
