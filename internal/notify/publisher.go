package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const channel = "settlements"

// SettlementEvent é publicado após cada liquidação bem-sucedida para
// consumo por dashboards e relatórios. Entrega é best-effort: falha aqui
// nunca desfaz uma liquidação já commitada.
type SettlementEvent struct {
	SalonID       uint     `json:"salon_id"`
	AppointmentID uint     `json:"appointment_id"`
	PaymentSource *string  `json:"payment_source"`
	TotalPrice    float64  `json:"total_price"`
	Commission    *float64 `json:"commission"`
	CompletedAt   string   `json:"completed_at"`
}

type Publisher struct {
	client *redis.Client
	queue  chan SettlementEvent
}

// NewPublisher cria o publicador. addr vazio desliga a publicação
// (deploys sem redis continuam funcionando).
func NewPublisher(addr string) *Publisher {
	p := &Publisher{
		queue: make(chan SettlementEvent, 100),
	}

	if addr != "" {
		p.client = redis.NewClient(&redis.Options{Addr: addr})
	}

	go p.worker()
	return p
}

func (p *Publisher) worker() {
	for ev := range p.queue {
		if p.client == nil {
			continue
		}

		payload, err := json.Marshal(ev)
		if err != nil {
			log.Println("notify marshal error:", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
			log.Println("notify publish error:", err)
		}
		cancel()
	}
}

func (p *Publisher) Publish(ev SettlementEvent) {
	select {
	case p.queue <- ev:
	default:
		log.Println("notify queue full, dropping event")
	}
}
