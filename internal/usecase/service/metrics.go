package service

import (
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// TicketMetrics счетчик переходов статусов тикетов
type TicketMetrics struct {
	transitions *prometheus.CounterVec
	created     prometheus.Counter
}

func NewTicketMetrics(reg prometheus.Registerer) *TicketMetrics {
	m := &TicketMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentorq",
			Name:      "ticket_transitions_total",
			Help:      "Ticket status changes by source and target status.",
		}, []string{"from", "to"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentorq",
			Name:      "tickets_created_total",
			Help:      "Tickets opened.",
		}),
	}
	reg.MustRegister(m.transitions, m.created)
	return m
}

func (m *TicketMetrics) observeCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *TicketMetrics) observeTransition(from, to domain.Status) {
	if m == nil || from == to {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}
