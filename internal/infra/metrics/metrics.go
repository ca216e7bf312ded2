package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_reservations_created_total",
		Help: "Созданные резервы партий.",
	})

	ReservationsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_reservations_released_total",
		Help: "Снятые резервы (ручные и автоматические).",
	})

	OverReservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_over_reservations_rejected_total",
		Help: "Отклонённые попытки перерезервирования без подтверждения.",
	})
)
