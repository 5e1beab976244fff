package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsTotal counts ledger mutations by movement type.
	MovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_movements_total",
			Help: "Total number of stock movements applied to the ledger",
		},
		[]string{"movement_type"},
	)

	// ReservationsCreatedTotal counts successfully created reservations.
	ReservationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_reservations_created_total",
			Help: "Total number of reservations created",
		},
	)

	// ReservationsExpiredTotal counts reservations the sweeper expired.
	ReservationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_reservations_expired_total",
			Help: "Total number of reservations transitioned to EXPIRED by the sweeper",
		},
	)

	// EventPublishFailures counts swallowed publish errors by event type.
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_event_publish_failures_total",
			Help: "Total number of domain event publish failures (logged and ignored)",
		},
		[]string{"event_type"},
	)

	// StockCheckCache tracks availability-check cache effectiveness.
	StockCheckCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_check_cache_total",
			Help: "Stock availability check cache hits and misses",
		},
		[]string{"result"},
	)
)
