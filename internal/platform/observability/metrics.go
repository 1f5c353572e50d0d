package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricebot_queries_total",
		Help: "The total number of resolved requests by outcome",
	}, []string{"outcome"})

	PriceAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricebot_price_api_errors_total",
		Help: "The total number of failed price API calls",
	}, []string{"market", "kind"})

	PreferenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricebot_preference_writes_total",
		Help: "The total number of stored market preferences",
	}, []string{"scope"})

	CatalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricebot_catalog_items",
		Help: "Number of items in the active catalog snapshot",
	})

	CatalogRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricebot_catalog_refresh_total",
		Help: "The total number of catalog refresh attempts",
	}, []string{"status"})

	RepliesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricebot_replies_sent_total",
		Help: "The total number of replies delivered to platforms",
	}, []string{"platform", "kind"})
)
