package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_evaluation_passes_total",
		Help: "Watering evaluation passes started.",
	})
	EvaluationsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_evaluations_skipped_total",
		Help: "Controller evaluations skipped because one was already in flight.",
	})
	TrueVerdicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_true_verdicts_total",
		Help: "Controller evaluations where the engine decided to water.",
	})
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_reminders_sent_total",
		Help: "Watering reminders delivered to users.",
	})
	RemindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_reminders_failed_total",
		Help: "Watering reminders that failed to deliver.",
	})
	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_subscriptions_created_total",
		Help: "User-to-controller subscriptions created.",
	})
	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waterme_readings_ingested_total",
		Help: "Sensor readings appended from the MQTT bridge.",
	})
)
