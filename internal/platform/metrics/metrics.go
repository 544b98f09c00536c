package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submits counts contact commits by mode (create|update) and outcome.
	Submits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "contact_submits_total",
		Help:      "Contact submit attempts by mode and outcome.",
	}, []string{"mode", "outcome"})

	// PhotoUploads counts individual photo uploads by outcome (ok|failed).
	PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "photo_uploads_total",
		Help:      "Photo uploads to object storage by outcome.",
	}, []string{"outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
