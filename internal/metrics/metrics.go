package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Client side: one increment per finished submission.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_submissions_total",
			Help: "Total number of mint submissions by terminal stage and result",
		},
		[]string{"stage", "result"},
	)

	SubmissionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "factory_submissions_rejected_total",
		Help: "Submissions rejected because another one was in flight",
	})

	// Backend side.
	AssetUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_asset_uploads_total",
			Help: "Total number of files stored through /create",
		},
		[]string{"result"},
	)

	ObjectRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_object_registrations_total",
			Help: "Total number of objects registered through /object_uri",
		},
		[]string{"result"},
	)

	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_events_publish_failed_total",
			Help: "Events that could not be published",
		},
		[]string{"event_type"},
	)
)
