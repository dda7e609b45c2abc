package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnnouncementsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faculty",
		Name:      "announcements_created_total",
		Help:      "Announcements successfully created.",
	})

	AttachmentsStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faculty",
		Name:      "attachments_stored_total",
		Help:      "Announcement attachments promoted to public storage.",
	})

	StagedUploadsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faculty",
		Name:      "staged_uploads_swept_total",
		Help:      "Orphaned staged uploads removed by the sweep job.",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faculty",
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})
)
