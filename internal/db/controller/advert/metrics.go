package advert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	created = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulletin",
		Name:      "adverts_created_total",
		Help:      "Number of adverts created.",
	})

	publication = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulletin",
		Name:      "advert_publication_changes_total",
		Help:      "Number of publish and unpublish writes.",
	}, []string{"action"})
)
