// Package metrics exposes the Prometheus scrape endpoint. Module-level
// metrics register themselves through promauto; this package only serves
// the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
