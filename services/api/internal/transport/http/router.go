package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Wizards  WizardService
	Venues   VenueService
	Offers   OfferCatalog
	Checks   map[string]Pinger
	CORS     CORSPolicy
	Logger   *zap.Logger
	Observer RequestObserver
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// NewRouter wires every route behind the CORS and logging middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", HealthHandler(cfg.Checks))
	if cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/wizards", HandleStartWizard(cfg.Wizards))
	mux.Handle("/wizards/", HandleWizard(cfg.Wizards))
	mux.Handle("/offers", HandleListOffers(cfg.Offers))
	mux.Handle("/offers/drafts/delete", HandleDeleteDrafts(cfg.Offers))
	mux.Handle("/offers/has-bookings", HandleUserHasBookings(cfg.Offers))
	mux.Handle("/venues/last-selected", HandleLastSelectedVenue(cfg.Venues))
	mux.Handle("/venues/", HandleVenueImage(cfg.Venues))
	mux.Handle("/", NotFoundHandler(cfg.Logger))

	return RequestLogger(CORS(cfg.CORS, mux), cfg.Logger, cfg.Observer)
}
