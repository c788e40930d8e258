package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/internal/wizard"
)

// NotFoundHandler answers unknown routes with a JSON 404 naming the route.
// Wizard page URLs get a hint since they belong to the portal front end.
func NotFoundHandler(logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if loc, ok := wizard.ParseStepPath(r.URL.Path); ok {
			logger.Debug("wizard page requested from the api",
				zap.String("route", route),
				zap.String("step", string(loc.Step)),
			)
			writeError(w, http.StatusNotFound, codeNotFound, "no route for "+route+"; wizard pages are served by the portal")
			return
		}
		writeError(w, http.StatusNotFound, codeNotFound, "no route for "+route)
	})
}
