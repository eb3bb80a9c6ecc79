package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/sellfolio/backend/src/services"
	"github.com/username/sellfolio/backend/src/utils"
)

// parseScope reads the common file/start/end query params shared by the
// analytics endpoints. Dates are ISO YYYY-MM-DD; a missing bound stays nil.
func parseScope(r *http.Request) (services.ReportScope, error) {
	scope := services.ReportScope{FileID: r.URL.Query().Get("file")}

	var err error
	if scope.Start, err = parseDateParam(r, "start"); err != nil {
		return scope, err
	}
	if scope.End, err = parseDateParam(r, "end"); err != nil {
		return scope, err
	}
	return scope, nil
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, ok := utils.ParseISODate(raw)
	if !ok {
		return nil, fmt.Errorf("invalid '%s' date %q, expected YYYY-MM-DD", name, raw)
	}
	return &parsed, nil
}
