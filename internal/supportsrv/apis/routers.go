// Package apis exposes the support case service over HTTP.
package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tansive/supporttracker/internal/common/httpx"
	"github.com/tansive/supporttracker/internal/supportsrv/supportcases"
)

// BasePath is where Router is mounted.
const BasePath = "/api/support-cases"

type handlerParam struct {
	Method  string
	Path    string
	Handler httpx.RequestHandler
}

// Router returns the support case routes, relative to BasePath.
func Router(svc *supportcases.Service) chi.Router {
	h := &caseHandlers{svc: svc}
	handlers := []handlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/",
			Handler: h.listCases,
		},
		{
			Method:  http.MethodGet,
			Path:    "/case/{case_id}",
			Handler: h.getCase,
		},
		{
			Method:  http.MethodPost,
			Path:    "/",
			Handler: h.createCase,
		},
	}

	r := chi.NewRouter()
	for _, handler := range handlers {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
	return r
}
