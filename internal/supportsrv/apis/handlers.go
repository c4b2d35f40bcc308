package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/common/httpx"
	"github.com/tansive/supporttracker/internal/supportsrv/supportcases"
)

type caseHandlers struct {
	svc *supportcases.Service
}

func (h *caseHandlers) listCases(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	filter, fields := parseListQuery(translatorFor(r), r.URL.Query())
	if len(fields) > 0 {
		log.Ctx(ctx).Debug().Interface("errors", fields).Msg("invalid list query")
		return nil, httpx.ErrValidation(fields)
	}

	rsp, err := h.svc.ListCases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

func (h *caseHandlers) getCase(r *http.Request) (*httpx.Response, error) {
	rsp, err := h.svc.GetCase(r.Context(), chi.URLParam(r, "case_id"))
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

func (h *caseHandlers) createCase(r *http.Request) (*httpx.Response, error) {
	req := &createCaseRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if fields := validateStruct(translatorFor(r), req); len(fields) > 0 {
		return nil, httpx.ErrValidation(fields)
	}

	rsp, err := h.svc.CreateCase(r.Context(), req.input())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   BasePath + "/case/" + rsp.Case.ID.String(),
		Response:   rsp,
	}, nil
}
