// Package httpx adapts application handlers to net/http. Handlers return a
// Response or an error, and every error is rendered as the JSON failure envelope.
package httpx

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxBodyBytes bounds request bodies when the server does not set a limit.
const DefaultMaxBodyBytes int64 = 1 << 20

// GetRequestData decodes the JSON request body into data. Only POST and PUT are accepted.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	body := http.MaxBytesReader(nil, r.Body, DefaultMaxBodyBytes)
	if err := json.NewDecoder(body).Decode(data); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrRequestTooLarge()
		}
		if errors.Is(err, io.EOF) {
			return ErrUnableToParseReqData()
		}
		log.Ctx(r.Context()).Debug().Err(err).Msg("unable to decode request body")
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response is what a RequestHandler returns on success.
type Response struct {
	StatusCode  int
	Location    string
	Response    any
	ContentType string
}

// RequestHandler defines a function type for handling HTTP requests.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp turns a RequestHandler into an http.HandlerFunc. Errors of any
// type are converted with FromError and sent as the failure envelope.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			httperr := FromError(err)
			if httperr.StatusCode >= http.StatusInternalServerError {
				log.Ctx(r.Context()).Error().Err(err).Int("status", httperr.StatusCode).Msg("request failed")
			}
			httperr.Send(w)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		switch rsp.ContentType {
		case "application/json":
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		case "text/plain":
			s, ok := rsp.Response.(string)
			if !ok {
				ErrApplicationError("unsupported response body").Send(w)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(s))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}
