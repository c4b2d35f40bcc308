package httpx

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/common/logtrace"
)

// SendJsonRsp writes msg as JSON with the given status. Location is set only on 201.
// A string or []byte msg is sent as is when it already holds valid JSON.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any, location ...string) {
	var msgJson []byte
	switch v := msg.(type) {
	case string:
		if json.Valid([]byte(v)) {
			msgJson = []byte(v)
		}
	case []byte:
		if json.Valid(v) {
			msgJson = v
		}
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to marshal json")
			ErrApplicationError("request id: " + logtrace.RequestIdFromContext(ctx)).Send(w)
			return
		}
	}
	if msgJson == nil {
		ErrApplicationError("invalid json response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusCreated && len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}
