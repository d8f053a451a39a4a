package pipeline

import (
	"net/http"

	"github.com/crimson-sun/vitigate/internal/model"
)

// NotFoundMessage is the data of every NotFound envelope.
const NotFoundMessage = "not found"

// Success wraps parsed records. A nil slice is encoded as an empty list.
func Success(records []model.Record) model.Envelope {
	if records == nil {
		records = []model.Record{}
	}
	return model.Envelope{StatusCode: http.StatusOK, Data: records}
}

// Failure maps an error to its envelope:
//
//	NotFound            404, fixed message
//	ParseFailure        400, parser message
//	Unauthorized        401, reason
//	UpstreamUnavailable upstream status when it is an HTTP error code, else 500
//	Internal            500, error text
func Failure(err error) model.Envelope {
	ge := classify(err)
	switch ge.Kind {
	case model.NotFound:
		return model.Envelope{StatusCode: http.StatusNotFound, Data: NotFoundMessage}
	case model.ParseFailure:
		return model.Envelope{StatusCode: http.StatusBadRequest, Data: ge.Error()}
	case model.Unauthorized:
		return model.Envelope{StatusCode: http.StatusUnauthorized, Data: ge.Error()}
	case model.UpstreamUnavailable:
		status := http.StatusInternalServerError
		if ge.Status >= 400 && ge.Status <= 599 {
			status = ge.Status
		}
		return model.Envelope{StatusCode: status, Data: ge.Error()}
	default:
		return model.Envelope{StatusCode: http.StatusInternalServerError, Data: ge.Error()}
	}
}
