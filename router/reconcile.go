package router

import (
	"context"

	"github.com/rs/zerolog"
)

// Reconcile joins on the must-await tasks and picks the webhook's HTTP
// response among their results:
//
//   - any failed task wins over any sibling's success and yields a 500.
//   - exactly one task produced a *Response: that response is returned.
//   - none did: bare 200 acknowledgment.
//   - more than one did: all are dropped in favor of the bare 200, with a
//     warning.
//
// Detached tasks are not part of this barrier and may still be running when
// the response goes out.
func Reconcile(ctx context.Context, logger zerolog.Logger, tasks []*Task) *Response {
	var responses []*Response
	failed := false

	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-ctx.Done():
			logger.Error().Err(ctx.Err()).Str("handler", t.Name).Msg("Gave up waiting for handler")
			return ServerError()
		}
		if t.err != nil {
			logger.Error().Err(t.err).Str("handler", t.Name).Msg("Handler failed")
			failed = true
			continue
		}
		if t.resp != nil {
			responses = append(responses, t.resp)
		}
	}

	if failed {
		return ServerError()
	}

	switch len(responses) {
	case 0:
		return Ack()
	case 1:
		return responses[0]
	default:
		logger.Warn().Int("count", len(responses)).Msg("Multiple handlers produced a response, returning none")
		return Ack()
	}
}
