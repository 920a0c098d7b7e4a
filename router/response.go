package router

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response is the one value a handler can produce to answer the webhook
// itself. Handlers that only cause side effects return nil and the caller
// gets a bare acknowledgment.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Ack is the bare 200 acknowledgment Slack expects when no handler answers.
func Ack() *Response {
	return &Response{StatusCode: http.StatusOK}
}

// ServerError is the opaque 500 returned when an awaited handler failed.
func ServerError() *Response {
	return &Response{StatusCode: http.StatusInternalServerError}
}

// Text builds a 200 plain-text response.
func Text(body string) *Response {
	return &Response{
		StatusCode:  http.StatusOK,
		ContentType: "text/plain",
		Body:        []byte(body),
	}
}

// JSON builds a 200 application/json response from v.
func JSON(v interface{}) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response body")
		return ServerError()
	}
	return &Response{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}
}

// Ephemeral builds the in-channel ephemeral message Slack renders for the
// invoking user only.
func Ephemeral(text string) *Response {
	return JSON(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
}

// Write sends the response on w.
func (resp *Response) Write(w http.ResponseWriter) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			log.Error().Err(err).Msg("Failed to write response body")
		}
	}
}
