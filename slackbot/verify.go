package slackbot

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/slack-go/slack"
)

// verifyRequest reads the request body and, when a signing secret is
// configured, verifies the v0 HMAC signature and timestamp freshness. On
// failure it writes the appropriate HTTP status and returns a non-nil error.
// Without a signing secret the body is returned as-is and the caller must
// check the payload's verification token via checkToken.
func (p *Plugin) verifyRequest(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, err
	}

	if p.cfg.SigningSecret == "" {
		return body, nil
	}

	sv, err := slack.NewSecretsVerifier(r.Header, p.cfg.SigningSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, err
	}
	if _, err := sv.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, err
	}
	if err := sv.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, err
	}

	return body, nil
}

// checkToken is the legacy fallback: in constant time, compare the token the
// payload carries against the configured verification token. A configured
// signing secret supersedes it. Writes a 401 and returns false on mismatch.
func (p *Plugin) checkToken(w http.ResponseWriter, token string) bool {
	if p.cfg.SigningSecret != "" {
		return true
	}
	if p.cfg.VerificationToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(p.cfg.VerificationToken)) == 1 {
		return true
	}
	w.WriteHeader(http.StatusUnauthorized)
	return false
}
