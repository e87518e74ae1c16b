package token

import (
	"errors"
	"strings"

	"github.com/beamdrop/beamdrop/pkg/domain/session"
)

var ErrInvalidSessionID = errors.New("malformed session id")

// Encoder derives the scannable token payload for a session: the URL a
// sender device lands on after scanning, with the session id embedded in
// the path. Rendering the QR image itself is the presentation layer's job.
type Encoder struct {
	publicURL string
}

func NewEncoder(publicURL string) *Encoder {
	return &Encoder{
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Encode is pure and deterministic; it fails only on a malformed id.
func (e *Encoder) Encode(s *session.Session) (string, error) {
	if !session.ValidID(s.ID) {
		return "", ErrInvalidSessionID
	}
	return e.publicURL + "/s/" + s.ID, nil
}
