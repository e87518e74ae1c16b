package token

import (
	"testing"
	"time"

	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	encoder := NewEncoder("https://beam.example")

	id, err := session.GenerateID()
	require.NoError(t, err)
	s := session.NewSession(id, time.Minute)

	payload, err := encoder.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, "https://beam.example/s/"+id, payload)

	// Deterministic.
	again, err := encoder.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, payload, again)
}

func TestEncodeTrimsTrailingSlash(t *testing.T) {
	encoder := NewEncoder("https://beam.example/")

	id, err := session.GenerateID()
	require.NoError(t, err)

	payload, err := encoder.Encode(session.NewSession(id, time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "https://beam.example/s/"+id, payload)
}

func TestEncodeRejectsMalformedID(t *testing.T) {
	encoder := NewEncoder("https://beam.example")

	_, err := encoder.Encode(session.NewSession("bogus!", time.Minute))
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}
