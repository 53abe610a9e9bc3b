package logger_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Nazarious-ucu/weather-viewer/internal/services/logger"
)

type stubTransport struct {
	resp *http.Response
	err  error
}

func (s stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return s.resp, s.err
}

func TestRoundTripper_LogsAndRestoresBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	rt := logger.NewRoundTripper(zap.New(core))
	rt.Proxy = stubTransport{resp: &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"main":{"temp":15.2}}`)),
	}}

	req, err := http.NewRequest(http.MethodGet, "https://owm.test/weather?lat=1&appid=secret", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"main":{"temp":15.2}}`, string(body))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP request completed", entry.Message)

	fields := entry.ContextMap()
	assert.NotContains(t, fields["url"], "secret")
	assert.Contains(t, fields["url"], "appid=REDACTED")
	assert.EqualValues(t, http.StatusOK, fields["status_code"])
}

func TestRoundTripper_TransportError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	rt := logger.NewRoundTripper(zap.New(core))
	rt.Proxy = stubTransport{err: io.ErrUnexpectedEOF}

	req, err := http.NewRequest(http.MethodGet, "https://geo.test/search?q=Paris", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "HTTP request failed", logs.All()[0].Message)
}
