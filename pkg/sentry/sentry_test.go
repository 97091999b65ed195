package sentry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu     sync.Mutex
	events []*sentrygo.Event
}

func (t *recordingTransport) Configure(sentrygo.ClientOptions) {}

func (t *recordingTransport) Flush(time.Duration) bool { return true }

func (t *recordingTransport) SendEvent(event *sentrygo.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTransport) Events() []*sentrygo.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentrygo.Event(nil), t.events...)
}

func initRecording(t *testing.T) *recordingTransport {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("SENTRY_DSN", "https://public@sentry.example.com/1")

	transport := &recordingTransport{}
	require.NoError(t, sentrygo.Init(sentrygo.ClientOptions{
		Dsn:       "https://public@sentry.example.com/1",
		Transport: transport,
	}))
	return transport
}

func TestSentry_Builder(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/Movies", nil), httptest.NewRecorder())
	err := errors.New("omdb unavailable")
	extras := map[string]interface{}{"imdb_id": "tt0111161"}
	tags := map[string]string{"component": "omdb"}
	values := map[string]sentrygo.Context{"movie": {"title": "The Shawshank Redemption"}}

	s := new(Sentry).
		WithContext(c).
		WithError(err).
		WithMessage("lookup failed").
		WithLevel(sentrygo.LevelWarning).
		WithExtras(extras).
		WithTags(tags).
		WithContextValues(values)

	assert.Equal(t, c, s.context)
	assert.Equal(t, err, s.error)
	assert.Equal(t, "lookup failed", s.message)
	assert.Equal(t, sentrygo.LevelWarning, s.level)
	assert.Equal(t, extras, s.extras)
	assert.Equal(t, tags, s.tags)
	assert.Equal(t, values, s.contextValues)

	assert.Equal(t, c, WithContext(c).context)
	assert.Equal(t, extras, WithExtras(extras).extras)
	assert.Equal(t, tags, WithTags(tags).tags)
	assert.Equal(t, values, WithContextValues(values).contextValues)
}

func TestSentry_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		dsn    string
	}{
		{name: "local env", appEnv: "local", dsn: "https://public@sentry.example.com/1"},
		{name: "empty dsn", appEnv: "production", dsn: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := initRecording(t)
			t.Setenv("APP_ENV", tt.appEnv)
			t.Setenv("SENTRY_DSN", tt.dsn)

			Info("hello")
			Error(errors.New("boom"))

			assert.Empty(t, transport.Events())
		})
	}
}

func TestSentry_SendsEvents(t *testing.T) {
	t.Run("error carries level and tags", func(t *testing.T) {
		transport := initRecording(t)

		WithTags(map[string]string{"component": "reviews"}).Error(errors.New("insert failed"))

		events := transport.Events()
		require.Len(t, events, 1)
		assert.Equal(t, sentrygo.LevelError, events[0].Level)
		assert.Equal(t, "reviews", events[0].Tags["component"])
		require.NotEmpty(t, events[0].Exception)
		assert.Equal(t, "insert failed", events[0].Exception[0].Value)
	})

	t.Run("formatted message", func(t *testing.T) {
		transport := initRecording(t)

		Warningf("retrying %s after %d failures", "tt0111161", 3)

		events := transport.Events()
		require.Len(t, events, 1)
		assert.Equal(t, sentrygo.LevelWarning, events[0].Level)
		assert.Equal(t, "retrying tt0111161 after 3 failures", events[0].Message)
	})

	t.Run("fatal does not exit", func(t *testing.T) {
		transport := initRecording(t)
		original := FlushTime
		FlushTime = 0
		defer func() { FlushTime = original }()

		Fatal(errors.New("shutdown"))

		events := transport.Events()
		require.Len(t, events, 1)
		assert.Equal(t, sentrygo.LevelFatal, events[0].Level)
	})

	t.Run("empty message is skipped", func(t *testing.T) {
		transport := initRecording(t)

		Debug("")

		assert.Empty(t, transport.Events())
	})
}

func TestReporter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("captures warning", func(t *testing.T) {
		transport := initRecording(t)

		NewReporter(logger).Report(context.Background(), errors.New("omdb timeout"), "movie details fallback")

		events := transport.Events()
		require.Len(t, events, 1)
		assert.Equal(t, sentrygo.LevelWarning, events[0].Level)
		assert.Equal(t, "movie details fallback", events[0].Extra["message"])
	})

	t.Run("nil error is only logged", func(t *testing.T) {
		transport := initRecording(t)

		NewReporter(nil).Report(context.Background(), nil, "nothing")

		assert.Empty(t, transport.Events())
	})
}
