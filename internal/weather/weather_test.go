package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OpenMeteoRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":21.4,"weathercode":61}}`))
	}))
	defer srv.Close()

	r := &openMeteoReader{
		client:  srv.Client(),
		baseURL: srv.URL,
		lat:     36.17,
		lon:     -86.78,
	}

	st, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 21.4, st.TempC, 0.0001)
	assert.Equal(t, 61, st.Code)
	assert.Equal(t, "Rain", st.Label)
}

func Test_OpenMeteoReadNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := &openMeteoReader{client: srv.Client(), baseURL: srv.URL}
	_, err := r.Read(context.Background())
	assert.Error(t, err)
}

func Test_OpenMeteoReadBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	r := &openMeteoReader{client: srv.Client(), baseURL: srv.URL}
	_, err := r.Read(context.Background())
	assert.Error(t, err)
}

func Test_StaticReader(t *testing.T) {
	want := Status{TempC: 5, Code: 0, Label: "Clear"}
	st, err := NewStaticReader(want).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, st)
}

func Test_Describe(t *testing.T) {
	assert.Equal(t, "Clear", Describe(0))
	assert.Equal(t, "Partly cloudy", Describe(2))
	assert.Equal(t, "Fog", Describe(45))
	assert.Equal(t, "Drizzle", Describe(53))
	assert.Equal(t, "Rain", Describe(65))
	assert.Equal(t, "Snow", Describe(73))
	assert.Equal(t, "Showers", Describe(81))
	assert.Equal(t, "Thunderstorm", Describe(95))
	assert.Equal(t, "Unknown", Describe(40))
}

func Test_ReaderTimeoutConfigured(t *testing.T) {
	r, ok := NewOpenMeteoReader(0, 0).(*openMeteoReader)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, r.client.Timeout)
}
