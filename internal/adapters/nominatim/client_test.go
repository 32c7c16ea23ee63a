package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Glasgow", r.URL.Query().Get("q"))
			assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "neverbeen-test", r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"display_name":"Glasgow, Glasgow City, Scotland, United Kingdom","lat":"55.8609825","lon":"-4.2488787"},
				{"display_name":"Glasgow, Kentucky, United States","lat":"36.9959","lon":"-85.9119"}
			]`))
		}))
		defer server.Close()

		c := NewClient(server.URL+"/", "neverbeen-test", 5*time.Second)
		places, err := c.Search(context.Background(), "Glasgow", 5)
		require.NoError(t, err)
		require.Len(t, places, 2)

		assert.Equal(t, "Glasgow, Glasgow City, Scotland, United Kingdom", places[0].DisplayName)
		assert.Equal(t, "55.8609825", places[0].Lat)
		assert.Equal(t, "-4.2488787", places[0].Lon)
		assert.Equal(t, "nominatim", places[0].Source)

		p, err := places[0].Point()
		require.NoError(t, err)
		assert.InDelta(t, 55.8609825, p.Lat, 1e-9)
	})

	t.Run("upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		}))
		defer server.Close()

		c := NewClient(server.URL, "neverbeen-test", 5*time.Second)
		_, err := c.Search(context.Background(), "Glasgow", 5)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusTooManyRequests, se.Code)
		assert.Equal(t, "slow down", se.Body)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "neverbeen-test", 5*time.Second)
		_, err := c.Search(context.Background(), "Glasgow", 5)
		assert.Error(t, err)
	})
}
