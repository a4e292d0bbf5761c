package firms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patagoniaverde/firewatch/internal/ingest"
)

func newServer(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRecords_JSONEnvelope(t *testing.T) {
	srv := newServer(t, http.StatusOK, "application/json", `{
		"fires": [
			{"latitude": -45.57, "longitude": -71.3, "brightness": 350, "acq_date": "2025-05-28", "confidence": "high", "satellite": "Terra"},
			{"latitude": -42.1, "longitude": -71.8, "brightness": 280, "acq_date": "2025-05-28", "confidence": "medium", "satellite": "Aqua"}
		]
	}`)

	client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)
	records, err := client.FetchRecords(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, -45.57, records[0]["latitude"])
	assert.Equal(t, "Terra", records[0]["satellite"])
}

func TestFetchRecords_BareArray(t *testing.T) {
	srv := newServer(t, http.StatusOK, "application/json",
		`[{"latitude": 1, "longitude": 2, "brightness": 300}]`)

	client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)
	records, err := client.FetchRecords(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetchRecords_NonObjectElementsBecomeNil(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "application/json", `{
			"fires": [
				{"latitude": -45.57, "longitude": -71.3, "brightness": 350, "acq_date": "2025-05-28", "confidence": "high"},
				5
			]
		}`)

		client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)
		records, err := client.FetchRecords(context.Background())

		require.NoError(t, err, "one bad element must not sink the batch")
		require.Len(t, records, 2)
		assert.Equal(t, -45.57, records[0]["latitude"])
		assert.Nil(t, records[1])
	})

	t.Run("bare array", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "application/json",
			`["stray", {"latitude": 1, "longitude": 2, "brightness": 300}, null]`)

		client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)
		records, err := client.FetchRecords(context.Background())

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Nil(t, records[0])
		assert.Equal(t, 2.0, records[1]["longitude"])
		assert.Nil(t, records[2])
	})
}

func TestFetchRecords_StructureError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object without fires", `{"status": "ok"}`},
		{"scalar", `42`},
		{"truncated", `{"fires": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, "application/json", tt.body)
			client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)

			_, err := client.FetchRecords(context.Background())
			require.ErrorIs(t, err, ingest.ErrStructure)
		})
	}
}

func TestFetchRecords_TransportError(t *testing.T) {
	t.Run("HTTP 500", func(t *testing.T) {
		srv := newServer(t, http.StatusInternalServerError, "text/plain", "boom")
		client := NewClient(srv.URL, FormatJSON, 5*time.Second, nil)

		_, err := client.FetchRecords(context.Background())
		require.ErrorIs(t, err, ingest.ErrTransport)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "application/json", `{"fires": []}`)
		url := srv.URL
		srv.Close()

		client := NewClient(url, FormatJSON, time.Second, nil)
		_, err := client.FetchRecords(context.Background())
		require.ErrorIs(t, err, ingest.ErrTransport)
	})
}

func TestFetchRecords_CSV(t *testing.T) {
	csvBody := "latitude,longitude,bright_ti4,acq_date,acq_time,confidence,satellite,frp\n" +
		"-45.57,-71.3,350.2,2025-05-28,1510,h,N,42.5\n" +
		"-42.10,-71.8,280.0,2025-05-28,930,n,N20,12.1\n"
	srv := newServer(t, http.StatusOK, "text/csv", csvBody)

	client := NewClient(srv.URL, FormatCSV, 5*time.Second, nil)
	records, err := client.FetchRecords(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "-45.57", records[0]["latitude"])
	assert.Equal(t, "1510", records[0]["acq_time"])
	assert.Equal(t, "N20", records[1]["satellite"])
}

func TestFetchRecords_CSVStructureErrors(t *testing.T) {
	t.Run("ragged rows", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "text/csv", "a,b,c\n1,2\n3,4,5,6\n")
		client := NewClient(srv.URL, FormatCSV, 5*time.Second, nil)

		_, err := client.FetchRecords(context.Background())
		require.ErrorIs(t, err, ingest.ErrStructure)
	})

	t.Run("empty body", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "text/csv", "")
		client := NewClient(srv.URL, FormatCSV, 5*time.Second, nil)

		_, err := client.FetchRecords(context.Background())
		require.ErrorIs(t, err, ingest.ErrStructure)
	})

	t.Run("header only yields empty batch", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, "text/csv", "latitude,longitude,brightness\n")
		client := NewClient(srv.URL, FormatCSV, 5*time.Second, nil)

		records, err := client.FetchRecords(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
