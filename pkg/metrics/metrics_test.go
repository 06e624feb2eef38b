package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := New()
	r.Observe("orbit", "downloaded", 2*time.Second)
	r.Observe("orbit", "downloaded", time.Second)
	r.Observe("orbit", "not_published", time.Second)
	r.Observe("obs-igs-daily", "already_present", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.units.WithLabelValues("orbit", "downloaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.units.WithLabelValues("orbit", "not_published")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.units))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Start("3f1c", "CDDIS")
	r.Observe("clock", "downloaded", time.Second)
	r.Finish(time.Unix(1613260800, 0))

	path := filepath.Join(t.TempDir(), "gnssget.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `gnssget_units_total{outcome="downloaded",product="clock"} 1`)
	assert.Contains(t, out, `gnssget_run_info{archive="CDDIS",run_id="3f1c"} 1`)
	assert.Contains(t, out, "gnssget_last_run_timestamp_seconds 1.6132608e+09")
}

func TestRecorder_Push(t *testing.T) {
	var method, path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method, path = req.Method, req.URL.Path
		b, _ := io.ReadAll(req.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.Observe("nav-gps", "downloaded", time.Second)
	require.NoError(t, r.Push(srv.URL, "gnssget", "host1"))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/gnssget/instance/host1", path)
	assert.True(t, strings.Contains(body, "gnssget_units_total"))
}

func TestRecorder_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Error(t, New().Push(srv.URL, "gnssget", ""))
}
