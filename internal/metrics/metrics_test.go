package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveIndex(t *testing.T) {
	m := New()

	m.ObserveIndex("index", nil)
	m.ObserveIndex("index", nil)
	m.ObserveIndex("reindex", errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("index", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("reindex", "error")), 0)
}

func TestObserveCompletion(t *testing.T) {
	m := New()

	m.ObserveCompletion(time.Now(), 12)

	assert.InDelta(t, 1, testutil.ToFloat64(m.CompletionsTotal), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompletionLatency))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.TrackedDocuments.Set(3)

	assert.InDelta(t, 3, testutil.ToFloat64(a.TrackedDocuments), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.TrackedDocuments), 0)
}

func TestHandler(t *testing.T) {
	m := New()
	m.EditsTotal.WithLabelValues("patched").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wordcomplete_edits_total{result="patched"} 1`)
}

func TestStartServer(t *testing.T) {
	m := New()

	addr, shutdown, err := StartServer("127.0.0.1:0", m)
	require.NoError(t, err)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, shutdown(ctx))
	}()

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "wordcomplete_completions_total")
}
