// ============================================================================
// End-to-end front-end consistency
// ============================================================================
//
// Package: test/integration
// File: frontends_test.go
//
// The same comparison request is executed through:
//   1. the in-process Service
//   2. the gRPC Simulator over a real TCP listener
//   3. the fiber HTTP API
//
// The rendered reports must be identical, and a JSON export written from one
// of them must load and render the same way again.
//
// ============================================================================

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/api"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/export"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/metrics"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/report"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/server"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/workload"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// generateWorkload builds a reproducible workload of count processes
func generateWorkload(count int, seed int64) []types.Process {
	r := rand.New(rand.NewSource(seed))
	procs := make([]types.Process, count)
	for i := range procs {
		procs[i] = types.NewProcess(
			types.ProcessID(fmt.Sprintf("P%d", i+1)),
			r.Intn(count*2),
			1+r.Intn(10),
			r.Intn(5),
		)
	}
	return procs
}

func render(doc export.Document) string {
	var buf bytes.Buffer
	report.WriteComparison(&buf, doc.Report())
	return buf.String()
}

func TestFrontEndsAgree(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := server.NewService(server.Options{
		Defaults: engine.Config{Quantum: 3, ContextSwitch: 1},
		Workers:  4,
		Observer: metrics.NewCollector(reg),
	})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := server.NewServer(svc)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	client, err := server.Dial(lis.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	app := api.NewApp(api.NewSchedulerHandlerImpl(svc), reg)

	req := server.CompareRequest{Processes: workload.Records(generateWorkload(40, 7))}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. in-process
	local, err := svc.Compare(ctx, req)
	require.NoError(t, err)
	require.Len(t, local.Runs, len(types.Algorithms))
	for _, run := range local.Runs {
		require.Empty(t, run.Error, run.Algorithm)
	}

	// 2. gRPC
	remote, err := client.Compare(ctx, req)
	require.NoError(t, err)

	// 3. HTTP
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/compare", bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(httpReq, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var viaHTTP export.Document
	require.NoError(t, json.Unmarshal(data, &viaHTTP))

	want := render(local)
	assert.Equal(t, want, render(remote), "gRPC report differs")
	assert.Equal(t, want, render(viaHTTP), "HTTP report differs")

	// three comparisons, every algorithm succeeded each time
	scrape, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	exposition, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)
	for _, alg := range types.Algorithms {
		assert.Contains(t, string(exposition), fmt.Sprintf("schedsim_runs_total{algorithm=%q,outcome=%q} 3", alg, metrics.OutcomeOK))
	}

	// export written from the remote document renders the same again
	path := filepath.Join(t.TempDir(), "comparison.json")
	m := export.NewManager(path)
	require.NoError(t, m.Write(remote))
	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, want, render(loaded))
}
