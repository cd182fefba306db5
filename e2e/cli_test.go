package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quickchess/internal/factory"
	"github.com/mcoot/quickchess/internal/services/matchmaker"
	"github.com/mcoot/quickchess/internal/ws"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath   string
	serverURL    string
	identityFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "quickchess-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cli")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp identity file
	identityFile := filepath.Join(t.TempDir(), "identity")

	return &cliRunner{
		binaryPath:   binaryPath,
		serverURL:    serverURL,
		identityFile: identityFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--identity-file", r.identityFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application with a short match timeout so timeout paths
	// are testable
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(context.Background(), factory.Config{
		Logger:           logger,
		MatchmakerConfig: matchmaker.Config{RequestTimeout: time.Second},
	})
	require.NoError(t, err)

	server := &http.Server{
		Addr:    addr,
		Handler: ws.NewRouter(app.Handler, logger),
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type identityResponse struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func TestCLIHealth(t *testing.T) {
	server := startTestServer(t)
	defer server.shutdown()
	cli := newCLIRunner(t, server.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "health failed: %s", output)

	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestCLIIdentityPersistsAcrossRuns(t *testing.T) {
	server := startTestServer(t)
	defer server.shutdown()
	cli := newCLIRunner(t, server.addr)

	output, err := cli.run("id")
	require.NoError(t, err, "id failed: %s", output)

	var first identityResponse
	require.NoError(t, json.Unmarshal([]byte(output), &first))
	assert.Len(t, first.ID, 20)

	output, err = cli.run("id")
	require.NoError(t, err)
	var second identityResponse
	require.NoError(t, json.Unmarshal([]byte(output), &second))
	assert.Equal(t, first.ID, second.ID)

	output, err = cli.run("id", "--regenerate")
	require.NoError(t, err)
	var fresh identityResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fresh))
	assert.Len(t, fresh.ID, 20)
	assert.NotEqual(t, first.ID, fresh.ID)
}

func TestCLIUsersShowsSelf(t *testing.T) {
	server := startTestServer(t)
	defer server.shutdown()
	cli := newCLIRunner(t, server.addr)

	output, err := cli.run("id")
	require.NoError(t, err, "id failed: %s", output)
	var identity identityResponse
	require.NoError(t, json.Unmarshal([]byte(output), &identity))

	output, err = cli.run("users")
	require.NoError(t, err, "users failed: %s", output)
	assert.Contains(t, output, identity.ID)
}

func TestCLIMatchTimesOutAlone(t *testing.T) {
	server := startTestServer(t)
	defer server.shutdown()
	cli := newCLIRunner(t, server.addr)

	output, err := cli.run("match", "--timeout", "5s")
	require.NoError(t, err, "match failed: %s", output)
	assert.Contains(t, output, "timeout")
}
