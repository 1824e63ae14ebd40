package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

var (
	treefsBin string
	testEnv   *E2ETestEnvironment
)

func TestMain(m *testing.M) {
	if _, err := exec.LookPath("go"); err != nil {
		fmt.Fprintln(os.Stderr, "skipping e2e tests: go toolchain not in PATH")
		os.Exit(0)
	}

	tmpBinDir, err := os.MkdirTemp("", "treefs-bin")
	if err != nil {
		panic(err)
	}
	treefsBin = filepath.Join(tmpBinDir, "treefs")

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot determine current file path")
	}
	projRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")

	cmd := exec.Command("go", "build", "-o", treefsBin, "./cmd/treefs")
	cmd.Dir = projRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out))
	}

	testEnv = NewE2ETestEnvironment()
	code := m.Run()
	testEnv.Close()
	_ = os.RemoveAll(tmpBinDir)
	os.Exit(code)
}

func TestE2ECatHTTPSource(t *testing.T) {
	testEnv.Register("/hello", http.StatusOK, []byte("Hello, treefs!"))
	manifest := testEnv.WriteManifest(t, `{"entries": [
		{"type": "file", "path": "/greeting.txt", "source": {"type": "http", "url": "%s/hello"}}
	]}`)

	out, stderr, err := runTreefs("cat", "-v", "1", "-m", manifest, "/greeting.txt")
	if err != nil {
		t.Fatalf("cat failed: %v\n%s", err, stderr)
	}
	if out != "Hello, treefs!" {
		t.Fatalf("content mismatch: got %q", out)
	}
}

func TestE2EHTTPErrorFailsLoad(t *testing.T) {
	testEnv.Register("/gone", http.StatusNotFound, nil)
	manifest := testEnv.WriteManifest(t, `{"entries": [
		{"type": "file", "path": "/missing.txt", "source": {"type": "http", "url": "%s/gone"}}
	]}`)

	_, stderr, err := runTreefs("ls", "-v", "1", "-m", manifest)
	if err == nil {
		t.Fatal("expected ls to fail for a 404 source")
	}
	if !strings.Contains(stderr, "404") {
		t.Fatalf("expected status in error output, got %q", stderr)
	}
}

func TestE2EMountAndRead(t *testing.T) {
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("/dev/fuse not available")
	}
	if _, err := exec.LookPath("fusermount"); err != nil {
		t.Skip("fusermount not available")
	}

	binary := make([]byte, 512)
	for i := range binary {
		binary[i] = byte(i % 256)
	}
	testEnv.Register("/text-content", http.StatusOK, []byte("Text file content for testing."))
	testEnv.Register("/binary-content", http.StatusOK, binary)
	manifest := testEnv.WriteManifest(t, `{"entries": [
		{"type": "file", "path": "/docs/text.txt", "source": {"type": "http", "url": "%[1]s/text-content"}},
		{"type": "file", "path": "/binary.bin", "source": {"type": "http", "url": "%[1]s/binary-content"}}
	]}`)

	mnt := filepath.Join(t.TempDir(), "mnt")
	cmd := exec.Command(treefsBin, "mount", "-v", "1", "-m", manifest, mnt)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start treefs: %v", err)
	}
	defer func() {
		_ = cmd.Process.Signal(syscall.SIGINT)
		_ = cmd.Wait()
	}()

	textPath := filepath.Join(mnt, "docs", "text.txt")
	if !waitFor(textPath, 5*time.Second) {
		t.Skipf("mount did not come up: %s", stderr.String())
	}

	data, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatalf("failed to read text file: %v", err)
	}
	if string(data) != "Text file content for testing." {
		t.Fatalf("text content mismatch: got %q", string(data))
	}

	data, err = os.ReadFile(filepath.Join(mnt, "binary.bin"))
	if err != nil {
		t.Fatalf("failed to read binary file: %v", err)
	}
	if !bytes.Equal(data, binary) {
		t.Fatalf("binary content mismatch")
	}

	entries, err := os.ReadDir(mnt)
	if err != nil {
		t.Fatalf("failed to read mount root: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries at the root, got %d", len(entries))
	}

	if err := os.WriteFile(filepath.Join(mnt, "new.txt"), []byte("x"), 0o644); err == nil {
		t.Fatal("expected write to a read-only mount to fail")
	}
}

// E2ETestEnvironment serves mock HTTP content for manifests
type E2ETestEnvironment struct {
	MockServer *httptest.Server
	BaseDir    string
	mux        *http.ServeMux
}

// NewE2ETestEnvironment creates a shared test environment with a mock HTTP server
func NewE2ETestEnvironment() *E2ETestEnvironment {
	baseDir, err := os.MkdirTemp("", "treefs-e2e-tests")
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	return &E2ETestEnvironment{
		MockServer: httptest.NewServer(mux),
		BaseDir:    baseDir,
		mux:        mux,
	}
}

// Close cleans up the test environment
func (env *E2ETestEnvironment) Close() {
	env.MockServer.Close()
	_ = os.RemoveAll(env.BaseDir)
}

// Register serves content at path with the given status
func (env *E2ETestEnvironment) Register(path string, status int, content []byte) {
	env.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, fmt.Sprintf("Mock error %d", status), status)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(content)
	})
}

// WriteManifest formats tmpl with the mock server URL and writes it as JSON
func (env *E2ETestEnvironment) WriteManifest(t *testing.T, tmpl string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(p, []byte(fmt.Sprintf(tmpl, env.MockServer.URL)), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return p
}

func runTreefs(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(treefsBin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func waitFor(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
