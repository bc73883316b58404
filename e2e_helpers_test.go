//go:build !ci

package blockkit_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/livetemplate/blockkit/internal/server"
)

const (
	dockerImage           = "chromedp/headless-shell:stable"
	chromeContainerPrefix = "chrome-e2e-blockkit-"
)

// localChromes are the browser binaries tried before falling back to Docker.
var localChromes = []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

// browser is a chromedp context plus whatever is needed to reach test
// servers from it.
type browser struct {
	ctx    context.Context
	docker bool
}

// newBrowser starts a headless browser for the test: a local Chrome when
// one is installed, otherwise the chromedp/headless-shell Docker image. The
// test is skipped when neither is available.
func newBrowser(t *testing.T, timeout time.Duration) *browser {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
		docker      bool
	)
	if path := findLocalChrome(); path != "" {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(path),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	} else {
		port := startDockerChrome(t)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), fmt.Sprintf("http://localhost:%d", port))
		docker = true
	}

	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(t.Logf))
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	t.Cleanup(func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	})
	return &browser{ctx: ctx, docker: docker}
}

// url rewrites an httptest URL so the browser can reach it.
func (b *browser) url(serverURL string) string {
	if !b.docker || runtime.GOOS == "linux" {
		return strings.Replace(serverURL, "127.0.0.1", "localhost", 1)
	}
	return strings.Replace(serverURL, "127.0.0.1", "host.docker.internal", 1)
}

func findLocalChrome() string {
	for _, name := range localChromes {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// startDockerChrome runs the headless-shell container and waits until its
// debugging endpoint answers. It returns the debugging port.
func startDockerChrome(t *testing.T) int {
	t.Helper()
	if _, err := exec.Command("docker", "version").CombinedOutput(); err != nil {
		t.Skip("no local Chrome and Docker not available, skipping browser test")
	}

	port, err := freePort()
	if err != nil {
		t.Fatalf("Failed to allocate Chrome port: %v", err)
	}
	name := fmt.Sprintf("%s%d", chromeContainerPrefix, port)
	_, _ = exec.Command("docker", "rm", "-f", name).CombinedOutput()

	args := []string{"run", "-d", "--rm", "--memory", "512m", "--name", name}
	if runtime.GOOS == "linux" {
		args = append(args, "--network", "host", dockerImage, fmt.Sprintf("--remote-debugging-port=%d", port))
	} else {
		args = append(args, "-p", fmt.Sprintf("%d:9222", port), dockerImage)
	}
	if out, err := exec.Command("docker", args...).CombinedOutput(); err != nil {
		t.Fatalf("Failed to start Chrome Docker container: %v\n%s", err, out)
	}
	t.Cleanup(func() {
		_, _ = exec.Command("docker", "rm", "-f", name).CombinedOutput()
	})

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(fmt.Sprintf("http://localhost:%d/json/version", port))
		if err == nil {
			resp.Body.Close()
			return port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("Chrome failed to start within 60 seconds")
	return 0
}

// freePort asks the kernel for a free open port that is ready to use.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// startSite writes files to a temp directory and serves them with the full
// middleware chain. It returns the server's base URL.
func startSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	srv := server.New(dir)
	if err := srv.Discover(); err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	handler, done := srv.Handler(ctx)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		_ = srv.Close()
		ts.Close()
		cancel()
		<-done
	})
	return ts.URL
}
