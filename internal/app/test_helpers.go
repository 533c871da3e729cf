package app

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing.
func SetupAppTest(t *testing.T, cfg *Config) (*App, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	testApp := NewApp(buf, cfg)

	t.Cleanup(func() {
		if os.Getenv("SCENEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})

	return testApp, buf
}
