package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"tedep/internal/cluster"
	"tedep/internal/cluster/clustertest"
	"tedep/internal/config"
	"tedep/internal/tfws"
)

func testSettings() *config.Config {
	settings := config.GetDefaultConfig()
	settings.HTTPAddress = "127.0.0.1:0"
	return &settings
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *Config
		expectError   bool
		expectedCount int
	}{
		{
			name:          "namespace from command line",
			cfg:           &Config{Namespace: "infra", Settings: testSettings()},
			expectedCount: 1,
		},
		{
			name:        "namespace missing",
			cfg:         &Config{Settings: testSettings()},
			expectError: true,
		},
		{
			name: "controller disabled",
			cfg: &Config{Namespace: "infra", Settings: func() *config.Config {
				s := testSettings()
				s.Controllers = map[string]config.ControllerConfig{tfws.ControllerName: {Disabled: true}}
				return s
			}()},
			expectedCount: 0,
		},
		{
			name: "invalid settings",
			cfg: &Config{Namespace: "infra", Settings: func() *config.Config {
				s := testSettings()
				s.HTTPAddress = ""
				return s
			}()},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.LogOutput = &bytes.Buffer{}
			application, err := NewApplication(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, application)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCount, application.app.Len())
			assert.NotNil(t, application.Server())
		})
	}
}

func TestNewApplication_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `namespace: from-file
reconcileInterval: 30
retryInterval: 5s
httpAddress: 127.0.0.1:0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewConfig("", path, true)
	cfg.LogOutput = &bytes.Buffer{}
	cfg.RetryInterval = 20 * time.Second
	cfg.MaxConcurrentReconciles = 3

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	settings := application.Settings()
	assert.Equal(t, "from-file", settings.Namespace)
	assert.Equal(t, 30*time.Second, settings.ReconcileInterval.Std())
	assert.Equal(t, 20*time.Second, settings.RetryInterval.Std())
	assert.Equal(t, 3, settings.MaxConcurrentReconciles)
	assert.Equal(t, &settings, cfg.Settings)
}

func TestNewApplication_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknownField: true\n"), 0o600))

	cfg := NewConfig("infra", path, false)
	cfg.LogOutput = &bytes.Buffer{}
	_, err := NewApplication(cfg)
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func newApplication(t *testing.T, namespace string) *Application {
	t.Helper()
	cfg := &Config{Namespace: namespace, Settings: testSettings(), LogOutput: &bytes.Buffer{}}
	application, err := NewApplication(cfg)
	require.NoError(t, err)
	return application
}

func TestApplication_Run(t *testing.T) {
	c := fake.NewClientBuilder().
		WithScheme(cluster.NewScheme()).
		WithObjects(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "infra"}}).
		Build()
	cl := clustertest.New(c)
	application := newApplication(t, "infra")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx, cl) }()

	require.Eventually(t, func() bool { return cl.ActiveWatches() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
	assert.Zero(t, cl.ActiveWatches())
}

func TestApplication_RunStartupFailure(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(cluster.NewScheme()).Build()
	cl := clustertest.New(c)
	application := newApplication(t, "infra")

	err := application.Run(context.Background(), cl)
	var se *StartupError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Failures(), 1)
	assert.Equal(t, tfws.ControllerName, se.Failures()[0].Err.Controller)
	assert.Zero(t, cl.WatchesStarted())
}
