package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/testutil"
)

func TestNewConfig_Valid(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{ListenAddr: ":8077"})

	require.NoError(t, err)
	assert.Equal(t, ":8077", config.ListenAddr)
}

func TestNewConfig_MissingListenAddr(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListenAddr")
}

func TestNewConfig_NegativeImportTimeout(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{ListenAddr: ":8077", ImportTimeout: -1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImportTimeout")
}

func TestNewApp_Wiring(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{ListenAddr: ":8077", LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)

	a := NewApp(&testutil.SafeBuffer{}, config)

	require.NotNil(t, a.Registry())
	require.NotNil(t, a.Reporter())
}

func TestPreloadPanels_RegistersEachFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.hcl"), []byte(testutil.ValidPanelSource), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.hcl"), []byte(testutil.UnparsablePanelSource), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	config, err := NewConfig(Config{ListenAddr: ":8077", PanelsPath: dir, LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)
	a := NewApp(&testutil.SafeBuffer{}, config)

	require.NoError(t, a.preloadPanels(testutil.Context()))

	// A broken persisted panel fails in isolation; the valid one still loads.
	testutil.WaitForStatus(t, a.Registry(), "greeting", model.StatusReady)
	entry := testutil.WaitForStatus(t, a.Registry(), "broken", model.StatusError)
	assert.NotEmpty(t, entry.ImportError)
	assert.Len(t, a.Registry().Snapshot(), 2, "non-.hcl files must be skipped")
}

func TestPreloadPanels_MissingDirectory(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		ListenAddr: ":8077",
		PanelsPath: "/does/not/exist",
		LogFormat:  "text",
		LogLevel:   "error",
	})
	require.NoError(t, err)
	a := NewApp(&testutil.SafeBuffer{}, config)

	require.Error(t, a.preloadPanels(testutil.Context()))
}

func TestOnErrorCallback_ReceivesFailures(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var seen []model.PanelError
	config, err := NewConfig(Config{
		ListenAddr: ":8077",
		LogFormat:  "text",
		LogLevel:   "error",
		OnError: func(e model.PanelError) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, e)
		},
	})
	require.NoError(t, err)
	a := NewApp(&testutil.SafeBuffer{}, config)

	a.Registry().RegisterFromUpdate(testutil.Context(), model.PanelUpdate{
		ID:     "bad",
		Path:   "/gen/bad.hcl",
		Source: testutil.UnparsablePanelSource,
	})
	testutil.WaitForStatus(t, a.Registry(), "bad", model.StatusError)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "bad", seen[0].PanelID)
	assert.Equal(t, model.ErrImport, seen[0].Kind)
}
