package config_test

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/swcurve/smithwilson/config"
)

func TestSetConfig(t *testing.T) {
	orig := config.GetConfig()
	defer config.SetConfig(orig)

	require.Equal(t, config.DefaultConfig, orig)

	custom := config.DefaultConfig
	custom.Workers = 3
	config.SetConfig(custom)
	require.Equal(t, 3, config.GetConfig().Workers)
}

// Not parallel: replaces the package configuration.
func TestSetConfig_ConcurrentReaders(t *testing.T) {
	orig := config.GetConfig()
	defer config.SetConfig(orig)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				cfg := orig
				cfg.Workers = w + 1
				cfg.ChunkSize = w + 1
				config.SetConfig(cfg)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				cfg := config.GetConfig()
				// Each snapshot comes from a single SetConfig call.
				if cfg.Workers != 0 && cfg.Workers != cfg.ChunkSize {
					t.Errorf("torn config: workers=%d chunk=%d", cfg.Workers, cfg.ChunkSize)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEffectiveWorkers(t *testing.T) {
	t.Parallel()

	require.Equal(t, runtime.GOMAXPROCS(0), config.Config{}.EffectiveWorkers())
	require.Equal(t, 5, config.Config{Workers: 5}.EffectiveWorkers())
}

func TestEffectiveChunkSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  config.Config
		n    int
		want int
	}{
		{"explicit", config.Config{ChunkSize: 64}, 1620, 64},
		{"even split", config.Config{Workers: 4}, 1620, 405},
		{"rounded up", config.Config{Workers: 4}, 10, 3},
		{"fewer points than workers", config.Config{Workers: 8}, 3, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.cfg.EffectiveChunkSize(tc.n))
		})
	}
}
