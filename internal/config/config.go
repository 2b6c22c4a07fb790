// Package config binds the environment-variable overrides of spec.md
// §6 via viper, the way the corpus's env-driven services (e.g. the
// distill ingest pipeline) bind configuration instead of reading
// os.Getenv ad hoc throughout the tree.
package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	once sync.Once
	v    *viper.Viper
)

func get() *viper.Viper {
	once.Do(func() {
		v = viper.New()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix("")
		v.AutomaticEnv()
		v.BindEnv("dump.enabled", "DVZ_DUMP")
		v.BindEnv("dump.filename", "DVZ_DUMP_FILENAME")
		v.BindEnv("verbose", "DVZ_VERBOSE")
		v.BindEnv("log.level", "DVZ_LOG_LEVEL")
		v.SetDefault("dump.filename", "dump.batch")
		v.SetDefault("log.level", "info")
	})
	return v
}

// DumpEnabled reports whether DVZ_DUMP requests that every flushed
// batch be dumped to disk.
func DumpEnabled() bool { return get().GetString("dump.enabled") == "1" }

// DumpFilename returns the path flushed batches are dumped to.
func DumpFilename() string { return get().GetString("dump.filename") }

// VerbosePrintingEnabled reports whether per-request YAML
// auto-printing is enabled. It defaults to enabled; DVZ_VERBOSE values
// of "0" or "prt" disable it.
func VerbosePrintingEnabled() bool {
	val := get().GetString("verbose")
	return val != "0" && val != "prt"
}

// LogLevel returns the configured runtime log threshold (DVZ_LOG_LEVEL).
func LogLevel() string { return get().GetString("log.level") }

// Reset clears cached configuration state, for tests that mutate the
// process environment.
func Reset() {
	once = sync.Once{}
}
