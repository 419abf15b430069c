package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap/zapcore"
)

const yamlConfig = `target:
  fast_packed_dfp: true
  zoned_dfp: true
keep_bcd_widening: true
bisect_limit: 12
log_level: debug
`

const tomlConfig = `keep_bcd_widening = true
bisect_limit = 12
log_level = "debug"

[target]
fast_packed_dfp = true
zoned_dfp = true
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	want := Config{
		Target:          Target{FastPackedDFP: true, ZonedDFP: true},
		KeepBCDWidening: true,
		BisectLimit:     12,
		LogLevel:        "debug",
	}
	for i, test := range []struct {
		Name, Data string
	}{
		{"decsimp.yaml", yamlConfig},
		{"decsimp.yml", yamlConfig},
		{"decsimp.toml", tomlConfig},
	} {
		got, err := Load(writeFile(t, test.Name, test.Data))
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("test %d: %s\ngot:  %+v\nwant: %+v", i, test.Name, got, want)
		}
	}
}

func TestLoadDefault(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if want := Default(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DECSIMP_ZONED_DFP", "false")
	t.Setenv("DECSIMP_LAST_RUN", "true")
	t.Setenv("DECSIMP_BISECT_LIMIT", "3")
	t.Setenv("DECSIMP_LOG_LEVEL", "warn")
	got, err := Load(writeFile(t, "decsimp.yaml", yamlConfig))
	if err != nil {
		t.Fatal(err)
	}
	if got.Target.ZonedDFP || !got.Target.FastPackedDFP || !got.LastRun || got.BisectLimit != 3 {
		t.Errorf("got %+v", got)
	}
	if l, err := got.Level(); err != nil || l != zapcore.WarnLevel {
		t.Errorf("got level %v, %v, want warn", l, err)
	}
	caps := got.Capabilities()
	if caps.ZonedDFP || !caps.FastPackedDFP || !caps.LastRun || !caps.KeepBCDWidening {
		t.Errorf("got capabilities %+v", caps)
	}
}

func TestEnvReadOnEachLoad(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DECSIMP_VERIFY", "true")
	t.Setenv("DECSIMP_LOG_LEVEL", "debug")
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Verify || got.LogLevel != "debug" {
		t.Errorf("got %+v, want verify and debug level from the environment", got)
	}
}

func TestLoadErrors(t *testing.T) {
	for i, path := range []string{
		writeFile(t, "decsimp.json", "{}"),
		writeFile(t, "decsimp.yaml", "bisect_limit: [1"),
		writeFile(t, "decsimp.toml", `log_level = "loud"`),
		filepath.Join(t.TempDir(), "missing.yaml"),
	} {
		if _, err := Load(path); err == nil {
			t.Errorf("test %d: loading %s succeeded", i, filepath.Base(path))
		}
	}
}
