package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DataDir  string   `json:"data_dir"`
	Schedule string   `json:"schedule"`
	Timeout  int      `json:"timeout_seconds"`
	Sources  []string `json:"sources"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "covidwatch.json5", expected: "covidwatch.local.json5"},
		{input: "conf/covidwatch.json5", expected: "conf/covidwatch.local.json5"},
		{input: "config", expected: "config.local"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, LocalPath(row.input))
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "covidwatch.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, name, `{
		// comments and trailing commas are json5
		data_dir: "data",
		schedule: "*/30 * * * *",
		timeout_seconds: 30,
		sources: ["global",],
	}`)

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, 30, cfg.Timeout)
	require.Equal(t, []string{"global"}, cfg.Sources)

	writeFile(t, LocalPath(name), `{ data_dir: "/var/lib/covidwatch" }`)

	cfg, err = ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "/var/lib/covidwatch", cfg.DataDir)
	require.Equal(t, "*/30 * * * *", cfg.Schedule)
	require.Equal(t, 30, cfg.Timeout)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "covidwatch.json5")
	writeFile(t, LocalPath(name), `{ schedule: "@hourly" }`)

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "@hourly", cfg.Schedule)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "covidwatch.json5")
	writeFile(t, name, `{ data_dir: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	err := os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "covidwatch.json5"), `{ data_dir: "found" }`)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	err = os.Chdir(nested)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadRecursively[testConfig]("covidwatch.json5")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "found", cfg.DataDir)
}
