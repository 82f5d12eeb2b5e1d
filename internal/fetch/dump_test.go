package fetch

import (
	"context"
	"covidwatch/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<div class="maincounter-number">1,234</div>`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	tel := telemetry.NewSlogAPI(nil)
	output, err := NewFilesystemOutput(dir, tel)
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(ClientOptions{Dump: output}, tel)

	_, err = client.Get(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Get(context.Background(), server.URL+"/gone")
	require.Error(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, string(first), "GET "+server.URL+"/page")
	require.Contains(t, string(first), "---- RESPONSE ----")
	require.Contains(t, string(first), "200")
	require.Contains(t, string(first), "Content-Type: text/html")
	require.Contains(t, string(first), "maincounter-number")

	second, err := os.ReadFile(filepath.Join(dir, "2.txt"))
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, string(second), "404")
}

func TestFilesystemOutputClearsPreviousDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	tel := telemetry.NewSlogAPI(nil)

	output, err := NewFilesystemOutput(dir, tel)
	if err != nil {
		t.Fatal(err)
	}
	output.Write("1", "old exchange")
	notes := filepath.Join(dir, "notes.md")
	err = os.WriteFile(notes, []byte("kept"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewFilesystemOutput(dir, tel)
	if err != nil {
		t.Fatal(err)
	}
	_, err = os.Stat(filepath.Join(dir, "1.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(notes)
	require.NoError(t, err)
}

func TestFilesystemOutputMarksEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFilesystemOutput(dir, telemetry.NewSlogAPI(nil))
	if err != nil {
		t.Fatal(err)
	}
	_, err = os.Stat(filepath.Join(dir, dumpMarker))
	require.NoError(t, err)
}

func TestFilesystemOutputRefusesForeignDirectory(t *testing.T) {
	dir := t.TempDir()
	storeFile := filepath.Join(dir, "worldometer.json")
	err := os.WriteFile(storeFile, []byte(`{"records":[],"count":0}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	dumpLike := filepath.Join(dir, "1.txt")
	err = os.WriteFile(dumpLike, []byte("not ours"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewFilesystemOutput(dir, telemetry.NewSlogAPI(nil))
	require.ErrorIs(t, err, ErrDumpDirInUse)

	_, err = os.Stat(storeFile)
	require.NoError(t, err)
	_, err = os.Stat(dumpLike)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, dumpMarker))
	require.ErrorIs(t, err, os.ErrNotExist)
}
