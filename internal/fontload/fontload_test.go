package fontload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Go-Regular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))
	bin, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Go-Regular.ttf", bin.Name)
	assert.Equal(t, path, bin.Source)
	assert.Equal(t, goregular.TTF, bin.Data)
	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fonts/Go-Regular.ttf" {
			http.NotFound(w, r)
			return
		}
		w.Write(goregular.TTF)
	}))
	defer server.Close()
	//
	bin, err := Fetch(context.Background(), server.Client(), server.URL+"/fonts/Go-Regular.ttf")
	require.NoError(t, err)
	assert.Equal(t, "Go-Regular.ttf", bin.Name)
	assert.Equal(t, len(goregular.TTF), len(bin.Data))
	_, err = Fetch(context.Background(), server.Client(), server.URL+"/fonts/missing.ttf")
	assert.Error(t, err)
}

func TestFetchIsCancelable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(goregular.TTF)
	}))
	defer server.Close()
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, server.Client(), server.URL+"/font.ttf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReference(t *testing.T) {
	f, name, err := Reference(goregular.TTF)
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, "Go Regular", name)
	_, _, err = Reference([]byte("no font"))
	assert.Error(t, err)
}
