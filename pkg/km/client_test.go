package km

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := map[string][]byte{
		"K123-abc": {0xde, 0xad, 0xbe, 0xef},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/otp/keys", func(w http.ResponseWriter, r *http.Request) {
		size, err := strconv.Atoi(r.URL.Query().Get("size"))
		if err != nil || size <= 0 {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
		key := make([]byte, size)
		for i := range key {
			key[i] = byte(i)
		}
		w.Header().Set("X-Key-Id", "K999-new")
		w.Write(key)
	})
	mux.HandleFunc("/otp/keys/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/otp/keys/"):]
		key, ok := store[id]
		if !ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(key)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"key-manager","version":"1.0",` +
			`"metrics":{"stored_keys":1,"store_file_exists":true}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewKey(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL)

	key, id, err := c.NewKey(context.Background(), 32)
	require.NoError(t, err)
	assert.Equal(t, "K999-new", id)
	require.Len(t, key, 32)
	assert.Equal(t, byte(31), key[31])
}

func TestNewKeyInvalidSize(t *testing.T) {
	c := New(testServer(t).URL)
	_, _, err := c.NewKey(context.Background(), 0)
	assert.Error(t, err)
}

func TestNewKeyMissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 8))
	}))
	defer srv.Close()

	_, _, err := New(srv.URL).NewKey(context.Background(), 8)
	assert.ErrorIs(t, err, ErrMissingKeyID)
}

func TestKeyByID(t *testing.T) {
	c := New(testServer(t).URL)

	key, err := c.KeyByID(context.Background(), "K123-abc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, key)
}

func TestKeyByIDNotFound(t *testing.T) {
	c := New(testServer(t).URL)
	_, err := c.KeyByID(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestHealth(t *testing.T) {
	c := New(testServer(t).URL)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "key-manager", h.Service)
	assert.Equal(t, 1, h.Metrics.StoredKeys)
	assert.True(t, h.Metrics.StoreFileExists)
}

func TestContextCancellation(t *testing.T) {
	c := New(testServer(t).URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.NewKey(ctx, 8)
	assert.Error(t, err)
}
