package files

import (
	"context"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *localStore {
	t.Helper()
	dir, err := ioutil.TempDir("", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.(*localStore)
}

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(context.Background(), "logo.png", strings.NewReader("png-bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotEqual(t, "logo.png", name, "stored name must not reuse the client name")

	rc, contentType, err := store.Open(name)
	assert.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := ioutil.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestLocalStoreRejectsDisallowedExtensions(t *testing.T) {
	store := newTestStore(t)

	tests := []string{"script.sh", "payload.php", "doc.pdf", "noext", "shadow.png.exe"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(context.Background(), name, strings.NewReader("x"))
			assert.Equal(t, ErrForbidden, err)
		})
	}
}

func TestLocalStoreOpenGuardsRoot(t *testing.T) {
	store := newTestStore(t)

	// only a root escape is forbidden; a name the store never produces, such
	// as one with an unknown extension, reads as absent
	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "path traversal", file: "../../etc/passwd.png", wantErr: ErrForbidden},
		{name: "bad extension", file: "report.txt", wantErr: ErrNotFound},
		{name: "no extension", file: "secrets", wantErr: ErrNotFound},
		{name: "missing file", file: "nope.png", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.Open(tt.file)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}
