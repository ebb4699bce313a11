package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeFilename("photo.jpg"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "my_photo_1.png", SanitizeFilename("my photo 1.png"))
	assert.Equal(t, "evil.sh", SanitizeFilename("..\\..\\evil.sh"))
	assert.Equal(t, "", SanitizeFilename("...."))
	assert.Equal(t, "", SanitizeFilename(""))
}

func TestSaveStreamUsesSanitizedName(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveStream("../sneaky photo.jpg", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "sneaky_photo.jpg", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, store.Delete(name))
}
