package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own in memory database
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestLibraryIngest(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "https://cdn.example.com/media/")
	require.NoError(t, err)
	library, err := NewLibrary(setupTestDB(t), storage, nil)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := library.Ingest(ctx, File{Name: "a.png", Type: "image/png", Data: []byte("png bytes")})
	require.NoError(t, err)
	second, err := library.Ingest(ctx, File{Name: "b.png", Type: "image/png", Data: []byte("more png bytes")})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.True(t, strings.HasPrefix(first.SourceURL, "https://cdn.example.com/media/"), first.SourceURL)
	assert.NotEqual(t, first.SourceURL, second.SourceURL)

	attachment, err := library.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.png", attachment.FileName)
	assert.Equal(t, "image/png", attachment.MimeType)
	assert.Equal(t, int64(9), attachment.Size)
	assert.Equal(t, first.SourceURL, attachment.URL)

	data, err := os.ReadFile(filepath.Join(dir, attachment.ObjectName))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestLibraryIngestErrors(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	library, err := NewLibrary(setupTestDB(t), storage, nil)
	require.NoError(t, err)

	_, err = library.Ingest(context.Background(), File{Name: "empty.png", Type: "image/png"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = library.Ingest(ctx, File{Name: "a.png", Type: "image/png", Data: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = library.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryDetectsContentType(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	library, err := NewLibrary(setupTestDB(t), storage, nil)
	require.NoError(t, err)

	m, err := library.Ingest(context.Background(), File{Name: "note", Data: []byte("just text")})
	require.NoError(t, err)
	attachment, err := library.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", attachment.MimeType)
}

func TestFileIsImage(t *testing.T) {
	assert.True(t, File{Type: "image/png"}.IsImage())
	assert.False(t, File{Type: "application/pdf"}.IsImage())
	assert.False(t, File{}.IsImage())
}
