package service

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"gallery/config"
	"gallery/db"
	"gallery/models"
	"gallery/storage"

	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	config.MYSQL_DSN = ""
	config.SQLITE_FILE = dir + "/gallery.db"
	config.DEFAULT_BUCKET_DIR = dir + "/data"
	db.Init()
	models.Init()
	storage.Init()
}

func registerTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := RegisterUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

// testImageBytes returns a small decodable PNG, for tests that need a
// real thumbnail to be generated
func testImageBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadTestImage(t *testing.T, user *models.User, albumID uint64, filename string) *models.Media {
	t.Helper()
	media, err := AddMedia(user, MediaUpload{
		Kind:     models.MediaKindImage,
		Filename: filename,
		File:     bytes.NewReader([]byte("not really a jpeg")),
		AlbumID:  albumID,
	})
	require.NoError(t, err)
	return media
}

func albumLink(t *testing.T, albumID, mediaID uint64) models.MediaAlbum {
	t.Helper()
	link := models.MediaAlbum{}
	result := db.Instance.Where("album_id = ? and media_id = ?", albumID, mediaID).Limit(1).Find(&link)
	require.NoError(t, result.Error)
	require.EqualValues(t, 1, result.RowsAffected)
	return link
}
