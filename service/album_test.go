package service

import (
	"strings"
	"testing"

	"gallery/db"
	"gallery/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesDefaultAlbum(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")

	album, err := GetAlbum(user, 0)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAlbumName, album.Name)
	assert.True(t, album.IsDefault())
	assert.False(t, album.IsShared())

	membership := models.AlbumUser{}
	err = db.Instance.Where("album_id = ? and user_id = ?", album.ID, user.ID).First(&membership).Error
	require.NoError(t, err)
	assert.True(t, membership.IsOwner)

	// At most one default album per user
	_, err = CreateDefaultAlbum(db.Instance, user)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	setupTest(t)
	registerTestUser(t, "alice")

	_, err := RegisterUser("", "a@example.com", "password123")
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = RegisterUser("9starts", "a@example.com", "password123")
	assert.Equal(t, KindInvalidValue, KindOf(err))
	_, err = RegisterUser("brand", "not-an-email", "password123")
	assert.Equal(t, KindInvalidValue, KindOf(err))
	_, err = RegisterUser("brand", "a@example.com", "short")
	assert.Equal(t, KindInvalidValue, KindOf(err))
	_, err = RegisterUser("alice", "other@example.com", "password123")
	assert.Equal(t, KindConflict, KindOf(err))
	_, err = RegisterUser("brand", "alice@example.com", "password123")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreateAlbum(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")

	album, err := CreateAlbum(user, "Holidays")
	require.NoError(t, err)
	assert.Equal(t, "Holidays", album.Name)
	assert.Nil(t, album.Code)

	// Duplicate names are fine, reserved and oversized ones are not
	_, err = CreateAlbum(user, "Holidays")
	assert.NoError(t, err)
	_, err = CreateAlbum(user, "")
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = CreateAlbum(user, models.DefaultAlbumName)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = CreateAlbum(user, strings.Repeat("x", models.AlbumNameMaxLength+1))
	assert.Equal(t, KindInvalidValue, KindOf(err))
}

func TestRenameAlbum(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")
	album, err := CreateAlbum(user, "Holidays")
	require.NoError(t, err)

	renamed, err := RenameAlbum(user, album.ID, "Winter 2025")
	require.NoError(t, err)
	assert.Equal(t, "Winter 2025", renamed.Name)

	_, err = RenameAlbum(user, album.ID, "")
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = RenameAlbum(user, album.ID, models.DefaultAlbumName)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = RenameAlbum(user, 12345, "Nope")
	assert.Equal(t, KindNotFound, KindOf(err))

	defaultAlbum, err := GetAlbum(user, 0)
	require.NoError(t, err)
	_, err = RenameAlbum(user, defaultAlbum.ID, "My photos")
	assert.Equal(t, KindForbidden, KindOf(err))

	// Same name is not a change
	_, err = UpdateAlbum(user, album.ID, "Winter 2025", "")
	assert.Equal(t, KindInvalidValue, KindOf(err))
}

func TestShareAlbum(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")
	album, err := CreateAlbum(user, "Holidays")
	require.NoError(t, err)

	shared, err := ShareAlbum(user, album.ID, models.PermissionReadOnly)
	require.NoError(t, err)
	require.NotNil(t, shared.Code)
	assert.Len(t, *shared.Code, models.SharingCodeLength)
	for _, c := range *shared.Code {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(c))
	}
	assert.True(t, shared.IsShared())
	assert.True(t, shared.HasPermission(models.PermissionReadOnly))

	// Same permission again is a no-op conflict, the code survives
	firstCode := *shared.Code
	_, err = ShareAlbum(user, album.ID, models.PermissionReadOnly)
	assert.Equal(t, KindConflict, KindOf(err))
	reloaded, err := GetAlbum(user, album.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Code)
	assert.Equal(t, firstCode, *reloaded.Code)

	// A different permission rotates the code
	rotated, err := ShareAlbum(user, album.ID, models.PermissionReadWrite)
	require.NoError(t, err)
	require.NotNil(t, rotated.Code)
	assert.NotEqual(t, firstCode, *rotated.Code)

	_, err = ShareAlbum(user, album.ID, "superuser")
	assert.Equal(t, KindInvalidValue, KindOf(err))

	defaultAlbum, err := GetAlbum(user, 0)
	require.NoError(t, err)
	_, err = ShareAlbum(user, defaultAlbum.ID, models.PermissionReadOnly)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestAcceptShare(t *testing.T) {
	setupTest(t)
	owner := registerTestUser(t, "alice")
	guest := registerTestUser(t, "bobby")
	album, err := CreateAlbum(owner, "Holidays")
	require.NoError(t, err)
	shared, err := ShareAlbum(owner, album.ID, models.PermissionReadOnly)
	require.NoError(t, err)

	accepted, err := AcceptShare(guest, *shared.Code)
	require.NoError(t, err)
	assert.Equal(t, album.ID, accepted.ID)

	membership := models.AlbumUser{}
	err = db.Instance.Where("album_id = ? and user_id = ?", album.ID, guest.ID).First(&membership).Error
	require.NoError(t, err)
	assert.False(t, membership.IsOwner)

	// The guest now sees the album, but cannot delete it
	_, err = GetAlbum(guest, album.ID)
	assert.NoError(t, err)
	err = DeleteAlbum(guest, album.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	// Accepting twice, or your own album, is rejected
	_, err = AcceptShare(guest, *shared.Code)
	assert.Equal(t, KindInvalidValue, KindOf(err))
	_, err = AcceptShare(owner, *shared.Code)
	assert.Equal(t, KindInvalidValue, KindOf(err))

	_, err = AcceptShare(guest, "")
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = AcceptShare(guest, "NOPE1234")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRotatedCodeInvalidatesOldOne(t *testing.T) {
	setupTest(t)
	owner := registerTestUser(t, "alice")
	guest := registerTestUser(t, "bobby")
	album, err := CreateAlbum(owner, "Holidays")
	require.NoError(t, err)
	shared, err := ShareAlbum(owner, album.ID, models.PermissionReadOnly)
	require.NoError(t, err)
	oldCode := *shared.Code

	_, err = ShareAlbum(owner, album.ID, models.PermissionFullAccess)
	require.NoError(t, err)

	_, err = AcceptShare(guest, oldCode)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteAlbum(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")
	album, err := CreateAlbum(user, "Holidays")
	require.NoError(t, err)

	require.NoError(t, DeleteAlbum(user, album.ID))
	_, err = GetAlbum(user, album.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = DeleteAlbum(user, album.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	err = DeleteAlbum(user, 0)
	assert.Equal(t, KindBadRequest, KindOf(err))

	defaultAlbum, err := GetAlbum(user, 0)
	require.NoError(t, err)
	err = DeleteAlbum(user, defaultAlbum.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestAlbumLifecycle(t *testing.T) {
	setupTest(t)
	user := registerTestUser(t, "alice")

	album, err := CreateAlbum(user, "Trip")
	require.NoError(t, err)
	_, err = RenameAlbum(user, album.ID, "")
	assert.Equal(t, KindBadRequest, KindOf(err))
	renamed, err := RenameAlbum(user, album.ID, "Road trip")
	require.NoError(t, err)
	assert.Equal(t, "Road trip", renamed.Name)
	require.NoError(t, DeleteAlbum(user, album.ID))
	_, err = GetAlbum(user, album.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
