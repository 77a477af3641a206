package service

import (
	"time"

	"gallery/db"
	"gallery/models"
	"gallery/storage"
	"gallery/utils"

	"gorm.io/gorm"
)

const codeGenerationAttempts = 10

// getMembership resolves an album through one of the user's membership rows
func getMembership(tx *gorm.DB, userID, albumID uint64) (*models.Album, *models.AlbumUser, error) {
	membership := models.AlbumUser{}
	result := tx.Where("album_id = ? and user_id = ?", albumID, userID).Limit(1).Find(&membership)
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, nil, notFound("album not found")
	}
	album := models.Album{}
	if err := tx.First(&album, albumID).Error; err != nil {
		return nil, nil, err
	}
	return &album, &membership, nil
}

// getDefaultAlbum returns the user's protected default album
func getDefaultAlbum(tx *gorm.DB, userID uint64) (*models.Album, error) {
	album := models.Album{}
	result := tx.
		Joins("join album_users on album_users.album_id = albums.id").
		Where("album_users.user_id = ? and album_users.is_owner = 1 and albums.name = ?", userID, models.DefaultAlbumName).
		Limit(1).Find(&album)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, notFound("default album not found")
	}
	return &album, nil
}

func checkAlbumName(name string) error {
	if name == models.DefaultAlbumName {
		return forbidden("reserved album name")
	}
	if len(name) > models.AlbumNameMaxLength {
		return invalidValue("album name too long")
	}
	return nil
}

// GetAlbum resolves an album visible to the user; the default album when
// no id is given
func GetAlbum(user *models.User, albumID uint64) (*models.Album, error) {
	if albumID == 0 {
		return getDefaultAlbum(db.Instance, user.ID)
	}
	album, _, err := getMembership(db.Instance, user.ID, albumID)
	return album, err
}

// CreateDefaultAlbum creates the protected per-user album; part of registration
func CreateDefaultAlbum(tx *gorm.DB, user *models.User) (*models.Album, error) {
	var count int64
	err := tx.Model(&models.AlbumUser{}).
		Joins("join albums on albums.id = album_users.album_id").
		Where("album_users.user_id = ? and album_users.is_owner = 1 and albums.name = ?", user.ID, models.DefaultAlbumName).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("default album already exists")
	}
	album := models.Album{Name: models.DefaultAlbumName}
	if err = tx.Create(&album).Error; err != nil {
		return nil, err
	}
	membership := models.AlbumUser{AlbumID: album.ID, UserID: user.ID, IsOwner: true}
	if err = tx.Create(&membership).Error; err != nil {
		return nil, err
	}
	return &album, nil
}

// CreateAlbum creates a new album owned by the user.
// Duplicate names across a user's albums are allowed.
func CreateAlbum(user *models.User, name string) (*models.Album, error) {
	if name == "" {
		return nil, badRequest("missing album name")
	}
	if err := checkAlbumName(name); err != nil {
		return nil, err
	}
	album := models.Album{Name: name}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&album).Error; err != nil {
			return err
		}
		membership := models.AlbumUser{AlbumID: album.ID, UserID: user.ID, IsOwner: true}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// UpdateAlbum renames the album when a different name is given,
// otherwise shares it under the given permission. Mirrors the combined
// update operation exposed over HTTP.
func UpdateAlbum(user *models.User, albumID uint64, name, permission string) (*models.Album, error) {
	if albumID == 0 {
		return nil, badRequest("missing album id")
	}
	if err := checkAlbumName(name); err != nil {
		return nil, err
	}
	var album *models.Album
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		var err error
		album, _, err = getMembership(tx, user.ID, albumID)
		if err != nil {
			return err
		}
		if album.IsDefault() {
			return forbidden("default album cannot be changed")
		}
		if name != "" && name != album.Name {
			album.Name = name
			return tx.Save(album).Error
		}
		if permission != "" {
			return shareAlbum(tx, album, permission)
		}
		return invalidValue("no change requested")
	})
	if err != nil {
		return nil, err
	}
	return album, nil
}

// RenameAlbum changes the album name only
func RenameAlbum(user *models.User, albumID uint64, newName string) (*models.Album, error) {
	if newName == "" {
		return nil, badRequest("missing album name")
	}
	return UpdateAlbum(user, albumID, newName, "")
}

// ShareAlbum puts the album in the shared state, generating a fresh code.
// Re-sharing with the same permission is a conflict; a different
// permission rotates the code and invalidates the old one.
func ShareAlbum(user *models.User, albumID uint64, permission string) (*models.Album, error) {
	if albumID == 0 {
		return nil, badRequest("missing album id")
	}
	if !models.ValidSharingPermission(permission) {
		return nil, invalidValue("unknown sharing permission")
	}
	return UpdateAlbum(user, albumID, "", permission)
}

func shareAlbum(tx *gorm.DB, album *models.Album, permission string) error {
	if !models.ValidSharingPermission(permission) {
		return invalidValue("unknown sharing permission")
	}
	if album.HasPermission(permission) {
		return conflict("album already shared with these permissions")
	}
	code, err := generateSharingCode(tx)
	if err != nil {
		return err
	}
	album.Code = &code
	album.Permissions = &permission
	return tx.Save(album).Error
}

// generateSharingCode retries on collision; the unique index on the code
// column backs this up against concurrent sharers
func generateSharingCode(tx *gorm.DB) (string, error) {
	for i := 0; i < codeGenerationAttempts; i++ {
		code := utils.RandSharingCode(models.SharingCodeLength)
		var count int64
		if err := tx.Model(&models.Album{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", conflict("could not generate a unique sharing code")
}

// AcceptShare grants the user a non-owner membership on the album
// carrying the given code. The album itself is never copied.
func AcceptShare(user *models.User, code string) (*models.Album, error) {
	if code == "" {
		return nil, badRequest("missing sharing code")
	}
	album := models.Album{}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("code = ?", code).Limit(1).Find(&album)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return notFound("invalid sharing code")
		}
		var count int64
		if err := tx.Model(&models.AlbumUser{}).
			Where("album_id = ? and user_id = ?", album.ID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// Covers the owner accepting their own album too
			return invalidValue("album already accepted")
		}
		membership := models.AlbumUser{AlbumID: album.ID, UserID: user.ID, IsOwner: false}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// DeleteAlbum removes the album with everything it exclusively owns.
// Only the owning member may delete; the default album never can be.
func DeleteAlbum(user *models.User, albumID uint64) error {
	if albumID == 0 {
		return badRequest("missing album id")
	}
	var blobPaths []string
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		album, membership, err := getMembership(tx, user.ID, albumID)
		if err != nil {
			return err
		}
		if !membership.IsOwner {
			return notFound("album not found")
		}
		if album.IsDefault() {
			return forbidden("default album cannot be deleted")
		}
		blobPaths, err = cascadeDeleteAlbum(tx, album.ID)
		return err
	})
	if err != nil {
		return err
	}
	deleteBlobs(blobPaths)
	return nil
}

// cascadeDeleteAlbum removes all rows the album exclusively owns and the
// album itself. Returns the blob paths to remove once the transaction
// commits - file deletion is best-effort and never rolls the rows back.
func cascadeDeleteAlbum(tx *gorm.DB, albumID uint64) ([]string, error) {
	var mediaList []models.Media
	err := tx.Raw(`select media.* from media
		join media_albums on media_albums.media_id = media.id
		where media_albums.album_id = ?
		and not exists (
			select 1 from media_albums other
			where other.media_id = media.id and other.album_id != ?)`,
		albumID, albumID).Scan(&mediaList).Error
	if err != nil {
		return nil, err
	}
	blobPaths := []string{}
	mediaIDs := []uint64{}
	for _, media := range mediaList {
		mediaIDs = append(mediaIDs, media.ID)
		blobPaths = append(blobPaths, media.GetPath())
		if media.ThumbSize > 0 {
			blobPaths = append(blobPaths, media.GetThumbPath())
		}
	}
	if len(mediaIDs) > 0 {
		if err = tx.Delete(&models.Media{}, "id in ?", mediaIDs).Error; err != nil {
			return nil, err
		}
	}
	if err = tx.Delete(&models.MediaAlbum{}, "album_id = ?", albumID).Error; err != nil {
		return nil, err
	}
	if err = tx.Delete(&models.AlbumUser{}, "album_id = ?", albumID).Error; err != nil {
		return nil, err
	}
	return blobPaths, tx.Delete(&models.Album{}, albumID).Error
}

func deleteBlobs(paths []string) {
	store := storage.GetDefaultStorage()
	for _, path := range paths {
		_ = store.Delete(path)
	}
}

func touchAlbum(tx *gorm.DB, albumID uint64) error {
	return tx.Model(&models.Album{}).Where("id = ?", albumID).
		Update("updated_at", time.Now().Unix()).Error
}
