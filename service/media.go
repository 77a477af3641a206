package service

import (
	"bytes"
	"io"
	"time"

	"gallery/db"
	"gallery/locations"
	"gallery/models"
	"gallery/storage"
	"gallery/utils"

	"gorm.io/gorm"
)

const thumbSize = 1280

// MediaUpload carries everything needed to add a new media record
type MediaUpload struct {
	Kind             string
	Filename         string
	File             io.Reader
	AlbumID          uint64 // 0 means the user's default album
	Coordinates      *string
	Label            *string
	DetectedObjects  *string
	ModificationDate *time.Time
}

// MediaPatch carries partial update semantics: nil fields are left unchanged
type MediaPatch struct {
	Coordinates     *string
	Label           *string
	DetectedObjects *string
}

// resolveTargetAlbum returns the explicit album through the user's
// membership, or the default album when none is given. Write access on a
// shared album requires a write-capable permission for non-owners.
func resolveTargetAlbum(tx *gorm.DB, user *models.User, albumID uint64, write bool) (*models.Album, error) {
	if albumID == 0 {
		return getDefaultAlbum(tx, user.ID)
	}
	album, membership, err := getMembership(tx, user.ID, albumID)
	if err != nil {
		return nil, err
	}
	if write && !membership.IsOwner &&
		!album.HasPermission(models.PermissionReadWrite) &&
		!album.HasPermission(models.PermissionFullAccess) {
		return nil, forbidden("album is shared read-only")
	}
	return album, nil
}

// AddMedia stores a new media blob and links it into the target album
func AddMedia(user *models.User, upload MediaUpload) (*models.Media, error) {
	if !models.ValidMediaKind(upload.Kind) {
		return nil, badRequest("missing or unknown media kind")
	}
	if upload.File == nil {
		return nil, badRequest("missing media file")
	}
	content, err := io.ReadAll(upload.File)
	if err != nil {
		return nil, err
	}
	media := models.Media{
		UserID:      user.ID,
		Filename:    upload.Filename,
		Kind:        upload.Kind,
		Coordinates: upload.Coordinates,
		Label:       upload.Label,
	}
	if media.Filename == "" {
		media.Filename = "Uploaded image.png"
	}
	if upload.Kind != models.MediaKindProfile {
		media.DetectedObjects = upload.DetectedObjects
	}
	if upload.ModificationDate != nil {
		media.ModificationDate = upload.ModificationDate.Unix()
	} else {
		media.ModificationDate = time.Now().Unix()
	}
	media.Location = locationFor(upload.Coordinates)

	var replacedBlobs []string
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		album, err := resolveTargetAlbum(tx, user, upload.AlbumID, true)
		if err != nil {
			return err
		}
		switch upload.Kind {
		case models.MediaKindProfile:
			// At most one profile photo per album at any time
			replacedBlobs, err = deleteProfileMedia(tx, album.ID)
			if err != nil {
				return err
			}
		}
		if err = tx.Create(&media).Error; err != nil {
			return err
		}
		link := models.MediaAlbum{MediaID: media.ID, AlbumID: album.ID}
		if media.IsImage() {
			// The first image in an album becomes its cover
			var count int64
			err = tx.Table("media_albums").
				Joins("join media on media.id = media_albums.media_id").
				Where("media_albums.album_id = ? and media.kind = ?", album.ID, models.MediaKindImage).
				Count(&count).Error
			if err != nil {
				return err
			}
			link.IsCover = count == 0
		}
		if err = tx.Create(&link).Error; err != nil {
			return err
		}
		return touchAlbum(tx, album.ID)
	})
	if err != nil {
		return nil, err
	}
	deleteBlobs(replacedBlobs)
	if err = saveBlob(&media, content); err != nil {
		return nil, err
	}
	return &media, nil
}

// UpdateMedia replaces the stored file and/or patches metadata.
// Absent patch fields are left unchanged, not nulled.
func UpdateMedia(user *models.User, mediaID uint64, file io.Reader, patch MediaPatch) (*models.Media, error) {
	if mediaID == 0 {
		return nil, badRequest("missing media id")
	}
	media := models.Media{}
	result := db.Instance.Limit(1).Find(&media, mediaID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, notFound("media not found")
	}
	if patch.Coordinates != nil {
		media.Coordinates = patch.Coordinates
		media.Location = locationFor(patch.Coordinates)
	}
	if patch.Label != nil {
		media.Label = patch.Label
	}
	if patch.DetectedObjects != nil {
		media.DetectedObjects = patch.DetectedObjects
	}
	var content []byte
	if file != nil {
		var err error
		if content, err = io.ReadAll(file); err != nil {
			return nil, err
		}
		media.ModificationDate = time.Now().Unix()
	}
	if err := db.Instance.Save(&media).Error; err != nil {
		return nil, err
	}
	if content != nil {
		if err := saveBlob(&media, content); err != nil {
			return nil, err
		}
	}
	return &media, nil
}

// CopyMediaToAlbum deep copies the media - a new record, a new blob and an
// independent lifecycle - and links the copy into the target album
func CopyMediaToAlbum(user *models.User, mediaID, targetAlbumID uint64) (*models.Media, error) {
	if mediaID == 0 {
		return nil, badRequest("missing media id")
	}
	source := models.Media{}
	result := db.Instance.Limit(1).Find(&source, mediaID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, notFound("media not found")
	}
	duplicate := models.Media{
		UserID:           user.ID,
		Filename:         source.Filename,
		ModificationDate: source.ModificationDate,
		Kind:             source.Kind,
		Coordinates:      source.Coordinates,
		Location:         source.Location,
		Label:            source.Label,
		DetectedObjects:  source.DetectedObjects,
		ThumbSize:        source.ThumbSize,
	}
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		album, err := resolveTargetAlbum(tx, user, targetAlbumID, true)
		if err != nil {
			return err
		}
		if err = tx.Create(&duplicate).Error; err != nil {
			return err
		}
		link := models.MediaAlbum{MediaID: duplicate.ID, AlbumID: album.ID}
		if err = tx.Create(&link).Error; err != nil {
			return err
		}
		return touchAlbum(tx, album.ID)
	})
	if err != nil {
		return nil, err
	}
	store := storage.GetDefaultStorage()
	if err = store.Copy(source.GetPath(), duplicate.GetPath()); err != nil {
		return nil, err
	}
	if source.ThumbSize > 0 {
		_ = store.Copy(source.GetThumbPath(), duplicate.GetThumbPath())
	}
	return &duplicate, nil
}

// SetCover marks the media as the album cover and clears every other
// cover link of the same album in the same transaction
func SetCover(user *models.User, albumID, mediaID uint64) error {
	if albumID == 0 || mediaID == 0 {
		return badRequest("missing album or media id")
	}
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		album, membership, err := getMembership(tx, user.ID, albumID)
		if err != nil {
			return err
		}
		if !membership.IsOwner && !album.HasPermission(models.PermissionFullAccess) {
			return forbidden("full access required")
		}
		link := models.MediaAlbum{}
		result := tx.Where("album_id = ? and media_id = ?", albumID, mediaID).Limit(1).Find(&link)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return notFound("media not found in album")
		}
		err = tx.Model(&models.MediaAlbum{}).
			Where("album_id = ? and media_id != ?", albumID, mediaID).
			Update("is_cover", false).Error
		if err != nil {
			return err
		}
		if err = tx.Model(&link).Update("is_cover", true).Error; err != nil {
			return err
		}
		return touchAlbum(tx, albumID)
	})
}

// DeleteMedia removes the media from the given album (the default album
// when none is given) together with its blob and record
func DeleteMedia(user *models.User, mediaID, albumID uint64) error {
	if mediaID == 0 {
		return badRequest("missing media id")
	}
	var blobPaths []string
	err := db.Instance.Transaction(func(tx *gorm.DB) error {
		album, err := resolveTargetAlbum(tx, user, albumID, true)
		if err != nil {
			return err
		}
		media := models.Media{}
		result := tx.Limit(1).Find(&media, mediaID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return notFound("media not found")
		}
		var count int64
		err = tx.Model(&models.MediaAlbum{}).
			Where("album_id = ? and media_id = ?", album.ID, media.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			// The media lives in some other album
			return forbidden("media not in this album")
		}
		blobPaths = append(blobPaths, media.GetPath())
		if media.ThumbSize > 0 {
			blobPaths = append(blobPaths, media.GetThumbPath())
		}
		if err = tx.Delete(&models.MediaAlbum{}, "media_id = ?", media.ID).Error; err != nil {
			return err
		}
		if err = tx.Delete(&media).Error; err != nil {
			return err
		}
		return touchAlbum(tx, album.ID)
	})
	if err != nil {
		return err
	}
	deleteBlobs(blobPaths)
	return nil
}

// deleteProfileMedia drops any current profile-kind media of the album
func deleteProfileMedia(tx *gorm.DB, albumID uint64) ([]string, error) {
	var current []models.Media
	err := tx.Joins("join media_albums on media_albums.media_id = media.id").
		Where("media_albums.album_id = ? and media.kind = ?", albumID, models.MediaKindProfile).
		Find(&current).Error
	if err != nil {
		return nil, err
	}
	blobPaths := []string{}
	for _, media := range current {
		blobPaths = append(blobPaths, media.GetPath())
		if media.ThumbSize > 0 {
			blobPaths = append(blobPaths, media.GetThumbPath())
		}
		if err = tx.Delete(&models.MediaAlbum{}, "media_id = ?", media.ID).Error; err != nil {
			return nil, err
		}
		if err = tx.Delete(&models.Media{}, media.ID).Error; err != nil {
			return nil, err
		}
	}
	return blobPaths, nil
}

// locationFor reverse geocodes coordinates, degrading to nil on any failure
func locationFor(coordinates *string) *string {
	if coordinates == nil {
		return nil
	}
	probe := models.Media{Coordinates: coordinates}
	lat, long := probe.GetGpsCoords()
	if lat == nil || long == nil {
		return nil
	}
	display := locations.ReverseGeocode(*lat, *long)
	if display == "" {
		return nil
	}
	return &display
}

// saveBlob writes the media file (and a thumbnail for images) through the
// default bucket; writes for the same media are serialized by the storage
func saveBlob(media *models.Media, content []byte) error {
	store := storage.GetDefaultStorage()
	path := media.GetPath()
	if _, err := store.Save(path, bytes.NewReader(content)); err != nil {
		return err
	}
	if err := store.UpdateRemoteFile(path, ""); err != nil {
		return err
	}
	if media.IsVideo() {
		return nil
	}
	thumbPath := media.GetThumbPath()
	thumbFile, err := createThumbFile(store, thumbPath, content)
	if err != nil {
		// Not a decodable image; keep the original only
		return nil
	}
	media.ThumbSize = thumbFile.ThumbSize
	if err = store.UpdateRemoteFile(thumbPath, "image/jpeg"); err != nil {
		return err
	}
	return db.Instance.Model(media).Update("thumb_size", media.ThumbSize).Error
}

func createThumbFile(store storage.StorageAPI, thumbPath string, content []byte) (utils.ImageThumbConverted, error) {
	var buf bytes.Buffer
	converted, err := utils.CreateThumb(thumbSize, bytes.NewReader(content), &buf)
	if err != nil {
		return converted, err
	}
	_, err = store.Save(thumbPath, &buf)
	return converted, err
}
