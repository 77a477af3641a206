package handlers

import (
	"net/http"
	"time"

	"gallery/db"
	"gallery/models"
	"gallery/service"
	"gallery/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type MediaSaveRequest struct {
	Kind             string `form:"kind"`
	ID               uint64 `form:"id"`
	AlbumID          uint64 `form:"albumid"`
	Label            string `form:"label"`
	Coordinates      string `form:"coordinates"`
	DetectedObjects  string `form:"detectedobjects"`
	ModificationDate string `form:"modificationdate"`
}

type MediaDeleteRequest struct {
	ID      uint64 `form:"id"`
	AlbumID uint64 `form:"albumid"`
}

type MediaInfo struct {
	ID               uint64  `json:"id"`
	Filename         string  `json:"filename"`
	Kind             string  `json:"kind"`
	ModificationDate int64   `json:"modificationdate"`
	Coordinates      *string `json:"coordinates,omitempty"`
	Location         *string `json:"location,omitempty"`
	Label            *string `json:"label,omitempty"`
	DetectedObjects  *string `json:"detectedobjects,omitempty"`
}

type MediaListInfo struct {
	MediaInfo
	AlbumID   uint64 `json:"albumid"`
	AlbumName string `json:"albumname"`
	IsCover   bool   `json:"iscover"`
}

func mediaInfoFrom(media *models.Media) MediaInfo {
	return MediaInfo{
		ID:               media.ID,
		Filename:         media.Filename,
		Kind:             media.Kind,
		ModificationDate: media.ModificationDate,
		Coordinates:      media.Coordinates,
		Location:         media.Location,
		Label:            media.Label,
		DetectedObjects:  media.DetectedObjects,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MediaSave adds new media (201), updates existing media (200) or copies
// existing media into another album when no file is attached (200)
func MediaSave(c *gin.Context, user *models.User) {
	r := MediaSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	fileHeader, _ := c.FormFile("file")

	// Copy into another album, no new upload
	if r.ID != 0 && fileHeader == nil {
		media, err := service.CopyMediaToAlbum(user, r.ID, r.AlbumID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, mediaInfoFrom(media))
		return
	}
	// Update existing media
	if r.ID != 0 {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
			return
		}
		defer file.Close()
		media, err := service.UpdateMedia(user, r.ID, file, service.MediaPatch{
			Coordinates:     optional(r.Coordinates),
			Label:           optional(r.Label),
			DetectedObjects: optional(r.DetectedObjects),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, mediaInfoFrom(media))
		return
	}
	if fileHeader == nil {
		c.JSON(http.StatusBadRequest, Response{Error: "missing media file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	defer file.Close()
	upload := service.MediaUpload{
		Kind:            r.Kind,
		Filename:        fileHeader.Filename,
		File:            file,
		AlbumID:         r.AlbumID,
		Coordinates:     optional(r.Coordinates),
		Label:           optional(r.Label),
		DetectedObjects: optional(r.DetectedObjects),
	}
	if upload.Filename == "" || upload.Filename == "blob" {
		upload.Filename = "Generated image.png"
	}
	if r.ModificationDate != "" {
		if t, err := time.Parse(time.RFC3339, r.ModificationDate); err == nil {
			upload.ModificationDate = &t
		}
	}
	media, err := service.AddMedia(user, upload)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mediaInfoFrom(media))
}

func MediaDelete(c *gin.Context, user *models.User) {
	r := MediaDeleteRequest{}
	_ = c.ShouldBindQuery(&r)
	if r.ID == 0 {
		_ = c.ShouldBindWith(&r, binding.FormMultipart)
	}
	if r.ID == 0 {
		c.JSON(http.StatusBadRequest, Response{Error: "missing media id"})
		return
	}
	if err := service.DeleteMedia(user, r.ID, r.AlbumID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MediaList returns the media visible to the user, newest first.
// Profile photos are excluded unless requested directly.
func MediaList(c *gin.Context, user *models.User) {
	query := db.Instance.
		Table("media").
		Select(`media.id, media.filename, media.kind, media.modification_date,
			media.coordinates, media.location, media.label, media.detected_objects,
			albums.id, albums.name, media_albums.is_cover`).
		Joins("join media_albums on media_albums.media_id = media.id").
		Joins("join albums on albums.id = media_albums.album_id").
		Joins("join album_users on album_users.album_id = albums.id").
		Where("album_users.user_id = ?", user.ID).
		Order("media.modification_date DESC")

	mediaID := c.Query("mediaid")
	albumID := c.Query("albumid")
	if albumID != "" {
		query = query.Where("albums.id = ?", albumID)
	}
	if mediaID != "" {
		query = query.Where("media.id = ?", mediaID)
	} else {
		query = query.Where("media.kind != ?", models.MediaKindProfile)
	}

	rows, err := query.Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "DB error 1"})
		return
	}
	defer rows.Close()
	result := []MediaListInfo{}
	for rows.Next() {
		info := MediaListInfo{}
		if err = rows.Scan(&info.ID, &info.Filename, &info.Kind, &info.ModificationDate,
			&info.Coordinates, &info.Location, &info.Label, &info.DetectedObjects,
			&info.AlbumID, &info.AlbumName, &info.IsCover); err != nil {
			c.JSON(http.StatusInternalServerError, Response{Error: "DB error 2"})
			return
		}
		result = append(result, info)
	}
	if (mediaID != "" || albumID != "") && len(result) == 0 {
		c.JSON(http.StatusNotFound, Response{Error: "media not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MediaFile streams the media blob (or its thumbnail)
func MediaFile(c *gin.Context, user *models.User) {
	mediaID := c.Query("mediaid")
	if mediaID == "" {
		c.JSON(http.StatusBadRequest, Response{Error: "missing media id"})
		return
	}
	// The media must be visible through one of the user's memberships
	media := models.Media{}
	result := db.Instance.
		Joins("join media_albums on media_albums.media_id = media.id").
		Joins("join album_users on album_users.album_id = media_albums.album_id").
		Where("media.id = ? and album_users.user_id = ?", mediaID, user.ID).
		Limit(1).Find(&media)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "DB error 1"})
		return
	}
	if result.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, Response{Error: "media not found"})
		return
	}
	store := storage.GetDefaultStorage()
	path := media.GetPath()
	if c.Query("thumb") != "" && media.ThumbSize > 0 {
		path = media.GetThumbPath()
	}
	if err := store.EnsureLocalFile(path); err != nil {
		c.JSON(http.StatusNotFound, Response{Error: "media file not found"})
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	store.Serve(path, c.Request, c.Writer)
}
