package handlers

import (
	"net/http"

	"gallery/db"
	"gallery/models"
	"gallery/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AlbumInfo struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	CreationDate int64   `json:"creationdate"`
	LastUpdate   int64   `json:"lastupdate"`
	Code         *string `json:"code,omitempty"`
	Permissions  *string `json:"permissions,omitempty"`
}

type AlbumListInfo struct {
	AlbumInfo
	Elements int64   `json:"elements"`
	Cover    *uint64 `json:"cover"`
	IsOwner  bool    `json:"isowner"`
}

type AlbumSaveRequest struct {
	ID          uint64 `form:"id"`
	Name        string `form:"name"`
	Permissions string `form:"permissions"`
}

type AlbumActionRequest struct {
	ID      uint64 `form:"id"`
	MediaID uint64 `form:"mediaid"`
	Code    string `form:"code"`
}

type AlbumIDRequest struct {
	ID uint64 `form:"id"`
}

func albumInfoFrom(album *models.Album) AlbumInfo {
	return AlbumInfo{
		ID:           album.ID,
		Name:         album.Name,
		CreationDate: album.CreatedAt,
		LastUpdate:   album.UpdatedAt,
		Code:         album.Code,
		Permissions:  album.Permissions,
	}
}

// AlbumGet returns one album - the default one when no id is given
func AlbumGet(c *gin.Context, user *models.User) {
	r := AlbumIDRequest{}
	_ = c.ShouldBindQuery(&r)
	album, err := service.GetAlbum(user, r.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, albumInfoFrom(album))
}

// AlbumAction accepts a shared album (when a code is given) or
// changes the album cover
func AlbumAction(c *gin.Context, user *models.User) {
	r := AlbumActionRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	if r.Code != "" {
		album, err := service.AcceptShare(user, r.Code)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, albumInfoFrom(album))
		return
	}
	if r.ID == 0 || r.MediaID == 0 {
		c.JSON(http.StatusBadRequest, Response{Error: "missing album or media id"})
		return
	}
	if err := service.SetCover(user, r.ID, r.MediaID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumSave creates an album, renames one, or shares one
func AlbumSave(c *gin.Context, user *models.User) {
	r := AlbumSaveRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	if r.ID == 0 && r.Name == "" {
		c.JSON(http.StatusBadRequest, Response{Error: "missing album id or name"})
		return
	}
	if r.ID == 0 {
		album, err := service.CreateAlbum(user, r.Name)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, albumInfoFrom(album))
		return
	}
	album, err := service.UpdateAlbum(user, r.ID, r.Name, r.Permissions)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, albumInfoFrom(album))
}

func AlbumDelete(c *gin.Context, user *models.User) {
	r := AlbumIDRequest{}
	_ = c.ShouldBindQuery(&r)
	if r.ID == 0 {
		_ = c.ShouldBindWith(&r, binding.FormMultipart)
	}
	if r.ID == 0 {
		c.JSON(http.StatusBadRequest, Response{Error: "missing album id"})
		return
	}
	if err := service.DeleteAlbum(user, r.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AlbumList returns the user's albums with element counts and cover ids
func AlbumList(c *gin.Context, user *models.User) {
	query := db.Instance.
		Table("albums").
		Select(`albums.id, albums.name, albums.created_at, albums.updated_at,
			albums.code, albums.permissions, album_users.is_owner,
			(select count(*) from media_albums where media_albums.album_id = albums.id) as elements,
			(select media_albums.media_id from media_albums
				where media_albums.album_id = albums.id and media_albums.is_cover = 1 limit 1) as cover`).
		Joins("join album_users on album_users.album_id = albums.id").
		Where("album_users.user_id = ?", user.ID).
		Order("albums.created_at ASC")

	if c.Query("shared") != "" {
		query = query.Where("album_users.is_owner = 0")
	} else if c.Query("sharedowned") != "" {
		query = query.Where("album_users.is_owner = 1 and albums.code is not null")
	} else if c.Query("id") == "" && c.Query("name") == "" {
		query = query.Where("album_users.is_owner = 1")
	}
	if id := c.Query("id"); id != "" {
		query = query.Where("albums.id = ?", id)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("albums.name = ?", name)
	}

	rows, err := query.Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "DB error 1"})
		return
	}
	defer rows.Close()
	skipCover := c.Query("skipcover") != ""
	result := []AlbumListInfo{}
	for rows.Next() {
		info := AlbumListInfo{}
		if err = rows.Scan(&info.ID, &info.Name, &info.CreationDate, &info.LastUpdate,
			&info.Code, &info.Permissions, &info.IsOwner, &info.Elements, &info.Cover); err != nil {
			c.JSON(http.StatusInternalServerError, Response{Error: "DB error 2"})
			return
		}
		if skipCover {
			info.Cover = nil
		}
		result = append(result, info)
	}
	if (c.Query("id") != "" || c.Query("name") != "") && len(result) == 0 {
		c.JSON(http.StatusNotFound, Response{Error: "album not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}
