package handlers

import (
	"net/http"

	"gallery/auth"
	"gallery/db"
	"gallery/models"
	"gallery/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserRegisterRequest struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UserLoginRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password" binding:"required"`
}

type UserPasswordRequest struct {
	PasswordOld string `form:"passwordold" binding:"required"`
	PasswordNew string `form:"passwordnew" binding:"required"`
}

type UserInfo struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	PhotoID  *uint64 `json:"photoid,omitempty"`
}

func UserRegister(c *gin.Context) {
	r := UserRegisterRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	user, err := service.RegisterUser(r.Username, r.Email, r.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, UserInfo{ID: user.ID, Username: user.Username, Email: user.Email})
}

func UserLogin(c *gin.Context) {
	r := UserLoginRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	user, err := service.LoginUser(r.Username, r.Email, r.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	session := auth.LoadSession(c)
	session.LoginUser(user)
	c.JSON(http.StatusOK, UserInfo{ID: user.ID, Username: user.Username, Email: user.Email})
}

func UserLogout(c *gin.Context, user *models.User) {
	session := auth.LoadSession(c)
	session.LogoutUser()
	c.JSON(http.StatusOK, OKResponse)
}

// UserGet returns the requesting user's data (or acts as a health check)
func UserGet(c *gin.Context, user *models.User) {
	if c.Query("check") != "" {
		c.JSON(http.StatusOK, OKResponse)
		return
	}
	info := UserInfo{ID: user.ID, Username: user.Username, Email: user.Email}
	// Profile photo lives in the default album
	var photoID uint64
	row := db.Instance.Table("media").
		Select("media.id").
		Joins("join media_albums on media_albums.media_id = media.id").
		Joins("join albums on albums.id = media_albums.album_id").
		Joins("join album_users on album_users.album_id = albums.id").
		Where("album_users.user_id = ? and albums.name = ? and media.kind = ?",
			user.ID, models.DefaultAlbumName, models.MediaKindProfile).
		Limit(1).Row()
	if row != nil {
		if err := row.Scan(&photoID); err == nil && photoID > 0 {
			info.PhotoID = &photoID
		}
	}
	c.JSON(http.StatusOK, info)
}

func UserChangePassword(c *gin.Context, user *models.User) {
	r := UserPasswordRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	if err := service.ChangePassword(user, r.PasswordOld, r.PasswordNew); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

func UserDelete(c *gin.Context, user *models.User) {
	if err := service.DeleteUser(user); err != nil {
		AbortWithError(c, err)
		return
	}
	session := auth.LoadSession(c)
	session.LogoutUser()
	c.Status(http.StatusNoContent)
}
