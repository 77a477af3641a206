package main

import (
	"log"
	"strings"
	"time"

	"gallery/auth"
	"gallery/config"
	"gallery/db"
	"gallery/handlers"
	"gallery/models"
	"gallery/storage"
	"gallery/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionStoreKey       = "this is a long key" // TODO: convert to env variable
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
)

func main() {
	db.Init()
	models.Init()
	storage.Init()

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(utils.RequestIDMiddleware)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(sessionStoreKey))
	cookieStore.Options(sessions.Options{MaxAge: sessionExpirationTime})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/file"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default

	// Custom Auth Router
	authRouter := &auth.Router{Base: router}
	// Account handlers
	router.POST("/api/register", handlers.UserRegister)
	router.POST("/api/login", handlers.UserLogin)
	authRouter.POST("/api/logout", handlers.UserLogout)
	authRouter.GET("/api/user", handlers.UserGet)
	authRouter.POST("/api/user", handlers.UserChangePassword)
	authRouter.DELETE("/api/user", handlers.UserDelete)
	// Album handlers
	authRouter.GET("/api/album", handlers.AlbumGet)
	authRouter.POST("/api/album", handlers.AlbumAction) // cover change or share acceptance
	authRouter.PUT("/api/album", handlers.AlbumSave)    // create, rename or share
	authRouter.DELETE("/api/album", handlers.AlbumDelete)
	authRouter.GET("/api/albums", handlers.AlbumList)
	// Media handlers
	authRouter.PUT("/api/media", handlers.MediaSave)
	authRouter.DELETE("/api/media", handlers.MediaDelete)
	authRouter.GET("/api/medias", handlers.MediaList)
	authRouter.GET("/api/file", handlers.MediaFile)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
