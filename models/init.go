package models

import (
	"gallery/db"
)

func Init() {
	db.Instance.AutoMigrate(&User{})
	db.Instance.AutoMigrate(&Album{})
	db.Instance.AutoMigrate(&AlbumUser{})
	db.Instance.AutoMigrate(&Media{})
	db.Instance.AutoMigrate(&MediaAlbum{})
	db.Instance.AutoMigrate(&Location{})
}
