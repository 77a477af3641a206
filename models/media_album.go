package models

// MediaAlbum links a media record into an album.
// At most one row per album carries IsCover=true.
type MediaAlbum struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt int64
	MediaID   uint64 `gorm:"not null;index:uniq_media_album,unique,priority:1"`
	Media     Media  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AlbumID   uint64 `gorm:"not null;index:uniq_media_album,unique,priority:2"`
	Album     Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IsCover   bool   `gorm:"not null;default:false"`
}

func (MediaAlbum) TableName() string {
	return "media_albums"
}
