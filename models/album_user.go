package models

// AlbumUser links a user to an album they own or have accepted a share of.
// Exactly one row per album carries IsOwner=true.
type AlbumUser struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt int64
	AlbumID   uint64 `gorm:"not null;index:uniq_album_user,unique,priority:1"`
	Album     Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID    uint64 `gorm:"not null;index:uniq_album_user,unique,priority:2"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IsOwner   bool   `gorm:"not null;default:false"`
}
