package models

const (
	DefaultAlbumName   = "default"
	AlbumNameMaxLength = 35

	SharingCodeLength = 8

	PermissionReadOnly   = "read-only"
	PermissionReadWrite  = "read-write"
	PermissionFullAccess = "full-access"
)

type Album struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt int64
	UpdatedAt int64
	Name      string `gorm:"type:varchar(35);not null"`
	// Sharing attributes (nil if not shared)
	Code        *string `gorm:"type:varchar(8);index:uniq_album_code,unique"`
	Permissions *string `gorm:"type:varchar(15)"`
	Users       []AlbumUser
}

func (a *Album) IsDefault() bool {
	return a.Name == DefaultAlbumName
}

func (a *Album) IsShared() bool {
	return a.Code != nil
}

func (a *Album) HasPermission(permission string) bool {
	return a.Permissions != nil && *a.Permissions == permission
}

func ValidSharingPermission(permission string) bool {
	return permission == PermissionReadOnly ||
		permission == PermissionReadWrite ||
		permission == PermissionFullAccess
}
