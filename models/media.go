package models

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zsefvlol/timezonemapper"
	"gorm.io/gorm"
)

const (
	MediaKindImage   = "image"
	MediaKindVideo   = "video"
	MediaKindProfile = "profile"
)

type Media struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	// Uploader - also the owner key in the blob store
	UserID           uint64 `gorm:"not null;index:user_media_modified,priority:1"`
	User             User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Filename         string `gorm:"type:varchar(500)"`
	ModificationDate int64  `gorm:"not null;index:user_media_modified,priority:2"`
	Kind             string `gorm:"type:varchar(20);not null"`
	// Optional metadata
	Coordinates     *string `gorm:"type:varchar(50)"` // "lat,long"
	Location        *string `gorm:"type:varchar(50)"` // e.g. "Porto, Portugal"
	Label           *string `gorm:"type:varchar(50)"`
	DetectedObjects *string `gorm:"type:varchar(100)"` // "object1;object2;..."
	ThumbSize       int64
}

func (Media) TableName() string {
	return "media"
}

func ValidMediaKind(kind string) bool {
	return kind == MediaKindImage || kind == MediaKindVideo || kind == MediaKindProfile
}

// GetPath returns the blob path of the media, e.g. user/3/15.jpg
func (m *Media) GetPath() string {
	return m.GetPathOrThumb(false)
}

func (m *Media) GetThumbPath() string {
	return m.GetPathOrThumb(true)
}

func (m *Media) GetPathOrThumb(thumb bool) string {
	path := "user/" + strconv.FormatUint(m.UserID, 10) + "/" + strconv.FormatUint(m.ID, 10)
	if thumb {
		// Thumbs are always JPEG
		path += "_thumb.jpg"
	} else {
		path += strings.ToLower(filepath.Ext(m.Filename))
	}
	return path
}

func (m *Media) IsImage() bool {
	return m.Kind == MediaKindImage
}

func (m *Media) IsVideo() bool {
	return m.Kind == MediaKindVideo
}

func (m *Media) BeforeSave(tx *gorm.DB) (err error) {
	// Restrict the characters in Filename
	var name strings.Builder
	for i, c := range m.Filename {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			(c == '.' && i > 0) || (c == '-') || (c == '_') || (c == ' ') {

			name.WriteRune(c)
		} else {
			// Replace all other characters with '_' (underscore)
			name.WriteString("_")
		}
	}
	m.Filename = name.String()
	return
}

// GetGpsCoords parses the Coordinates field. Returns nils if absent or malformed.
func (m *Media) GetGpsCoords() (lat, long *float64) {
	if m.Coordinates == nil {
		return nil, nil
	}
	parts := strings.SplitN(*m.Coordinates, ",", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	la, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lo, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &la, &lo
}

// GetModifiedTimeInLocation returns the modification time in the timezone
// of the media's GPS coordinates, or local time if there are none.
func (m *Media) GetModifiedTimeInLocation() time.Time {
	t := time.Unix(m.ModificationDate, 0)
	lat, long := m.GetGpsCoords()
	if lat == nil || long == nil {
		return t
	}
	zone, err := time.LoadLocation(timezonemapper.LatLngToTimezoneString(*lat, *long))
	if err != nil || zone == nil {
		return t
	}
	return t.In(zone)
}
