package models

// Location is used as cache to avoid hammering the Geocoding service
type Location struct {
	GpsLat      float64 `gorm:"type:double;primaryKey"` // Rounded to 0.0001
	GpsLong     float64 `gorm:"type:double;primaryKey"` // Rounded to 0.0001
	Display     string  `gorm:"type:varchar(250)"`
	City        string  `gorm:"type:varchar(100)"`
	Country     string  `gorm:"type:varchar(100)"`
	CountryCode string  `gorm:"type:varchar(10)"`
}

// GetShortDisplay returns "City, Country" (or just the country when no city is known)
func (l *Location) GetShortDisplay() string {
	if l.City != "" && l.Country != "" {
		return l.City + ", " + l.Country
	}
	return l.Country
}
