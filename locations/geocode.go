package locations

import (
	"gallery/db"
	"gallery/models"
)

// ReverseGeocode resolves coordinates to a "City, Country" string.
// Best effort: any failure yields "" and is never propagated.
// Results are cached in the locations table to avoid hammering Nominatim.
func ReverseGeocode(lat, long float64) string {
	location := models.Location{
		// Truncate - only use 0.0001 of precision
		GpsLat:  float64(int(lat*10000)) / 10000,
		GpsLong: float64(int(long*10000)) / 10000,
	}
	db.Instance.Limit(1).Find(&location, "gps_lat = ? and gps_long = ?", location.GpsLat, location.GpsLong)
	if location.Country != "" {
		return location.GetShortDisplay()
	}
	nominatim := getNominatimLocation(location.GpsLat, location.GpsLong)
	if nominatim == nil || nominatim.Address.Country == "" {
		return ""
	}
	location.Display = nominatim.DisplayName
	location.City = nominatim.GetCity()
	location.Country = nominatim.Address.Country
	location.CountryCode = nominatim.Address.CountryCode
	db.Instance.Create(&location)
	return location.GetShortDisplay()
}
