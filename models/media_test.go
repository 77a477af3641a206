package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
)

func TestMedia_GetModifiedTimeInLocation(t *testing.T) {
	CST, _ := time.LoadLocation("Asia/Shanghai")
	tests := []struct {
		name  string
		media Media
		want  time.Time
	}{
		{
			name: "Asia/Shanghai", // CST
			media: Media{
				ModificationDate: 1696258800,
				Coordinates:      aws.String("39.9254474,116.3870752"),
			},
			want: time.Unix(1696258800, 0).Local().In(CST),
		},
		{
			name: "Local", // when no GPS coords
			media: Media{
				ModificationDate: 1696258800,
			},
			want: time.Unix(1696258800, 0),
		},
		{
			name: "Malformed coordinates",
			media: Media{
				ModificationDate: 1696258800,
				Coordinates:      aws.String("not,numbers"),
			},
			want: time.Unix(1696258800, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.media.GetModifiedTimeInLocation(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Media.GetModifiedTimeInLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedia_GetPathOrThumb(t *testing.T) {
	media := Media{ID: 15, UserID: 3, Filename: "Beach Day.JPG"}
	if got := media.GetPath(); got != "user/3/15.jpg" {
		t.Errorf("Media.GetPath() = %q", got)
	}
	if got := media.GetThumbPath(); got != "user/3/15_thumb.jpg" {
		t.Errorf("Media.GetThumbPath() = %q", got)
	}
	noExt := Media{ID: 7, UserID: 3, Filename: "blob"}
	if got := noExt.GetPath(); got != "user/3/7" {
		t.Errorf("Media.GetPath() = %q", got)
	}
}

func TestMedia_GetGpsCoords(t *testing.T) {
	tests := []struct {
		name        string
		coordinates *string
		wantLat     *float64
		wantLong    *float64
	}{
		{"nil", nil, nil, nil},
		{"valid", aws.String("41.1579,-8.6291"), aws.Float64(41.1579), aws.Float64(-8.6291)},
		{"spaced", aws.String(" 41.1579 , -8.6291 "), aws.Float64(41.1579), aws.Float64(-8.6291)},
		{"single value", aws.String("41.1579"), nil, nil},
		{"garbage", aws.String("here,there"), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := Media{Coordinates: tt.coordinates}
			lat, long := media.GetGpsCoords()
			if !reflect.DeepEqual(lat, tt.wantLat) || !reflect.DeepEqual(long, tt.wantLong) {
				t.Errorf("Media.GetGpsCoords() = %v, %v, want %v, %v", lat, long, tt.wantLat, tt.wantLong)
			}
		})
	}
}
