package timestamp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifLayout is the EXIF DateTime wire format.
const exifLayout = "2006:01:02 15:04:05"

var errNoDateTime = errors.New("exif: no DateTime tag")

func exifDateTime(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer file.Close()

	data, err := exif.Decode(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}

	tag, err := data.Get(exif.DateTime)
	if err != nil {
		return time.Time{}, errNoDateTime
	}
	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("read DateTime tag: %w", err)
	}
	return ParseEXIFDateTime(raw)
}

// ParseEXIFDateTime parses an EXIF-formatted timestamp (2006:01:02 15:04:05).
// EXIF carries no zone information; the value is interpreted as local time,
// matching how cameras record it.
func ParseEXIFDateTime(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(exifLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse exif datetime %q: %w", value, err)
	}
	return parsed, nil
}
