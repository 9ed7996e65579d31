// Package maplink extracts coordinates and place names from Google Maps links.
package maplink

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/travelplaner/travelplaner/internal/model"
)

var (
	// "@<lat>,<lon>" anywhere in the link, e.g. ".../@37.7,-122.4,17z".
	coordinatesPattern = regexp.MustCompile(`@([+-]?\d+(?:\.\d+)?),([+-]?\d+(?:\.\d+)?)`)

	// "/place/<name>" up to the next "/" or "@".
	placePattern = regexp.MustCompile(`/place/([^/@]+)`)
)

// ExtractCoordinates returns the first "@lat,lon" pair in link. The values
// are not range checked.
func ExtractCoordinates(link string) (model.Coordinates, bool) {
	m := coordinatesPattern.FindStringSubmatch(link)
	if m == nil {
		return model.Coordinates{}, false
	}
	return model.Coordinates{Lat: m[1], Lon: m[2]}, true
}

// ExtractPlaceName returns the raw "/place/" segment of link with "+"
// replaced by spaces. Percent escapes are left alone; see DecodePlaceName.
func ExtractPlaceName(link string) (string, bool) {
	m := placePattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], "+", " "), true
}

// DecodePlaceName resolves percent escapes in a name returned by
// ExtractPlaceName and normalizes it to NFC. Each "%xx" is decoded on its
// own; malformed escapes stay literal and bytes that do not form valid UTF-8
// become U+FFFD.
func DecodePlaceName(raw string) string {
	buf := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '%' && i+2 < len(raw) {
			hi, okHi := unhex(raw[i+1])
			lo, okLo := unhex(raw[i+2])
			if okHi && okLo {
				buf = append(buf, hi<<4|lo)
				i += 2
				continue
			}
		}
		buf = append(buf, raw[i])
	}
	return norm.NFC.String(strings.ToValidUTF8(string(buf), "\uFFFD"))
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
