// Package polyline implements Google's encoded polyline algorithm plus the
// path utilities (length, sampling, down-sampling) used for exposure scoring.
// Format reference: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import "math"

// LatLng is a geographic point on a polyline.
type LatLng struct {
	Lat float64
	Lng float64
}

const coordPrecision = 1e5

// Decode converts an encoded polyline into points. Malformed trailing bytes
// are dropped rather than reported; upstream geometry is best-effort.
func Decode(encoded string) []LatLng {
	if encoded == "" {
		return nil
	}

	var points []LatLng
	var lat, lng int
	i := 0

	for i < len(encoded) {
		dLat, next := decodeChunk(encoded, i)
		i = next
		lat += dLat

		if i >= len(encoded) {
			break
		}
		dLng, next := decodeChunk(encoded, i)
		i = next
		lng += dLng

		points = append(points, LatLng{
			Lat: float64(lat) / coordPrecision,
			Lng: float64(lng) / coordPrecision,
		})
	}

	return points
}

// decodeChunk reads one varint-style value starting at index i and returns
// the signed delta and the next index.
func decodeChunk(encoded string, i int) (int, int) {
	var result, shift int
	for i < len(encoded) {
		b := int(encoded[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}

// Encode converts points into an encoded polyline.
func Encode(points []LatLng) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	var prevLat, prevLng int

	for _, p := range points {
		lat := int(math.Round(p.Lat * coordPrecision))
		lng := int(math.Round(p.Lng * coordPrecision))
		buf = appendChunk(buf, lat-prevLat)
		buf = appendChunk(buf, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

func appendChunk(buf []byte, v int) []byte {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}
	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

// Length returns the total path length in meters.
func Length(points []LatLng) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += haversine(points[i-1], points[i])
	}
	return total
}

// SampleEvery returns points spaced approximately intervalMeters apart along
// the path, interpolating within segments. The first point is always kept.
func SampleEvery(points []LatLng, intervalMeters float64) []LatLng {
	if len(points) == 0 {
		return nil
	}
	if intervalMeters <= 0 || len(points) == 1 {
		return points
	}

	sampled := []LatLng{points[0]}
	carried := 0.0

	for i := 1; i < len(points); i++ {
		segment := haversine(points[i-1], points[i])
		for carried+segment >= intervalMeters {
			need := intervalMeters - carried
			frac := need / segment
			sampled = append(sampled, LatLng{
				Lat: points[i-1].Lat + frac*(points[i].Lat-points[i-1].Lat),
				Lng: points[i-1].Lng + frac*(points[i].Lng-points[i-1].Lng),
			})
			segment -= need
			carried = 0
		}
		carried += segment
	}

	last := points[len(points)-1]
	if sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}
	return sampled
}

// Downsample reduces a path to at most maxPoints, always keeping both
// endpoints. Intermediate points are chosen at a uniform stride, which is
// enough for exposure sampling where exact geometry does not matter.
func Downsample(points []LatLng, maxPoints int) []LatLng {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}
	if maxPoints == 1 {
		return points[:1]
	}

	out := make([]LatLng, 0, maxPoints)
	step := float64(len(points)-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx > len(points)-1 {
			idx = len(points) - 1
		}
		out = append(out, points[idx])
	}
	return out
}

const earthRadiusMeters = 6371000

// haversine returns the great-circle distance between two points in meters.
func haversine(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
