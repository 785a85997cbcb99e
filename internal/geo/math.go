package geo

import "math"

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// LonLatToMercator projects WGS84 (Lon/Lat) to normalized Web Mercator
// coordinates, both in [0..1] with the origin at the north-west corner.
//
// Latitudes outside the projectable band are clamped to ±MaxLat.
func LonLatToMercator(lon, lat float64) (x, y float64) {
	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}

	// lon: [-180..180] -> x: [0..1]
	x = (lon + 180.0) / 360.0

	// Forward Mercator projection, y grows southwards
	latRad := lat * (math.Pi / 180.0)
	mercatorY := math.Log(math.Tan(math.Pi*0.25 + latRad*0.5))
	y = 0.5 - mercatorY/(2.0*math.Pi)

	return x, y
}

// MercatorToLonLat is the inverse of LonLatToMercator.
func MercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x*360.0 - 180.0

	mercatorY := (0.5 - y) * 2.0 * math.Pi
	latRad := (2.0 * math.Atan(math.Exp(mercatorY))) - (math.Pi * 0.5)
	lat = latRad * (180.0 / math.Pi)

	return lon, lat
}

// Centroid returns the arithmetic mean of the given positions. It returns
// false for an empty slice.
func Centroid(ps []Position) (Position, bool) {
	if len(ps) == 0 {
		return nil, false
	}

	// A closed ring repeats its first vertex.
	if len(ps) > 1 && ps[0].Lon() == ps[len(ps)-1].Lon() && ps[0].Lat() == ps[len(ps)-1].Lat() {
		ps = ps[:len(ps)-1]
	}

	var lon, lat float64
	for _, p := range ps {
		lon += p.Lon()
		lat += p.Lat()
	}
	n := float64(len(ps))
	return Position{lon / n, lat / n}, true
}

// Midpoint returns the middle vertex of a line.
func Midpoint(ps []Position) (Position, bool) {
	if len(ps) == 0 {
		return nil, false
	}
	return ps[len(ps)/2], true
}

// Bounds returns the bounding box of ps as west, south, east, north.
func Bounds(ps []Position) (west, south, east, north float64, ok bool) {
	if len(ps) == 0 {
		return 0, 0, 0, 0, false
	}

	west, east = ps[0].Lon(), ps[0].Lon()
	south, north = ps[0].Lat(), ps[0].Lat()
	for _, p := range ps[1:] {
		west = math.Min(west, p.Lon())
		east = math.Max(east, p.Lon())
		south = math.Min(south, p.Lat())
		north = math.Max(north, p.Lat())
	}

	return west, south, east, north, true
}
