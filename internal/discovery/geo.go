package discovery

import (
	"finder/pkg/places"
	"finder/pkg/serrors"
	"fmt"
	"strconv"
	"strings"
)

// kmPerDegree approximates the length of one degree of latitude.
const kmPerDegree = 111.0

// provinces maps lowercase English and Thai names of the supported Thai
// provinces and cities to their approximate centers.
var provinces = map[string]places.LatLng{
	"bangkok":             {Lat: 13.7563, Lng: 100.5018},
	"กรุงเทพ":             {Lat: 13.7563, Lng: 100.5018},
	"chiang mai":          {Lat: 18.7883, Lng: 98.9853},
	"เชียงใหม่":           {Lat: 18.7883, Lng: 98.9853},
	"chiang rai":          {Lat: 19.9071, Lng: 99.8305},
	"เชียงราย":            {Lat: 19.9071, Lng: 99.8305},
	"phuket":              {Lat: 7.8804, Lng: 98.3923},
	"ภูเก็ต":              {Lat: 7.8804, Lng: 98.3923},
	"khon kaen":           {Lat: 16.4419, Lng: 102.8360},
	"ขอนแก่น":             {Lat: 16.4419, Lng: 102.8360},
	"nakhon ratchasima":   {Lat: 14.9799, Lng: 102.0978},
	"นครราชสีมา":          {Lat: 14.9799, Lng: 102.0978},
	"udon thani":          {Lat: 17.4156, Lng: 102.7872},
	"อุดรธานี":            {Lat: 17.4156, Lng: 102.7872},
	"chonburi":            {Lat: 13.3611, Lng: 100.9847},
	"ชลบุรี":              {Lat: 13.3611, Lng: 100.9847},
	"pattaya":             {Lat: 12.9236, Lng: 100.8825},
	"พัทยา":               {Lat: 12.9236, Lng: 100.8825},
	"hat yai":             {Lat: 7.0080, Lng: 100.4747},
	"หาดใหญ่":             {Lat: 7.0080, Lng: 100.4747},
	"songkhla":            {Lat: 7.1756, Lng: 100.6142},
	"สงขลา":               {Lat: 7.1756, Lng: 100.6142},
	"nonthaburi":          {Lat: 13.8621, Lng: 100.5144},
	"นนทบุรี":             {Lat: 13.8621, Lng: 100.5144},
	"pathum thani":        {Lat: 14.0208, Lng: 100.5250},
	"ปทุมธานี":            {Lat: 14.0208, Lng: 100.5250},
	"samut prakan":        {Lat: 13.5991, Lng: 100.5998},
	"สมุทรปราการ":         {Lat: 13.5991, Lng: 100.5998},
	"rayong":              {Lat: 12.6814, Lng: 101.2816},
	"ระยอง":               {Lat: 12.6814, Lng: 101.2816},
	"surat thani":         {Lat: 9.1382, Lng: 99.3217},
	"สุราษฎร์ธานี":        {Lat: 9.1382, Lng: 99.3217},
	"nakhon si thammarat": {Lat: 8.4304, Lng: 99.9631},
	"นครศรีธรรมราช":       {Lat: 8.4304, Lng: 99.9631},
}

// CityCoordinates returns the center of a known Thai city or province.
func CityCoordinates(name string) (places.LatLng, bool) {
	c, ok := provinces[strings.ToLower(strings.TrimSpace(name))]

	return c, ok
}

// Bounds is a latitude/longitude bounding box.
type Bounds struct {
	SouthLat float64
	WestLng  float64
	NorthLat float64
	EastLng  float64
}

// ParseBounds parses "southLat,westLng,northLat,eastLng".
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, serrors.With(serrors.ErrBadRequest,
			"bounds must be southLat,westLng,northLat,eastLng, got %q", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid bounds coordinate %q", p)
		}
		v[i] = f
	}

	b := Bounds{SouthLat: v[0], WestLng: v[1], NorthLat: v[2], EastLng: v[3]}
	if b.SouthLat > b.NorthLat || b.WestLng > b.EastLng {
		return Bounds{}, serrors.With(serrors.ErrBadRequest, "bounds %q are inverted", s)
	}

	return b, nil
}

// Center returns the middle of the box.
func (b Bounds) Center() places.LatLng {
	return places.LatLng{
		Lat: (b.SouthLat + b.NorthLat) / 2,
		Lng: (b.WestLng + b.EastLng) / 2,
	}
}

// GridPoints covers the box with points stepKm apart, starting at its
// south-west corner and walking north row by row.
func (b Bounds) GridPoints(stepKm float64) []places.LatLng {
	if stepKm <= 0 {
		return []places.LatLng{b.Center()}
	}

	const epsilon = 1e-9

	step := stepKm / kmPerDegree
	rows := int((b.NorthLat-b.SouthLat)/step+epsilon) + 1
	cols := int((b.EastLng-b.WestLng)/step+epsilon) + 1

	points := make([]places.LatLng, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			points = append(points, places.LatLng{
				Lat: b.SouthLat + float64(i)*step,
				Lng: b.WestLng + float64(j)*step,
			})
		}
	}

	return points
}

func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.SouthLat, b.WestLng, b.NorthLat, b.EastLng)
}
