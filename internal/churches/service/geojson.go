package service

import (
	"encoding/json"

	"github.com/global-church/church-search-api/internal/churches/repository"
	"github.com/global-church/church-search-api/internal/churches/transport"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

var nullGeometry = json.RawMessage("null")

// buildFeatureCollection converts projected rows into a GeoJSON
// FeatureCollection. Coordinates move out of properties into a Point
// geometry; a row missing either coordinate gets a null geometry.
func buildFeatureCollection(rows []repository.Row, items []transport.Row) *transport.FeatureCollection {
	fc := transport.NewFeatureCollection()
	for i := range rows {
		fc.Features = append(fc.Features, transport.Feature{
			Type:       "Feature",
			Geometry:   pointGeometry(&rows[i]),
			Properties: stripCoordinates(items[i]),
		})
	}
	return fc
}

func pointGeometry(row *repository.Row) json.RawMessage {
	if row.Latitude == nil || row.Longitude == nil {
		return nullGeometry
	}
	point := geom.NewPointFlat(geom.XY, []float64{*row.Longitude, *row.Latitude})
	raw, err := geojson.Marshal(point)
	if err != nil {
		return nullGeometry
	}
	return raw
}

func stripCoordinates(item transport.Row) transport.Row {
	props := make(transport.Row, len(item))
	for key, value := range item {
		if key == transport.LatitudeColumn || key == transport.LongitudeColumn {
			continue
		}
		props[key] = value
	}
	return props
}
