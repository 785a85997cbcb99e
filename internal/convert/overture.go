package convert

import (
	"fmt"
	"strings"

	"github.com/jwilliamsresearch/geon/internal/geo"
	"github.com/jwilliamsresearch/geon/internal/geon"
)

// SourceOverture is the SOURCE entry for Overture features without dataset
// attribution.
const SourceOverture = "Overture Maps"

// overtureCategories maps substrings of an Overture main category to place
// types. The first match wins.
var overtureCategories = []struct {
	substr, typ string
}{
	{"restaurant", "building"},
	{"cafe", "building"},
	{"bar", "building"},
	{"hotel", "building"},
	{"school", "building"},
	{"hospital", "building"},
	{"bank", "building"},
	{"shop", "building"},
	{"supermarket", "building"},
	{"park", "public_space"},
	{"garden", "public_space"},
	{"playground", "public_space"},
	{"sports_centre", "public_space"},
	{"stadium", "public_space"},
	{"train_station", "transport_hub"},
	{"bus_station", "transport_hub"},
	{"airport", "transport_hub"},
	{"museum", "landmark"},
	{"monument", "landmark"},
	{"church", "landmark"},
	{"cathedral", "landmark"},
	{"castle", "landmark"},
}

// FromOvertureCollection converts every feature of an Overture Maps export.
func FromOvertureCollection(fc geo.GeoJSONFeatureCollection, opts Options) []*geon.Place {
	places := make([]*geon.Place, 0, len(fc.Features))
	for i := range fc.Features {
		places = append(places, FromOvertureFeature(fc.Features[i], opts))
	}
	return places
}

// FromOvertureFeature converts an Overture Maps places feature. Overture
// nests names, categories and provenance inside its properties.
func FromOvertureFeature(f geo.GeoJSONFeature, opts Options) *geon.Place {
	props := f.Properties

	p := &geon.Place{
		Name: overtureName(props),
		Type: DefaultType,
	}

	p.ID = text(props["id"])
	if p.ID == "" {
		p.ID = text(f.ID)
	}
	if p.ID == "" && opts.AssignIDs {
		p.ID = featureIDOrUUID(f)
	}

	if cats, ok := props["categories"].(map[string]interface{}); ok {
		p.Type = overtureType(text(cats["main"]), opts)
		if alt, ok := cats["alternate"]; ok {
			p.Purpose = stringList(alt)
		}
	}

	if c, ok := centroid(f.Geometry); ok {
		p.Location = &c
	}
	if f.Geometry != nil && f.Geometry.Type == "Polygon" {
		p.Boundary = boundary(f.Geometry)
	}

	if conf, ok := props["confidence"].(float64); ok {
		p.Confidence = map[string]string{"overall": fmt.Sprintf("%.2f", conf)}
	}

	p.Source = overtureSources(props["sources"])

	if addrs, ok := props["addresses"].([]interface{}); ok && len(addrs) > 0 {
		if addr, ok := addrs[0].(map[string]interface{}); ok {
			if free := text(addr["freeform"]); free != "" {
				p.SetExtra("ADDRESS", free)
			}
		}
	}
	if site := first(props["websites"]); site != "" {
		p.SetExtra("WEBSITE", site)
	}
	if phone := first(props["phones"]); phone != "" {
		p.SetExtra("PHONE", phone)
	}

	return p
}

func overtureName(props map[string]interface{}) string {
	if names, ok := props["names"].(map[string]interface{}); ok {
		if primary := text(names["primary"]); primary != "" {
			return primary
		}
	}
	if name := text(props["name"]); name != "" {
		return name
	}
	return "Unnamed"
}

func overtureType(category string, opts Options) string {
	category = lower(category)
	if t, ok := opts.TypeMapping[category]; ok {
		return t
	}
	for _, c := range overtureCategories {
		if strings.Contains(category, c.substr) {
			return c.typ
		}
	}
	return DefaultType
}

func overtureSources(v interface{}) []string {
	var out []string
	if list, ok := v.([]interface{}); ok {
		for _, src := range list {
			if m, ok := src.(map[string]interface{}); ok {
				dataset := text(m["dataset"])
				if dataset == "" {
					dataset = "unknown"
				}
				out = append(out, fmt.Sprintf("%s (%s)", SourceOverture, dataset))
				continue
			}
			if s := text(src); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, SourceOverture)
	}
	return out
}

// first returns the first entry of a list property, or the property itself
// when it is a plain value.
func first(v interface{}) string {
	list := stringList(v)
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
