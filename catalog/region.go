package catalog

import "strings"

// RegionPlaceholder is the sentinel region meaning "no placement constraint".
// It must bypass region parsing entirely.
const RegionPlaceholder = "PLACEHOLDER"

// Placement is a decoded region string. Nil fields mean unconstrained.
type Placement struct {
	Country      *string
	DataCenterID *string
}

// ParseRegion decodes a "{country} - {data_center_id}" region string.
// A region without the separator constrains only the country.
func ParseRegion(region string) Placement {
	if region == RegionPlaceholder {
		return Placement{}
	}
	country, dataCenterID, ok := strings.Cut(region, " - ")
	p := Placement{Country: &country}
	if ok {
		p.DataCenterID = &dataCenterID
	}
	return p
}
