package providers

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/skyscope/skyscope-server/internal/common"
)

// fallbackCityName labels a forward-resolved place whose city could not be
// determined from either the address block or the query text.
const fallbackCityName = "Việt Nam"

var titleCaser = cases.Title(language.English)

// resolveReverseAddress maps a reverse-geocode address block to a Location
// using a fixed field precedence. Nominatim populates different fields for
// different place types, so each output field falls through a chain of
// candidates.
func resolveReverseAddress(addr *nominatimAddress, defaultCountry string) Location {
	district := common.FirstNonEmpty(addr.Suburb, addr.CityDistrict, addr.District, addr.Quarter, addr.Neighbourhood)
	city := common.FirstNonEmpty(addr.City, addr.Town, addr.Municipality, addr.County, addr.State)

	country := strings.ToUpper(addr.CountryCode)
	if country == "" {
		country = addr.Country
	}
	if country == "" {
		country = defaultCountry
	}

	if city == "" {
		city = "Unknown"
	}

	return Location{City: city, District: district, Country: country}
}

// resolveForward maps a forward-geocode hit to a Location. The original
// query is the fallback source: its first comma token stands in for the
// district and its last for the city when the address block is missing
// those fields entirely.
func resolveForward(query, resultName string, addr *nominatimAddress, defaultCountry string) Location {
	tokens := splitQuery(query)

	first := ""
	last := ""
	if len(tokens) > 0 {
		first = titleCaser.String(tokens[0])
		last = titleCaser.String(tokens[len(tokens)-1])
	}

	if addr == nil {
		// No address block at all: the query text is all we have.
		city := first
		if len(tokens) >= 2 {
			city = titleCaser.String(tokens[1])
		}
		return Location{
			City:     common.FirstNonEmpty(city, fallbackCityName),
			District: first,
			Country:  defaultCountry,
		}
	}

	country := strings.ToUpper(addr.CountryCode)
	if country == "" {
		country = defaultCountry
	}

	city := common.FirstNonEmpty(addr.City, addr.State, addr.Province, addr.Municipality, addr.County, last, fallbackCityName)
	district := common.FirstNonEmpty(resultName, first, addr.Suburb, addr.Neighbourhood, addr.Quarter, addr.CityDistrict, addr.District)

	return Location{City: city, District: district, Country: country}
}

func splitQuery(query string) []string {
	var tokens []string
	for _, part := range strings.Split(query, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}
