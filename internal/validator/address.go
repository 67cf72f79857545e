package validator

import "strings"

// ParseCityState pulls city and state out of a places-provider
// formatted address, ported from the original discovery service's
// _parse_city_state: addresses are comma-separated with the city
// second-to-last and "STATE ZIP" last, e.g.
// "123 Main St, Springfield, IL 62701, USA".
func ParseCityState(formattedAddress string) (city, state string) {
	parts := strings.Split(formattedAddress, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	// Drop a trailing country token if present.
	if len(parts) > 0 && parts[len(parts)-1] == "USA" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return "", ""
	}

	city = parts[len(parts)-2]
	stateZip := parts[len(parts)-1]
	fields := strings.Fields(stateZip)
	if len(fields) > 0 {
		state = fields[0]
	}
	return city, state
}
