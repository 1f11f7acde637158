package normalize

import "strings"

// providerTeams maps stats-provider team codes that differ from the fantasy
// platform's codes. Codes absent from the table are already aligned.
var providerTeams = map[string]string{
	"WSH": "WAS",
	"JAC": "JAX",
	"LA":  "LAR",
	"STL": "LAR",
	"SD":  "LAC",
	"OAK": "LV",
	"LVR": "LV",
	"KAN": "KC",
	"NWE": "NE",
	"NOR": "NO",
	"SFO": "SF",
	"TAM": "TB",
	"GNB": "GB",
}

// Team maps a provider team code to the platform's code. Unknown codes are
// returned upper-cased and otherwise unchanged.
func Team(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if mapped, ok := providerTeams[c]; ok {
		return mapped
	}
	return c
}

// PlatformTeam canonicalises a code that already belongs to the platform.
func PlatformTeam(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
