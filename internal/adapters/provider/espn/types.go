package espn

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// flexFloat decodes numbers that may arrive as JSON numbers, numeric
// strings or null. Anything unparseable or non-finite decodes as 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(v) {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// flexString decodes ids that may be numbers or strings.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = flexString(n.String())
		return nil
	}
	*s = ""
	return nil
}

type ref struct {
	Ref string `json:"$ref"`
}

type leadersResponse struct {
	Categories []struct {
		Name    string `json:"name"`
		Leaders []struct {
			Value   flexFloat `json:"value"`
			Athlete ref       `json:"athlete"`
		} `json:"leaders"`
	} `json:"categories"`
}

type athleteResponse struct {
	Athlete struct {
		ID          flexString `json:"id"`
		DisplayName string     `json:"displayName"`
		FullName    string     `json:"fullName"`
		Age         flexFloat  `json:"age"`
		Jersey      flexString `json:"jersey"`
		Experience  struct {
			Years flexFloat `json:"years"`
		} `json:"experience"`
		Position struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
		Team struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"team"`
	} `json:"athlete"`
}

type statsResponse struct {
	Splits struct {
		Categories []struct {
			Name  string `json:"name"`
			Stats []struct {
				Name  string    `json:"name"`
				Value flexFloat `json:"value"`
			} `json:"stats"`
		} `json:"categories"`
	} `json:"splits"`
}

var athleteIDPattern = regexp.MustCompile(`athletes/(\d+)`)

// athleteID extracts the numeric athlete id from an ESPN $ref URL.
func athleteID(refURL string) (string, bool) {
	m := athleteIDPattern.FindStringSubmatch(refURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
