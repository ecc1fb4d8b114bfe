package radiobrowser

import "strings"

// Station is a directory entry.
type Station struct {
	UUID        string   `json:"stationuuid"`
	ChangeUUID  string   `json:"change_uuid"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countrycode,omitempty"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	Codec       string   `json:"codec"`
	Bitrate     int      `json:"bitrate"`
	Homepage    string   `json:"homepage"`
	Favicon     string   `json:"favicon"`

	// URL may point at a playlist or a redirect.
	URL string `json:"url"`
	// URLResolved is the directory's own resolution of URL, when known.
	URLResolved string `json:"url_resolved,omitempty"`

	LastCheckOK bool `json:"last_check_ok"`
}

// wireStation mirrors the directory JSON.
type wireStation struct {
	StationUUID string `json:"stationuuid"`
	ChangeUUID  string `json:"changeuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"`
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	Language    string `json:"language"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	LastCheckOK int    `json:"lastcheckok"`
}

func (w wireStation) station() Station {
	return Station{
		UUID:        w.StationUUID,
		ChangeUUID:  w.ChangeUUID,
		Name:        strings.TrimSpace(w.Name),
		Country:     w.Country,
		CountryCode: w.CountryCode,
		Language:    w.Language,
		Tags:        splitTags(w.Tags),
		Codec:       w.Codec,
		Bitrate:     w.Bitrate,
		Homepage:    w.Homepage,
		Favicon:     w.Favicon,
		URL:         w.URL,
		URLResolved: w.URLResolved,
		LastCheckOK: w.LastCheckOK == 1,
	}
}

// splitTags turns the directory's comma separated tag string into a list.
func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
