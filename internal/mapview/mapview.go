package mapview

import "github.com/spotfinder/backend/internal/models"

const iconBaseURL = "https://unpkg.com/leaflet@1.7.1/dist/images/"

type Icon struct {
	IconURL       string `json:"iconUrl"`
	IconRetinaURL string `json:"iconRetinaUrl"`
	ShadowURL     string `json:"shadowUrl"`
	IconSize      [2]int `json:"iconSize"`
	IconAnchor    [2]int `json:"iconAnchor"`
	PopupAnchor   [2]int `json:"popupAnchor"`
	ShadowSize    [2]int `json:"shadowSize"`
	ClassName     string `json:"className,omitempty"`
}

type Icons struct {
	Selected Icon `json:"selected"`
	Existing Icon `json:"existing"`
}

// Config is everything a map renderer needs, handed over explicitly per request.
type Config struct {
	TileURL      string            `json:"tileUrl"`
	Attribution  string            `json:"attribution"`
	Center       models.Coordinate `json:"center"`
	Zoom         int               `json:"zoom"`
	RadiusMeters float64           `json:"nearbyRadiusMeters"`
	Icons        Icons             `json:"icons"`
}

func DefaultIcon() Icon {
	return Icon{
		IconURL:       iconBaseURL + "marker-icon.png",
		IconRetinaURL: iconBaseURL + "marker-icon-2x.png",
		ShadowURL:     iconBaseURL + "marker-shadow.png",
		IconSize:      [2]int{25, 41},
		IconAnchor:    [2]int{12, 41},
		PopupAnchor:   [2]int{1, -34},
		ShadowSize:    [2]int{41, 41},
	}
}

func ExistingIcon() Icon {
	icon := DefaultIcon()
	icon.ClassName = "existing-marker"
	return icon
}

func New(tileURL string, attribution string, center models.Coordinate, zoom int, radiusMeters float64) Config {
	return Config{
		TileURL:      tileURL,
		Attribution:  attribution,
		Center:       center,
		Zoom:         zoom,
		RadiusMeters: radiusMeters,
		Icons: Icons{
			Selected: DefaultIcon(),
			Existing: ExistingIcon(),
		},
	}
}
