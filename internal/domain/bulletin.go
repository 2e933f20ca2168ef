package domain

import (
	"strings"
	"time"
)

const (
	DefaultZone      = "ZONE DE BAMAKO"
	DefaultPollutant = "PM2.5"

	// FallbackNotice replaces the bulletin when the summary is unusable.
	FallbackNotice = "Données invalides ou manquantes"

	printFilenamePrefix = "Bulletin Qualité de l'air du "
)

// Station is one monitoring station's readings for the day. Pollutant
// concentrations are optional; the AQI is always supplied upstream.
type Station struct {
	Name string   `json:"name"`
	NO2  *float64 `json:"no2,omitempty"`
	SO2  *float64 `json:"so2,omitempty"`
	CO   *float64 `json:"co,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	AQI  int      `json:"aqi"`
}

// DailySummary is the payload pushed by the upstream data provider.
type DailySummary struct {
	Date          string     `json:"date"`
	Zone          string     `json:"zone,omitempty"`
	CityMaxAQI    int        `json:"city_max_aqi"`
	MainPollutant string     `json:"main_pollutant,omitempty"`
	Stations      []Station  `json:"stations"`
	PublishedAt   time.Time  `json:"published_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Validate checks only what the bulletin needs in order to be rendered.
// Values themselves are owned by the upstream provider.
func (s *DailySummary) Validate() error {
	if s == nil || strings.TrimSpace(s.Date) == "" {
		return ErrInvalidBulletin
	}
	if s.CityMaxAQI < 0 {
		return ErrInvalidAQI
	}
	for _, st := range s.Stations {
		if strings.TrimSpace(st.Name) == "" {
			return ErrInvalidStation
		}
		if st.AQI < 0 {
			return ErrInvalidAQI
		}
	}
	return nil
}

// ZoneOrDefault returns the zone label shown on the bulletin.
func (s *DailySummary) ZoneOrDefault() string {
	if s.Zone == "" {
		return DefaultZone
	}
	return s.Zone
}

// StationRow is a station line of the bulletin table with its colour band.
type StationRow struct {
	Station
	Category Category `json:"category"`
	Color    string   `json:"color"`
}

// Bulletin is the view model handed to the printable-rendering surface.
type Bulletin struct {
	Date          string       `json:"date"`
	Zone          string       `json:"zone"`
	CityMaxAQI    int          `json:"city_max_aqi"`
	Category      Category     `json:"category"`
	Label         string       `json:"label"`
	Color         string       `json:"color"`
	MainPollutant string       `json:"main_pollutant"`
	Advice        HealthAdvice `json:"advice"`
	Stations      []StationRow `json:"stations"`
	PrintFilename string       `json:"print_filename"`
	PublishedAt   time.Time    `json:"published_at"`
}

// BulletinView is either a bulletin or the fallback notice, never both.
type BulletinView struct {
	Bulletin *Bulletin `json:"bulletin,omitempty"`
	Notice   string    `json:"notice,omitempty"`
}

// BuildBulletin derives the view model from a validated summary.
func BuildBulletin(s *DailySummary, advisor Advisor) (*Bulletin, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if advisor == nil {
		advisor = StaticAdvisor{}
	}

	cat := CategoryFor(s.CityMaxAQI)
	pollutant := s.MainPollutant
	if pollutant == "" {
		pollutant = DefaultPollutant
	}

	rows := make([]StationRow, len(s.Stations))
	for i, st := range s.Stations {
		c := CategoryFor(st.AQI)
		rows[i] = StationRow{Station: st, Category: c, Color: c.Color()}
	}

	return &Bulletin{
		Date:          s.Date,
		Zone:          s.ZoneOrDefault(),
		CityMaxAQI:    s.CityMaxAQI,
		Category:      cat,
		Label:         cat.Label(),
		Color:         cat.Color(),
		MainPollutant: pollutant,
		Advice:        advisor.Advice(s.CityMaxAQI).withFallbacks(),
		Stations:      rows,
		PrintFilename: PrintFilename(s.Date),
		PublishedAt:   s.PublishedAt,
	}, nil
}

// View returns the bulletin for s, or the fallback notice when s cannot be
// rendered.
func View(s *DailySummary, advisor Advisor) BulletinView {
	b, err := BuildBulletin(s, advisor)
	if err != nil {
		return BulletinView{Notice: FallbackNotice}
	}
	return BulletinView{Bulletin: b}
}

var filenameReplacer = strings.NewReplacer(
	"/", "-", `\`, "-", ":", "-", "*", "-", "?", "-",
	`"`, "-", "<", "-", ">", "-", "|", "-",
)

// PrintFilename is the document title used when the bulletin is printed.
func PrintFilename(date string) string {
	return printFilenamePrefix + filenameReplacer.Replace(date)
}

// BulletinFilter holds query parameters for paginated bulletin listing.
type BulletinFilter struct {
	Zone  *string
	Page  int
	Limit int
}
