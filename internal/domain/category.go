package domain

// Category is the AQI severity band.
type Category string

const (
	CategoryGood               Category = "good"
	CategoryModerate           Category = "moderate"
	CategoryUnhealthySensitive Category = "unhealthy_sensitive"
	CategoryUnhealthy          Category = "unhealthy"
	CategoryVeryUnhealthy      Category = "very_unhealthy"
	CategoryHazardous          Category = "hazardous"
)

type band struct {
	max      int
	category Category
	label    string
	color    string
}

// Upper bounds are inclusive; anything above the last bound is hazardous.
var bands = []band{
	{50, CategoryGood, "Bonne", "#4ade80"},
	{100, CategoryModerate, "Modérée", "#facc15"},
	{150, CategoryUnhealthySensitive, "Malsaine", "#fb923c"},
	{200, CategoryUnhealthy, "Très Malsaine", "#f87171"},
	{300, CategoryVeryUnhealthy, "Dangereuse", "#a855f7"},
}

var hazardous = band{-1, CategoryHazardous, "Extrêmement Dangereuse", "#be123c"}

// CategoryFor maps an AQI value to its band.
func CategoryFor(aqi int) Category {
	return bandFor(aqi).category
}

func bandFor(aqi int) band {
	for _, b := range bands {
		if aqi <= b.max {
			return b
		}
	}
	return hazardous
}

func (c Category) lookup() (band, bool) {
	if c == CategoryHazardous {
		return hazardous, true
	}
	for _, b := range bands {
		if b.category == c {
			return b, true
		}
	}
	return band{}, false
}

func (c Category) IsValid() bool {
	_, ok := c.lookup()
	return ok
}

// Label is the legend text printed on the bulletin.
func (c Category) Label() string {
	b, _ := c.lookup()
	return b.label
}

// Color is the hex swatch of the band.
func (c Category) Color() string {
	b, _ := c.lookup()
	return b.color
}

// AtLeast reports whether c is as severe as other or worse.
func (c Category) AtLeast(other Category) bool {
	return c.rank() >= other.rank()
}

func (c Category) rank() int {
	if c == CategoryHazardous {
		return len(bands)
	}
	for i, b := range bands {
		if b.category == c {
			return i
		}
	}
	return -1
}
