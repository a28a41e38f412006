package models

// SlotPlan is one activity slot within a day.
type SlotPlan struct {
	Activity  string   `json:"activity"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// DayPlan is one itinerary day. Slot order is fixed: morning, afternoon,
// evening.
type DayPlan struct {
	Date      string   `json:"date"` // YYYY-MM-DD, ascending across days
	Morning   SlotPlan `json:"morning"`
	Afternoon SlotPlan `json:"afternoon"`
	Evening   SlotPlan `json:"evening"`
}

// Itinerary is the composite result of one orchestration run. It is created
// once per run and never mutated in place; chat edits produce a new value
// merged over the previous one.
type Itinerary struct {
	Destination    string                `json:"destination"`
	NumDays        int                   `json:"num_days"`
	Budget         float64               `json:"budget"`
	Mode           Mode                  `json:"mode"`
	Days           []DayPlan             `json:"days"`
	Flights        []Flight              `json:"flights"`
	Hotels         []Hotel               `json:"hotels"`
	Weather        map[string]WeatherDay `json:"weather"` // date -> forecast
	TotalCost      float64               `json:"total_cost"`
	TotalEmissions float64               `json:"total_emissions"` // kg CO2
	EcoScore       float64               `json:"eco_score"`       // 0-100
	Rationale      string                `json:"rationale,omitempty"`
	DataSources    map[Category]Outcome  `json:"data_sources,omitempty"`
}

// Clone returns a deep copy so patch merges never alias the original.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	out := *it

	out.Days = make([]DayPlan, len(it.Days))
	copy(out.Days, it.Days)

	out.Flights = make([]Flight, len(it.Flights))
	copy(out.Flights, it.Flights)

	out.Hotels = make([]Hotel, len(it.Hotels))
	copy(out.Hotels, it.Hotels)

	if it.Weather != nil {
		out.Weather = make(map[string]WeatherDay, len(it.Weather))
		for k, v := range it.Weather {
			out.Weather[k] = v
		}
	}

	if it.DataSources != nil {
		out.DataSources = make(map[Category]Outcome, len(it.DataSources))
		for k, v := range it.DataSources {
			out.DataSources[k] = v
		}
	}

	return &out
}

// DayPatch replaces the slots of a single day, addressed by 1-based day
// number.
type DayPatch struct {
	Day       int       `json:"day"`
	Morning   *SlotPlan `json:"morning,omitempty"`
	Afternoon *SlotPlan `json:"afternoon,omitempty"`
	Evening   *SlotPlan `json:"evening,omitempty"`
}

// ItineraryPatch is a partial itinerary update proposed by the chat component.
// Only the named days are touched; everything else carries over unchanged.
type ItineraryPatch struct {
	Days      []DayPatch `json:"days,omitempty"`
	Rationale string     `json:"rationale,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p *ItineraryPatch) IsEmpty() bool {
	return p == nil || (len(p.Days) == 0 && p.Rationale == "")
}
