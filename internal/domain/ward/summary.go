package ward

// WardTypeCount is the bed breakdown for one ward type.
type WardTypeCount struct {
	WardType string `json:"ward_type"`
	Total    int    `json:"total"`
	Occupied int    `json:"occupied"`
	Vacant   int    `json:"vacant"`
}

// OccupancySummary is the hospital-wide bed census.
type OccupancySummary struct {
	TotalBeds   int             `json:"total_beds"`
	Occupied    int             `json:"occupied"`
	Vacant      int             `json:"vacant"`
	Reserved    int             `json:"reserved"`
	Maintenance int             `json:"maintenance"`
	Cleaning    int             `json:"cleaning"`
	ByWardType  []WardTypeCount `json:"by_ward_type"`
}

// OccupancyRate is occupied over total, in percent. Zero beds gives zero.
func (s *OccupancySummary) OccupancyRate() float64 {
	if s.TotalBeds == 0 {
		return 0
	}
	return float64(s.Occupied) / float64(s.TotalBeds) * 100
}
