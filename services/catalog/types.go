package catalog

import "time"

type Status string

const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
	StatusAdopted   Status = "Adopted"
)

type SourceType string

const (
	SourceShelter        SourceType = "Shelter"
	SourcePhysicalCenter SourceType = "Physical Center"
	SourceNetwork        SourceType = "Network"
)

const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderUnknown = "Unknown"
)

const (
	EnvironmentIndoorOnly    = "Indoor-Only"
	EnvironmentOutdoorAccess = "Outdoor Access"
	EnvironmentUnknown       = "Unknown"
)

const (
	HealthHealthy   = "Healthy"
	HealthNeedsCare = "Needs Care"
)

const (
	AgeKitten     = "Kitten"
	AgeYoungAdult = "Young Adult"
	AgeAdult      = "Adult"
	AgeSenior     = "Senior"
)

// CatRecord is the persisted entity; field names mirror the dataset
// document the front end reads.
type CatRecord struct {
	// `<source prefix>-<stable key>`, assigned once and never changed for
	// the same animal
	Id string `json:"id"`

	Name     string     `json:"name"`
	Age      string     `json:"age"`
	Breed    string     `json:"breed"`
	Coloring string     `json:"coloring"`
	Gender   string     `json:"gender"`
	Location string     `json:"location"`
	Source   SourceType `json:"sourceType"`
	SourceId string     `json:"sourceId"`

	Preferences []string `json:"preferences"`
	Description string   `json:"description"`

	Status Status `json:"status"`

	// local cache reference (may carry a cache-busting suffix) and the
	// remote url it was fetched from
	Image         string `json:"image"`
	OriginalImage string `json:"originalImage"`

	DateListed   time.Time  `json:"dateListed"`
	DateReserved *time.Time `json:"dateReserved"`
	DateAdopted  *time.Time `json:"dateAdopted,omitempty"`

	Link string `json:"link"`

	// derived every run from description/name/preferences
	Environment string `json:"environment,omitempty"`
	Health      string `json:"health,omitempty"`
	Color       string `json:"color,omitempty"`
	AgeCategory string `json:"ageCategory,omitempty"`
}
