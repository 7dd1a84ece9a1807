package contracts

import "strings"

// Sector is the sector tag that selects a security's behavior variant
type Sector string

const (
	SectorGeneral         Sector = "General"
	SectorTechnology      Sector = "Technology"
	SectorBank            Sector = "Bank"
	SectorUtility         Sector = "Utility"
	SectorConsumerStaples Sector = "ConsumerStaples"
	SectorHealth          Sector = "Health"
	SectorIndustrial      Sector = "Industrial"
	SectorRealEstate      Sector = "RealEstate"
)

// AllSectors returns every known sector in declaration order
func AllSectors() []Sector {
	return []Sector{
		SectorGeneral,
		SectorTechnology,
		SectorBank,
		SectorUtility,
		SectorConsumerStaples,
		SectorHealth,
		SectorIndustrial,
		SectorRealEstate,
	}
}

// ParseSector matches a sector by its exact name, ignoring case
func ParseSector(s string) (Sector, bool) {
	s = strings.TrimSpace(s)
	for _, sector := range AllSectors() {
		if strings.EqualFold(string(sector), s) {
			return sector, true
		}
	}
	return SectorGeneral, false
}

// OrDefault maps the zero value to SectorGeneral
func (s Sector) OrDefault() Sector {
	if s == "" {
		return SectorGeneral
	}
	return s
}

func (s Sector) String() string {
	return string(s.OrDefault())
}
