package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LocationWard         = "ward"
	LocationConstituency = "constituency"
	LocationCounty       = "county"

	ElectivePresident = "president"
	ElectiveGovernor  = "governor"
	ElectiveSenator   = "senator"
	ElectiveMP        = "mp"
	ElectiveWomenRep  = "women_rep"
	ElectiveMCA       = "mca"

	SearchTypeCounty       = "county"
	SearchTypeConstituency = "constituency"
	SearchTypeLeader       = "leader"
)

type County struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Code           int            `json:"code"`
	Constituencies []Constituency `json:"constituencies,omitempty"`
}

type Constituency struct {
	ID       uuid.UUID `json:"id"`
	CountyID uuid.UUID `json:"county_id"`
	Name     string    `json:"name"`
}

type Position struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type Leader struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Party          string     `json:"party"`
	Bio            string     `json:"bio"`
	PositionID     uuid.UUID  `json:"position_id"`
	PositionName   string     `json:"position_name,omitempty"`
	CountyID       *uuid.UUID `json:"county_id"`
	ConstituencyID *uuid.UUID `json:"constituency_id"`
}

type LeaderFilter struct {
	CountyID   *uuid.UUID
	PositionID *uuid.UUID
}

type Election struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	LocationName string    `json:"location_name"`
	LocationType string    `json:"location_type"`
	Position     string    `json:"position"`
	ElectionDate time.Time `json:"election_date"`
	Description  string    `json:"description"`
}

type ElectionFilter struct {
	LocationType string
	Position     string
}

type Candidate struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party"`
	Manifesto  string    `json:"manifesto"`
}

// SearchResult carries whichever kind of record matched first.
type SearchResult struct {
	Type           string         `json:"type"`
	Counties       []County       `json:"counties,omitempty"`
	Constituencies []Constituency `json:"constituencies,omitempty"`
	Leaders        []Leader       `json:"leaders,omitempty"`
}
