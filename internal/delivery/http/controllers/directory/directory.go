package directory

import (
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DirectoryService interface {
	Counties(ctx context.Context) ([]models.County, error)
	Constituencies(ctx context.Context, countyID uuid.UUID) ([]models.Constituency, error)
	Positions(ctx context.Context) ([]models.Position, error)
	Leaders(ctx context.Context, f models.LeaderFilter) ([]models.Leader, error)
	Elections(ctx context.Context, f models.ElectionFilter) ([]models.Election, error)
	Candidates(ctx context.Context, electionID uuid.UUID) ([]models.Candidate, error)
	Search(ctx context.Context, query string) (*models.SearchResult, error)

	CreateCounty(ctx context.Context, c models.County) (*models.County, error)
	CreateConstituency(ctx context.Context, c models.Constituency) (*models.Constituency, error)
	CreatePosition(ctx context.Context, p models.Position) (*models.Position, error)
	CreateLeader(ctx context.Context, l models.Leader) (*models.Leader, error)
	CreateElection(ctx context.Context, e models.Election) (*models.Election, error)
	CreateCandidate(ctx context.Context, c models.Candidate) (*models.Candidate, error)
}

type DirectoryHandler struct {
	log     logger.Log
	service DirectoryService
}

func NewDirectoryHandler(l logger.Log, s DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{log: l, service: s}
}

// render writes a list under key, never as JSON null.
func render[T any](c *gin.Context, h *DirectoryHandler, key string, items []T, err error) {
	if err != nil {
		response.Error(c, h.log, "error reading "+key, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{key: items})
}

func (h *DirectoryHandler) Counties(c *gin.Context) {
	counties, err := h.service.Counties(c.Request.Context())
	render(c, h, "counties", counties, err)
}

func (h *DirectoryHandler) Constituencies(c *gin.Context) {
	countyID, ok := response.PathUUID(c, "county_id")
	if !ok {
		return
	}
	constituencies, err := h.service.Constituencies(c.Request.Context(), countyID)
	render(c, h, "constituencies", constituencies, err)
}

func (h *DirectoryHandler) Positions(c *gin.Context) {
	positions, err := h.service.Positions(c.Request.Context())
	render(c, h, "positions", positions, err)
}

type leaderQuery struct {
	CountyID   string `form:"county_id" binding:"omitempty,uuid"`
	PositionID string `form:"position_id" binding:"omitempty,uuid"`
}

func (h *DirectoryHandler) Leaders(c *gin.Context) {
	var q leaderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	var filter models.LeaderFilter
	if q.CountyID != "" {
		id := uuid.MustParse(q.CountyID)
		filter.CountyID = &id
	}
	if q.PositionID != "" {
		id := uuid.MustParse(q.PositionID)
		filter.PositionID = &id
	}
	leaders, err := h.service.Leaders(c.Request.Context(), filter)
	render(c, h, "leaders", leaders, err)
}

type electionQuery struct {
	LocationType string `form:"location_type" binding:"location_type"`
	Position     string `form:"position" binding:"elective"`
}

func (h *DirectoryHandler) Elections(c *gin.Context) {
	var q electionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	elections, err := h.service.Elections(c.Request.Context(), models.ElectionFilter{
		LocationType: q.LocationType,
		Position:     q.Position,
	})
	render(c, h, "elections", elections, err)
}

func (h *DirectoryHandler) Candidates(c *gin.Context) {
	electionID, ok := response.PathUUID(c, "election_id")
	if !ok {
		return
	}
	candidates, err := h.service.Candidates(c.Request.Context(), electionID)
	render(c, h, "candidates", candidates, err)
}

type searchQuery struct {
	Query string `form:"q" binding:"required,notblank,max=100"`
}

func (h *DirectoryHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.service.Search(c.Request.Context(), strings.TrimSpace(q.Query))
	if err != nil {
		response.Error(c, h.log, "error searching directory", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type countyRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
	Code int    `json:"code" binding:"required,min=1,max=47"`
}

func (h *DirectoryHandler) CreateCounty(c *gin.Context) {
	var input countyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	county, err := h.service.CreateCounty(c.Request.Context(), models.County{Name: input.Name, Code: input.Code})
	h.created(c, "county", county, err)
}

type constituencyRequest struct {
	CountyID uuid.UUID `json:"county_id" binding:"required"`
	Name     string    `json:"name" binding:"required,notblank,max=100"`
}

func (h *DirectoryHandler) CreateConstituency(c *gin.Context) {
	var input constituencyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	constituency, err := h.service.CreateConstituency(c.Request.Context(), models.Constituency{
		CountyID: input.CountyID,
		Name:     input.Name,
	})
	h.created(c, "constituency", constituency, err)
}

type positionRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description"`
}

func (h *DirectoryHandler) CreatePosition(c *gin.Context) {
	var input positionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	position, err := h.service.CreatePosition(c.Request.Context(), models.Position{
		Name:        input.Name,
		Description: input.Description,
	})
	h.created(c, "position", position, err)
}

type leaderRequest struct {
	Name           string     `json:"name" binding:"required,notblank,max=150"`
	Party          string     `json:"party" binding:"max=150"`
	Bio            string     `json:"bio"`
	PositionID     uuid.UUID  `json:"position_id" binding:"required"`
	CountyID       *uuid.UUID `json:"county_id"`
	ConstituencyID *uuid.UUID `json:"constituency_id"`
}

func (h *DirectoryHandler) CreateLeader(c *gin.Context) {
	var input leaderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	leader, err := h.service.CreateLeader(c.Request.Context(), models.Leader{
		Name:           input.Name,
		Party:          input.Party,
		Bio:            input.Bio,
		PositionID:     input.PositionID,
		CountyID:       input.CountyID,
		ConstituencyID: input.ConstituencyID,
	})
	h.created(c, "leader", leader, err)
}

type electionRequest struct {
	Title        string    `json:"title" binding:"required,notblank,max=200"`
	LocationName string    `json:"location_name" binding:"required,notblank"`
	LocationType string    `json:"location_type" binding:"required,location_type"`
	Position     string    `json:"position" binding:"required,elective"`
	ElectionDate time.Time `json:"election_date" binding:"required"`
	Description  string    `json:"description"`
}

func (h *DirectoryHandler) CreateElection(c *gin.Context) {
	var input electionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	election, err := h.service.CreateElection(c.Request.Context(), models.Election{
		Title:        input.Title,
		LocationName: input.LocationName,
		LocationType: input.LocationType,
		Position:     input.Position,
		ElectionDate: input.ElectionDate,
		Description:  input.Description,
	})
	h.created(c, "election", election, err)
}

type candidateRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=150"`
	Party     string `json:"party" binding:"max=150"`
	Manifesto string `json:"manifesto"`
}

func (h *DirectoryHandler) CreateCandidate(c *gin.Context) {
	electionID, ok := response.PathUUID(c, "election_id")
	if !ok {
		return
	}
	var input candidateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	candidate, err := h.service.CreateCandidate(c.Request.Context(), models.Candidate{
		ElectionID: electionID,
		Name:       input.Name,
		Party:      input.Party,
		Manifesto:  input.Manifesto,
	})
	h.created(c, "candidate", candidate, err)
}

func (h *DirectoryHandler) created(c *gin.Context, kind string, v any, err error) {
	if err != nil {
		response.Error(c, h.log, "error creating "+kind, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}
