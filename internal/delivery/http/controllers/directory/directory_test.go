package directory

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/delivery/http/validation"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeDirectory struct {
	DirectoryService
	leaderFilter   models.LeaderFilter
	electionFilter models.ElectionFilter
}

func (f *fakeDirectory) Leaders(_ context.Context, filter models.LeaderFilter) ([]models.Leader, error) {
	f.leaderFilter = filter
	return nil, nil
}

func (f *fakeDirectory) Elections(_ context.Context, filter models.ElectionFilter) ([]models.Election, error) {
	f.electionFilter = filter
	return []models.Election{{Title: "Nairobi by-election"}}, nil
}

func (f *fakeDirectory) Search(_ context.Context, q string) (*models.SearchResult, error) {
	if q == "mombasa" {
		return &models.SearchResult{Type: models.SearchTypeCounty, Counties: []models.County{{Name: "Mombasa", Code: 1}}}, nil
	}
	return nil, app_errors.ErrNoSearchResults
}

func (f *fakeDirectory) CreateElection(_ context.Context, e models.Election) (*models.Election, error) {
	e.ID = uuid.New()
	return &e, nil
}

func newDirectoryRouter(svc DirectoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	h := NewDirectoryHandler(logger.NewNop(), svc)
	r := gin.New()
	r.GET("/directory/leaders", h.Leaders)
	r.GET("/directory/elections", h.Elections)
	r.GET("/directory/search", h.Search)
	r.POST("/directory/elections", h.CreateElection)
	return r
}

func TestDirectoryReads(t *testing.T) {
	svc := &fakeDirectory{}
	r := newDirectoryRouter(svc)
	countyID := uuid.New()

	tests := []struct {
		name   string
		path   string
		want   int
		substr string
	}{
		{"leaders empty list", "/directory/leaders?county_id=" + countyID.String(), http.StatusOK, `"leaders":[]`},
		{"leaders bad filter", "/directory/leaders?county_id=nairobi", http.StatusBadRequest, "county_id"},
		{"elections filtered", "/directory/elections?location_type=ward&position=mca", http.StatusOK, "Nairobi by-election"},
		{"elections unknown type", "/directory/elections?location_type=village", http.StatusBadRequest, "location_type"},
		{"search hit", "/directory/search?q=mombasa", http.StatusOK, `"type":"county"`},
		{"search miss", "/directory/search?q=atlantis", http.StatusNotFound, app_errors.ErrNoSearchResults.Error()},
		{"search blank", "/directory/search?q=%20%20", http.StatusBadRequest, "q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.substr)
		})
	}

	if assert.NotNil(t, svc.leaderFilter.CountyID) {
		assert.Equal(t, countyID, *svc.leaderFilter.CountyID)
	}
	assert.Nil(t, svc.leaderFilter.PositionID)
	assert.Equal(t, models.ElectionFilter{LocationType: "ward", Position: "mca"}, svc.electionFilter)
}

func TestCreateElectionValidation(t *testing.T) {
	r := newDirectoryRouter(&fakeDirectory{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/directory/elections", strings.NewReader(
		`{"title":"Kibra","location_name":"Kibra","location_type":"constituency","position":"king","election_date":"2027-08-10T00:00:00Z"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "position")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/directory/elections", strings.NewReader(
		`{"title":"Kibra","location_name":"Kibra","location_type":"constituency","position":"mp","election_date":"2027-08-10T00:00:00Z"}`)))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
