package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suryashakti/partner-crm/internal/catalog"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
	"gorm.io/gorm"
)

type fakeJourneyService struct {
	completeErr error
	lastReq     journeydomain.CompleteMilestoneRequest
}

func (f *fakeJourneyService) InitializeJourneyTx(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) error {
	return nil
}

func (f *fakeJourneyService) CompleteMilestone(ctx context.Context, req journeydomain.CompleteMilestoneRequest) (journeydomain.CompleteMilestoneResult, error) {
	f.lastReq = req
	if f.completeErr != nil {
		return journeydomain.CompleteMilestoneResult{}, f.completeErr
	}
	return journeydomain.CompleteMilestoneResult{
		Record: journeydomain.MilestoneView{
			MilestoneRecord: journeydomain.MilestoneRecord{
				MilestoneKey: req.MilestoneKey,
				Status:       journeydomain.StatusCompleted,
			},
		},
	}, nil
}

func (f *fakeJourneyService) GetJourney(ctx context.Context, customerID string) ([]journeydomain.MilestoneView, error) {
	return nil, journeydomain.ErrNotFound
}

func newTestRouter(journey *fakeJourneyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	s := &Server{
		engine:     r,
		catalog:    catalog.Default(),
		journeySvc: journey,
	}

	v1 := r.Group("/v1", ActorMiddleware())
	v1.GET("/customers/:id/journey", s.GetJourney)
	v1.POST("/customers/:id/journey/:key/complete", s.CompleteMilestone)
	return r
}

func postComplete(t *testing.T, r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/customers/123/journey/site_survey/complete", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompleteMilestone_PassesActorAndBody(t *testing.T) {
	journey := &fakeJourneyService{}
	r := newTestRouter(journey)

	w := postComplete(t, r, `{"notes":"rooftop ready","vendor_id":"42"}`, map[string]string{
		"X-Actor-Role": "admin",
		"X-Actor-Id":   "ops-7",
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "123", journey.lastReq.CustomerID)
	assert.Equal(t, "site_survey", journey.lastReq.MilestoneKey)
	assert.Equal(t, "rooftop ready", journey.lastReq.Notes)
	assert.Equal(t, "42", journey.lastReq.VendorID)
	assert.Equal(t, "admin", journey.lastReq.Actor.Role)
	assert.Equal(t, "ops-7", journey.lastReq.Actor.ID)
}

func TestCompleteMilestone_MissingActorDefaultsToUnknown(t *testing.T) {
	journey := &fakeJourneyService{}
	r := newTestRouter(journey)

	w := postComplete(t, r, ``, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown", journey.lastReq.Actor.Role)
}

func TestCompleteMilestone_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"already completed", journeydomain.ErrAlreadyCompleted, http.StatusConflict, "conflict"},
		{"out of order", journeydomain.ErrOutOfOrder, http.StatusUnprocessableEntity, "out_of_order"},
		{"unknown milestone", journeydomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid customer", journeydomain.ErrInvalidCustomer, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			journey := &fakeJourneyService{completeErr: tc.err}
			r := newTestRouter(journey)

			w := postComplete(t, r, ``, nil)
			assert.Equal(t, tc.status, w.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.typ, resp.Error.Type)
		})
	}
}

func TestCompleteMilestone_RejectsMalformedBody(t *testing.T) {
	journey := &fakeJourneyService{}
	r := newTestRouter(journey)

	w := postComplete(t, r, `{"notes": 7}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJourney_NotFound(t *testing.T) {
	journey := &fakeJourneyService{}
	r := newTestRouter(journey)

	req := httptest.NewRequest(http.MethodGet, "/v1/customers/123/journey", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
