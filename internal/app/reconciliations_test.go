package app

import (
	"errors"
	"net/http"
	"testing"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconciliationsTestSuite struct {
	suite.Suite
	app  *Application
	deps *testDeps
}

func (s *ReconciliationsTestSuite) SetupTest() {
	s.app, s.deps = newTestApplication()
}

func TestReconciliationsSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationsTestSuite))
}

func (s *ReconciliationsTestSuite) TestListReconciliationsHandler() {
	records := []domain.Reconciliation{
		{
			ID:       1,
			HoldID:   "hold-1",
			Reason:   domain.ReasonHoldExpired,
			Amount:   decimal.NewFromInt(20),
			Currency: "usd",
			Status:   domain.ReconciliationOpen,
		},
	}

	tests := []struct {
		name           string
		query          string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail when page is not a number",
			query:          "?page=first",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "page must be an integer value",
		},
		{
			name:           "should fail when page size is out of range",
			query:          "?pageSize=500",
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be less than or equal to 100",
		},
		{
			name:  "should fail when repository errors",
			query: "",
			setupMocks: func() {
				s.deps.reconciliations.On("ListOpen", mock.Anything, domain.Pagination{Page: 1, PageSize: 20}).
					Return(nil, nil, errors.New("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:  "should list open reconciliations",
			query: "?page=2&pageSize=1",
			setupMocks: func() {
				s.deps.reconciliations.On("ListOpen", mock.Anything, domain.Pagination{Page: 2, PageSize: 1}).
					Return(records, domain.NewMetadata(3, 2, 1), nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.deps.reconciliations.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			r := newJSONRequest(s.T(), http.MethodGet, "/reconciliations"+tt.query, nil)
			w := executeRequest(s.T(), s.app, r)

			if tt.wantStatus != http.StatusOK {
				checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
				return
			}

			s.Equal(http.StatusOK, w.Code)

			resp := decodeBody[api.ReconciliationListResponse](s.T(), w)
			s.Require().Len(resp.Reconciliations, 1)
			s.Equal("hold_expired", resp.Reconciliations[0].Reason)
			s.Equal("open", resp.Reconciliations[0].Status)
			s.Require().NotNil(resp.Metadata)
			s.Equal(api.Metadata{CurrentPage: 2, FirstPage: 1, LastPage: 3, PageSize: 1, TotalRecords: 3}, *resp.Metadata)
		})
	}
}

func (s *ReconciliationsTestSuite) TestResolveReconciliationHandler() {
	tests := []struct {
		name       string
		id         string
		setupMocks func()
		wantStatus int
	}{
		{
			name:       "should fail when id is invalid",
			id:         "zero",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "should fail when reconciliation does not exist",
			id:   "9",
			setupMocks: func() {
				s.deps.reconciliations.On("Resolve", mock.Anything, 9).Return(domain.ErrRecordNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "should resolve reconciliation",
			id:   "1",
			setupMocks: func() {
				s.deps.reconciliations.On("Resolve", mock.Anything, 1).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.deps.reconciliations.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			r := newJSONRequest(s.T(), http.MethodPost, "/reconciliations/"+tt.id+"/resolve", nil)
			w := executeRequest(s.T(), s.app, r)

			s.Equal(tt.wantStatus, w.Code)
		})
	}
}
