package app

import (
	"errors"
	"net/http"
	"testing"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type HealthcheckTestSuite struct {
	suite.Suite
	app  *Application
	deps *testDeps
}

func (s *HealthcheckTestSuite) SetupTest() {
	s.app, s.deps = newTestApplication()
}

func TestHealthcheckSuite(t *testing.T) {
	suite.Run(t, new(HealthcheckTestSuite))
}

func (s *HealthcheckTestSuite) TestGetHealth() {
	tests := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantStatus int
		wantBody   string
		wantDeps   map[string]string
	}{
		{
			name:       "should report up when every dependency answers",
			wantStatus: http.StatusOK,
			wantBody:   statusUp,
			wantDeps:   map[string]string{"database": statusUp, "redis": statusUp},
		},
		{
			name:       "should report degraded when database is down",
			dbErr:      errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   statusDegraded,
			wantDeps:   map[string]string{"database": statusDown, "redis": statusUp},
		},
		{
			name:       "should report degraded when redis is down",
			redisErr:   errors.New("i/o timeout"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   statusDegraded,
			wantDeps:   map[string]string{"database": statusUp, "redis": statusDown},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			s.deps.db.On("Ping", mock.Anything).Return(tt.dbErr)
			s.deps.redis.On("Ping", mock.Anything).Return(redis.NewStatusResult("PONG", tt.redisErr))

			w := executeRequest(s.T(), s.app, newJSONRequest(s.T(), http.MethodGet, "/healthcheck", nil))

			s.Equal(tt.wantStatus, w.Code)

			resp := decodeBody[api.HealthcheckResponse](s.T(), w)
			s.Equal(tt.wantBody, resp.Status)
			s.Equal(tt.wantDeps, resp.Dependencies)
			s.Equal("test", resp.SystemInfo.Environment)
		})
	}
}

func (s *HealthcheckTestSuite) TestGetOpenAPISpec() {
	w := executeRequest(s.T(), s.app, newJSONRequest(s.T(), http.MethodGet, "/openapi.json", nil))

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))
	s.JSONEq(`{"openapi":"3.0.3"}`, w.Body.String())
}
