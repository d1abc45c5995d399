package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SeatsTestSuite struct {
	suite.Suite
	app  *Application
	deps *testDeps
}

func (s *SeatsTestSuite) SetupTest() {
	s.app, s.deps = newTestApplication()
}

func TestSeatsSuite(t *testing.T) {
	suite.Run(t, new(SeatsTestSuite))
}

func (s *SeatsTestSuite) holdSeats(holderID string, seatIDs ...int) {
	hold := domain.NewHold(testShowtimeSeats(seatIDs...), holderID, testNow, 10*time.Minute)
	s.Require().NoError(s.deps.holds.Put(context.Background(), hold))
}

func (s *SeatsTestSuite) TestGetSeatMapByShowtime() {
	showtimeSeats := testShowtimeSeats(1, 2, 11)

	tests := []struct {
		name           string
		showtimeID     string
		setupMocks     func()
		wantStatus     int
		wantResponse   *api.SeatMapResponse
		wantErrMessage string
	}{
		{
			name:           "should fail when showtime ID is not a positive integer",
			showtimeID:     "abc",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "showtimeId must be a positive integer",
		},
		{
			name:       "should fail when showtime does not exist",
			showtimeID: "999",
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtime", mock.Anything, 999).Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:       "should fail when database error occurs while fetching seats",
			showtimeID: "1",
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtime", mock.Anything, 1).Return(nil, errors.New("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:       "should fail when booked seats cannot be read",
			showtimeID: "1",
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtime", mock.Anything, 1).Return(showtimeSeats, nil)
				s.deps.tickets.On("BookedSeatIDs", mock.Anything, 1).Return(nil, errors.New("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:       "should return seat map with booked and held seats marked",
			showtimeID: "1",
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtime", mock.Anything, 1).Return(showtimeSeats, nil)
				s.deps.tickets.On("BookedSeatIDs", mock.Anything, 1).Return([]int{2}, nil)
				s.holdSeats("someone-else", 11)
			},
			wantStatus: http.StatusOK,
			wantResponse: &api.SeatMapResponse{
				ShowtimeId:  1,
				TheaterId:   1,
				TheaterName: "Grand Cinema",
				MovieName:   "Inception",
				HallId:      1,
				HallName:    "Hall 1",
				Date:        showtimeSeats.Date,
				BasePrice:   decimal.NewFromInt(10),
				SeatRows: []api.SeatRow{
					{
						Row: 1,
						Seats: []api.Seat{
							{Id: 1, Row: 1, Column: 1, Type: "standard", ExtraPrice: decimal.Zero, State: api.Available},
							{Id: 2, Row: 1, Column: 2, Type: "standard", ExtraPrice: decimal.Zero, State: api.Booked},
						},
					},
					{
						Row: 2,
						Seats: []api.Seat{
							{Id: 11, Row: 2, Column: 1, Type: "standard", ExtraPrice: decimal.Zero, State: api.Held},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.deps.seats.AssertExpectations(s.T())
			defer s.deps.tickets.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			r := newJSONRequest(s.T(), http.MethodGet, fmt.Sprintf("/showtimes/%s/seats", tt.showtimeID), nil)
			w := executeRequest(s.T(), s.app, r)

			if tt.wantResponse == nil {
				checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
				return
			}

			s.Equal(tt.wantStatus, w.Code)

			response := decodeBody[api.SeatMapResponse](s.T(), w)

			diff := cmp.Diff(tt.wantResponse, &response)
			s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
		})
	}
}

func (s *SeatsTestSuite) TestGetSeatAvailability() {
	tests := []struct {
		name           string
		seatID         int
		setupMocks     func()
		wantStatus     int
		wantBookable   bool
		wantErrMessage string
	}{
		{
			name:   "should report a free seat as bookable",
			seatID: 1,
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, 1, []int{1}).
					Return(testShowtimeSeats(1), nil)
				s.deps.tickets.On("BookedSeatIDs", mock.Anything, 1).Return([]int{}, nil)
			},
			wantStatus:   http.StatusOK,
			wantBookable: true,
		},
		{
			name:   "should report a held seat as not bookable",
			seatID: 3,
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, 1, []int{3}).
					Return(testShowtimeSeats(3), nil)
				s.deps.tickets.On("BookedSeatIDs", mock.Anything, 1).Return([]int{}, nil)
				s.holdSeats("someone-else", 3)
			},
			wantStatus:   http.StatusOK,
			wantBookable: false,
		},
		{
			name:   "should report a booked seat as not bookable",
			seatID: 4,
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, 1, []int{4}).
					Return(testShowtimeSeats(4), nil)
				s.deps.tickets.On("BookedSeatIDs", mock.Anything, 1).Return([]int{4}, nil)
			},
			wantStatus:   http.StatusOK,
			wantBookable: false,
		},
		{
			name:   "should fail when seat is not part of the showtime",
			seatID: 500,
			setupMocks: func() {
				s.deps.seats.On("GetSeatsByShowtimeAndSeatIds", mock.Anything, 1, []int{500}).
					Return(testShowtimeSeats(), nil)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.deps.seats.AssertExpectations(s.T())
			defer s.deps.tickets.AssertExpectations(s.T())

			tt.setupMocks()

			r := newJSONRequest(s.T(), http.MethodGet, fmt.Sprintf("/showtimes/1/seats/%d", tt.seatID), nil)
			w := executeRequest(s.T(), s.app, r)

			if tt.wantStatus != http.StatusOK {
				checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
				return
			}

			s.Equal(http.StatusOK, w.Code)

			response := decodeBody[api.SeatAvailabilityResponse](s.T(), w)
			s.Equal(api.SeatAvailabilityResponse{ShowtimeId: 1, SeatId: tt.seatID, Bookable: tt.wantBookable}, response)
		})
	}
}
