// Package api holds the HTTP contract of the booking service. The *.gen.go
// files are produced from api.yaml by go generate.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type SeatConflictResponse struct {
	ErrorResponse
	SeatIds []int `json:"seatIds"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	ErrorResponse
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies"`
}

type SeatState string

const (
	Available SeatState = "available"
	Held      SeatState = "held"
	Booked    SeatState = "booked"
)

type Seat struct {
	Id         int             `json:"id"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Type       string          `json:"type"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
	State      SeatState       `json:"state"`
}

type SeatRow struct {
	Row   int    `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId  int             `json:"showtimeId"`
	TheaterId   int             `json:"theaterId"`
	TheaterName string          `json:"theaterName"`
	MovieName   string          `json:"movieName"`
	HallId      int             `json:"hallId"`
	HallName    string          `json:"hallName"`
	Date        time.Time       `json:"date"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	SeatRows    []SeatRow       `json:"seatRows"`
}

type SeatAvailabilityResponse struct {
	ShowtimeId int  `json:"showtimeId"`
	SeatId     int  `json:"seatId"`
	Bookable   bool `json:"bookable"`
}

type CreateHoldRequest struct {
	SeatIdList []int   `json:"seatIdList" validate:"required,min=1,unique,dive,gt=0"`
	Email      *string `json:"email" validate:"omitempty,email"`
}

type HoldSeat struct {
	Id         int             `json:"id"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Type       string          `json:"type"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
}

type Hold struct {
	HoldId           string          `json:"holdId"`
	ShowtimeId       int             `json:"showtimeId"`
	MovieName        string          `json:"movieName"`
	TheaterName      string          `json:"theaterName"`
	HallName         string          `json:"hallName"`
	Date             time.Time       `json:"date"`
	Seats            []HoldSeat      `json:"seats"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	RemainingSeconds int             `json:"remainingSeconds"`
}

type HoldResponse struct {
	Hold Hold `json:"hold"`
}

type CheckoutSessionResponse struct {
	RedirectUrl string `json:"redirectUrl"`
}

type CounterBookingRequest struct {
	ShowtimeId int             `json:"showtimeId" validate:"required,gt=0"`
	SeatIdList []int           `json:"seatIdList" validate:"required,min=1,unique,dive,gt=0"`
	StaffId    string          `json:"staffId" validate:"required,max=64"`
	CashAmount decimal.Decimal `json:"cashAmount" validate:"gt=0"`
}

type Ticket struct {
	TicketId      int             `json:"ticketId"`
	HoldId        string          `json:"holdId"`
	ShowtimeId    int             `json:"showtimeId"`
	SeatIds       []int           `json:"seatIds"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
}

type TicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

type WebhookResponse struct {
	Outcome  string  `json:"outcome"`
	HoldId   string  `json:"holdId,omitempty"`
	TicketId *int    `json:"ticketId,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type Reconciliation struct {
	Id          int             `json:"id"`
	HoldId      string          `json:"holdId"`
	HolderId    string          `json:"holderId,omitempty"`
	ShowtimeId  int             `json:"showtimeId,omitempty"`
	Reason      string          `json:"reason"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ProviderRef string          `json:"providerRef,omitempty"`
	Detail      string          `json:"detail,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ReconciliationListResponse struct {
	Reconciliations []Reconciliation `json:"reconciliations"`
	Metadata        *Metadata        `json:"metadata"`
}

// HoldId defines model for HoldId.
type HoldId = string

// ShowtimeId defines model for ShowtimeId.
type ShowtimeId = int

// TicketId defines model for TicketId.
type TicketId = int

// PaymentWebhookJSONBody defines parameters for PaymentWebhook.
type PaymentWebhookJSONBody = map[string]interface{}

// PaymentWebhookParams defines parameters for PaymentWebhook.
type PaymentWebhookParams struct {
	StripeSignature string `json:"Stripe-Signature"`
}

// ListReconciliationsParams defines parameters for ListReconciliations.
type ListReconciliationsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// CreateHoldJSONRequestBody defines body for CreateHold for application/json ContentType.
type CreateHoldJSONRequestBody = CreateHoldRequest

// BookAtCounterJSONRequestBody defines body for BookAtCounter for application/json ContentType.
type BookAtCounterJSONRequestBody = CounterBookingRequest
