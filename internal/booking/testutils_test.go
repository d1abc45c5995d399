package booking

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/holdstore"
	"github.com/metinatakli/cinema-booking-core/internal/lock"
	"github.com/shopspring/decimal"
)

const (
	testShowtimeID = 1
	testHallSize   = 20
)

var testNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// seatRepo serves one showtime whose hall has seats 1..testHallSize at 10.00,
// seat 20 being a VIP seat with a 5.00 surcharge.
type seatRepo struct{}

func (seatRepo) showtime() *domain.ShowtimeSeats {
	return &domain.ShowtimeSeats{
		ShowtimeID:  testShowtimeID,
		TheaterID:   1,
		TheaterName: "Downtown",
		MovieName:   "Arrival",
		HallID:      1,
		HallName:    "Hall 1",
		Date:        testNow.Add(24 * time.Hour),
		Price:       decimal.NewFromInt(10),
	}
}

func (r seatRepo) seat(id int) domain.Seat {
	seat := domain.Seat{ID: id, Row: (id-1)/10 + 1, Col: (id-1)%10 + 1, Type: "Standard", ExtraPrice: decimal.Zero}
	if id == testHallSize {
		seat.Type = "VIP"
		seat.ExtraPrice = decimal.NewFromInt(5)
	}
	return seat
}

func (r seatRepo) GetSeatsByShowtime(_ context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	if showtimeID != testShowtimeID {
		return nil, domain.ErrRecordNotFound
	}

	s := r.showtime()
	for id := 1; id <= testHallSize; id++ {
		s.Seats = append(s.Seats, r.seat(id))
	}

	return s, nil
}

func (r seatRepo) GetSeatsByShowtimeAndSeatIds(_ context.Context, showtimeID int, seatIDs []int) (*domain.ShowtimeSeats, error) {
	if showtimeID != testShowtimeID {
		return nil, domain.ErrRecordNotFound
	}

	s := r.showtime()
	for _, id := range seatIDs {
		if id >= 1 && id <= testHallSize {
			s.Seats = append(s.Seats, r.seat(id))
		}
	}

	return s, nil
}

type seatRef struct{ showtimeID, seatID int }

// ticketRepo mirrors the database constraints: one ticket per hold and one
// active ticket per seat.
type ticketRepo struct {
	mu      sync.Mutex
	nextID  int
	tickets map[int]*domain.Ticket
	byHold  map[string]int
	active  map[seatRef]int
	creates int
}

func newTicketRepo() *ticketRepo {
	return &ticketRepo{
		tickets: make(map[int]*domain.Ticket),
		byHold:  make(map[string]int),
		active:  make(map[seatRef]int),
	}
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byHold[ticket.HoldID]; ok {
		*ticket = *r.tickets[id]
		return nil
	}

	var conflicts []int
	for _, seatID := range ticket.SeatIDs {
		if _, ok := r.active[seatRef{ticket.ShowtimeID, seatID}]; ok {
			conflicts = append(conflicts, seatID)
		}
	}

	if len(conflicts) > 0 {
		return domain.NewSeatUnavailableError(conflicts)
	}

	r.nextID++
	r.creates++

	ticket.ID = r.nextID
	ticket.Status = domain.TicketActive
	ticket.CreatedAt = testNow
	ticket.Payment.HoldID = ticket.HoldID
	ticket.Payment.Status = domain.PaymentStatusPaid

	stored := *ticket
	stored.SeatIDs = slices.Clone(ticket.SeatIDs)

	r.tickets[ticket.ID] = &stored
	r.byHold[ticket.HoldID] = ticket.ID
	for _, seatID := range ticket.SeatIDs {
		r.active[seatRef{ticket.ShowtimeID, seatID}] = ticket.ID
	}

	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	c := *t
	return &c, nil
}

func (r *ticketRepo) GetByHoldID(ctx context.Context, holdID string) (*domain.Ticket, error) {
	r.mu.Lock()
	id, ok := r.byHold[holdID]
	r.mu.Unlock()

	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ticketRepo) BookedSeatIDs(_ context.Context, showtimeID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int
	for ref := range r.active {
		if ref.showtimeID == showtimeID {
			ids = append(ids, ref.seatID)
		}
	}

	slices.Sort(ids)
	return ids, nil
}

func (r *ticketRepo) Cancel(_ context.Context, id int) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	if t.Status == domain.TicketCancelled {
		return nil, domain.ErrTicketAlreadyCancelled
	}

	t.Status = domain.TicketCancelled
	cancelledAt := testNow
	t.CancelledAt = &cancelledAt

	for _, seatID := range t.SeatIDs {
		delete(r.active, seatRef{t.ShowtimeID, seatID})
	}

	c := *t
	return &c, nil
}

func (r *ticketRepo) activeTicketsWithSeat(showtimeID, seatID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, t := range r.tickets {
		if t.Status == domain.TicketActive && t.ShowtimeID == showtimeID && slices.Contains(t.SeatIDs, seatID) {
			count++
		}
	}

	return count
}

type reconciliationRepo struct {
	mu   sync.Mutex
	recs []domain.Reconciliation
}

func (r *reconciliationRepo) Create(_ context.Context, rec *domain.Reconciliation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.recs {
		if existing.HoldID == rec.HoldID && existing.Reason == rec.Reason {
			*rec = existing
			return nil
		}
	}

	rec.ID = len(r.recs) + 1
	rec.Status = domain.ReconciliationOpen
	r.recs = append(r.recs, *rec)

	return nil
}

func (r *reconciliationRepo) ListOpen(context.Context, domain.Pagination) ([]domain.Reconciliation, *domain.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.recs), domain.NewMetadata(len(r.recs), 1, 20), nil
}

func (r *reconciliationRepo) Resolve(context.Context, int) error {
	return nil
}

func (r *reconciliationRepo) all() []domain.Reconciliation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.recs)
}

type paymentRepo struct {
	mu      sync.Mutex
	pending []domain.Payment
	failed  []string
}

func (r *paymentRepo) CreatePending(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment.ID = len(r.pending) + 1
	r.pending = append(r.pending, *payment)
	return nil
}

func (r *paymentRepo) MarkFailed(_ context.Context, holdID string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed = append(r.failed, holdID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) count(eventType domain.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// interleavingLocker runs before once, just ahead of the first Acquire, to
// force another operation in between a read and the locks that follow it.
type interleavingLocker struct {
	domain.Locker
	before func()
}

func (l *interleavingLocker) Acquire(ctx context.Context, key string, expiry, wait time.Duration) (domain.Lock, error) {
	if before := l.before; before != nil {
		l.before = nil
		before()
	}

	return l.Locker.Acquire(ctx, key, expiry, wait)
}

type testEnv struct {
	orchestrator    *Orchestrator
	clock           *clock.Fake
	locker          *lock.MemoryLocker
	holds           *holdstore.MemoryStore
	tickets         *ticketRepo
	reconciliations *reconciliationRepo
	payments        *paymentRepo
	publisher       *recordingPublisher
}

func newTestEnv(opts ...Option) *testEnv {
	clk := clock.NewFake(testNow)

	env := &testEnv{
		clock:           clk,
		locker:          lock.NewMemoryLocker(clk),
		holds:           holdstore.NewMemoryStore(clk),
		tickets:         newTicketRepo(),
		reconciliations: &reconciliationRepo{},
		payments:        &paymentRepo{},
		publisher:       &recordingPublisher{},
	}

	env.orchestrator = New(Deps{
		Locker:          env.locker,
		Holds:           env.holds,
		Seats:           seatRepo{},
		Tickets:         env.tickets,
		Payments:        env.payments,
		Reconciliations: env.reconciliations,
		Publisher:       env.publisher,
		Clock:           clk,
	}, opts...)

	return env
}

func (e *testEnv) selectSeats(holderID string, seatIDs ...int) (*domain.Hold, error) {
	return e.orchestrator.SelectSeats(context.Background(), SelectSeatsInput{
		ShowtimeID: testShowtimeID,
		SeatIDs:    seatIDs,
		HolderID:   holderID,
	})
}

func paidInput(hold *domain.Hold) PromoteInput {
	return PromoteInput{
		HoldID:      hold.ID,
		HolderID:    hold.HolderID,
		Amount:      hold.TotalPrice,
		Currency:    "usd",
		Method:      domain.PaymentMethodCard,
		ProviderRef: "cs_" + hold.ID,
	}
}
