package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

type fakeIdentity struct {
	mu   sync.Mutex
	user model.UserProfile
	ok   bool
}

func (f *fakeIdentity) CurrentUser() (model.UserProfile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.ok
}

func loggedIn() *fakeIdentity {
	return &fakeIdentity{user: model.UserProfile{Id: 7, Username: "ana"}, ok: true}
}

type fakeGateway struct {
	mu           sync.Mutex
	detailCalls  int
	bookingCalls int
	bookingErr   error
	block        chan struct{}
	entered      chan struct{}

	bookings    []model.Booking
	bookingsErr error
	stats       model.UserStats
	statsErr    error
	deleted     []int
	deleteErr   error
	listCalls   int
}

func (f *fakeGateway) ScreeningDetails(ctx context.Context, id int) (model.Screening, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return model.Screening{Id: id, MovieId: 1, Room: "A", Movie: &model.Movie{Id: 1, Title: "Dune"}}, nil
}

func (f *fakeGateway) CreateBooking(ctx context.Context, payload service.BookingPayload) (model.Booking, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingCalls++
	if f.bookingErr != nil {
		return model.Booking{}, f.bookingErr
	}
	return model.Booking{Id: 99, ScreeningId: payload.ScreeningId, Seat: payload.Seat}, nil
}

func (f *fakeGateway) MyBookings(ctx context.Context) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]model.Booking(nil), f.bookings...), f.bookingsErr
}

func (f *fakeGateway) UserStats(ctx context.Context, userID int) (model.UserStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeGateway) DeleteBooking(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.bookings[:0]
	for _, booking := range f.bookings {
		if booking.Id != id {
			kept = append(kept, booking)
		}
	}
	f.bookings = kept
	f.stats.TotalBookings = len(kept)
	return nil
}

func TestBookingOpen_AnonymousMakesNoCall(t *testing.T) {
	gw := &fakeGateway{}
	booking := NewBooking(gw, &fakeIdentity{}, nil)

	_, err := booking.Open(context.Background(), 4)
	if !errors.Is(err, service.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if gw.detailCalls != 0 {
		t.Fatalf("expected no detail call, got %d", gw.detailCalls)
	}
}

func TestBookingConfirm_RejectionKeepsFlowOpen(t *testing.T) {
	gw := &fakeGateway{bookingErr: &service.APIError{StatusCode: 409, Message: "Seat A5 is already taken"}}
	flow, err := NewBooking(gw, loggedIn(), nil).Open(context.Background(), 4)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if flow.MovieTitle() != "Dune" {
		t.Fatalf("expected movie title from details, got %q", flow.MovieTitle())
	}

	err = flow.Confirm(context.Background(), "A5")
	if service.Message(err) != "Seat A5 is already taken" {
		t.Fatalf("expected server message verbatim, got %v", err)
	}
	if flow.Closed() || flow.Done() {
		t.Fatal("expected flow to stay open after rejection")
	}

	gw.bookingErr = nil
	if err := flow.Confirm(context.Background(), "A6"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !flow.Done() || !flow.Closed() || flow.Seat() != "A6" || flow.Result().Id != 99 {
		t.Fatalf("unexpected flow result: done=%v seat=%q", flow.Done(), flow.Seat())
	}
}

func TestBookingConfirm_PrefersServerMessageOverMessageList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/screenings/details/4":
			_, _ = w.Write([]byte(`{"id":4,"movieId":1,"room":"A","movie":{"id":1,"title":"Dune"}}`))
		case "/api/bookings":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"seat taken","messages":["C12 is reserved"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	flow, err := NewBooking(service.NewClient(server.URL), loggedIn(), nil).Open(context.Background(), 4)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	err = flow.Confirm(context.Background(), "C12")
	if got := service.Message(err); got != "seat taken" {
		t.Fatalf("expected %q, got %q", "seat taken", got)
	}
	if flow.Closed() {
		t.Fatal("expected flow to stay open after rejection")
	}
}

func TestBookingConfirm_BlankSeatSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	flow, _ := NewBooking(gw, loggedIn(), nil).Open(context.Background(), 4)

	if err := flow.Confirm(context.Background(), "   "); !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.bookingCalls != 0 {
		t.Fatalf("expected no booking call, got %d", gw.bookingCalls)
	}
}

func TestBookingConfirm_LateResultAfterClose(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	flow, _ := NewBooking(gw, loggedIn(), nil).Open(context.Background(), 4)

	done := make(chan error, 1)
	go func() { done <- flow.Confirm(context.Background(), "B2") }()
	<-gw.entered

	if err := flow.Confirm(context.Background(), "B3"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	flow.Close()
	close(gw.block)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if flow.Done() {
		t.Fatal("expected late result to be discarded")
	}
}

func TestBookingConfirm_LoggedOutMidFlow(t *testing.T) {
	gw := &fakeGateway{}
	identity := loggedIn()
	flow, _ := NewBooking(gw, identity, nil).Open(context.Background(), 4)

	identity.mu.Lock()
	identity.ok = false
	identity.mu.Unlock()
	if err := flow.Confirm(context.Background(), "A1"); !errors.Is(err, service.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if gw.bookingCalls != 0 {
		t.Fatalf("expected no booking call, got %d", gw.bookingCalls)
	}
}

func TestProfileLoad_AnonymousFailsBothHalves(t *testing.T) {
	gw := &fakeGateway{}
	view, err := NewProfile(gw, &fakeIdentity{}, nil).Load(context.Background())
	if !errors.Is(err, service.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if view.BookingsErr == nil || view.StatsErr == nil {
		t.Fatalf("expected both halves to fail, got %+v", view)
	}
	if gw.listCalls != 0 {
		t.Fatalf("expected no request, got %d", gw.listCalls)
	}
}

func TestProfileLoad_HalvesFailIndependently(t *testing.T) {
	gw := &fakeGateway{
		bookings: []model.Booking{{Id: 1, Seat: "A1"}},
		statsErr: &service.APIError{StatusCode: 500},
	}
	view, err := NewProfile(gw, loggedIn(), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(view.Bookings) != 1 || view.BookingsErr != nil {
		t.Fatalf("expected bookings to load, got %+v", view)
	}
	if view.StatsErr == nil {
		t.Fatal("expected stats error")
	}
}

func TestProfileDelete_ReloadsAfterSuccess(t *testing.T) {
	gw := &fakeGateway{
		bookings: []model.Booking{{Id: 1, Seat: "A1"}, {Id: 2, Seat: "A2"}},
		stats:    model.UserStats{TotalBookings: 2},
	}
	profile := NewProfile(gw, loggedIn(), nil)
	_, _ = profile.Load(context.Background())

	var asked model.Booking
	view, err := profile.DeleteBooking(context.Background(), 2, func(b model.Booking) bool {
		asked = b
		return true
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if asked.Seat != "A2" {
		t.Fatalf("expected confirmation for seat A2, got %+v", asked)
	}
	if len(view.Bookings) != 1 || view.Stats.TotalBookings != 1 {
		t.Fatalf("expected reloaded view, got %+v", view)
	}
	if gw.listCalls != 2 {
		t.Fatalf("expected bookings to be fetched again, got %d calls", gw.listCalls)
	}
}

func TestProfileDelete_DeclinedMakesNoCall(t *testing.T) {
	gw := &fakeGateway{bookings: []model.Booking{{Id: 1}}}
	profile := NewProfile(gw, loggedIn(), nil)

	_, err := profile.DeleteBooking(context.Background(), 1, func(model.Booking) bool { return false })
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(gw.deleted) != 0 {
		t.Fatalf("expected no delete, got %v", gw.deleted)
	}
}

func TestProfileDelete_FailureKeepsList(t *testing.T) {
	gw := &fakeGateway{
		bookings:  []model.Booking{{Id: 1}},
		deleteErr: &service.APIError{StatusCode: 404, Message: "Booking not found"},
	}
	profile := NewProfile(gw, loggedIn(), nil)
	_, _ = profile.Load(context.Background())

	_, err := profile.DeleteBooking(context.Background(), 1, func(model.Booking) bool { return true })
	if service.Message(err) != "Booking not found" {
		t.Fatalf("expected server message, got %v", err)
	}
	if gw.listCalls != 1 {
		t.Fatalf("expected no reload after failure, got %d calls", gw.listCalls)
	}
}

func TestProfileClosed_DropsResults(t *testing.T) {
	profile := NewProfile(&fakeGateway{}, loggedIn(), nil)
	profile.Close()

	if _, err := profile.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
