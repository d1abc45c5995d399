package integration_test

const (
	TestShowtimeID   = 1
	TestMovieTitle   = "Inception"
	TestTheaterName  = "Grand Cinema"
	TestHallName     = "Hall 1"
	TestStaffID      = "counter-3"
	TestContactEmail = "guest@example.com"

	TestWebhookSecret = "whsec_integration"
	SignatureHeader   = "Stripe-Signature"
)
