package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"holdId":    {},
	"expiresAt": {},
	"date":      {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

func jsonBody(t testing.TB, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	t.Helper()

	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// remaining seconds depend on wall time
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "remainingSeconds"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}

		switch v := m[k].(type) {
		case map[string]any:
			cleanMap(v)
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					cleanMap(nested)
				}
			}
		}
	}
}

func decodeResponse[T any](t testing.TB, res *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read %s", path)

	_, err = db.Exec(context.Background(), string(content))
	require.NoError(t, err, "failed to execute %s", path)
}

func resetState(t testing.TB, testApp *TestApp) {
	t.Helper()

	executeSQLFile(t, testApp.DB, "testdata/reset.sql")
	require.NoError(t, testApp.Redis.FlushAll(context.Background()).Err())
}

// createHold selects seats as a new guest and returns the hold together with
// the guest's session cookies.
func createHold(t testing.TB, testApp *TestApp, seatIDs ...int) (api.Hold, []*http.Cookie) {
	t.Helper()

	req := prepareRequest(http.MethodPost, fmt.Sprintf("/showtimes/%d/holds", TestShowtimeID),
		jsonBody(t, api.CreateHoldRequest{SeatIdList: seatIDs}), nil, nil)

	res := mustServe(t, testApp, req)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	return decodeResponse[api.HoldResponse](t, res).Hold, res.Cookies()
}

// holderOf returns the holder id of a guest, which is the session token in
// their cookie.
func holderOf(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == "session_id" {
			return c.Value
		}
	}

	return ""
}

func webhookRequest(t testing.TB, testApp *TestApp, p payment.MockCallbackPayload) *http.Request {
	t.Helper()

	body, err := json.Marshal(p)
	require.NoError(t, err)

	return prepareRequest(http.MethodPost, "/webhook", bytes.NewReader(body),
		map[string]string{SignatureHeader: testApp.Provider.Sign(body)}, nil)
}

func paidCallback(eventID string, hold api.Hold, holderID string, amount decimal.Decimal) payment.MockCallbackPayload {
	return payment.MockCallbackPayload{
		EventID:  eventID,
		HoldID:   hold.HoldId,
		HolderID: holderID,
		Amount:   amount,
		Currency: "usd",
		Outcome:  "succeeded",
	}
}
