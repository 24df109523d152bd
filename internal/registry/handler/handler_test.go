package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "vanity/internal/jwt_token"
	"vanity/internal/platform/middleware"
	"vanity/internal/registry/service"
	ownershipstore "vanity/internal/registry/store/ownership"
	reservationstore "vanity/internal/registry/store/reservation"
	"vanity/internal/settlement"
	id "vanity/pkg/domain"
	"vanity/pkg/testutil"
)

const signingKey = "test-signing-key"

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	router http.Handler
	svc    *service.Service
	ledger *settlement.InMemoryLedger
	jwt    *jwttoken.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledger := settlement.NewInMemoryLedger()
	svc := service.New(
		service.Config{
			BasePrice:     100,
			Advance:       500,
			LockingPeriod: 72 * time.Hour,
			RenewPeriod:   24 * time.Hour,
		},
		reservationstore.NewInMemory(),
		ownershipstore.NewInMemory(),
		ledger,
	)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	jwtService := jwttoken.NewJWTService(signingKey, "vanity", "vanity-api")

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Group(h.RegisterPublic)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(jwttoken.NewMiddlewareAdapter(jwtService), logger))
		h.RegisterProtected(pr)
	})

	return &fixture{router: r, svc: svc, ledger: ledger, jwt: jwtService}
}

// authed builds an authenticated JSON request with a fixed operation clock.
func (f *fixture) authed(t *testing.T, method, path string, body any, account id.AccountID) *http.Request {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(account, time.Hour)
	require.NoError(t, err)

	req := testutil.NewJSONRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return testutil.WithTime(req, testEpoch)
}

func (f *fixture) ticketFor(name string, account id.AccountID) string {
	return f.svc.ReservationID(name, account).String()
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/v1/reservations", "/v1/purchases", "/v1/claims", "/v1/renewals"} {
		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{})
		rr := testutil.DoRequest(f.router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "path %s", path)
	}
}

func TestGetParams(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/v1/params"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[paramsResponse](t, rr)
	assert.Equal(t, "100", resp.BasePrice)
	assert.Equal(t, "500", resp.Advance)
	assert.Equal(t, "1100", resp.LockingAmount)
	assert.Equal(t, int64(72*3600), resp.LockingPeriod)
	assert.Equal(t, int64(24*3600), resp.RenewPeriod)
}

func TestGetFee(t *testing.T) {
	f := newFixture(t)

	t.Run("ascii tier", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/v1/fees?name=plain"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "fee", "400")
	})

	t.Run("vanity tier", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/v1/fees?name=pla%C3%AEn"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "fee", "600")
	})

	t.Run("missing name", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/v1/fees"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestGetTicket(t *testing.T) {
	f := newFixture(t)

	req := f.authed(t, http.MethodGet, "/v1/reservations/ticket?name=myname", nil, "alice")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "ticket", f.ticketFor("myname", "alice"))

	t.Run("salt changes the ticket", func(t *testing.T) {
		saltedReq := f.authed(t, http.MethodGet, "/v1/reservations/ticket?name=myname&salt=s1", nil, "alice")
		saltedRR := testutil.DoRequest(f.router, saltedReq)
		testutil.AssertStatus(t, saltedRR, http.StatusOK)

		salted := testutil.UnmarshalResponse[map[string]string](t, saltedRR)
		assert.NotEqual(t, f.ticketFor("myname", "alice"), (*salted)["ticket"])
	})
}

func TestReserveAndBuyFlow(t *testing.T) {
	f := newFixture(t)
	f.ledger.Credit(context.Background(), "alice", 2000)

	ticket := f.ticketFor("t123", "alice")

	rr := testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations",
		map[string]string{"ticket": ticket, "payment": "500"}, "alice"))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/purchases",
		map[string]string{"ticket": ticket, "name": "t123", "payment": "900"}, "alice"))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	lookup := testutil.DoRequest(f.router, testutil.WithTime(
		testutil.NewRequest(t, http.MethodGet, "/v1/names?name=t123"), testEpoch))
	testutil.AssertStatus(t, lookup, http.StatusOK)

	resp := testutil.UnmarshalResponse[nameResponse](t, lookup)
	assert.Equal(t, "alice", resp.Owner)
	assert.Equal(t, "purchased", resp.State)
	assert.False(t, resp.Lapsed)
}

func TestReserveErrors(t *testing.T) {
	f := newFixture(t)
	f.ledger.Credit(context.Background(), "alice", 2000)

	t.Run("wrong advance is a payment error", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations",
			map[string]string{"ticket": f.ticketFor("a", "alice"), "payment": "499"}, "alice"))
		testutil.AssertStatusAndError(t, rr, http.StatusPaymentRequired, "payment_mismatch")
	})

	t.Run("malformed ticket is invalid input", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations",
			map[string]string{"ticket": "0x1234", "payment": "500"}, "alice"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("duplicate ticket conflicts", func(t *testing.T) {
		body := map[string]string{"ticket": f.ticketFor("dup", "alice"), "payment": "500"}
		rr := testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations", body, "alice"))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations", body, "alice"))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("malformed JSON body", func(t *testing.T) {
		token, err := f.jwt.GenerateAccessToken("alice", time.Hour)
		require.NoError(t, err)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/reservations", nil)
		req.Body = http.NoBody
		req.Header.Set("Authorization", "Bearer "+token)

		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestClaimAndRenewEndpoints(t *testing.T) {
	f := newFixture(t)
	f.ledger.Credit(context.Background(), "alice", 2000)

	ticket := f.ticketFor("held", "alice")
	rr := testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/reservations",
		map[string]string{"ticket": ticket, "payment": "500"}, "alice"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	rr = testutil.DoRequest(f.router, f.authed(t, http.MethodPost, "/v1/purchases",
		map[string]string{"ticket": ticket, "name": "held", "payment": "900"}, "alice"))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	unlockAt := testEpoch.Add(72 * time.Hour)

	t.Run("early claim maps to 425", func(t *testing.T) {
		req := f.authed(t, http.MethodPost, "/v1/claims", map[string]string{"name": "held"}, "alice")
		rr := testutil.DoRequest(f.router, testutil.WithTime(req, unlockAt.Add(-time.Second)))
		testutil.AssertStatusAndError(t, rr, http.StatusTooEarly, "too_early")
	})

	t.Run("renewal inside the window succeeds", func(t *testing.T) {
		req := f.authed(t, http.MethodPost, "/v1/renewals", map[string]string{"name": "held"}, "alice")
		rr := testutil.DoRequest(f.router, testutil.WithTime(req, unlockAt.Add(-time.Hour)))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("renewal outside the window maps to 425", func(t *testing.T) {
		req := f.authed(t, http.MethodPost, "/v1/renewals", map[string]string{"name": "held"}, "alice")
		rr := testutil.DoRequest(f.router, testutil.WithTime(req, testEpoch))
		testutil.AssertStatusAndError(t, rr, http.StatusTooEarly, "outside_window")
	})

	t.Run("claim by a stranger maps to 403", func(t *testing.T) {
		// The renewal above pushed expiry to unlockAt-1h+72h.
		newUnlock := unlockAt.Add(-time.Hour).Add(72 * time.Hour)
		req := f.authed(t, http.MethodPost, "/v1/claims", map[string]string{"name": "held"}, "mallory")
		rr := testutil.DoRequest(f.router, testutil.WithTime(req, newUnlock))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("owner claims after the lock", func(t *testing.T) {
		newUnlock := unlockAt.Add(-time.Hour).Add(72 * time.Hour)
		req := f.authed(t, http.MethodPost, "/v1/claims", map[string]string{"name": "held"}, "alice")
		rr := testutil.DoRequest(f.router, testutil.WithTime(req, newUnlock))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("claim of an unregistered name maps to 404", func(t *testing.T) {
		req := f.authed(t, http.MethodPost, "/v1/claims", map[string]string{"name": "ghost"}, "alice")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestLookupUnknownName(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/v1/names?name=nobody"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
