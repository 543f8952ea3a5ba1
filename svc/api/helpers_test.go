package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/ledger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/subscription"
	"github.com/moodmoney/quota/pkg/usage"
	"github.com/moodmoney/quota/svc/api"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

var march = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// pngImage is enough for content sniffing to report image/png.
var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type fakeChat struct {
	calls atomic.Int32
	err   error
}

func (f *fakeChat) Chat(_ context.Context, req openai.ChatRequest) (*openai.ChatResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatResponse{
		Content:      "You spent most on dining. Last message: " + req.Messages[len(req.Messages)-1].Content,
		Model:        "gpt-4o-mini",
		FinishReason: "stop",
	}, nil
}

type fakeReceipts struct {
	receipt *openai.Receipt
	err     error
}

func (f *fakeReceipts) ParseReceipt(context.Context, string, []byte) (*openai.Receipt, error) {
	return f.receipt, f.err
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) CheckoutURL(ctx context.Context, userID uuid.UUID, email string, tier plans.Tier) (string, error) {
	args := m.Called(ctx, userID, email, tier)
	return args.String(0), args.Error(1)
}

func (m *MockCheckout) PortalURL(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// brokenUsage fails every call, as an unreachable counter store would.
type brokenUsage struct{}

var errStoreDown = errors.New("connection refused")

func (brokenUsage) Count(context.Context, uuid.UUID, plans.Feature, usage.Month) (int64, error) {
	return 0, errStoreDown
}

func (brokenUsage) Increment(context.Context, uuid.UUID, plans.Feature, usage.Month) (int64, error) {
	return 0, errStoreDown
}

func (brokenUsage) IncrementBelow(context.Context, uuid.UUID, plans.Feature, usage.Month, int64) (int64, bool, error) {
	return 0, false, errStoreDown
}

type env struct {
	handler  http.Handler
	subs     subscription.Store
	counters usage.Store
	ledger   ledger.Store
	files    *file.MemoryStorage
	chat     *fakeChat
	receipts *fakeReceipts
}

type envOption func(*api.Deps, *env)

func withCounters(s usage.Store) envOption {
	return func(_ *api.Deps, e *env) { e.counters = s }
}

func withCheckout(c api.Checkout) envOption {
	return func(d *api.Deps, _ *env) { d.Checkout = c }
}

func withoutIntegrations() envOption {
	return func(d *api.Deps, _ *env) {
		d.Chat = nil
		d.Receipts = nil
		d.Files = nil
		d.Checkout = nil
	}
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	e := &env{
		subs:     subscription.NewMemoryStore(),
		counters: usage.NewMemoryStore(),
		ledger:   ledger.NewMemoryStore(),
		files:    file.NewMemoryStorage(),
		chat:     &fakeChat{},
		receipts: &fakeReceipts{receipt: &openai.Receipt{Merchant: "Corner Shop", Total: 12.5, Currency: "EUR", Category: "groceries"}},
	}

	deps := api.Deps{
		Ledger:   e.ledger,
		Files:    e.files,
		Chat:     e.chat,
		Receipts: e.receipts,
	}
	for _, opt := range opts {
		opt(&deps, e)
	}

	engine := entitlement.NewEngine(e.subs, e.counters, entitlement.WithClock(func() time.Time { return march }))
	recorder := entitlement.NewRecorder(engine)
	verifier, err := auth.NewVerifier(auth.Config{JWTSecret: testSecret, Audience: "authenticated"})
	require.NoError(t, err)

	deps.Engine = engine
	deps.Recorder = recorder
	deps.Gate = entitlement.NewGate(engine, recorder, entitlement.WithActionTimeout(2*time.Second))
	deps.Verifier = verifier

	e.handler = api.NewRouter(deps)
	return e
}

func (e *env) subscribe(t *testing.T, userID uuid.UUID, tier plans.Tier) {
	t.Helper()
	_, err := e.subs.Upsert(context.Background(), userID, func(s *subscription.Subscription) error {
		s.Tier = tier
		s.Status = subscription.StatusActive
		return nil
	})
	require.NoError(t, err)
}

func (e *env) used(t *testing.T, userID uuid.UUID, feature plans.Feature) int64 {
	t.Helper()
	n, err := e.counters.Count(context.Background(), userID, feature, usage.MonthOf(march))
	require.NoError(t, err)
	return n
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"aud":   "authenticated",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *env) do(t *testing.T, userID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) upload(t *testing.T, userID uuid.UUID, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, userID))

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	out := decode(t, rec)
	require.NotNil(t, out.Error, rec.Body.String())
	return out.Error.Code
}
