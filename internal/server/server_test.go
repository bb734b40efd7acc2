package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/authorization"
	"github.com/smallbiznis/salesdesk/internal/config"
	invoicedomain "github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/internal/observability"
	productdomain "github.com/smallbiznis/salesdesk/internal/product/domain"
	"github.com/smallbiznis/salesdesk/internal/providers/pdf"
	"github.com/smallbiznis/salesdesk/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	users      map[string]*authdomain.User
	registered []authdomain.RegisterRequest
	registerFn func(authdomain.RegisterRequest) (*authdomain.User, error)
}

func (f *fakeAuth) Register(_ context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	f.registered = append(f.registered, req)
	if f.registerFn != nil {
		return f.registerFn(req)
	}
	return &authdomain.User{ID: 900, Name: req.Name, Login: req.Login, Role: req.Role}, nil
}

func (f *fakeAuth) Login(_ context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	for token, user := range f.users {
		if user.Login == req.Login && req.Password == "secret" {
			return &authdomain.LoginResult{AccessToken: token, TokenType: "Bearer", User: user.View()}, nil
		}
	}
	return nil, authdomain.ErrInvalidCredentials
}

func (f *fakeAuth) Authenticate(_ context.Context, rawToken string) (*authdomain.User, error) {
	user, ok := f.users[rawToken]
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}
	return user, nil
}

func (f *fakeAuth) EnsureUser(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	return f.Register(ctx, req)
}

// fakeAuthz lets auditors view and cashiers create or view.
type fakeAuthz struct{}

func (fakeAuthz) Authorize(_ context.Context, _ string, role, object, action string) error {
	switch role {
	case authdomain.RoleAdmin, authdomain.RoleCashier:
		return nil
	case authdomain.RoleAuditor:
		if action == authorization.ActionView {
			return nil
		}
	}
	return authorization.ErrForbidden
}

type fakeInvoices struct {
	generateFn func(invoicedomain.Owner, invoicedomain.GenerateRequest) (*invoicedomain.Response, error)
	listReq    invoicedomain.ListRequest
	listOwner  invoicedomain.Owner
	getOwner   invoicedomain.Owner
	receiptOpt invoicedomain.ReceiptOptions
	stored     map[string]invoicedomain.Response
}

func (f *fakeInvoices) Generate(_ context.Context, owner invoicedomain.Owner, req invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
	return f.generateFn(owner, req)
}

func (f *fakeInvoices) List(_ context.Context, owner invoicedomain.Owner, req invoicedomain.ListRequest) (*invoicedomain.ListResponse, error) {
	f.listOwner = owner
	f.listReq = req
	if req.Page < 0 {
		return nil, invoicedomain.ErrInvalidPage
	}
	return &invoicedomain.ListResponse{Invoices: []invoicedomain.Response{}}, nil
}

func (f *fakeInvoices) Get(ctx context.Context, owner invoicedomain.Owner, id string) (*invoicedomain.Response, error) {
	f.getOwner = owner
	return f.Find(ctx, id)
}

func (f *fakeInvoices) Find(_ context.Context, id string) (*invoicedomain.Response, error) {
	inv, ok := f.stored[id]
	if !ok {
		return nil, &invoicedomain.NotFoundError{ID: id}
	}
	return &inv, nil
}

func (f *fakeInvoices) Receipt(ctx context.Context, id string, opts invoicedomain.ReceiptOptions) (string, error) {
	f.receiptOpt = opts
	if opts.Width != 0 && (opts.Width < 20 || opts.Width > 80) {
		return "", invoicedomain.ErrInvalidWidth
	}
	if _, err := f.Find(ctx, id); err != nil {
		return "", err
	}
	return "RECEIPT " + id, nil
}

type fakeProducts struct{}

func (fakeProducts) FindOrCreate(context.Context, *gorm.DB, productdomain.ProductInput) (snowflake.ID, error) {
	return 0, errors.New("not used")
}

func (fakeProducts) List(_ context.Context, req productdomain.ListRequest) ([]productdomain.Response, error) {
	return []productdomain.Response{{ID: "7", Name: "Coffee" + req.Name, Price: decimal.RequireFromString("3.50")}}, nil
}

func (fakeProducts) Get(_ context.Context, id string) (*productdomain.Response, error) {
	if id != "7" {
		return nil, productdomain.ErrNotFound
	}
	return &productdomain.Response{ID: "7", Name: "Coffee", Price: decimal.RequireFromString("3.50")}, nil
}

type fakePDF struct {
	received pdf.ReceiptData
}

func (f *fakePDF) GenerateReceipt(_ context.Context, data pdf.ReceiptData) (io.Reader, error) {
	f.received = data
	return bytes.NewReader([]byte("%PDF-1.4 fake")), nil
}

type fakeLimiter struct {
	result *ratelimit.Result
	err    error
	calls  int
}

func (f *fakeLimiter) Enabled() bool { return true }

func (f *fakeLimiter) AllowUser(context.Context, string) (*ratelimit.Result, error) {
	f.calls++
	return f.result, f.err
}

type fixture struct {
	server   *Server
	auth     *fakeAuth
	invoices *fakeInvoices
	pdf      *fakePDF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	auth := &fakeAuth{users: map[string]*authdomain.User{
		"cashier-token": {ID: 101, Name: "Alice", Login: "alice", Role: authdomain.RoleCashier},
		"auditor-token": {ID: 102, Name: "Bob", Login: "bob", Role: authdomain.RoleAuditor},
	}}
	invoices := &fakeInvoices{stored: map[string]invoicedomain.Response{
		"42": {
			ID:        "42",
			Total:     decimal.RequireFromString("7.00"),
			Rest:      decimal.RequireFromString("3.00"),
			CreatedAt: time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC),
			Payment:   invoicedomain.PaymentResponse{ID: "43", Type: "cash", Amount: decimal.RequireFromString("10.00")},
			CreatedBy: invoicedomain.OwnerResponse{ID: "101", Name: "Alice", Login: "alice"},
		},
	}}
	pdfProvider := &fakePDF{}

	engine := NewEngine(observability.Config{}, nil, config.Config{})
	srv := NewServer(ServerParams{
		Gin:        engine,
		Authsvc:    auth,
		AuthzSvc:   fakeAuthz{},
		InvoiceSvc: invoices,
		ProductSvc: fakeProducts{},
		PDF:        pdfProvider,
		Receipt:    config.NewStaticReceiptConfigHolder(config.DefaultReceiptConfig()),
	})

	return &fixture{server: srv, auth: auth, invoices: invoices, pdf: pdfProvider}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			reader = strings.NewReader(v)
		default:
			raw, _ := json.Marshal(v)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterForcesCashierRole(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Carol", "login": "carol", "password": "hunter22", "role": "admin",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.auth.registered, 1)
	assert.Equal(t, authdomain.RoleCashier, f.auth.registered[0].Role)

	var view authdomain.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "carol", view.Login)
}

func TestRegisterTakenLoginIsConflict(t *testing.T) {
	f := newFixture(t)
	f.auth.registerFn = func(authdomain.RegisterRequest) (*authdomain.User, error) {
		return nil, authdomain.ErrUserExists
	}
	rec := f.do(http.MethodPost, "/auth/register", "", map[string]any{"name": "A", "login": "alice", "password": "hunter22"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Type)
}

func TestRegisterValidationError(t *testing.T) {
	f := newFixture(t)
	f.auth.registerFn = func(authdomain.RegisterRequest) (*authdomain.User, error) {
		return nil, authdomain.ErrInvalidLogin
	}
	rec := f.do(http.MethodPost, "/auth/register", "", map[string]any{"name": "A"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, ValidationError{Field: "login", Code: "invalid_login", Message: "invalid value"}, payload.Errors[0])
}

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/auth/login", "", map[string]string{"login": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result authdomain.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "cashier-token", result.AccessToken)

	rec = f.do(http.MethodPost, "/auth/login", "", map[string]string{"login": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/auth/me", "cashier-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login":"alice"`)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/invoices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = f.do(http.MethodGet, "/api/invoices", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer "))
	assert.Equal(t, "", bearerToken(""))
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	var gotOwner invoicedomain.Owner
	var gotReq invoicedomain.GenerateRequest
	f.invoices.generateFn = func(owner invoicedomain.Owner, req invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
		gotOwner, gotReq = owner, req
		return &invoicedomain.Response{ID: "55", Total: decimal.RequireFromString("7.00")}, nil
	}

	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token",
		`{"products":[{"name":"Tea","price":3.5,"quantity":2}],"payment":{"type":"cash","amount":10}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, snowflake.ID(101), gotOwner.ID)
	assert.Equal(t, "alice", gotOwner.Login)
	require.Len(t, gotReq.Products, 1)
	assert.True(t, gotReq.Products[0].Price.Equal(decimal.RequireFromString("3.5")))
	require.NotNil(t, gotReq.Products[0].Quantity)
	assert.Equal(t, int64(2), *gotReq.Products[0].Quantity)
	require.NotNil(t, gotReq.Payment)
	assert.Contains(t, rec.Body.String(), `"id":"55"`)
}

func TestCreateInvoiceForbiddenForAuditor(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/invoices", "auditor-token", `{"products":[]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Type)
}

func TestCreateInvoiceMalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token", `{"products":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_request", payload.Errors[0].Code)
}

func TestCreateInvoiceInsufficientPayment(t *testing.T) {
	f := newFixture(t)
	f.invoices.generateFn = func(invoicedomain.Owner, invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
		return nil, &invoicedomain.InsufficientPaymentError{
			Amount: decimal.RequireFromString("5"),
			Total:  decimal.RequireFromString("7"),
		}
	}

	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token", `{"products":[{"name":"Tea","price":7}],"payment":{"type":"cash","amount":5}}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "unprocessable_entity", payload.Type)
	assert.Equal(t, "Invalid invoice data. Payment amount (5.00) can't be less than total (7.00)", payload.Message)
}

func TestCreateInvoiceStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.invoices.generateFn = func(invoicedomain.Owner, invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
		return nil, errors.New("connection reset")
	}

	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token", `{"products":[{"name":"Tea","price":7}],"payment":{"type":"cash","amount":7}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "internal_error", payload.Type)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestCreateInvoiceRateLimited(t *testing.T) {
	f := newFixture(t)
	limiter := &fakeLimiter{result: &ratelimit.Result{Allowed: false, Limit: 10, RetryAfter: 1500 * time.Millisecond}}
	f.server.limiter = limiter
	f.invoices.generateFn = func(invoicedomain.Owner, invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
		t.Fatal("generate must not run when rate limited")
		return nil, nil
	}

	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token", `{"products":[]}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, rec).Type)
	assert.Equal(t, 1, limiter.calls)
}

func TestCreateInvoiceRateLimiterFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.server.limiter = &fakeLimiter{err: errors.New("redis down")}
	f.invoices.generateFn = func(invoicedomain.Owner, invoicedomain.GenerateRequest) (*invoicedomain.Response, error) {
		return &invoicedomain.Response{ID: "56"}, nil
	}

	rec := f.do(http.MethodPost, "/api/invoices", "cashier-token", `{"products":[]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListInvoicesParsesQuery(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet,
		"/api/invoices?from_created_at=2024-01-01&to_created_at=2024-01-31&min_total=5&max_total=10.50&payment_type=cash&page=2&limit=3",
		"auditor-token", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	req := f.invoices.listReq
	assert.Equal(t, "2024-01-01", req.FromCreatedAt)
	assert.Equal(t, "2024-01-31", req.ToCreatedAt)
	require.NotNil(t, req.MinTotal)
	assert.True(t, req.MinTotal.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, req.MaxTotal)
	assert.True(t, req.MaxTotal.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, "cash", req.PaymentType)
	assert.Equal(t, 2, req.Page)
	require.NotNil(t, req.Limit)
	assert.Equal(t, 3, *req.Limit)
	assert.Equal(t, snowflake.ID(102), f.invoices.listOwner.ID)
	assert.JSONEq(t, `{"current_page":0,"limit":null,"last_page":0,"invoices":[]}`, rec.Body.String())
}

func TestListInvoicesRejectsBadQuery(t *testing.T) {
	f := newFixture(t)
	cases := map[string]string{
		"min_total=abc": "invalid_min_total",
		"max_total=x":   "invalid_max_total",
		"page=two":      "invalid_page",
		"limit=1.5":     "invalid_limit",
		"page=-1":       "invalid_page",
	}
	for query, code := range cases {
		rec := f.do(http.MethodGet, "/api/invoices?"+query, "cashier-token", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
		payload := decodeError(t, rec)
		require.Len(t, payload.Errors, 1, query)
		assert.Equal(t, code, payload.Errors[0].Code, query)
		assert.Equal(t, strings.TrimPrefix(code, "invalid_"), payload.Errors[0].Field, query)
	}
}

func TestGetInvoice(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/invoices/42", "cashier-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"42"`)
	assert.Equal(t, snowflake.ID(101), f.invoices.getOwner.ID)

	rec = f.do(http.MethodGet, "/api/invoices/99", "cashier-token", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "not_found", payload.Type)
	assert.Equal(t, "Invoice with ID = 99 not found", payload.Message)
}

func TestInvoiceReceiptText(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/invoices/42/receipt?width=40", "auditor-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "RECEIPT 42", rec.Body.String())
	assert.Equal(t, 40, f.invoices.receiptOpt.Width)

	rec = f.do(http.MethodGet, "/api/invoices/42/receipt?width=200", "auditor-token", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_width", decodeError(t, rec).Errors[0].Code)

	rec = f.do(http.MethodGet, "/api/invoices/42/receipt?width=0", "auditor-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/invoices/7/receipt", "auditor-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceReceiptPDF(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/invoices/42/receipt.pdf", "cashier-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Equal(t, "42", f.pdf.received.InvoiceNumber)

	rec = f.do(http.MethodGet, "/api/invoices/8/receipt.pdf", "cashier-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/products?name=%20x&limit=5", "auditor-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Coffeex"`)

	rec = f.do(http.MethodGet, "/api/products?limit=-1", "auditor-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/products/7", "auditor-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":3.5`)

	rec = f.do(http.MethodGet, "/api/products/8", "auditor-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(invoicedomain.ErrInvalidQuantity)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_quantity", code)

	typ, code = classifyErrorForLog(&invoicedomain.NotFoundError{ID: "1"})
	assert.Equal(t, "not_found", typ)
	assert.Equal(t, "not_found", code)

	typ, _ = classifyErrorForLog(nil)
	assert.Equal(t, "", typ)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "3", retryAfterSeconds(2100*time.Millisecond))
}
