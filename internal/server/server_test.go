package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"audioshop/internal/handler"
	infra "audioshop/internal/infra/repository"
	"audioshop/internal/logging"
	"audioshop/internal/testutil"
	"audioshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, buf *bytes.Buffer) *echo.Echo {
	t.Helper()

	gdb := testutil.NewDB(t)
	tm := infra.NewTxManagerGorm(gdb)
	users := infra.NewUserGormRepository(gdb)

	return New(Deps{
		Logger:    logging.NewWithWriter(buf, "debug"),
		JWTSecret: "secret",
		Users:     users,
		Orders:    handler.NewOrderHandler(usecase.NewOrderUsecase(tm, infra.NewOrderGormRepository(gdb), infra.NewOrderLineGormRepository(gdb), nil)),
		Products:  handler.NewProductHandler(usecase.NewProductUsecase(tm, infra.NewProductGormRepository(gdb), infra.NewAccessoryGormRepository(gdb), nil)),
		UserH:     handler.NewUserHandler(usecase.NewUserUsecase(users)),
	})
}

func TestNew_Routes(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(t, &buf)

	cases := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/products", http.StatusOK},
		{http.MethodGet, "/products/top", http.StatusOK},
		{http.MethodGet, "/products/category/earphones", http.StatusOK},
		{http.MethodPost, "/products", http.StatusUnauthorized},
		{http.MethodGet, "/orders/current", http.StatusUnauthorized},
		{http.MethodGet, "/users/me", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.code, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestNew_RequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(t, &buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rid := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), rid)
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(":9999", http.NotFoundHandler())
	assert.Equal(t, ":9999", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
