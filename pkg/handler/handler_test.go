package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/handler"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

type request struct {
	Name string
}

func bindName(r *http.Request, v any) error {
	name := r.URL.Query().Get("name")
	if name == "" {
		return handler.ErrBadRequest.WithCause(errors.New("name is required"))
	}
	v.(*request).Name = name
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body struct {
		Data  any                  `json:"data"`
		Meta  map[string]any       `json:"meta"`
		Error *handler.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return handler.JSONResponse{Data: body.Data, Meta: body.Meta, Error: body.Error}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	greet := handler.Wrap(func(_ context.Context, req request) handler.Response {
		return handler.JSON(map[string]string{"hello": req.Name},
			handler.WithJSONStatus(http.StatusCreated),
			handler.WithJSONMeta(map[string]any{"v": "1"}),
		)
	}, handler.WithBinders(bindName))

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		greet(rec, httptest.NewRequest(http.MethodGet, "/?name=ada", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, map[string]any{"hello": "ada"}, body.Data)
		assert.Equal(t, map[string]any{"v": "1"}, body.Meta)
		assert.Nil(t, body.Error)
	})

	t.Run("binder error stops handler", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		greet(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "bad_request", body.Error.Code)
		assert.Equal(t, "name is required", body.Error.Message)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		var got error
		h := handler.Wrap(func(context.Context, request) handler.Response { return nil },
			handler.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusTeapot)
			}),
		)
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.ErrorIs(t, got, handler.ErrNilResponse)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(context.Context, request) handler.Response { return handler.Empty() })
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		h = handler.Wrap(func(context.Context, request) handler.Response {
			return handler.EmptyWithStatus(http.StatusAccepted)
		})
		rec = httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "plain http error",
			err:     handler.ErrNotFound,
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "Not Found",
		},
		{
			name:    "wrapped http error with cause",
			err:     fmt.Errorf("lookup: %w", handler.NewHTTPError(http.StatusBadRequest, "invalid_path").WithCause(errors.New("bad ref"))),
			status:  http.StatusBadRequest,
			code:    "invalid_path",
			message: "bad ref",
		},
		{
			name:    "unknown error hides details",
			err:     errors.New("dial tcp 10.0.0.1: refused"),
			status:  http.StatusInternalServerError,
			code:    "internal_server_error",
			message: "Internal Server Error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			require.NoError(t, handler.JSONError(tt.err).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk gone")
	err := handler.ErrServiceUnavailable.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "service_unavailable: disk gone", err.Error())
	assert.Equal(t, "service_unavailable", handler.ErrServiceUnavailable.Error())
	assert.Nil(t, handler.ErrServiceUnavailable.Err, "WithCause must not modify the original")
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	errGone := errors.New("gone")
	classify := func(err error) error {
		if errors.Is(err, errGone) {
			return handler.ErrNotFound.WithCause(err)
		}
		return err
	}

	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{"client error logs warn", errGone, http.StatusNotFound, "WARN"},
		{"server error logs error", errors.New("boom"), http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			eh := handler.NewErrorHandler(logger.New(logger.WithOutput(&buf)), classify)

			h := handler.Wrap(func(context.Context, request) handler.Response {
				return handler.Fail(tt.err)
			}, handler.WithErrorHandler(eh))

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/files/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
			assert.Contains(t, buf.String(), `"path":"/files/x"`)
		})
	}
}
