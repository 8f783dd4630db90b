package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/minerva/internal/models"
	"github.com/BradenHooton/minerva/internal/services"
	pkghttp "github.com/BradenHooton/minerva/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuthors_Success(t *testing.T) {
	mock := &MockProxyService{
		FetchFunc: func(ctx context.Context, datasource string) (*services.UpstreamResult, error) {
			assert.Equal(t, "https://dummyjson.com/users", datasource)
			return &services.UpstreamResult{
				StatusCode: http.StatusOK,
				Body:       json.RawMessage(`{"users":[{"firstName":"Emily"}]}`),
			}, nil
		},
	}
	handler := NewAuthorHandler(mock)

	req := httptest.NewRequest("GET", "/authors?datasource=https%3A%2F%2Fdummyjson.com%2Fusers", nil)
	w := httptest.NewRecorder()

	handler.GetAuthors(w, req)

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"users":[{"firstName":"Emily"}]}`, string(resp.Data))
}

func TestGetAuthors_MissingDatasource(t *testing.T) {
	handler := NewAuthorHandler(&MockProxyService{})

	req := httptest.NewRequest("GET", "/authors", nil)
	w := httptest.NewRecorder()

	handler.GetAuthors(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestGetAuthors_DisallowedHost(t *testing.T) {
	mock := &MockProxyService{
		FetchFunc: func(ctx context.Context, datasource string) (*services.UpstreamResult, error) {
			return nil, models.ErrForbidden
		},
	}
	handler := NewAuthorHandler(mock)

	req := httptest.NewRequest("GET", "/authors?datasource=https%3A%2F%2Fevil.example.com%2Fusers", nil)
	w := httptest.NewRecorder()

	handler.GetAuthors(w, req)

	AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
}

func TestGetAuthors_UpstreamUnreachable(t *testing.T) {
	mock := &MockProxyService{
		FetchFunc: func(ctx context.Context, datasource string) (*services.UpstreamResult, error) {
			return nil, models.ErrUpstreamUnreachable
		},
	}
	handler := NewAuthorHandler(mock)

	req := httptest.NewRequest("GET", "/authors?datasource=https%3A%2F%2Fdummyjson.com%2Fusers", nil)
	w := httptest.NewRecorder()

	handler.GetAuthors(w, req)

	AssertErrorResponse(t, w, http.StatusGatewayTimeout, "gateway_timeout")
}

func TestGetAuthors_UpstreamErrorMirrored(t *testing.T) {
	mock := &MockProxyService{
		FetchFunc: func(ctx context.Context, datasource string) (*services.UpstreamResult, error) {
			return &services.UpstreamResult{
				StatusCode: http.StatusNotFound,
				Body:       json.RawMessage(`{"message":"not found"}`),
			}, nil
		},
	}
	handler := NewAuthorHandler(mock)

	req := httptest.NewRequest("GET", "/authors?datasource=https%3A%2F%2Fdummyjson.com%2Fnope", nil)
	w := httptest.NewRecorder()

	handler.GetAuthors(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp pkghttp.ErrorResponse
	require.NoError(t, decodeBody(w, &resp))
	assert.Equal(t, "Datasource error: Not Found", resp.Message)
}
