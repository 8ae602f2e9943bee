package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/internal/store"
)

type fakeReader struct {
	pubs   []*domain.Publication
	report []store.ErrorAggregate

	gotStatus    string
	gotChannelID int64
}

func (f *fakeReader) ListOrdered(ctx context.Context, status string, channelID int64, limit, offset int) ([]*domain.Publication, error) {
	f.gotStatus = status
	f.gotChannelID = channelID
	return f.pubs, nil
}

func (f *fakeReader) ErrorReport(ctx context.Context) ([]store.ErrorAggregate, error) {
	return f.report, nil
}

func TestHealthz_ReturnsOK(t *testing.T) {
	e := echo.New()
	h := NewHandlers(&fakeReader{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Healthz(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPublications_ReturnsOrderedView(t *testing.T) {
	e := echo.New()
	h := NewHandlers(&fakeReader{pubs: []*domain.Publication{{ID: 1}, {ID: 2}}})
	req := httptest.NewRequest(http.MethodGet, "/api/publications?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListPublications(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestListPublications_PassesStatusAndChannelIDFilters(t *testing.T) {
	e := echo.New()
	reader := &fakeReader{}
	h := NewHandlers(reader)
	req := httptest.NewRequest(http.MethodGet, "/api/publications?status=retry&channel_id=42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListPublications(c))
	assert.Equal(t, "retry", reader.gotStatus)
	assert.Equal(t, int64(42), reader.gotChannelID)
}

func TestErrorReport_ReturnsAggregates(t *testing.T) {
	e := echo.New()
	h := NewHandlers(&fakeReader{report: []store.ErrorAggregate{{LastError: "transport error", Count: 3}}})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/errors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ErrorReport(c))
	assert.Contains(t, rec.Body.String(), "transport error")
}

func TestQueryInt_FallsBackOnInvalid(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/publications?limit=not-a-number", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.Equal(t, defaultPageSize, queryInt(c, "limit", defaultPageSize))
}
