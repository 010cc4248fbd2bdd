package billing

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st := newMemoryStore()
	svc := newTestService(st, ServiceConfig{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sequences := NewSequenceGenerator(st, shared.FixedClock{At: testInstant})
	handler := NewHandler(logger, svc, sequences, shared.NewIdempotencyStore(nil, 0))

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "ganesh")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerDocumentFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/documents/invoice", quoteRequest())
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "INV-00001", doc.Number)
	require.Equal(t, StatusPending, doc.Status)
	require.Equal(t, "ganesh", doc.ActivityLog[0].User)

	rec = doJSON(t, router, http.MethodGet, "/documents/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Items []Document `json:"items"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.Total)
	require.Len(t, listing.Items, 1)

	rec = doJSON(t, router, http.MethodGet, "/documents/invoice/next-number", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var peek map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &peek))
	require.Equal(t, "INV-00002", peek["number"])

	rec = doJSON(t, router, http.MethodPost, "/documents/invoice/"+doc.ID+"/payments", map[string]any{
		"amount": "1180",
		"mode":   "upi",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var paid Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	require.Equal(t, StatusPaid, paid.Status)

	rec = doJSON(t, router, http.MethodGet, "/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerUnknownFamilyIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/documents/journal", quoteRequest())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerValidationErrorIs400(t *testing.T) {
	router := newTestRouter(t)

	req := quoteRequest()
	req.Lines = nil
	rec := doJSON(t, router, http.MethodPost, "/documents/invoice", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerConvertEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/documents/quote", quoteRequest())
	require.Equal(t, http.StatusCreated, rec.Code)
	var quote Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))

	rec = doJSON(t, router, http.MethodPost, "/documents/quote/"+quote.ID+"/convert", ConvertRequest{TargetFamily: FamilyInvoice})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result ConversionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, StatusConverted, result.Source.Status)
	require.Equal(t, "INV-00001", result.Target.Number)
}
