package entry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, Service) {
	service := NewService(NewRepoStub(), nil)
	handler := NewHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/api/entry", handler.CreateEntry).Methods("POST")
	router.HandleFunc("/api/entry", handler.ListEntries).Methods("GET")
	router.HandleFunc("/api/entry/{entryId}", handler.GetEntry).Methods("GET")
	router.HandleFunc("/api/entry/{entryId}", handler.UpdateEntry).Methods("PUT")
	router.HandleFunc("/api/entry/{entryId}", handler.DeleteEntry).Methods("DELETE")
	return router, service
}

func doRequest(router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader).WithContext(ctx)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

const rentBody = `{
	"entry_type": "expense",
	"recurrence_type": "monthly",
	"title": "Rent",
	"amount": "1200",
	"start_date": "2026-01-01",
	"day_of_month": 1
}`

func TestHandler_CreateEntry(t *testing.T) {
	t.Run("should create an entry series", func(t *testing.T) {
		router, _ := setupRouter(t)

		recorder := doRequest(router, http.MethodPost, "/api/entry", rentBody)

		require.Equal(t, http.StatusCreated, recorder.Code)
		var dto EntrySeriesDTO
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &dto))
		assert.NotZero(t, dto.Id)
		assert.Equal(t, "Rent", dto.Title)
		assert.Equal(t, "2026-01-01", dto.StartDate)
		assert.Nil(t, dto.EndDate)
	})

	t.Run("should reject an invalid recurrence type with 400", func(t *testing.T) {
		router, _ := setupRouter(t)
		body := strings.Replace(rentBody, "monthly", "yearly", 1)

		recorder := doRequest(router, http.MethodPost, "/api/entry", body)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestHandler_GetEntry(t *testing.T) {
	t.Run("should return 404 for an unknown series", func(t *testing.T) {
		router, _ := setupRouter(t)

		recorder := doRequest(router, http.MethodGet, "/api/entry/999", "")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestHandler_UpdateEntry(t *testing.T) {
	t.Run("should return the split response for future scope", func(t *testing.T) {
		router, _ := setupRouter(t)
		created := doRequest(router, http.MethodPost, "/api/entry", rentBody)
		require.Equal(t, http.StatusCreated, created.Code)
		var series EntrySeriesDTO
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &series))

		body := strings.Replace(rentBody, "1200", "1350", 1)
		recorder := doRequest(router, http.MethodPut, "/api/entry/1?scope=future&date=2026-06-01", body)

		require.Equal(t, http.StatusOK, recorder.Code)
		var response struct {
			OriginalSeries struct {
				Id      int64   `json:"id"`
				EndDate *string `json:"end_date"`
			} `json:"original_series"`
			NewSeries EntrySeriesDTO `json:"new_series"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, series.Id, response.OriginalSeries.Id)
		require.NotNil(t, response.OriginalSeries.EndDate)
		assert.Equal(t, "2026-05-31", *response.OriginalSeries.EndDate)
		assert.Equal(t, "2026-06-01", response.NewSeries.StartDate)
		require.NotNil(t, response.NewSeries.ParentSeriesId)
		assert.Equal(t, series.Id, *response.NewSeries.ParentSeriesId)
	})

	t.Run("should return the exception for occurrence scope", func(t *testing.T) {
		router, _ := setupRouter(t)
		created := doRequest(router, http.MethodPost, "/api/entry", rentBody)
		require.Equal(t, http.StatusCreated, created.Code)

		recorder := doRequest(router, http.MethodPut, "/api/entry/1?scope=occurrence&date=2026-03-01", rentBody)

		require.Equal(t, http.StatusOK, recorder.Code)
		var response map[string]ExceptionDTO
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		exception, ok := response["exception"]
		require.True(t, ok)
		assert.Equal(t, "override", exception.ExceptionType)
		assert.Equal(t, "2026-03-01", exception.ExceptionDate)
	})

	t.Run("should return 400 for an unknown scope", func(t *testing.T) {
		router, _ := setupRouter(t)
		doRequest(router, http.MethodPost, "/api/entry", rentBody)

		recorder := doRequest(router, http.MethodPut, "/api/entry/1?scope=everything", rentBody)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("should return 409 when splitting at the series start date", func(t *testing.T) {
		router, _ := setupRouter(t)
		doRequest(router, http.MethodPost, "/api/entry", rentBody)

		recorder := doRequest(router, http.MethodPut, "/api/entry/1?scope=future&date=2026-01-01", rentBody)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestHandler_DeleteEntry(t *testing.T) {
	t.Run("should describe an entire delete", func(t *testing.T) {
		router, _ := setupRouter(t)
		doRequest(router, http.MethodPost, "/api/entry", rentBody)

		recorder := doRequest(router, http.MethodDelete, "/api/entry/1?scope=entire", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		var response struct {
			Message  string `json:"message"`
			Scope    string `json:"scope"`
			Affected struct {
				SeriesDeleted    bool `json:"series_deleted"`
				ExceptionCreated bool `json:"exception_created"`
			} `json:"affected"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "series deleted", response.Message)
		assert.Equal(t, "entire", response.Scope)
		assert.True(t, response.Affected.SeriesDeleted)
		assert.False(t, response.Affected.ExceptionCreated)
	})

	t.Run("should describe an occurrence delete", func(t *testing.T) {
		router, _ := setupRouter(t)
		doRequest(router, http.MethodPost, "/api/entry", rentBody)

		recorder := doRequest(router, http.MethodDelete, "/api/entry/1?scope=occurrence&date=2026-02-01", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		var response deleteResponseDTO
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "occurrence skipped", response.Message)
		assert.True(t, response.Affected.ExceptionCreated)
		assert.False(t, response.Affected.SeriesDeleted)
	})

	t.Run("should return 403 without a user in context", func(t *testing.T) {
		router, _ := setupRouter(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/entry/1?scope=entire", strings.NewReader("{}"))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
