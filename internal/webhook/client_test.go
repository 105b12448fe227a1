package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ep := Endpoints{
		Sync:        srv.URL + "/sync",
		Details:     srv.URL + "/details",
		Save:        srv.URL + "/save",
		Ready:       srv.URL + "/ready",
		ASIN:        srv.URL + "/asin",
		Title:       srv.URL + "/title",
		Translate:   srv.URL + "/translate",
		Competition: srv.URL + "/competition",
		Financial:   srv.URL + "/financial",
		Upload:      srv.URL + "/upload",
	}
	return NewClientWithEndpoints(ep, resty.New()), srv
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestFetchOrders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sync", r.URL.Path)
		assert.Equal(t, "ABC", decodeBody(t, r)["code"])
		io.WriteString(w, `{"status":"success","data":{"42":[{"asin":"B01","expected":"3"}]}}`)
	})

	data, err := c.FetchOrders(t.Context(), "ABC")
	require.NoError(t, err)
	require.Len(t, data["42"], 1)
	assert.Equal(t, "B01", data["42"][0]["asin"])
}

func TestFetchOrders_StatusNotSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error"}`)
	})

	_, err := c.FetchOrders(t.Context(), "ABC")
	assert.ErrorIs(t, err, ErrStatusNotSuccess)
}

func TestFetchOrders_HTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.FetchOrders(t.Context(), "ABC")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "sync", apiErr.Endpoint)
}

func TestFetchDetails_NestedProducts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, []any{"B01", "B02"}, body["asins"])
		io.WriteString(w, `[{"json":{"result":{"products":{
			"B01":{"title":"Lampa","price":12.5,"categoryId":77,"images":["a.jpg"]},
			"B02":{"title":"Masa","price":null,"other_versions":{"ro":{"title":"Masă"}}}
		}}}}]`)
	})

	got, err := c.FetchDetails(t.Context(), []string{"B01", "B02"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Lampa", got["B01"].Title)
	assert.Equal(t, NewFlexString("12.5"), got["B01"].Price)
	assert.Equal(t, "77", got["B01"].CategoryID.Value)
	assert.False(t, got["B02"].Price.Valid)
	assert.Equal(t, "Masă", got["B02"].OtherVersions["ro"].Title)
}

func TestFetchDetails_NoProducts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true}`)
	})

	_, err := c.FetchDetails(t.Context(), []string{"B01"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSaveDetails_UsesPatch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		body := decodeBody(t, r)
		assert.Equal(t, "B01", body["asin"])
		updated := body["updatedData"].(map[string]any)
		assert.Equal(t, "Lampa", updated["title"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.SaveDetails(t.Context(), "B01", DetailRecord{Title: "Lampa"})
	assert.NoError(t, err)
}

func TestSetReady_RequiresJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	err := c.SetReady(t.Context(), ReadyRequest{OrderID: "1", SetReadyStatus: true})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUpdateASIN_Message(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "OLD", body["asin_vechi"])
		assert.Equal(t, "NEW", body["asin_nou"])
		io.WriteString(w, `{"status":"error","message":"ASIN inexistent"}`)
	})

	err := c.UpdateASIN(t.Context(), ASINUpdateRequest{OldASIN: "OLD", NewASIN: "NEW"})
	require.ErrorIs(t, err, ErrStatusNotSuccess)
	assert.Contains(t, err.Error(), "ASIN inexistent")
}

func TestGenerateTitle_FlattensCompetitors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "first", body["competition_1_title"])
		assert.Equal(t, "second", body["competition_2_title"])
		assert.Equal(t, "", body["competition_5_title"])
		io.WriteString(w, `{"output":"Titlu nou generat"}`)
	})

	got, err := c.GenerateTitle(t.Context(), TitleRequest{ASIN: "B01", Competitors: []string{"first", "second"}})
	require.NoError(t, err)
	assert.Equal(t, "Titlu nou generat", got)
}

func TestFetchFinancial_Raw(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		io.WriteString(w, ` {"total": 10} `)
	})

	raw, err := c.FetchFinancial(t.Context())
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":10}`, string(raw))
}

func TestUpload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Contains(t, r.MultipartForm.File, "zip")
		assert.Contains(t, r.MultipartForm.File, "pdf")
		io.WriteString(w, `{"status":"success"}`)
	})

	err := c.Upload(t.Context(),
		File{Name: "a.zip", Reader: strings.NewReader("zipdata"), Size: 7},
		File{Name: "m.pdf", Reader: strings.NewReader("pdf"), Size: 3},
	)
	assert.NoError(t, err)
}

func TestUpload_MissingFile(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := c.Upload(t.Context(), File{Name: "a.zip", Reader: strings.NewReader("x"), Size: 1}, File{})
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestEndpointNotConfigured(t *testing.T) {
	c := NewClientWithEndpoints(Endpoints{}, resty.New())
	err := c.Translate(t.Context(), "B01", "ro")
	assert.True(t, errors.Is(err, ErrEndpointNotConfigured))
}

func TestFlexString(t *testing.T) {
	var rec struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":3.50,"c":null}`), &rec))
	assert.Equal(t, NewFlexString("x"), rec.A)
	assert.Equal(t, NewFlexString("3.50"), rec.B)
	assert.False(t, rec.C.Valid)
}
