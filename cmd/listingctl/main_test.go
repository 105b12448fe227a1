package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

const syncBody = `{"status":"success","data":{"1001":[
	{"productsku":"SKU-1","manifestsku":"PAL-A","asin":"B000000001","title":"Lampa de birou",
	 "expected":2,"bncondition":2,"listingReady":true,"stockcode":"ABCDEFGHIJKL","ordername":"Comanda Iunie"},
	{"productsku":"SKU-2","manifestsku":"PAL-B","asin":"B000000002","title":"Rucsac",
	 "expected":1,"bncondition":1,"listingReady":true}
]}}`

// backend serves the sync and details endpoints and points the config at
// them.
func backend(t *testing.T) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, syncBody)
	})
	mux.HandleFunc("/details", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ASINs []string `json:"asins"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		products := make(map[string]any, len(req.ASINs))
		for _, a := range req.ASINs {
			products[a] = map[string]any{
				"title":       "Produs " + a,
				"images":      []string{"https://img.example/" + a + ".jpg"},
				"description": "Descriere suficient de lungă pentru export",
				"brand":       "Lumina",
				"price":       "100",
				"category":    "Casa",
				"categoryId":  42,
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"products": products})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("WEBHOOK_SYNC_URL", srv.URL+"/sync")
	t.Setenv("WEBHOOK_DETAILS_URL", srv.URL+"/details")
	t.Setenv("WEBHOOK_ACCESS_CODE", "ABC")
	t.Setenv("STORAGE_BACKEND", "memory")
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.RunContext(t.Context(), append([]string{"listingctl"}, args...))
	return out.String(), errOut.String(), err
}

func TestSync(t *testing.T) {
	backend(t)

	out, _, err := run(t, "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "COMANDĂ")
	assert.Contains(t, out, "1001")
	assert.Contains(t, out, "Comanda Iunie")
}

func TestExport_Stdout(t *testing.T) {
	backend(t)

	out, report, err := run(t, "export", "--order", "1001")

	require.NoError(t, err)
	assert.Contains(t, report, "2 rânduri, 0 cu erori")

	records, err := core.ReadCSV(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, records, 2)
	sku, _ := records[0].Get("SKU")
	assert.Equal(t, "B000000001CN", sku)
}

func TestExport_File(t *testing.T) {
	backend(t)
	path := filepath.Join(t.TempDir(), "export.csv")

	out, _, err := run(t, "export", "-o", "1001", "--out", path)

	require.NoError(t, err)
	assert.Empty(t, out)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := core.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExport_MissingConfig(t *testing.T) {
	t.Setenv("WEBHOOK_SYNC_URL", "")
	t.Setenv("WEBHOOK_URL", "")

	_, _, err := run(t, "export", "--order", "1001")

	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	var buf bytes.Buffer
	require.NoError(t, core.WriteCSV(&buf, []core.Record{
		{{Key: "SKU", Value: "B01CN"}, {Key: "Titlu", Value: "Lampă"}},
		{{Key: "SKU", Value: "B02CN"}, {Key: "Titlu", Value: "Rucsac"}},
	}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	out, _, err := run(t, "inspect", path)

	require.NoError(t, err)
	assert.Contains(t, out, "2 rânduri")
	assert.Contains(t, out, "coloane: SKU, Titlu")
}
