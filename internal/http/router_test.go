package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/auth"
	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	apihttp "github.com/MrJamesThe3rd/spendly/internal/http"
	calendarhttp "github.com/MrJamesThe3rd/spendly/internal/http/calendar"
	exporthttp "github.com/MrJamesThe3rd/spendly/internal/http/export"
	ledgerhttp "github.com/MrJamesThe3rd/spendly/internal/http/ledger"
	tabhttp "github.com/MrJamesThe3rd/spendly/internal/http/tab"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
	"github.com/MrJamesThe3rd/spendly/internal/ledger/store/memory"
)

type testAPI struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.New()
	svc := ledger.NewService(store)
	cal := calendar.NewService(store)

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	router := apihttp.New(
		apihttp.Options{Verifier: issuer, Timeout: 5 * time.Second},
		ledgerhttp.NewHandler(svc, importer.NewService(), 1<<20),
		tabhttp.NewHandler(svc),
		calendarhttp.NewHandler(cal),
		exporthttp.NewHandler(export.NewService(cal, store)),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, token: token}
}

func (a *testAPI) send(req *http.Request) (int, map[string]any) {
	a.t.Helper()

	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &body))
	}

	return resp.StatusCode, body
}

func (a *testAPI) do(method, path string, payload any) (int, map[string]any) {
	a.t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(a.t, err)

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)

	return a.send(req)
}

func items(body map[string]any) []map[string]any {
	raw, _ := body["items"].([]any)

	out := make([]map[string]any, len(raw))
	for i, it := range raw {
		out[i], _ = it.(map[string]any)
	}

	return out
}

func TestRouter_Public(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(api.srv.URL + "/api/v1/ledgers/2025/3")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(api.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_LedgerFlow(t *testing.T) {
	api := newTestAPI(t)
	base := "/api/v1/ledgers/2025/3"

	status, body := api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, "unpaid", body["status"])

	status, body = api.do(http.MethodPost, base+"/items", map[string]any{"name": "Rent", "amount": "50"})
	require.Equal(t, http.StatusCreated, status)
	rentID := items(body)[0]["id"].(string)

	status, body = api.do(http.MethodPost, base+"/items", map[string]any{"name": "Gym", "amount": 20.5})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "70.5", body["total"])
	gymID := items(body)[1]["id"].(string)

	status, body = api.do(http.MethodPost, base+"/items/"+rentID+"/payments", map[string]any{"amount": "60"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "50", body["ceiling"])

	status, body = api.do(http.MethodPost, base+"/items/"+rentID+"/payments", map[string]any{"amount": "20,00"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "partial", body["status"])
	assert.Equal(t, "30", items(body)[0]["remaining"])

	status, body = api.do(http.MethodPatch, base+"/items/"+gymID, map[string]any{"name": "Gym membership"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Gym membership", items(body)[1]["name"])
	assert.Equal(t, "20.5", items(body)[1]["amount"])

	status, body = api.do(http.MethodPut, base+"/items/"+gymID+"/note", map[string]any{"note": "annual"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "annual", items(body)[1]["note"])

	status, body = api.do(http.MethodPost, base+"/paid", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", body["status"])

	status, body = api.do(http.MethodDelete, base+"/items/"+gymID+"/paid", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, items(body)[1]["paid"])

	status, body = api.do(http.MethodDelete, base+"/items/"+rentID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, items(body), 1)

	status, body = api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["exists"])
	assert.Len(t, items(body), 1)

	status, _ = api.do(http.MethodPatch, base+"/items/missing", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_PaymentAmountErrors(t *testing.T) {
	api := newTestAPI(t)
	base := "/api/v1/ledgers/2025/4"

	status, body := api.do(http.MethodPost, base+"/items", map[string]any{"name": "Rent", "amount": "50"})
	require.Equal(t, http.StatusCreated, status)
	rentID := items(body)[0]["id"].(string)

	tests := []struct {
		name        string
		path        string
		amount      any
		wantStatus  int
		wantCeiling string
	}{
		{name: "negative on item", path: base + "/items/" + rentID + "/payments", amount: "-5", wantStatus: http.StatusUnprocessableEntity, wantCeiling: "50"},
		{name: "zero on item", path: base + "/items/" + rentID + "/payments", amount: 0, wantStatus: http.StatusUnprocessableEntity, wantCeiling: "50"},
		{name: "negative across unpaid", path: base + "/payments", amount: "-5", wantStatus: http.StatusUnprocessableEntity, wantCeiling: "50"},
		{name: "negative number across unpaid", path: base + "/payments", amount: -5, wantStatus: http.StatusUnprocessableEntity, wantCeiling: "50"},
		{name: "exponent", path: base + "/payments", amount: "1e20000000", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.do(http.MethodPost, tt.path, map[string]any{"amount": tt.amount})
			assert.Equal(t, tt.wantStatus, status)

			if tt.wantCeiling != "" {
				assert.Equal(t, tt.wantCeiling, body["ceiling"])
			}
		})
	}

	status, body = api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0", body["paid_total"])
}

func TestRouter_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name       string
		method     string
		path       string
		payload    any
		wantStatus int
	}{
		{name: "year not a number", method: http.MethodGet, path: "/api/v1/ledgers/abc/3", wantStatus: http.StatusBadRequest},
		{name: "month out of range", method: http.MethodGet, path: "/api/v1/ledgers/2025/13", wantStatus: http.StatusBadRequest},
		{name: "missing amount", method: http.MethodPost, path: "/api/v1/ledgers/2025/3/items", payload: map[string]any{"name": "Rent"}, wantStatus: http.StatusBadRequest},
		{name: "malformed amount", method: http.MethodPost, path: "/api/v1/ledgers/2025/3/items", payload: map[string]any{"name": "Rent", "amount": "abc"}, wantStatus: http.StatusBadRequest},
		{name: "exponent amount", method: http.MethodPost, path: "/api/v1/ledgers/2025/3/items", payload: map[string]any{"name": "Rent", "amount": "1e20000000"}, wantStatus: http.StatusBadRequest},
		{name: "negative item amount", method: http.MethodPost, path: "/api/v1/ledgers/2025/3/items", payload: map[string]any{"name": "Rent", "amount": -5}, wantStatus: http.StatusBadRequest},
		{name: "empty edit", method: http.MethodPatch, path: "/api/v1/ledgers/2025/3/items/x", payload: map[string]any{}, wantStatus: http.StatusBadRequest},
		{name: "unknown tab", method: http.MethodPost, path: "/api/v1/ledgers/2025/3/items?tab=nope", payload: map[string]any{"name": "Rent", "amount": 1}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := api.do(tt.method, tt.path, tt.payload)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRouter_Tabs(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/api/v1/tabs", map[string]any{"label": "Work"})
	require.Equal(t, http.StatusCreated, status)
	key := body["key"].(string)

	status, _ = api.do(http.MethodPost, "/api/v1/ledgers/2025/3/items?tab="+key, map[string]any{"name": "Laptop", "amount": "900"})
	require.Equal(t, http.StatusCreated, status)

	req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/api/v1/tabs", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+api.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var tabs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tabs))
	resp.Body.Close()
	require.Len(t, tabs, 2)
	assert.Equal(t, ledger.TabMain, tabs[0]["key"])
	assert.Equal(t, "Work", tabs[1]["label"])

	status, body = api.do(http.MethodPatch, "/api/v1/tabs/"+key, map[string]any{"label": "Office"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Office", body["label"])

	status, _ = api.do(http.MethodDelete, "/api/v1/tabs/main", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodDelete, "/api/v1/tabs/"+key, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = api.do(http.MethodGet, "/api/v1/ledgers/2025/3?tab="+key, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["exists"])

	status, _ = api.do(http.MethodPost, "/api/v1/ledgers/2025/3/items?tab="+key, map[string]any{"name": "Laptop", "amount": "900"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_CalendarAndExport(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(http.MethodPost, "/api/v1/ledgers/2025/2/items", map[string]any{"name": "Rent", "amount": "500"})
	require.Equal(t, http.StatusCreated, status)

	status, body := api.do(http.MethodGet, "/api/v1/calendar/2025", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "500", body["total"])

	months := body["months"].([]any)
	require.Len(t, months, 12)
	assert.Equal(t, true, months[1].(map[string]any)["exists"])
	assert.Equal(t, false, months[0].(map[string]any)["exists"])

	resp, err := http.Get(api.srv.URL + "/api/v1/export/2025.xlsx?token=" + api.token)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "spendly_2025.xlsx")
}

func TestRouter_Import(t *testing.T) {
	api := newTestAPI(t)

	upload := func(filename, content string) (int, map[string]any) {
		var buf bytes.Buffer

		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)

		_, err = io.Copy(fw, strings.NewReader(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, api.srv.URL+"/api/v1/ledgers/2025/4/import", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		return api.send(req)
	}

	status, body := upload("items.csv", "name;amount\nRent;500,00\nWater;30\n")
	require.Equal(t, http.StatusCreated, status, "%v", body)
	assert.EqualValues(t, 2, body["imported"])

	status, _ = upload("items.pdf", "whatever")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = upload("items.csv", "name;amount\nRent;abc\n")
	assert.Equal(t, http.StatusBadRequest, status)
}
