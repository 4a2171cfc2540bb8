package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/config"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/model"
)

type fixture struct {
	srv      *Server
	e        *echo.Echo
	table    *coefficients.Table
	coefPath string
	history  *history.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	h, err := history.Open(filepath.Join(dir, "patients.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	table := coefficients.NewTable(coefficients.Defaults())
	c := catalog.New([]model.Service{
		{Code: "701500", TypeMarker: "701500#", Description: "سونوگرافی شکم", Professional: 1.5, Technical: 2},
		{Code: "700123", Description: "رادیوگرافی", Professional: 1, Technical: 1},
		{Code: "800010", Description: "کشیدن دندان", Professional: 2},
		{Code: "900001", Description: "بدون ارزش"},
	})
	f := &fixture{table: table, coefPath: filepath.Join(dir, "coefficients.yaml"), history: h}
	f.srv = New(Deps{
		Catalog:          c,
		Table:            table,
		History:          h,
		CoefficientsPath: f.coefPath,
		Clinic:           config.Clinic{Name: "Daryan Clinic"},
		Log:              zerolog.Nop(),
	})
	f.e = f.srv.Echo()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestQuote_ByCode(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/quote?code=701500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[quoteResponse](t, rec)
	if resp.Quote.Private != 4406000 || resp.Quote.Insurance != 3489700 || resp.Quote.Government != 1309000 {
		t.Errorf("quote = %+v", resp.Quote)
	}
	if resp.Service == nil || resp.Service.Code != "701500" {
		t.Errorf("service = %+v", resp.Service)
	}
}

func TestQuote_Anesthesia(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/quote?code=701500&anesthesia=true", "")
	resp := decode[quoteResponse](t, rec)
	if resp.Quote.Private != 5287200 || !resp.Quote.Anesthesia {
		t.Errorf("quote = %+v", resp.Quote)
	}
}

func TestQuote_RawValues(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/quote?professional=1&technical=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[quoteResponse](t, rec)
	if resp.Quote.Private != 3854000 || resp.Quote.OrganizationShare != 511000 {
		t.Errorf("quote = %+v", resp.Quote)
	}
}

func TestQuote_Errors(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/quote?code=404", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown code: expected 404, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/quote?professional=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad number: expected 400, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/categories", "")
	cats := decode[[]categoryResponse](t, rec)
	if len(cats) != 7 || cats[0].Name != "all" || cats[1].Name != "sonography" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"?category=imaging", 1},
		{"?category=dental&q=" + url.QueryEscape("دندان"), 1},
		{"?q=7015", 1},
	}
	for _, tt := range tests {
		rec := f.do(t, http.MethodGet, "/api/catalog"+tt.query, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.query, rec.Code)
		}
		resp := decode[catalogResponse](t, rec)
		if resp.Count != tt.want {
			t.Errorf("%s: count = %d, want %d", tt.query, resp.Count, tt.want)
		}
	}
	if rec := f.do(t, http.MethodGet, "/api/catalog?category=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bogus category: expected 400, got %d", rec.Code)
	}
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	body := `{
		"patient": {"national_id": "0012345678", "name": "Sara Ahmadi", "insurance": "Tamin"},
		"lines": [{"code": "701500"}, {"code": "700123", "tariff": "private"}],
		"misc": [{"title": "dressing", "amount": 50000}],
		"discount": {"kind": "flat", "value": 10000}
	}`
	rec := f.do(t, http.MethodPost, "/api/invoices", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[invoiceResponse](t, rec)
	if len(resp.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(resp.Lines))
	}
	want := int64(4406000 + 3854000 + 50000)
	if resp.Summary.Total != want || resp.Summary.FinalTotal != want-10000 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Summary.Organization != 916300 {
		t.Errorf("organization = %d, want 916300", resp.Summary.Organization)
	}
	if resp.VisitID == "" {
		t.Error("expected a visit id")
	}

	sum, ok := f.history.Summary("0012345678")
	if !ok || sum.TotalInvoices != 1 || sum.TotalAmount != want-10000 {
		t.Fatalf("history summary = %+v", sum)
	}
	visit := sum.Visits[0]
	if visit.Tariff != "insured" {
		t.Errorf("visit tariff = %q, want the first priced line's", visit.Tariff)
	}
	if len(visit.Services) != 3 || visit.Services[1] != (history.ServiceEntry{Name: "رادیوگرافی", Tariff: "private", Cost: 3854000}) {
		t.Errorf("visit services = %+v", visit.Services)
	}
}

func TestCreateInvoice_Errors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty", `{}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
		{"unknown code", `{"lines":[{"code":"404"}]}`, http.StatusNotFound},
		{"unpriceable", `{"lines":[{"code":"900001"}]}`, http.StatusUnprocessableEntity},
		{"bad tariff", `{"lines":[{"code":"701500","tariff":"free"}]}`, http.StatusBadRequest},
		{"bad misc", `{"misc":[{"title":"","amount":5}]}`, http.StatusBadRequest},
		{"bad discount", `{"lines":[{"code":"701500"}],"discount":{"kind":"half","value":1}}`, http.StatusBadRequest},
		{"discount without kind", `{"lines":[{"code":"701500"}],"discount":{"value":1}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/invoices", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPatients(t *testing.T) {
	f := newFixture(t)
	f.history.AddRecord("1", history.Record{Name: "Ali Rezaei", Total: 10})
	f.history.AddRecord("2", history.Record{Name: "Maryam Hosseini", Total: 20})

	rec := f.do(t, http.MethodGet, "/api/patients/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sum := decode[history.Summary](t, rec); sum.Name != "Ali Rezaei" {
		t.Errorf("summary = %+v", sum)
	}

	if rec := f.do(t, http.MethodGet, "/api/patients/999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown patient: expected 404, got %d", rec.Code)
	}

	list := decode[patientListResponse](t, f.do(t, http.MethodGet, "/api/patients?name=maryam", ""))
	if list.Count != 1 || list.Patients[0].NationalID != "2" {
		t.Errorf("search = %+v", list)
	}

	all := decode[patientListResponse](t, f.do(t, http.MethodGet, "/api/patients?limit=1", ""))
	if all.Count != 1 {
		t.Errorf("limited list count = %d, want 1", all.Count)
	}

	if rec := f.do(t, http.MethodGet, "/api/patients?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit: expected 400, got %d", rec.Code)
	}
}

func TestCoefficients_GetAndPut(t *testing.T) {
	f := newFixture(t)

	got := decode[map[string]float64](t, f.do(t, http.MethodGet, "/api/coefficients", ""))
	if got[coefficients.ProfHashed] != coefficients.DefaultProfHashed {
		t.Errorf("prof_hashed = %v", got[coefficients.ProfHashed])
	}

	rec := f.do(t, http.MethodPut, "/api/coefficients", `{"prof_hashed": 600000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.table.Current().ProfHashed != 600000 {
		t.Errorf("live table not swapped: %+v", f.table.Current())
	}
	if f.table.Current().TechHashed != coefficients.DefaultTechHashed {
		t.Errorf("untouched key changed: %+v", f.table.Current())
	}
	saved, err := coefficients.Load(f.coefPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.ProfHashed != 600000 {
		t.Errorf("persisted prof_hashed = %v", saved.ProfHashed)
	}

	quote := decode[quoteResponse](t, f.do(t, http.MethodGet, "/api/quote?code=701500", ""))
	if quote.Quote.Private != 4454000 {
		t.Errorf("private after update = %d, want 4454000", quote.Quote.Private)
	}
}

func TestCoefficients_PutRejected(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
	}{
		{"negative", `{"prof_gov": -1}`},
		{"unknown key", `{"bogus": 1}`},
		{"malformed", `{"prof_gov": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, "/api/coefficients", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if f.table.Current() != coefficients.Defaults() {
				t.Errorf("table changed on rejected update: %+v", f.table.Current())
			}
		})
	}
}

func TestCoefficients_ConcurrentPuts(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i, k := range coefficients.Keys() {
		wg.Add(1)
		go func(k string, v int) {
			defer wg.Done()
			rec := f.do(t, http.MethodPut, "/api/coefficients", fmt.Sprintf(`{%q: %d}`, k, v))
			if rec.Code != http.StatusOK {
				t.Errorf("PUT %s: %d %s", k, rec.Code, rec.Body.String())
			}
		}(k, 1000+i)
	}
	wg.Wait()

	cur := f.table.Current()
	for i, k := range coefficients.Keys() {
		if v, _ := cur.Get(k); v != float64(1000+i) {
			t.Errorf("table %s = %v, want %d", k, v, 1000+i)
		}
	}
	saved, err := coefficients.Load(f.coefPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved != cur {
		t.Errorf("saved = %+v, table = %+v", saved, cur)
	}
}

func TestHandleClinic_Direct(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/clinic", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := f.srv.handleClinic(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := decode[config.Clinic](t, rec); got.Name != "Daryan Clinic" {
		t.Errorf("clinic = %+v", got)
	}
}
