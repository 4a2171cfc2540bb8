package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/invoice"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/normalize"
	"github.com/gyeh/clinictariff/internal/pricing"
)

const defaultPatientLimit = 100

// quoteResponse is the response for GET /api/quote.
type quoteResponse struct {
	Service *model.Service `json:"service,omitempty"`
	Quote   pricing.Quote  `json:"quote"`
}

// categoryResponse is one entry of GET /api/categories.
type categoryResponse struct {
	Name  classify.Category `json:"name"`
	Label string            `json:"label"`
}

// catalogEntry is a service together with its category.
type catalogEntry struct {
	model.Service
	Category classify.Category `json:"category"`
	Priced   bool              `json:"priced"`
}

// catalogResponse is the response for GET /api/catalog.
type catalogResponse struct {
	Count    int            `json:"count"`
	Services []catalogEntry `json:"services"`
}

// patientRequest identifies the patient an invoice is issued to.
type patientRequest struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Insurance  string `json:"insurance"`
}

// miscRequest is a manual cost line.
type miscRequest struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

// discountRequest is the invoice-level discount.
type discountRequest struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// invoiceRequest is the request body for POST /api/invoices.
type invoiceRequest struct {
	Patient      patientRequest    `json:"patient"`
	TrackingCode string            `json:"tracking_code"`
	Lines        []invoice.Request `json:"lines"`
	Misc         []miscRequest     `json:"misc"`
	Discount     discountRequest   `json:"discount"`
}

// invoiceResponse is the response for POST /api/invoices.
type invoiceResponse struct {
	Lines   []invoice.Line  `json:"lines"`
	Summary invoice.Summary `json:"summary"`
	VisitID string          `json:"visit_id,omitempty"`
}

// patientListResponse is the response for GET /api/patients.
type patientListResponse struct {
	Count    int               `json:"count"`
	Patients []history.Summary `json:"patients"`
}

// handleQuote prices either a catalog code (?code=) or raw values
// (?marker=&professional=&technical=). ?anesthesia=true applies the surcharge.
func (s *Server) handleQuote(c echo.Context) error {
	anesthesia, _ := strconv.ParseBool(c.QueryParam("anesthesia"))

	if code := c.QueryParam("code"); code != "" {
		svc, err := s.catalog.Lookup(code)
		if err != nil {
			return httpError(err)
		}
		q := s.engine.Price(svc.TypeMarker, svc.Professional, svc.Technical, anesthesia)
		return c.JSON(http.StatusOK, quoteResponse{Service: &svc, Quote: q})
	}

	prof, err := numberParam(c, "professional")
	if err != nil {
		return err
	}
	tech, err := numberParam(c, "technical")
	if err != nil {
		return err
	}
	q := s.engine.Price(c.QueryParam("marker"), prof, tech, anesthesia)
	return c.JSON(http.StatusOK, quoteResponse{Quote: q})
}

func (s *Server) handleCategories(c echo.Context) error {
	cats := classify.AllCategories()
	out := make([]categoryResponse, len(cats))
	for i, cat := range cats {
		out[i] = categoryResponse{Name: cat, Label: cat.Label()}
	}
	return c.JSON(http.StatusOK, out)
}

// handleCatalog lists services filtered by ?category= and ?q=.
func (s *Server) handleCatalog(c echo.Context) error {
	category := classify.All
	if raw := c.QueryParam("category"); raw != "" {
		cat, ok := classify.ParseCategory(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown category %q", raw))
		}
		category = cat
	}

	services := s.catalog.Search(category, c.QueryParam("q"))
	out := catalogResponse{Count: len(services), Services: make([]catalogEntry, len(services))}
	for i, svc := range services {
		out.Services[i] = catalogEntry{
			Service:  svc,
			Category: classify.Classify(svc.DisplayText()),
			Priced:   svc.Priceable(),
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleClinic(c echo.Context) error {
	return c.JSON(http.StatusOK, s.clinic)
}

// handleCreateInvoice prices the requested lines, applies the discount, and
// records the visit when a national ID is given.
func (s *Server) handleCreateInvoice(c echo.Context) error {
	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Lines) == 0 && len(req.Misc) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one line is required")
	}

	discount := invoice.Discount{Value: req.Discount.Value}
	if req.Discount.Kind != "" {
		kind, err := invoice.ParseDiscountKind(req.Discount.Kind)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		discount.Kind = kind
	} else if req.Discount.Value != 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "discount kind is required")
	}

	for i := range req.Lines {
		if req.Lines[i].Tariff == "" {
			req.Lines[i].Tariff = s.tariff
			continue
		}
		t, err := invoice.ParseTariffType(string(req.Lines[i].Tariff))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		req.Lines[i].Tariff = t
	}

	inv, err := s.builder.Build(req.Lines, discount)
	if err != nil {
		return httpError(err)
	}
	for _, m := range req.Misc {
		l, err := invoice.NewMiscLine(m.Title, m.Amount)
		if err != nil {
			return httpError(err)
		}
		inv.Add(l)
	}

	sum := inv.Summarize()
	resp := invoiceResponse{Lines: inv.Lines, Summary: sum}

	if s.history != nil && req.Patient.NationalID != "" {
		rec := history.FromInvoice(inv, sum)
		rec.Name = req.Patient.Name
		rec.Insurance = req.Patient.Insurance
		rec.TrackingCode = req.TrackingCode
		visit, err := s.history.AddRecord(req.Patient.NationalID, rec)
		if err != nil {
			return httpError(err)
		}
		resp.VisitID = visit.ID.String()
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleGetPatient(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient history is disabled")
	}
	sum, ok := s.history.Summary(c.Param("nid"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, sum)
}

// handleListPatients searches by ?name= or lists up to ?limit= patients.
func (s *Server) handleListPatients(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusOK, patientListResponse{Patients: []history.Summary{}})
	}

	var patients []history.Summary
	if name := c.QueryParam("name"); name != "" {
		patients = s.history.SearchByName(name)
	} else {
		limit := defaultPatientLimit
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
			}
			limit = n
		}
		patients = s.history.All(limit)
	}
	if patients == nil {
		patients = []history.Summary{}
	}
	return c.JSON(http.StatusOK, patientListResponse{Count: len(patients), Patients: patients})
}

func (s *Server) handleGetCoefficients(c echo.Context) error {
	return c.JSON(http.StatusOK, s.table.Current().ToMap())
}

// handlePutCoefficients applies the given keys on top of the current set,
// validates, persists, and swaps the live table.
func (s *Server) handlePutCoefficients(c echo.Context) error {
	var body map[string]float64
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	s.coefMu.Lock()
	defer s.coefMu.Unlock()

	next := s.table.Current()
	for k, v := range body {
		var err error
		if next, err = next.With(k, v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if err := next.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if s.coefPath != "" {
		if err := coefficients.Save(s.coefPath, next); err != nil {
			s.log.Error().Err(err).Str("path", s.coefPath).Msg("save coefficients")
			return echo.NewHTTPError(http.StatusInternalServerError, "could not save coefficients")
		}
	}
	s.table.Replace(next)
	s.log.Info().Interface("coefficients", next.ToMap()).Msg("coefficients updated")
	return c.JSON(http.StatusOK, next.ToMap())
}

func numberParam(c echo.Context, name string) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := normalize.ParseNumberE(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: %v", name, err))
	}
	return v, nil
}

// httpError maps domain errors to HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, invoice.ErrUnpriceable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, invoice.ErrInvalidMisc), errors.Is(err, history.ErrEmptyNationalID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}
