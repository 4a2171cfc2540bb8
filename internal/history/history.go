// Package history keeps a per-patient record of issued invoices in a JSON
// file keyed by national ID.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/fileio"
	"github.com/gyeh/clinictariff/internal/invoice"
)

// DateLayout is the calendar-day format stored on each visit.
const DateLayout = "2006-01-02"

// DateTimeLayout is the local timestamp format of the "datetime" field.
const DateTimeLayout = "2006-01-02 15:04:05"

// MinQueryLen is the shortest name fragment SearchByName accepts.
const MinQueryLen = 2

// ErrEmptyNationalID is returned when a record has no national ID.
var ErrEmptyNationalID = errors.New("national id is required")

// ServiceEntry is one billed line of a visit.
type ServiceEntry struct {
	Name   string `json:"name"`
	Tariff string `json:"tariff"`
	Cost   int64  `json:"cost"`
}

// UnmarshalJSON accepts either a {name, tariff, cost} object or a bare
// service name.
func (e *ServiceEntry) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*e = ServiceEntry{Name: name}
		return nil
	}
	type plain ServiceEntry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("service entry: %w", err)
	}
	*e = ServiceEntry(p)
	return nil
}

// Visit is one invoice issued to a patient.
type Visit struct {
	ID           uuid.UUID      `json:"id"`
	Date         string         `json:"date"`
	DateTime     string         `json:"datetime"`
	IssuedAt     time.Time      `json:"issued_at"`
	TrackingCode string         `json:"tracking_code"`
	Services     []ServiceEntry `json:"services"`
	Total        int64          `json:"total"`
	Organization int64          `json:"organization"`
	PatientPay   int64          `json:"patient_pay"`
	Discount     int64          `json:"discount"`
	Tariff       string         `json:"tariff_type"`
	DocumentPath string         `json:"pdf_path"`
}

// UnmarshalJSON fills IssuedAt from the local "datetime" field for visits
// written without one. An unparseable datetime leaves IssuedAt zero.
func (v *Visit) UnmarshalJSON(b []byte) error {
	type plain Visit
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.IssuedAt.IsZero() && p.DateTime != "" {
		if t, err := time.ParseInLocation(DateTimeLayout, p.DateTime, time.Local); err == nil {
			p.IssuedAt = t
		}
	}
	*v = Visit(p)
	return nil
}

// Day returns the visit's calendar day in DateLayout. Dates stored in another
// calendar fall back to the day of IssuedAt.
func (v Visit) Day() string {
	if _, err := time.Parse(DateLayout, v.Date); err == nil {
		return v.Date
	}
	if v.IssuedAt.IsZero() {
		return ""
	}
	return v.IssuedAt.Format(DateLayout)
}

// Patient is the stored record for one national ID.
type Patient struct {
	Name      string  `json:"name"`
	Insurance string  `json:"insurance"`
	Visits    []Visit `json:"invoices"`
}

// Record is the input to AddRecord: patient details plus the invoice to log.
type Record struct {
	Name         string
	Insurance    string
	TrackingCode string
	Services     []ServiceEntry
	Total        int64
	Organization int64
	PatientPay   int64
	Discount     int64
	Tariff       string
	DocumentPath string
}

// FromInvoice fills the billing part of a Record from a summarized invoice.
// Patient details are left to the caller.
func FromInvoice(inv *invoice.Invoice, sum invoice.Summary) Record {
	services := make([]ServiceEntry, len(inv.Lines))
	for i, l := range inv.Lines {
		services[i] = ServiceEntry{Name: l.Description, Tariff: string(l.Tariff), Cost: l.Total}
	}
	return Record{
		Services:     services,
		Total:        sum.FinalTotal,
		Organization: sum.Organization,
		PatientPay:   sum.FinalPatient,
		Discount:     sum.DiscountAmount,
		Tariff:       string(inv.Tariff()),
	}
}

// Summary aggregates a patient's visits.
type Summary struct {
	NationalID    string    `json:"national_id"`
	Name          string    `json:"name"`
	Insurance     string    `json:"insurance"`
	TotalInvoices int       `json:"total_invoices"`
	TotalAmount   int64     `json:"total_amount"`
	LastVisit     time.Time `json:"last_visit"`
	Visits        []Visit   `json:"invoices"`
}

// Store is a file-backed patient history. It is safe for concurrent use.
type Store struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu      sync.Mutex
	records map[string]*Patient
}

// Open loads the history file at path. A missing file starts an empty store;
// a file that does not parse is an error so it is never overwritten.
func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		log:     log.With().Str("component", "history").Logger(),
		now:     time.Now,
		records: make(map[string]*Patient),
	}
	b, err := fileio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.records); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	s.log.Debug().Int("patients", len(s.records)).Str("path", path).Msg("history loaded")
	return s, nil
}

// AddRecord appends an invoice to the patient's history, creating the patient
// on first sight. A non-empty name or insurance replaces the stored one.
func (s *Store) AddRecord(nationalID string, r Record) (Visit, error) {
	id := strings.TrimSpace(nationalID)
	if id == "" {
		return Visit{}, ErrEmptyNationalID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, existed := s.records[id]
	if !existed {
		p = &Patient{Visits: []Visit{}}
		s.records[id] = p
	}
	prevName, prevInsurance := p.Name, p.Insurance
	if r.Name != "" {
		p.Name = r.Name
	}
	if r.Insurance != "" {
		p.Insurance = r.Insurance
	}

	now := s.now()
	services := r.Services
	if services == nil {
		services = []ServiceEntry{}
	}
	v := Visit{
		ID:           uuid.New(),
		Date:         now.Format(DateLayout),
		DateTime:     now.Format(DateTimeLayout),
		IssuedAt:     now,
		TrackingCode: r.TrackingCode,
		Services:     services,
		Total:        r.Total,
		Organization: r.Organization,
		PatientPay:   r.PatientPay,
		Discount:     r.Discount,
		Tariff:       r.Tariff,
		DocumentPath: r.DocumentPath,
	}
	p.Visits = append(p.Visits, v)

	if err := s.saveLocked(); err != nil {
		// Memory must keep matching the file.
		if existed {
			p.Visits = p.Visits[:len(p.Visits)-1]
			p.Name, p.Insurance = prevName, prevInsurance
		} else {
			delete(s.records, id)
		}
		return Visit{}, err
	}
	s.log.Info().Str("visit_id", v.ID.String()).Int64("total", v.Total).Msg("visit recorded")
	return v, nil
}

// Get returns a copy of the stored patient record.
func (s *Store) Get(nationalID string) (Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[strings.TrimSpace(nationalID)]
	if !ok {
		return Patient{}, false
	}
	return clonePatient(p), true
}

// Summary returns the aggregated history of one patient.
func (s *Store) Summary(nationalID string) (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(nationalID)
	p, ok := s.records[id]
	if !ok {
		return Summary{}, false
	}
	return summarize(id, p), true
}

// SearchByName returns patients whose name contains the query, most recent
// visit first. Queries shorter than MinQueryLen match
// nothing.
func (s *Store) SearchByName(query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLen {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Summary
	for id, p := range s.records {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, summarize(id, p))
		}
	}
	sortByLastVisit(out)
	return out
}

// All returns up to limit patients, most recent visit first. A limit of zero
// or less returns every patient.
func (s *Store) All(limit int) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, 0, len(s.records))
	for id, p := range s.records {
		out = append(out, summarize(id, p))
	}
	sortByLastVisit(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountOn returns how many invoices were issued on the calendar day of day.
func (s *Store) CountOn(day time.Time) int {
	want := day.Format(DateLayout)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.records {
		for _, v := range p.Visits {
			if v.Day() == want {
				n++
			}
		}
	}
	return n
}

func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := fileio.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func summarize(id string, p *Patient) Summary {
	sum := Summary{
		NationalID:    id,
		Name:          p.Name,
		Insurance:     p.Insurance,
		TotalInvoices: len(p.Visits),
		Visits:        append([]Visit(nil), p.Visits...),
	}
	for _, v := range p.Visits {
		sum.TotalAmount += v.Total
	}
	if n := len(p.Visits); n > 0 {
		sum.LastVisit = p.Visits[n-1].IssuedAt
	}
	return sum
}

// sortByLastVisit orders summaries newest first, breaking ties by national ID.
func sortByLastVisit(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].LastVisit.Equal(s[j].LastVisit) {
			return s[i].LastVisit.After(s[j].LastVisit)
		}
		return s[i].NationalID < s[j].NationalID
	})
}

func clonePatient(p *Patient) Patient {
	c := *p
	c.Visits = append([]Visit(nil), p.Visits...)
	return c
}
