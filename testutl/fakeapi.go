// Package testutl provides an in-process stand-in for the donations API.
package testutl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-michi/michi"
	"github.com/mscno/givebox/pkg/api"
)

// Route keys accepted by Fail, Drop, Hold and Calls.
const (
	RouteSendOTP      = "POST /api/login/send_otp"
	RouteVerifyOTP    = "POST /api/login/verify_otp"
	RouteDonorsTotal  = "GET /api/donors/total"
	RouteNGOs         = "GET /api/ngos"
	RouteRequirements = "GET /api/ngo_requirements/{id}"
	RouteDonate       = "POST /api/donate"
)

// DefaultOTP is issued for every send_otp call unless SetOTP overrides it.
const DefaultOTP = "123456"

type failure struct {
	status  int
	message string
	drop    bool
}

// FakeAPI serves the donations API from memory. All fields are guarded by mu;
// use the accessor methods from tests.
type FakeAPI struct {
	Server *httptest.Server

	mu            sync.Mutex
	otp           string
	issued        map[string]string
	organizations []api.Organization
	catalogs      map[int]api.RequirementCatalog
	donors        int
	donations     []api.DonationActionRequest
	calls         map[string]int
	failures      map[string]failure
	holds         map[string]*hold
}

type hold struct {
	ch   chan struct{}
	once sync.Once
}

func (h *hold) release() {
	h.once.Do(func() { close(h.ch) })
}

// NewFakeAPI starts the server and closes it when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		otp:      DefaultOTP,
		issued:   make(map[string]string),
		catalogs: make(map[int]api.RequirementCatalog),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		holds:    make(map[string]*hold),
	}

	r := michi.NewRouter()
	r.Handle(RouteSendOTP, f.route(RouteSendOTP, f.sendOTP))
	r.Handle(RouteVerifyOTP, f.route(RouteVerifyOTP, f.verifyOTP))
	r.Handle(RouteDonorsTotal, f.route(RouteDonorsTotal, f.donorsTotal))
	r.Handle(RouteNGOs, f.route(RouteNGOs, f.listNGOs))
	r.Handle(RouteRequirements, f.route(RouteRequirements, f.requirements))
	r.Handle(RouteDonate, f.route(RouteDonate, f.donate))

	f.Server = httptest.NewServer(applyMiddleware(r, withRecovery(t), withRequestLog(t)))
	t.Cleanup(func() {
		f.releaseAll()
		f.Server.Close()
	})
	return f
}

// URL is the API base URL, including the /api prefix.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// AddOrganization registers an NGO together with its requirement catalog.
func (f *FakeAPI) AddOrganization(org api.Organization, requirements map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.organizations = append(f.organizations, org)
	if requirements == nil {
		requirements = map[string][]string{}
	}
	f.catalogs[org.ID] = api.RequirementCatalog{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Requirements:     requirements,
	}
}

// SetOTP changes the passcode issued by subsequent send_otp calls.
func (f *FakeAPI) SetOTP(otp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otp = otp
}

// SetDonors sets the donor counter.
func (f *FakeAPI) SetDonors(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donors = n
}

// Fail makes route answer with status and {message} until Recover is called.
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: status, message: message}
}

// Drop makes route close the connection without answering.
func (f *FakeAPI) Drop(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{drop: true}
}

// Recover clears a Fail or Drop on route.
func (f *FakeAPI) Recover(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, route)
}

// Hold blocks requests on route until the returned release func is called.
func (f *FakeAPI) Hold(route string) (release func()) {
	h := &hold{ch: make(chan struct{})}
	f.mu.Lock()
	f.holds[route] = h
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		if f.holds[route] == h {
			delete(f.holds, route)
		}
		f.mu.Unlock()
		h.release()
	}
}

// Calls reports how many requests reached route.
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// Donations returns every accepted donation request in arrival order.
func (f *FakeAPI) Donations() []api.DonationActionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.DonationActionRequest(nil), f.donations...)
}

// Donors returns the current donor counter.
func (f *FakeAPI) Donors() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.donors
}

func (f *FakeAPI) releaseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for route, h := range f.holds {
		h.release()
		delete(f.holds, route)
	}
}

func (f *FakeAPI) route(key string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[key]++
		fail, failing := f.failures[key]
		held := f.holds[key]
		f.mu.Unlock()

		if held != nil {
			select {
			case <-held.ch:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			if fail.drop {
				dropConnection(w)
				return
			}
			writeMessage(w, fail.status, fail.message)
			return
		}
		next(w, r)
	})
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("testutl: response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(fmt.Sprintf("testutl: hijack failed: %v", err))
	}
	conn.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (f *FakeAPI) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}
	f.mu.Lock()
	f.issued[req.Email] = f.otp
	f.mu.Unlock()
	writeMessage(w, http.StatusOK, "OTP sent successfully!")
}

func (f *FakeAPI) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.issued[req.Email]
	if !ok {
		writeMessage(w, http.StatusNotFound, "No OTP found for this email. Please request a new one.")
		return
	}
	if stored != req.OTP {
		writeMessage(w, http.StatusUnauthorized, "Invalid OTP. Please try again.")
		return
	}
	delete(f.issued, req.Email)
	writeMessage(w, http.StatusOK, "Login successful!")
}

func (f *FakeAPI) donorsTotal(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	n := f.donors
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"total_donors": n})
}

func (f *FakeAPI) listNGOs(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	orgs := append([]api.Organization{}, f.organizations...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, orgs)
}

func (f *FakeAPI) requirements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "NGO not found")
		return
	}
	f.mu.Lock()
	catalog, ok := f.catalogs[id]
	f.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "NGO not found")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (f *FakeAPI) donate(w http.ResponseWriter, r *http.Request) {
	var req api.DonationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required data")
		return
	}
	if req.UserEmail == "" || req.OrganizationID == 0 || req.ActionType == "" || len(req.SelectedItems) == 0 {
		writeMessage(w, http.StatusBadRequest, "Missing required data")
		return
	}
	if req.ActionType == api.ActionResale && (req.OriginalCost == nil || req.PurchaseYear == nil) {
		writeMessage(w, http.StatusBadRequest, "Original cost and purchase year are required for resale")
		return
	}
	f.mu.Lock()
	f.donations = append(f.donations, req)
	f.donors++
	f.mu.Unlock()
	writeMessage(w, http.StatusOK, fmt.Sprintf("Thank you for your %s! Your contribution has been recorded.", req.ActionType))
}
