package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/google/uuid"
)

// AdminUser returns a staff member with the admin role.
func AdminUser() *auth.SessionUser {
	return staff("Kapitan Test", auth.RoleAdmin)
}

// HealthWorker returns a barangay health worker.
func HealthWorker() *auth.SessionUser {
	return staff("BHW Test", auth.RoleHealthWorker)
}

// WasteOfficer returns a staff member assigned to waste collection.
func WasteOfficer() *auth.SessionUser {
	return staff("Waste Test", auth.RoleWasteOfficer)
}

// Clerk returns a records clerk.
func Clerk() *auth.SessionUser {
	return staff("Clerk Test", auth.RoleClerk)
}

func staff(name, role string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:        role + "-" + uuid.NewString()[:8],
		Name:      name,
		Role:      role,
		SessionID: uuid.NewString(),
	}
}

// WithUser adds a staff member to the request context, bypassing the
// session middleware.
func WithUser(r *http.Request, user *auth.SessionUser) *http.Request {
	return auth.WithUser(r, user)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewFormRequest creates a urlencoded POST request carrying form.
func NewFormRequest(target string, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}
