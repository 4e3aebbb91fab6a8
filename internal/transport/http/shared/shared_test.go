package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatorRejectSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("pin", " ", "is required")
	v.NonNegative("basic", -1)
	v.NonNegative("benefits", 0)

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Code)
	}
	fields := body.Error.Details.Fields
	if len(fields) != 2 || fields[0].Field != "basic" || fields[1].Field != "pin" {
		t.Fatalf("unexpected issues %+v", fields)
	}
}

func TestValidatorPeriod(t *testing.T) {
	v := NewValidator()
	if got := v.Year("year", "2026"); got != 2026 {
		t.Fatalf("expected 2026, got %d", got)
	}
	if got := v.Month("month", "Feb"); got != time.February {
		t.Fatalf("expected February, got %v", got)
	}
	if got := v.Month("month", "12"); got != time.December {
		t.Fatalf("expected December, got %v", got)
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues %+v", v.Issues())
	}
	v.Year("year", "26")
	v.Month("month", "Smarch")
	if len(v.Issues()) != 2 {
		t.Fatalf("expected two issues, got %+v", v.Issues())
	}
}

func TestPagination(t *testing.T) {
	v := NewValidator()
	p := v.Pagination(httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil), 50, 500)
	if p.Limit != 500 || p.Offset != 20 || v.HasIssues() {
		t.Fatalf("unexpected pagination %+v %+v", p, v.Issues())
	}

	v = NewValidator()
	p = v.Pagination(httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-3", nil), 50, 500)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("expected defaults on bad input, got %+v", p)
	}
	if len(v.Issues()) != 2 {
		t.Fatalf("expected two issues, got %+v", v.Issues())
	}
}
