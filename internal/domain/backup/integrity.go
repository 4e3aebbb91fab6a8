package backup

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"p9ify/internal/domain/employees"
)

// Validate reports data problems without changing anything.
func (s *Service) Validate(ctx context.Context) ([]Issue, error) {
	people, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.payrolls.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	issues := []Issue{}
	known := make(map[string]bool, len(people))
	pins := make(map[string]int, len(people))
	for _, e := range people {
		known[string(e.ID)] = true
		if pin := strings.TrimSpace(e.PIN); pin != "" {
			pins[pin]++
		}
	}
	for _, e := range people {
		id := string(e.ID)
		if strings.TrimSpace(e.Name) == "" {
			issues = append(issues, Issue{Type: IssueTypeEmployee, ID: id, Issue: "Missing name", Severity: SeverityHigh})
		}
		pin := strings.TrimSpace(e.PIN)
		if pin == "" {
			issues = append(issues, Issue{Type: IssueTypeEmployee, ID: id, Issue: "Missing KRA PIN", Severity: SeverityHigh})
		} else if pins[pin] > 1 {
			issues = append(issues, Issue{Type: IssueTypeEmployee, ID: id, Issue: "Duplicate KRA PIN", Severity: SeverityMedium})
		}
	}

	var payrollIssues []Issue
	for key, r := range records {
		if !known[key.EmployeeID] {
			payrollIssues = append(payrollIssues, Issue{Type: IssueTypePayroll, Key: key.String(), Issue: "Orphaned payroll (employee not found)", Severity: SeverityMedium})
		}
		if r.Basic < 0 {
			payrollIssues = append(payrollIssues, Issue{Type: IssueTypePayroll, Key: key.String(), Issue: "Negative basic pay", Severity: SeverityLow})
		}
	}
	sort.SliceStable(payrollIssues, func(i, j int) bool { return payrollIssues[i].Key < payrollIssues[j].Key })
	return append(issues, payrollIssues...), nil
}

// Repair trims names, normalizes PINs and drops orphaned payroll records.
// It returns how many employees and records it changed.
func (s *Service) Repair(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	people, err := s.employees.List(ctx)
	if err != nil {
		return 0, err
	}
	records, err := s.payrolls.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	known := make(map[string]bool, len(people))
	for _, e := range people {
		known[string(e.ID)] = true
		name := strings.TrimSpace(e.Name)
		pin := employees.NormalizePIN(e.PIN)
		if name == e.Name && pin == e.PIN {
			continue
		}
		e.Name, e.PIN = name, pin
		if err := s.employees.Put(ctx, e); err != nil {
			return fixed, err
		}
		fixed++
	}
	for key := range records {
		if known[key.EmployeeID] {
			continue
		}
		if err := s.payrolls.Delete(ctx, key); err != nil {
			return fixed, err
		}
		fixed++
	}
	if fixed > 0 {
		slog.Info("data repair applied", "fixed", fixed)
	}
	return fixed, nil
}
