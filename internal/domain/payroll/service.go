package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"p9ify/internal/domain/employees"
)

type EmployeeDirectory interface {
	Get(ctx context.Context, id string) (employees.Employee, error)
	All(ctx context.Context) ([]employees.Employee, error)
}

type RatesProvider interface {
	Rates(ctx context.Context) (Rates, error)
}

type Service struct {
	store     StoreAPI
	employees EmployeeDirectory
	rates     RatesProvider
	now       func() time.Time
}

func NewService(store StoreAPI, directory EmployeeDirectory, rates RatesProvider) *Service {
	return &Service{store: store, employees: directory, rates: rates, now: time.Now}
}

// Preview computes without persisting. A non-nil override replaces the
// configured rates; fields it leaves out count as zero and are reported.
func (s *Service) Preview(ctx context.Context, in Input, override *RatesInput) (Result, error) {
	if err := ValidateInput(in); err != nil {
		return Result{}, err
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return Result{}, err
	}
	var missing []string
	if override != nil {
		rates, missing = override.Resolve(rates.Bands)
		if len(missing) > 0 {
			slog.Warn("missing rate configuration", "fields", strings.Join(missing, ","), "err", ErrMissingRateConfiguration)
		}
	}
	if err := rates.Validate(); err != nil {
		return Result{}, err
	}
	result := ComputeMonthly(in, rates)
	for _, name := range missing {
		result.Warnings = append(result.Warnings, WarningMissingRate+":"+name)
	}
	return result, nil
}

// Record computes and stores one month for one employee, replacing any
// earlier result under the same key.
func (s *Service) Record(ctx context.Context, key Key, in Input) (Result, error) {
	if err := key.Validate(); err != nil {
		return Result{}, err
	}
	if err := ValidateInput(in); err != nil {
		return Result{}, err
	}
	if _, err := s.employee(ctx, key.EmployeeID); err != nil {
		return Result{}, err
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return Result{}, err
	}
	result := ComputeMonthly(in, rates)
	if result.NSSFSupplied && result.NSSF > rates.nssfCap() {
		slog.Warn("supplied NSSF exceeds statutory cap", "key", key.String(), "nssf", result.NSSF, "cap", rates.nssfCap())
	}
	now := s.now().UTC()
	result.CalculatedAt = &now
	if err := s.store.Put(ctx, key, result); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, key Key) (Result, error) {
	if err := key.Validate(); err != nil {
		return Result{}, err
	}
	return s.store.Get(ctx, key)
}

func (s *Service) Delete(ctx context.Context, key Key) error {
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	return s.store.Delete(ctx, key)
}

// ListMonth returns one row per employee for the month. Employees without
// a record get a zero row so the register always lists everyone.
func (s *Service) ListMonth(ctx context.Context, year int, month time.Month) (MonthSheet, error) {
	if err := (Key{Year: year, Month: month, EmployeeID: "-"}).Validate(); err != nil {
		return MonthSheet{}, err
	}
	people, err := s.employees.All(ctx)
	if err != nil {
		return MonthSheet{}, err
	}
	records, err := s.store.ListMonth(ctx, year, month)
	if err != nil {
		return MonthSheet{}, err
	}
	sheet := MonthSheet{Year: year, Month: month.String(), Rows: make([]MonthRow, 0, len(people)), PayslipCount: len(records)}
	for _, e := range people {
		key := Key{Year: year, Month: month, EmployeeID: string(e.ID)}
		record, ok := records[key]
		row := MonthRow{
			EmployeeID:   string(e.ID),
			EmployeeName: e.Name,
			EmployeeNo:   e.EmployeeNo,
			PIN:          e.PIN,
			Key:          key.String(),
			HasRecord:    ok,
			Record:       record,
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.Totals.Basic += record.Basic
		sheet.Totals.NSSF += record.NSSF
		sheet.Totals.SHIF += record.SHIF
		sheet.Totals.AHL += record.AHL
		sheet.Totals.PAYE += record.PAYE
		sheet.Totals.Net += record.Net
	}
	return sheet, nil
}

// ListPayslips returns records with pay for employees that still exist,
// newest month first.
func (s *Service) ListPayslips(ctx context.Context, filter PayslipFilter) ([]PayslipSummary, error) {
	people, err := s.employees.All(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]employees.Employee, len(people))
	for _, e := range people {
		byID[string(e.ID)] = e
	}
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PayslipSummary, 0, len(records))
	for key, record := range records {
		e, ok := byID[key.EmployeeID]
		if !ok || record.Basic <= 0 {
			continue
		}
		if filter.EmployeeID != "" && filter.EmployeeID != key.EmployeeID {
			continue
		}
		if filter.Year != 0 && filter.Year != key.Year {
			continue
		}
		out = append(out, PayslipSummary{
			Key:          key.String(),
			EmployeeID:   key.EmployeeID,
			EmployeeName: e.Name,
			Year:         key.Year,
			MonthName:    key.Month.String(),
			MonthNumber:  int(key.Month),
			Label:        key.Label(),
			NSSFEmployee: Round(record.NSSF / 2),
			NSSFEmployer: Round(record.NSSF / 2),
			Data:         record,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].MonthNumber != out[j].MonthNumber {
			return out[i].MonthNumber > out[j].MonthNumber
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out, nil
}

// History lists one employee's records, newest first.
func (s *Service) History(ctx context.Context, employeeID string) ([]HistoryEntry, error) {
	if _, err := s.employee(ctx, employeeID); err != nil {
		return nil, err
	}
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0)
	for key := range records {
		if key.EmployeeID == employeeID {
			keys = append(keys, key)
		}
	}
	sortKeysNewestFirst(keys)
	out := make([]HistoryEntry, 0, len(keys))
	for _, key := range keys {
		record := records[key]
		gross := record.Gross
		if gross == 0 {
			gross = record.Basic + record.Benefits + record.Quarters
		}
		out = append(out, HistoryEntry{Key: key.String(), Month: key.Label(), Gross: gross, Data: record})
	}
	return out, nil
}

func (s *Service) Export(ctx context.Context, employeeID string) (EmployeeExport, error) {
	e, err := s.employee(ctx, employeeID)
	if err != nil {
		return EmployeeExport{}, err
	}
	history, err := s.History(ctx, employeeID)
	if err != nil {
		return EmployeeExport{}, err
	}
	out := EmployeeExport{Employee: e, PayrollHistory: history, ExportedAt: s.now().UTC()}
	for _, h := range history {
		out.Totals.TotalEarnings += h.Data.Basic
		out.Totals.TotalPAYE += h.Data.PAYE
		out.Totals.TotalNet += h.Data.Net
	}
	return out, nil
}

// P9 builds the annual card for one employee from stored months.
func (s *Service) P9(ctx context.Context, employeeID string, year int) (AnnualP9, error) {
	if err := (Key{Year: year, Month: time.January, EmployeeID: employeeID}).Validate(); err != nil {
		return AnnualP9{}, err
	}
	if _, err := s.employee(ctx, employeeID); err != nil {
		return AnnualP9{}, err
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return AnnualP9{}, err
	}
	records, err := s.store.ListYear(ctx, year)
	if err != nil {
		return AnnualP9{}, err
	}
	return AggregateAnnual(employeeID, year, LookupMap(records), rates), nil
}

// DeleteForEmployee removes every record keyed to the employee.
func (s *Service) DeleteForEmployee(ctx context.Context, employeeID string) (int, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for key := range records {
		if key.EmployeeID != employeeID {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Service) employee(ctx context.Context, id string) (employees.Employee, error) {
	e, err := s.employees.Get(ctx, id)
	if errors.Is(err, employees.ErrNotFound) {
		return employees.Employee{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	return e, err
}

func sortKeysNewestFirst(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year > keys[j].Year
		}
		return keys[i].Month > keys[j].Month
	})
}
