package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
	"github.com/attendly/attendance-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries the rendered document and its HTTP metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders an employee's attendance history into downloadable
// documents.
type ExportService struct {
	attendance attendanceRepository
	employees  employeeRepository
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs the service. Nil renderers fall back to the
// defaults.
func NewExportService(attendance attendanceRepository, employees employeeRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attendance: attendance, employees: employees, csv: csv, pdf: pdf, logger: logger}
}

var historyHeaders = []string{"Date", "Status", "Check In", "Check Out"}

// History renders the full attendance history for one employee.
func (s *ExportService) History(ctx context.Context, employeeID string, format ExportFormat) (*ExportResult, error) {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	rows, _, err := s.attendance.History(ctx, models.AttendanceFilter{
		EmployeeID: employeeID,
		Page:       1,
		PageSize:   10000,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance history")
	}

	data := export.Dataset{Headers: historyHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, rec := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Date":      rec.Date.Format("2006-01-02"),
			"Status":    string(rec.Status),
			"Check In":  derefClock(rec.CheckIn),
			"Check Out": derefClock(rec.CheckOut),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ExportFormatCSV:
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("attendance_%s_%s.csv", emp.Code, stamp),
			ContentType: "text/csv",
			Data:        raw,
		}, nil
	case ExportFormatPDF:
		raw, err := s.pdf.Render(data, fmt.Sprintf("Attendance History %s", emp.FullName))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("attendance_%s_%s.pdf", emp.Code, stamp),
			ContentType: "application/pdf",
			Data:        raw,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func derefClock(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
