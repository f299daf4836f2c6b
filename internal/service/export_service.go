package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/export"
	"github.com/noah-isme/school-gateway/pkg/format"
	"github.com/noah-isme/school-gateway/pkg/response"
	"github.com/noah-isme/school-gateway/pkg/storage"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type receiptSource interface {
	Receipt(ctx context.Context, actor *models.JWTClaims, receiptID string) (Result[models.PaymentReceipt], error)
	Dues(ctx context.Context, actor *models.JWTClaims, q dto.DuesQuery) (Result[[]models.DuesRecord], error)
}

type reportSource interface {
	Get(ctx context.Context, actor *models.JWTClaims, studentID, exam string) (Result[models.ExamReport], error)
}

type sheetSource interface {
	Sheet(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSheetQuery) (Result[models.AttendanceSheet], error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	DownloadPath string
	SchoolName   string
	ResultTTL    time.Duration
}

// Download is an opened export ready to stream.
type Download struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders receipts, report cards, attendance sheets and dues lists into files and
// hands out signed links to them.
type ExportService struct {
	fees       receiptSource
	reports    reportSource
	attendance sheetSource
	storage    fileStorage
	signer     *storage.SignedURLSigner
	csv        tableRenderer
	xlsx       tableRenderer
	pdf        documentRenderer
	money      format.Formatter
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(fees receiptSource, reports reportSource, attendance sheetSource, files fileStorage, signer *storage.SignedURLSigner, money format.Formatter, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/exports/download"
	}
	return &ExportService{
		fees:       fees,
		reports:    reports,
		attendance: attendance,
		storage:    files,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		xlsx:       export.NewXLSXExporter(),
		pdf:        export.NewPDFExporter(),
		money:      money,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// ReceiptPDF renders a payment receipt with a QR code carrying its id, amount and date.
func (s *ExportService) ReceiptPDF(ctx context.Context, actor *models.JWTClaims, receiptID string) (Result[models.ExportFile], error) {
	src, err := s.fees.Receipt(ctx, actor, receiptID)
	if err != nil {
		return Result[models.ExportFile]{}, err
	}
	r := src.Value

	qr, err := export.QRPNG(fmt.Sprintf("receipt:%s|amount:%.2f|date:%s", r.ReceiptID, r.AmountPaid, r.PaymentDate), 256)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode receipt qr code")
	}

	breakdown := export.Dataset{Title: "Fee breakdown", Headers: []string{"Fee head", "Amount"}}
	for _, c := range r.Breakdown {
		breakdown.Rows = append(breakdown.Rows, []string{headLabel(c.Name), s.money.Currency(c.Amount)})
	}
	doc := export.Document{
		Title:    s.title("Fee Receipt"),
		Subtitle: "Receipt No. " + r.ReceiptID,
		Fields: []export.Field{
			{Label: "Student", Value: r.StudentName},
			{Label: "Student ID", Value: r.StudentID},
			{Label: "Class", Value: strings.TrimSpace(r.Class + " " + r.Section)},
			{Label: "Payment date", Value: r.PaymentDate},
			{Label: "Payment mode", Value: r.PaymentMode},
			{Label: "Status", Value: r.Status},
			{Label: "Amount paid", Value: s.money.Currency(r.AmountPaid)},
			{Label: "Total", Value: s.money.Currency(r.TotalAmount)},
			{Label: "Balance", Value: s.money.Currency(r.Balance)},
		},
		QRCode:  qr,
		QRLabel: "Scan to verify this receipt",
		Footer:  "This is a computer generated receipt.",
	}
	if len(breakdown.Rows) > 0 {
		doc.Tables = []export.Dataset{breakdown}
	}

	payload, err := s.pdf.Render(doc)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return s.store(models.ExportReceipt, "receipt_"+r.ReceiptID+".pdf", contentTypePDF, payload, src.Meta, src.Cause)
}

// ExamReportPDF renders a report card.
func (s *ExportService) ExamReportPDF(ctx context.Context, actor *models.JWTClaims, studentID, exam string) (Result[models.ExportFile], error) {
	src, err := s.reports.Get(ctx, actor, studentID, exam)
	if err != nil {
		return Result[models.ExportFile]{}, err
	}
	r := src.Value

	subjects := export.Dataset{Title: "Scholastic areas", Headers: []string{"Subject", "NB", "SE", "MO", "Total", "Max", "Grade"}}
	for _, m := range r.Subjects {
		subjects.Rows = append(subjects.Rows, []string{
			m.Subject.String(),
			number(m.NB.Float()),
			number(m.SE.Float()),
			number(m.MO.Float()),
			number(m.Obtained()),
			number(m.MaxMarks()),
			m.Grade.String(),
		})
	}
	tables := []export.Dataset{subjects}
	if len(r.CoScholastic) > 0 {
		co := export.Dataset{Title: "Co-scholastic areas", Headers: []string{"Area", "Grade"}}
		for _, g := range r.CoScholastic {
			co.Rows = append(co.Rows, []string{g.Area.String(), g.Grade.String()})
		}
		tables = append(tables, co)
	}

	doc := export.Document{
		Title:    s.title("Report Card"),
		Subtitle: r.Exam.String(),
		Fields: []export.Field{
			{Label: "Student", Value: r.StudentName.String()},
			{Label: "Student ID", Value: r.StudentID.String()},
			{Label: "Class", Value: strings.TrimSpace(r.Class.String() + " " + r.Section.String())},
			{Label: "Roll", Value: r.Roll.String()},
			{Label: "Grand total", Value: number(r.GrandTotal.Float()) + " / " + number(r.MaxTotal)},
			{Label: "Percentage", Value: r.PercentageDisplay},
			{Label: "Overall grade", Value: r.OverallGrade},
		},
		Tables: tables,
		Footer: r.Remarks.String(),
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}
	name := "report_" + r.StudentID.String()
	if exam := strings.TrimSpace(r.Exam.String()); exam != "" {
		name += "_" + exam
	}
	return s.store(models.ExportExamReport, name+".pdf", contentTypePDF, payload, src.Meta, src.Cause)
}

// AttendanceXLSX renders a marking sheet as a spreadsheet.
func (s *ExportService) AttendanceXLSX(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSheetQuery) (Result[models.ExportFile], error) {
	src, err := s.attendance.Sheet(ctx, actor, q)
	if err != nil {
		return Result[models.ExportFile]{}, err
	}
	sheet := src.Value

	data := export.Dataset{
		Title:   fmt.Sprintf("%s-%s %s", sheet.Class, sheet.Section, sheet.Date),
		Headers: []string{"Roll", "Student ID", "Student", "Status"},
	}
	for _, e := range sheet.Entries {
		data.Rows = append(data.Rows, []string{e.Roll, e.StudentID, e.StudentName, markLabel(e.Status)})
	}
	data.Rows = append(data.Rows,
		[]string{"", "", "Present", strconv.Itoa(sheet.Present)},
		[]string{"", "", "Absent", strconv.Itoa(sheet.Absent)},
		[]string{"", "", "Unmarked", strconv.Itoa(sheet.Unmarked)},
	)

	payload, err := s.xlsx.Render(data)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance sheet")
	}
	name := fmt.Sprintf("attendance_%s_%s_%s.xlsx", sheet.Class, sheet.Section, sheet.Date)
	return s.store(models.ExportAttendance, name, contentTypeXLSX, payload, src.Meta, src.Cause)
}

// DuesCSV renders a class's dues with one column per fee head.
func (s *ExportService) DuesCSV(ctx context.Context, actor *models.JWTClaims, q dto.DuesQuery) (Result[models.ExportFile], error) {
	src, err := s.fees.Dues(ctx, actor, q)
	if err != nil {
		return Result[models.ExportFile]{}, err
	}

	headSet := make(map[string]struct{})
	for _, d := range src.Value {
		for _, c := range d.Breakdown {
			headSet[c.Name] = struct{}{}
		}
	}
	heads := make([]string, 0, len(headSet))
	for name := range headSet {
		heads = append(heads, name)
	}
	sort.Strings(heads)

	data := export.Dataset{Headers: []string{"Student ID", "Student", "Class", "Section", "Previous dues"}}
	for _, h := range heads {
		data.Headers = append(data.Headers, headLabel(h))
	}
	data.Headers = append(data.Headers, "Total")
	for _, d := range src.Value {
		amounts := make(map[string]float64, len(d.Breakdown))
		for _, c := range d.Breakdown {
			amounts[c.Name] = c.Amount
		}
		row := []string{d.StudentID, d.StudentName, d.Class, d.Section, amount(d.PreviousDues)}
		for _, h := range heads {
			row = append(row, amount(amounts[h]))
		}
		data.Rows = append(data.Rows, append(row, amount(d.Total)))
	}

	payload, err := s.csv.Render(data)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render dues")
	}
	name := "dues"
	for _, part := range []string{q.Class, q.Section} {
		if part = strings.TrimSpace(part); part != "" {
			name += "_" + part
		}
	}
	return s.store(models.ExportDues, name+".csv", contentTypeCSV, payload, src.Meta, src.Cause)
}

// Open validates a download token and opens the file it points at.
func (s *ExportService) Open(token string) (*Download, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
	}
	filename := strings.TrimPrefix(path.Base(claims.Path), claims.ExportID+"_")
	return &Download{File: file, Filename: filename, ContentType: contentTypeFor(filename)}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func (s *ExportService) store(kind models.ExportKind, filename, contentType string, payload []byte, meta response.Meta, cause error) (Result[models.ExportFile], error) {
	id := uuid.NewString()
	filename = sanitizeFilename(filename)
	relPath, err := s.storage.Save(path.Join(string(kind), id+"_"+filename), payload)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return Result[models.ExportFile]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.metrics.RecordExport(string(kind))
	s.logger.Info("export generated", zap.String("id", id), zap.String("kind", string(kind)), zap.Int("bytes", len(payload)))

	return Result[models.ExportFile]{
		Value: models.ExportFile{
			ID:          id,
			Kind:        kind,
			Filename:    filename,
			ContentType: contentType,
			Size:        len(payload),
			URL:         s.cfg.DownloadPath + "?token=" + url.QueryEscape(token),
			ExpiresAt:   expiresAt,
		},
		Meta:  meta,
		Cause: cause,
	}, nil
}

func (s *ExportService) title(heading string) string {
	if s.cfg.SchoolName == "" {
		return heading
	}
	return s.cfg.SchoolName + " - " + heading
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "?", "", "*", "", "\"", "", "<", "", ">", "", "|", "")

func sanitizeFilename(raw string) string {
	result := filenameReplacer.Replace(strings.TrimSpace(raw))
	if result == "" {
		return "export"
	}
	if len(result) > 100 {
		ext := path.Ext(result)
		result = result[:100-len(ext)] + ext
	}
	return result
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return contentTypePDF
	case ".csv":
		return contentTypeCSV
	case ".xlsx":
		return contentTypeXLSX
	default:
		return "application/octet-stream"
	}
}

func headLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func markLabel(status string) string {
	switch status {
	case models.AttendancePresent:
		return "Present"
	case models.AttendanceAbsent:
		return "Absent"
	default:
		return ""
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
