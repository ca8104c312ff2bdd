package service

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook layout: one sheet with the deal header, two sheets with the
// line items. Header row first, data below.
const (
	SheetTransaction       = "Transaction"
	SheetFixedCosts        = "FixedCosts"
	SheetRecurringServices = "RecurringServices"
)

// allowedExtensions constrains uploads. Legacy binary .xls is not
// readable by excelize and is rejected.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// AllowedFile reports whether the uploaded filename carries an
// accepted spreadsheet extension.
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ParseError describes the first validation failure found in an
// uploaded workbook.
type ParseError struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"` // 1-based, 0 when the sheet itself is the problem
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sheet %q, row %d, column %q: %s", e.Sheet, e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
}

// ExcelService parses uploaded workbooks into a submission draft.
// Parsing is pure: nothing is persisted here.
type ExcelService interface {
	Parse(file io.Reader, filename string) (SubmitTransactionRequest, error)
}

type excelService struct{}

func NewExcelService() ExcelService {
	return &excelService{}
}

func (s *excelService) Parse(file io.Reader, filename string) (SubmitTransactionRequest, error) {
	var draft SubmitTransactionRequest

	if !AllowedFile(filename) {
		return draft, fmt.Errorf("invalid file type %q: upload an Excel file (.xlsx, .xlsm)", filepath.Ext(filename))
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return draft, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	if err := s.parseTransactionSheet(workbook, &draft); err != nil {
		return SubmitTransactionRequest{}, err
	}
	if err := s.parseFixedCostSheet(workbook, &draft); err != nil {
		return SubmitTransactionRequest{}, err
	}
	if err := s.parseRecurringServiceSheet(workbook, &draft); err != nil {
		return SubmitTransactionRequest{}, err
	}

	return draft, nil
}

func (s *excelService) parseTransactionSheet(workbook *excelize.File, draft *SubmitTransactionRequest) error {
	rows, err := sheetRows(workbook, SheetTransaction)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return &ParseError{Sheet: SheetTransaction, Reason: "no data row below the header"}
	}

	header := headerIndex(rows[0])
	row := newRowReader(SheetTransaction, header, rows[1], 2)

	draft.BusinessUnit = row.text("business_unit")
	draft.ClientName = row.text("client_name")
	draft.CompanyID = row.text("company_id")
	draft.Salesman = row.text("salesman")
	draft.OrderID = row.text("order_id")
	draft.ExchangeRate = row.number("exchange_rate")
	draft.MRC = row.number("mrc")
	draft.MRCCurrency = strings.ToUpper(row.text("mrc_currency"))
	draft.NRC = row.number("nrc")
	draft.NRCCurrency = strings.ToUpper(row.text("nrc_currency"))
	draft.CommissionRate = row.number("commission_rate")
	draft.AnnualCostOfCapital = row.number("annual_cost_of_capital")
	draft.ContractTermMonths = row.integer("contract_term_months")
	if row.err != nil {
		return row.err
	}

	if draft.OrderID == "" {
		return &ParseError{Sheet: SheetTransaction, Row: 2, Column: "order_id", Reason: "required value is missing"}
	}
	if draft.ClientName == "" {
		return &ParseError{Sheet: SheetTransaction, Row: 2, Column: "client_name", Reason: "required value is missing"}
	}
	if draft.ContractTermMonths < 1 {
		return &ParseError{Sheet: SheetTransaction, Row: 2, Column: "contract_term_months", Reason: "must be a positive whole number of months"}
	}

	return nil
}

func (s *excelService) parseFixedCostSheet(workbook *excelize.File, draft *SubmitTransactionRequest) error {
	rows, err := sheetRows(workbook, SheetFixedCosts)
	if err != nil {
		// Line-item sheets are optional
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	header := headerIndex(rows[0])
	for i, cells := range rows[1:] {
		row := newRowReader(SheetFixedCosts, header, cells, i+2)
		if row.empty() {
			continue
		}

		fc := FixedCostInput{
			Category:         row.text("category"),
			ServiceType:      row.text("service_type"),
			Ticket:           row.text("ticket"),
			Location:         row.text("location"),
			Quantity:         row.number("quantity"),
			UnitCost:         row.number("unit_cost"),
			UnitCostCurrency: strings.ToUpper(row.text("currency")),
		}
		if row.err != nil {
			return row.err
		}
		draft.FixedCosts = append(draft.FixedCosts, fc)
	}

	return nil
}

func (s *excelService) parseRecurringServiceSheet(workbook *excelize.File, draft *SubmitTransactionRequest) error {
	rows, err := sheetRows(workbook, SheetRecurringServices)
	if err != nil {
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	header := headerIndex(rows[0])
	for i, cells := range rows[1:] {
		row := newRowReader(SheetRecurringServices, header, cells, i+2)
		if row.empty() {
			continue
		}

		rs := RecurringServiceInput{
			ServiceType:      row.text("service_type"),
			Note:             row.text("note"),
			Location:         row.text("location"),
			Provider:         row.text("provider"),
			Quantity:         row.number("quantity"),
			Price:            row.number("price"),
			PriceCurrency:    strings.ToUpper(row.text("price_currency")),
			UnitCost1:        row.number("cu1"),
			UnitCost2:        row.number("cu2"),
			UnitCostCurrency: strings.ToUpper(row.text("cu_currency")),
		}
		if row.err != nil {
			return row.err
		}
		draft.RecurringServices = append(draft.RecurringServices, rs)
	}

	return nil
}

// --- Row helpers ---

func sheetRows(workbook *excelize.File, sheet string) ([][]string, error) {
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Sheet: sheet, Reason: "sheet is missing"}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Sheet: sheet, Reason: "sheet is empty"}
	}
	return rows, nil
}

// headerIndex maps normalized column names to their position.
// "Order ID", "order_id" and "ORDER-ID" all match "order_id".
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	return index
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// rowReader accumulates the first error while fields are read, so a
// row can be mapped in one pass and checked once.
type rowReader struct {
	sheet  string
	header map[string]int
	cells  []string
	rowNum int
	err    error
}

func newRowReader(sheet string, header map[string]int, cells []string, rowNum int) *rowReader {
	return &rowReader{sheet: sheet, header: header, cells: cells, rowNum: rowNum}
}

func (r *rowReader) empty() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r *rowReader) text(column string) string {
	idx, ok := r.header[column]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// number validates the cell parses as a decimal and returns it as the
// raw string the submission DTO expects. Empty cells stay empty.
func (r *rowReader) number(column string) string {
	raw := r.text(column)
	if raw == "" || r.err != nil {
		return raw
	}
	if _, err := decimal.NewFromString(raw); err != nil {
		r.err = &ParseError{
			Sheet:  r.sheet,
			Row:    r.rowNum,
			Column: column,
			Reason: fmt.Sprintf("cannot parse %q as a number", raw),
		}
		return ""
	}
	return raw
}

func (r *rowReader) integer(column string) int {
	raw := r.text(column)
	if raw == "" || r.err != nil {
		return 0
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil || !parsed.IsInteger() {
		r.err = &ParseError{
			Sheet:  r.sheet,
			Row:    r.rowNum,
			Column: column,
			Reason: fmt.Sprintf("cannot parse %q as a whole number", raw),
		}
		return 0
	}
	return int(parsed.IntPart())
}
