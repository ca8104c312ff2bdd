package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventBroadcaster pushes workflow events to connected clients.
// Satisfied by the websocket hub; nil disables broadcasting.
type EventBroadcaster interface {
	BroadcastEvent(event string, data interface{})
}

// --- DTOs ---

type FixedCostInput struct {
	Category         string `json:"category"`
	ServiceType      string `json:"service_type"`
	Ticket           string `json:"ticket"`
	Location         string `json:"location"`
	Quantity         string `json:"quantity"`           // Decimal string, empty = missing
	UnitCost         string `json:"unit_cost"`          // Decimal string, original currency
	UnitCostCurrency string `json:"unit_cost_currency"` // Defaults to PEN
}

type RecurringServiceInput struct {
	ServiceType      string `json:"service_type"`
	Note             string `json:"note"`
	Location         string `json:"location"`
	Provider         string `json:"provider"`
	Quantity         string `json:"quantity"`
	Price            string `json:"price"`
	PriceCurrency    string `json:"price_currency"`
	UnitCost1        string `json:"cu1"`
	UnitCost2        string `json:"cu2"`
	UnitCostCurrency string `json:"cu_currency"`
}

type SubmitTransactionRequest struct {
	BusinessUnit string `json:"business_unit"`
	ClientName   string `json:"client_name" binding:"required"`
	CompanyID    string `json:"company_id"`
	Salesman     string `json:"salesman"`
	OrderID      string `json:"order_id" binding:"required"`

	ExchangeRate string `json:"exchange_rate"` // Decimal string; empty = use the active reference rate
	MRC          string `json:"mrc"`
	MRCCurrency  string `json:"mrc_currency"`
	NRC          string `json:"nrc"`
	NRCCurrency  string `json:"nrc_currency"`

	CommissionRate      string `json:"commission_rate"`
	ContractTermMonths  int    `json:"contract_term_months" binding:"required,min=1"`
	AnnualCostOfCapital string `json:"annual_cost_of_capital"`

	FixedCosts        []FixedCostInput        `json:"fixed_costs"`
	RecurringServices []RecurringServiceInput `json:"recurring_services"`
}

type RejectTransactionRequest struct {
	Note string `json:"note"`
}

type FixedCostResponse struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	ServiceType      string  `json:"service_type"`
	Ticket           string  `json:"ticket"`
	Location         string  `json:"location"`
	Quantity         *string `json:"quantity"`
	UnitCostOriginal *string `json:"unit_cost_original"`
	UnitCostCurrency string  `json:"unit_cost_currency"`
	UnitCostPEN      *string `json:"unit_cost_pen"`
	Total            *string `json:"total"`
}

type RecurringServiceResponse struct {
	ID            string  `json:"id"`
	ServiceType   string  `json:"service_type"`
	Note          string  `json:"note"`
	Location      string  `json:"location"`
	Provider      string  `json:"provider"`
	Quantity      *string `json:"quantity"`
	PriceOriginal *string `json:"price_original"`
	PriceCurrency string  `json:"price_currency"`
	PricePEN      *string `json:"price_pen"`
	CU1PEN        *string `json:"cu1_pen"`
	CU2PEN        *string `json:"cu2_pen"`
	Income        *string `json:"income"`
	Expense       string  `json:"expense"`
}

type TransactionResponse struct {
	ID                    string                     `json:"id"`
	BusinessUnit          string                     `json:"business_unit"`
	ClientName            string                     `json:"client_name"`
	CompanyID             string                     `json:"company_id"`
	Salesman              string                     `json:"salesman"`
	OrderID               string                     `json:"order_id"`
	ExchangeRate          string                     `json:"exchange_rate"`
	MRCPEN                string                     `json:"mrc_pen"`
	NRCPEN                string                     `json:"nrc_pen"`
	TotalRevenue          string                     `json:"total_revenue"`
	TotalExpense          string                     `json:"total_expense"`
	GrossMargin           string                     `json:"gross_margin"`
	GrossMarginRatio      string                     `json:"gross_margin_ratio"`
	Commission            string                     `json:"commission"`
	CommissionRate        string                     `json:"commission_rate"`
	InstallationCost      string                     `json:"installation_cost"`
	InstallationCostRatio string                     `json:"installation_cost_ratio"`
	NPV                   *string                    `json:"npv"`
	IRR                   *string                    `json:"irr"`
	PaybackMonths         *int                       `json:"payback_months"`
	ContractTermMonths    int                        `json:"contract_term_months"`
	AnnualCostOfCapital   string                     `json:"annual_cost_of_capital"`
	ApprovalStatus        string                     `json:"approval_status"`
	SubmissionDate        string                     `json:"submission_date"`
	ApprovalDate          *string                    `json:"approval_date"`
	RejectionNote         string                     `json:"rejection_note"`
	ApproverName          string                     `json:"approver_name,omitempty"`
	FixedCosts            []FixedCostResponse        `json:"fixed_costs"`
	RecurringServices     []RecurringServiceResponse `json:"recurring_services"`
}

type TransactionListResponse struct {
	Items   []TransactionResponse `json:"items"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// --- Interface ---

type TransactionService interface {
	Submit(ctx context.Context, userID string, req SubmitTransactionRequest) (TransactionResponse, error)
	List(ctx context.Context, status string, page, perPage int) (TransactionListResponse, error)
	GetByID(ctx context.Context, id string) (TransactionResponse, error)
	Approve(ctx context.Context, id, userID string) (TransactionResponse, error)
	Reject(ctx context.Context, id, userID, note string) (TransactionResponse, error)
}

type transactionService struct {
	txnRepo   repository.TransactionRepository
	auditRepo repository.AuditRepository
	rateRepo  repository.ExchangeRateRepository
	txManager repository.TransactionManager
	hub       EventBroadcaster
}

func NewTransactionService(
	txnRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	rateRepo repository.ExchangeRateRepository,
	txManager repository.TransactionManager,
	hub EventBroadcaster,
) TransactionService {
	return &transactionService{
		txnRepo:   txnRepo,
		auditRepo: auditRepo,
		rateRepo:  rateRepo,
		txManager: txManager,
		hub:       hub,
	}
}

// --- Implementation ---

func (s *transactionService) Submit(ctx context.Context, userID string, req SubmitTransactionRequest) (TransactionResponse, error) {
	exchangeRate, err := s.resolveExchangeRate(ctx, req)
	if err != nil {
		return TransactionResponse{}, err
	}

	txn, err := buildTransaction(req, exchangeRate)
	if err != nil {
		return TransactionResponse{}, err
	}

	ComputeFinancials(txn)

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.txnRepo.Create(txCtx, txn); createErr != nil {
			// The unique index on order_id is the authoritative guard, so
			// a concurrent submit of the same order surfaces as a conflict.
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return ErrDuplicateOrderID
			}
			return fmt.Errorf("failed to create transaction: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_id":      txn.OrderID,
			"client_name":   txn.ClientName,
			"total_revenue": txn.TotalRevenue.StringFixed(4),
			"gross_margin":  txn.GrossMargin.StringFixed(4),
		})
		audit := model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionSubmitTransaction,
			EntityID:   txn.ID.String(),
			EntityName: txn.OrderID,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	s.broadcast("transaction_submitted", txn)

	reloaded, err := s.txnRepo.FindByID(ctx, txn.ID)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("failed to reload transaction: %w", err)
	}
	return toTransactionResponse(reloaded), nil
}

func (s *transactionService) List(ctx context.Context, status string, page, perPage int) (TransactionListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 30
	}

	transactions, total, err := s.txnRepo.List(ctx, status, page, perPage)
	if err != nil {
		return TransactionListResponse{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	items := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, toTransactionResponse(&transactions[i]))
	}

	return TransactionListResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *transactionService) GetByID(ctx context.Context, id string) (TransactionResponse, error) {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("%w: malformed transaction id", ErrInvalidInput)
	}

	txn, err := s.txnRepo.FindByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransactionResponse{}, ErrNotFound
		}
		return TransactionResponse{}, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	return toTransactionResponse(txn), nil
}

func (s *transactionService) Approve(ctx context.Context, id, userID string) (TransactionResponse, error) {
	return s.transition(ctx, id, userID, model.StatusApproved, "")
}

func (s *transactionService) Reject(ctx context.Context, id, userID, note string) (TransactionResponse, error) {
	if strings.TrimSpace(note) == "" {
		return TransactionResponse{}, ErrRejectionNoteRequired
	}
	return s.transition(ctx, id, userID, model.StatusRejected, note)
}

// transition moves a PENDING transaction to APPROVED or REJECTED. The
// row is re-read under lock inside the transaction so two concurrent
// calls cannot both pass the status guard.
func (s *transactionService) transition(ctx context.Context, id, userID, target, note string) (TransactionResponse, error) {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("%w: malformed transaction id", ErrInvalidInput)
	}

	approverID, err := uuid.Parse(userID)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	action := model.ActionApproveTransaction
	event := "transaction_approved"
	if target == model.StatusRejected {
		action = model.ActionRejectTransaction
		event = "transaction_rejected"
	}

	var txn *model.Transaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		txn, findErr = s.txnRepo.FindByIDForUpdate(txCtx, txnID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch transaction: %w", findErr)
		}

		if txn.ApprovalStatus != model.StatusPending {
			return fmt.Errorf("%w: already %s", ErrNotPending, txn.ApprovalStatus)
		}

		now := time.Now()
		txn.ApprovalStatus = target
		txn.ApprovalDate = &now
		txn.ApprovedBy = &approverID
		txn.RejectionNote = note

		if saveErr := s.txnRepo.Update(txCtx, txn); saveErr != nil {
			return fmt.Errorf("failed to update transaction: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_id": txn.OrderID,
			"status":   target,
			"note":     note,
		})
		audit := model.AuditLog{
			UserID:     &approverID,
			Action:     action,
			EntityID:   txn.ID.String(),
			EntityName: txn.OrderID,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	s.broadcast(event, txn)

	reloaded, err := s.txnRepo.FindByID(ctx, txnID)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("failed to reload transaction: %w", err)
	}
	return toTransactionResponse(reloaded), nil
}

// resolveExchangeRate uses the submitted rate when present, otherwise
// falls back to the active reference rate for the first non-PEN
// currency in the payload. All-PEN submissions get a rate of 1.
func (s *transactionService) resolveExchangeRate(ctx context.Context, req SubmitTransactionRequest) (decimal.Decimal, error) {
	if req.ExchangeRate != "" {
		rate, err := decimal.NewFromString(req.ExchangeRate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: exchange_rate is not a valid number", ErrInvalidInput)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: exchange_rate must be greater than 0", ErrInvalidInput)
		}
		return rate, nil
	}

	currency := firstForeignCurrency(req)
	if currency == "" {
		return decimal.NewFromInt(1), nil
	}

	if s.rateRepo != nil {
		if active, err := s.rateRepo.FindActive(ctx, currency, time.Now()); err == nil {
			return active.Rate, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: no exchange rate provided and no active reference rate for %s", ErrInvalidInput, currency)
}

func firstForeignCurrency(req SubmitTransactionRequest) string {
	candidates := []string{req.MRCCurrency, req.NRCCurrency}
	for _, fc := range req.FixedCosts {
		candidates = append(candidates, fc.UnitCostCurrency)
	}
	for _, rs := range req.RecurringServices {
		candidates = append(candidates, rs.PriceCurrency, rs.UnitCostCurrency)
	}
	for _, c := range candidates {
		if c != "" && c != model.BaseCurrency {
			return c
		}
	}
	return ""
}

// --- Mapping helpers ---

// buildTransaction turns the submission payload into a model with every
// monetary field normalized to PEN.
func buildTransaction(req SubmitTransactionRequest, exchangeRate decimal.Decimal) (*model.Transaction, error) {
	mrc, err := parseOptionalDecimal(req.MRC, "mrc")
	if err != nil {
		return nil, err
	}
	nrc, err := parseOptionalDecimal(req.NRC, "nrc")
	if err != nil {
		return nil, err
	}
	commissionRate, err := parseDecimalOrZero(req.CommissionRate, "commission_rate")
	if err != nil {
		return nil, err
	}
	costOfCapital, err := parseDecimalOrZero(req.AnnualCostOfCapital, "annual_cost_of_capital")
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		BusinessUnit:        req.BusinessUnit,
		ClientName:          req.ClientName,
		CompanyID:           req.CompanyID,
		Salesman:            req.Salesman,
		OrderID:             req.OrderID,
		ExchangeRate:        exchangeRate,
		MRCOriginal:         mrc,
		MRCCurrency:         defaultCurrency(req.MRCCurrency),
		NRCOriginal:         nrc,
		NRCCurrency:         defaultCurrency(req.NRCCurrency),
		CommissionRate:      commissionRate,
		ContractTermMonths:  req.ContractTermMonths,
		AnnualCostOfCapital: costOfCapital,
		ApprovalStatus:      model.StatusPending,
		SubmissionDate:      time.Now(),
	}

	if pen := NormalizeToPEN(mrc, txn.MRCCurrency, exchangeRate); pen != nil {
		txn.MRCPEN = *pen
	}
	if pen := NormalizeToPEN(nrc, txn.NRCCurrency, exchangeRate); pen != nil {
		txn.NRCPEN = *pen
	}

	for i, fc := range req.FixedCosts {
		quantity, err := parseOptionalDecimal(fc.Quantity, fmt.Sprintf("fixed_costs[%d].quantity", i))
		if err != nil {
			return nil, err
		}
		unitCost, err := parseOptionalDecimal(fc.UnitCost, fmt.Sprintf("fixed_costs[%d].unit_cost", i))
		if err != nil {
			return nil, err
		}

		currency := defaultCurrency(fc.UnitCostCurrency)
		txn.FixedCosts = append(txn.FixedCosts, model.FixedCost{
			Category:         fc.Category,
			ServiceType:      fc.ServiceType,
			Ticket:           fc.Ticket,
			Location:         fc.Location,
			Quantity:         quantity,
			UnitCostOriginal: unitCost,
			UnitCostCurrency: currency,
			UnitCostPEN:      NormalizeToPEN(unitCost, currency, exchangeRate),
		})
	}

	for i, rs := range req.RecurringServices {
		quantity, err := parseOptionalDecimal(rs.Quantity, fmt.Sprintf("recurring_services[%d].quantity", i))
		if err != nil {
			return nil, err
		}
		price, err := parseOptionalDecimal(rs.Price, fmt.Sprintf("recurring_services[%d].price", i))
		if err != nil {
			return nil, err
		}
		cu1, err := parseOptionalDecimal(rs.UnitCost1, fmt.Sprintf("recurring_services[%d].cu1", i))
		if err != nil {
			return nil, err
		}
		cu2, err := parseOptionalDecimal(rs.UnitCost2, fmt.Sprintf("recurring_services[%d].cu2", i))
		if err != nil {
			return nil, err
		}

		priceCurrency := defaultCurrency(rs.PriceCurrency)
		cuCurrency := defaultCurrency(rs.UnitCostCurrency)
		txn.RecurringServices = append(txn.RecurringServices, model.RecurringService{
			ServiceType:       rs.ServiceType,
			Note:              rs.Note,
			Location:          rs.Location,
			Provider:          rs.Provider,
			Quantity:          quantity,
			PriceOriginal:     price,
			PriceCurrency:     priceCurrency,
			PricePEN:          NormalizeToPEN(price, priceCurrency, exchangeRate),
			UnitCost1Original: cu1,
			UnitCost1PEN:      NormalizeToPEN(cu1, cuCurrency, exchangeRate),
			UnitCost2Original: cu2,
			UnitCost2PEN:      NormalizeToPEN(cu2, cuCurrency, exchangeRate),
			UnitCostCurrency:  cuCurrency,
		})
	}

	return txn, nil
}

func (s *transactionService) broadcast(event string, txn *model.Transaction) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(event, map[string]interface{}{
		"transaction_id": txn.ID.String(),
		"order_id":       txn.OrderID,
		"status":         txn.ApprovalStatus,
	})
}

func parseOptionalDecimal(value, field string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid number", ErrInvalidInput, field)
	}
	return &parsed, nil
}

func parseDecimalOrZero(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a valid number", ErrInvalidInput, field)
	}
	return parsed, nil
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return model.BaseCurrency
	}
	return currency
}

func decimalPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func toTransactionResponse(txn *model.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                    txn.ID.String(),
		BusinessUnit:          txn.BusinessUnit,
		ClientName:            txn.ClientName,
		CompanyID:             txn.CompanyID,
		Salesman:              txn.Salesman,
		OrderID:               txn.OrderID,
		ExchangeRate:          txn.ExchangeRate.String(),
		MRCPEN:                txn.MRCPEN.String(),
		NRCPEN:                txn.NRCPEN.String(),
		TotalRevenue:          txn.TotalRevenue.String(),
		TotalExpense:          txn.TotalExpense.String(),
		GrossMargin:           txn.GrossMargin.String(),
		GrossMarginRatio:      txn.GrossMarginRatio.String(),
		Commission:            txn.Commission.String(),
		CommissionRate:        txn.CommissionRate.String(),
		InstallationCost:      txn.InstallationCost.String(),
		InstallationCostRatio: txn.InstallationCostRatio.String(),
		NPV:                   decimalPtrString(txn.NPV),
		IRR:                   decimalPtrString(txn.IRR),
		PaybackMonths:         txn.PaybackMonths,
		ContractTermMonths:    txn.ContractTermMonths,
		AnnualCostOfCapital:   txn.AnnualCostOfCapital.String(),
		ApprovalStatus:        txn.ApprovalStatus,
		SubmissionDate:        txn.SubmissionDate.Format(time.RFC3339),
		RejectionNote:         txn.RejectionNote,
	}

	if txn.ApprovalDate != nil {
		s := txn.ApprovalDate.Format(time.RFC3339)
		resp.ApprovalDate = &s
	}
	if txn.Approver != nil {
		resp.ApproverName = txn.Approver.Username
	}

	resp.FixedCosts = make([]FixedCostResponse, 0, len(txn.FixedCosts))
	for i := range txn.FixedCosts {
		fc := &txn.FixedCosts[i]
		resp.FixedCosts = append(resp.FixedCosts, FixedCostResponse{
			ID:               fc.ID.String(),
			Category:         fc.Category,
			ServiceType:      fc.ServiceType,
			Ticket:           fc.Ticket,
			Location:         fc.Location,
			Quantity:         decimalPtrString(fc.Quantity),
			UnitCostOriginal: decimalPtrString(fc.UnitCostOriginal),
			UnitCostCurrency: fc.UnitCostCurrency,
			UnitCostPEN:      decimalPtrString(fc.UnitCostPEN),
			Total:            decimalPtrString(fc.Total()),
		})
	}

	resp.RecurringServices = make([]RecurringServiceResponse, 0, len(txn.RecurringServices))
	for i := range txn.RecurringServices {
		rs := &txn.RecurringServices[i]
		expense := rs.Expense()
		resp.RecurringServices = append(resp.RecurringServices, RecurringServiceResponse{
			ID:            rs.ID.String(),
			ServiceType:   rs.ServiceType,
			Note:          rs.Note,
			Location:      rs.Location,
			Provider:      rs.Provider,
			Quantity:      decimalPtrString(rs.Quantity),
			PriceOriginal: decimalPtrString(rs.PriceOriginal),
			PriceCurrency: rs.PriceCurrency,
			PricePEN:      decimalPtrString(rs.PricePEN),
			CU1PEN:        decimalPtrString(rs.UnitCost1PEN),
			CU2PEN:        decimalPtrString(rs.UnitCost2PEN),
			Income:        decimalPtrString(rs.Income()),
			Expense:       expense.String(),
		})
	}

	return resp
}
