package handler

import (
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/export"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
	"time"
)

// TransactionHandler holds dependencies for transfer and query handlers.
type TransactionHandler struct {
	transferService *service.TransferService
	queryService    *service.QueryService
}

// NewTransactionHandler creates a new TransactionHandler with its dependencies.
func NewTransactionHandler(transferService *service.TransferService, queryService *service.QueryService) *TransactionHandler {
	return &TransactionHandler{
		transferService: transferService,
		queryService:    queryService,
	}
}

// CreateTransfer godoc
// @Summary      Transfer money between accounts
// @Description  Debits the sender, credits the receiver and records one immutable transaction, all atomically. Requires the sender's PIN.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        transfer body model.TransferRequest true "Details of the transfer"
// @Success      201  {object}  model.Transaction
// @Failure      400  {object}  common.AppError "Invalid request (self transfer, non-positive amount, insufficient funds)"
// @Failure      401  {object}  common.AppError "Incorrect PIN"
// @Failure      404  {object}  common.AppError "Receiver account not found"
// @Failure      500  {object}  common.AppError "Storage failure while processing transfer"
// @Router       /api/transfers [post]
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TransferRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	transaction, err := h.transferService.ExecuteTransfer(r.Context(), req)
	if err != nil {
		// Map business errors to HTTP status codes; client faults and
		// server faults stay distinguishable for the caller.
		var storageErr *service.StorageError
		switch {
		case errors.Is(err, service.ErrSameAccountTransfer),
			errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientFunds):
			return common.NewAppError(http.StatusBadRequest, err.Error(), err)
		case errors.Is(err, service.ErrIncorrectPin):
			return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
		case errors.Is(err, service.ErrAccountNotFound):
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		case errors.As(err, &storageErr):
			return common.NewAppError(http.StatusInternalServerError, "Could not process transfer", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not process transfer", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
	return nil
}

// ListTransactionsForAccount godoc
// @Summary      List account transaction history
// @Description  Retrieves the merged sent and received transactions of an account, newest first.
// @Tags         transactions
// @Produce      json
// @Param        accountNumber path string true "The account number to retrieve transactions for"
// @Success      200  {array}   model.Transaction
// @Failure      500  {object}  common.AppError
// @Router       /api/accounts/{accountNumber}/transactions [get]
func (h *TransactionHandler) ListTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountNumber := r.PathValue("accountNumber")

	transactions, err := h.queryService.TransactionsForAccount(r.Context(), accountNumber)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}
	if transactions == nil {
		transactions = []*model.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}

// ListAllTransactions godoc
// @Summary      List all transactions
// @Description  Retrieves the full transaction log, newest identifier first.
// @Tags         transactions
// @Produce      json
// @Success      200  {array}   model.Transaction
// @Failure      500  {object}  common.AppError
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListAllTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	transactions, err := h.queryService.AllTransactions(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}
	if transactions == nil {
		transactions = []*model.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}

// ExportTransactionsForAccount godoc
// @Summary      Export one account's transactions as a spreadsheet
// @Description  Streams the merged sent and received transactions of an account as an XLSX attachment.
// @Tags         transactions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        accountNumber path string true "The account number to export transactions for"
// @Success      200
// @Failure      500  {object}  common.AppError
// @Router       /api/accounts/{accountNumber}/transactions/export [get]
func (h *TransactionHandler) ExportTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountNumber := r.PathValue("accountNumber")

	transactions, err := h.queryService.TransactionsForAccount(r.Context(), accountNumber)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}

	workbook, err := export.TransactionsToExcel(transactions)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not build export", err)
	}

	fileName := "transactions-" + accountNumber + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(workbook.Bytes())
	return nil
}

// ExportTransactions godoc
// @Summary      Export all transactions as a spreadsheet
// @Description  Streams the full transaction log as an XLSX attachment.
// @Tags         transactions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      500  {object}  common.AppError
// @Router       /api/transactions/export [get]
func (h *TransactionHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	transactions, err := h.queryService.AllTransactions(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}

	workbook, err := export.TransactionsToExcel(transactions)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not build export", err)
	}

	fileName := "transactions-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(workbook.Bytes())
	return nil
}
