package handler

import (
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccount godoc
// @Summary      Provision a new bank account
// @Description  Creates an account for an existing customer, looked up by aadhar number. The account number is assigned sequentially.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        account body model.CreateAccountRequest true "Details of the account"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Opening balance below the minimum balance"
// @Failure      404  {object}  common.AppError "Customer not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	log := logger.Log.WithFields(logrus.Fields{
		"aadhar_number": req.AadharNumber,
		"account_type":  req.AccountType,
	})
	log.Info("Create account request received")

	account, err := h.service.CreateNewAccount(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		case errors.Is(err, service.ErrBelowMinimumBalance):
			return common.NewAppError(http.StatusBadRequest, err.Error(), err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// GetAccount godoc
// @Summary      Look up one account
// @Tags         accounts
// @Produce      json
// @Param        accountNumber path string true "The account number"
// @Success      200  {object}  model.Account
// @Failure      404  {object}  common.AppError
// @Router       /api/accounts/{accountNumber} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountNumber := r.PathValue("accountNumber")

	account, err := h.service.GetAccount(accountNumber)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ListAccounts godoc
// @Summary      List all accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {array}  model.Account
// @Failure      500  {object}  common.AppError
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	accounts, err := h.service.GetAllAccounts()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}
	if accounts == nil {
		accounts = []*model.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}
