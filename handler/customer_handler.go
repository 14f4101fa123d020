package handler

import (
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
)

type CustomerHandler struct {
	service *service.CustomerService
}

func NewCustomerHandler(service *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// CreateCustomer godoc
// @Summary      Register a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer body model.CreateCustomerRequest true "Details of the customer"
// @Success      201  {object}  model.Customer
// @Failure      409  {object}  common.AppError "Aadhar number already registered"
// @Failure      500  {object}  common.AppError
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateCustomerRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("aadhar_number", req.AadharNumber).Info("Create customer request received")

	customer, err := h.service.CreateCustomer(req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCustomer) {
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create customer", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(customer)
	return nil
}

// GetCustomer godoc
// @Summary      Get a customer by aadhar number
// @Tags         customers
// @Produce      json
// @Param        aadharNumber path string true "The customer's aadhar number"
// @Success      200  {object}  model.Customer
// @Failure      404  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /api/customers/{aadharNumber} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) *common.AppError {
	aadharNumber := r.PathValue("aadharNumber")

	customer, err := h.service.GetCustomer(aadharNumber)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve customer", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(customer)
	return nil
}

// ListCustomers godoc
// @Summary      List all customers
// @Tags         customers
// @Produce      json
// @Success      200  {array}   model.Customer
// @Failure      500  {object}  common.AppError
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) *common.AppError {
	customers, err := h.service.GetAllCustomers()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve customers", err)
	}
	if customers == nil {
		customers = []*model.Customer{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(customers)
	return nil
}
