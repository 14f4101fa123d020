package handler

import (
	"encoding/json"
	"go-bank-ledger/common"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"
)

// QueryHandler holds dependencies for support-query handlers.
type QueryHandler struct {
	supportService *service.SupportService
}

func NewQueryHandler(supportService *service.SupportService) *QueryHandler {
	return &QueryHandler{supportService: supportService}
}

// CreateQuery godoc
// @Summary      Submit a support query
// @Description  Persists the query and forwards it to the bank's admin mailbox.
// @Tags         support
// @Accept       json
// @Produce      json
// @Param        query body model.CreateQueryRequest true "The support query"
// @Success      201  {object}  model.SupportQuery
// @Failure      400  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /api/queries [post]
func (h *QueryHandler) CreateQuery(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateQueryRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	query, err := h.supportService.SubmitQuery(req)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not submit query", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(query)
	return nil
}

// ListQueries godoc
// @Summary      List all support queries
// @Tags         support
// @Produce      json
// @Success      200  {array}   model.SupportQuery
// @Failure      500  {object}  common.AppError
// @Router       /api/queries [get]
func (h *QueryHandler) ListQueries(w http.ResponseWriter, r *http.Request) *common.AppError {
	queries, err := h.supportService.ListQueries()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve queries", err)
	}
	if queries == nil {
		queries = []*model.SupportQuery{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(queries)
	return nil
}
