package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/service"
	"github.com/efreitasn/terminalsim/internal/view"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Type       string   `json:"type"`
	Qty        int64    `json:"qty"`
	LimitPrice *float64 `json:"limit_price"`
	AccountID  string   `json:"account_id"`
	StrategyID string   `json:"strategy_id"`
}

// updateOrderRequest is the JSON request body for PATCH /orders/{order_id}.
type updateOrderRequest struct {
	Qty        *int64   `json:"qty"`
	LimitPrice *float64 `json:"limit_price"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	order, err := h.orderSvc.Submit(service.SubmitOrderRequest{
		Symbol:     req.Symbol,
		Side:       domain.OrderSide(strings.ToUpper(req.Side)),
		Type:       domain.OrderType(strings.ToUpper(req.Type)),
		Qty:        req.Qty,
		LimitPrice: req.LimitPrice,
		AccountID:  req.AccountID,
		StrategyID: req.StrategyID,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, view.FromOrder(order))
}

// ListOrders handles GET /orders with an optional status filter.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *domain.OrderStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.OrderStatus(strings.ToUpper(v))
		status = &s
	}

	orders, err := h.orderSvc.List(status)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	writeList(w, view.Orders(orders))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.Get(chi.URLParam(r, "order_id"))
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view.FromOrder(order))
}

// UpdateOrder handles PATCH /orders/{order_id}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	order, err := h.orderSvc.Update(chi.URLParam(r, "order_id"), service.UpdateOrderRequest{
		Qty:        req.Qty,
		LimitPrice: req.LimitPrice,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view.FromOrder(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.Cancel(chi.URLParam(r, "order_id"))
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view.FromOrder(order))
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeValidation(w, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyExists):
		WriteError(w, http.StatusConflict, "order_already_exists", err.Error())
	case errors.Is(err, domain.ErrOrderNotEditable):
		WriteError(w, http.StatusConflict, "order_not_editable", err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable):
		WriteError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		WriteError(w, http.StatusConflict, "illegal_status_transition", err.Error())
	default:
		writeInternal(w)
	}
}
