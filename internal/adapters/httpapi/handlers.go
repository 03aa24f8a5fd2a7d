// internal/adapters/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
)

type registerRequest struct {
	PhoneNumber    string `json:"phone_number"`
	Password       string `json:"password"`
	RetypePassword string `json:"retype_password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "phone number and password are required")
		return
	}
	if req.Password != req.RetypePassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user, err := s.repo.CreateUser(r.Context(), req.PhoneNumber, string(hashed), domain.RoleCustomer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "user registered successfully",
		"phone_number": user.PhoneNumber,
	})
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.repo.FindUserByPhone(r.Context(), req.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(s.secret, user.PhoneNumber, user.Role, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token_type":   "Bearer",
		"access_token": token,
		"expires_in":   int64(s.tokenTTL.Seconds()),
		"message":      "logged in",
	})
}

type createOrderRequest struct {
	RecipientName    string        `json:"recipient_name"`
	RecipientAddress string        `json:"recipient_address"`
	ShippingDate     *time.Time    `json:"shipping_date"`
	CartItems        []lineItemDTO `json:"cart_items"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CartItems) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	order := &domain.Order{
		Status:           domain.StatusPending,
		OrderDate:        time.Now(),
		ShippingDate:     req.ShippingDate,
		PhoneNumber:      claims.PhoneNumber,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
	}
	for _, item := range req.CartItems {
		order.Items = append(order.Items, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Thumbnail: item.Thumbnail,
		})
		order.TotalMoney += item.Price * float64(item.Quantity)
	}
	if err := order.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.CreateOrder(r.Context(), order); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.invalidateOrderCache(r)
	writeJSON(w, http.StatusOK, dtoFromOrder(*order))
}

func (s *Server) handleListByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStatus(mux.Vars(r)["status"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := statusCacheKey(status)
	if data, err := s.cache.Get(r.Context(), key); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	orders, err := s.repo.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := dtosFromOrders(orders)
	if err := s.cache.Set(r.Context(), key, dtos); err != nil {
		// Cache trouble never fails the read.
		s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	phone := mux.Vars(r)["phone"]
	if phone != claims.PhoneNumber && !claims.IsAdmin() {
		writeError(w, http.StatusForbidden, "cannot read another customer's orders")
		return
	}
	orders, err := s.repo.ListByPhone(r.Context(), phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dtosFromOrders(orders))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := s.repo.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !domain.CanTransition(current.Status, target) {
		writeError(w, http.StatusConflict, "illegal status transition")
		return
	}

	// Conditional update: between the read above and this write another
	// operator may have advanced the order, in which case the row no longer
	// matches and the loser gets a conflict.
	updated, err := s.repo.UpdateStatus(r.Context(), orderID, current.Status, target)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusConflict, "order changed by another actor")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.invalidateOrderCache(r)
	writeJSON(w, http.StatusOK, dtoFromOrder(*updated))
}

func (s *Server) invalidateOrderCache(r *http.Request) {
	if err := s.cache.DeleteByPrefix(r.Context(), ordersCachePrefix); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

type orderDTO struct {
	ID               int64         `json:"id"`
	Status           string        `json:"status"`
	OrderDate        time.Time     `json:"order_date"`
	ShippingDate     *time.Time    `json:"shipping_date"`
	PhoneNumber      string        `json:"phone_number"`
	RecipientName    string        `json:"recipient_name"`
	RecipientAddress string        `json:"recipient_address"`
	TotalMoney       float64       `json:"total_money"`
	Items            []lineItemDTO `json:"order_details"`
}

type lineItemDTO struct {
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail"`
}

func dtoFromOrder(o domain.Order) orderDTO {
	dto := orderDTO{
		ID:               o.ID,
		Status:           o.Status.String(),
		OrderDate:        o.OrderDate,
		ShippingDate:     o.ShippingDate,
		PhoneNumber:      o.PhoneNumber,
		RecipientName:    o.RecipientName,
		RecipientAddress: o.RecipientAddress,
		TotalMoney:       o.TotalMoney,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, lineItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			Thumbnail: item.Thumbnail,
		})
	}
	return dto
}

func dtosFromOrders(orders []domain.Order) []orderDTO {
	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, dtoFromOrder(o))
	}
	return dtos
}
