package routehandlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coreybb/menuorders/auth"
	"github.com/coreybb/menuorders/models"
	"github.com/coreybb/menuorders/webutil"
)

// MenuStore is the persistence the order handlers need.
// *datastore.MenuRepository satisfies it.
type MenuStore interface {
	Create(ctx context.Context, item string, price int) (int64, error)
	List(ctx context.Context) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
	FindByName(ctx context.Context, name string) ([]models.MenuItem, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
}

type OrderHandler struct {
	Repo MenuStore
}

func NewOrderHandler(repo MenuStore) *OrderHandler {
	return &OrderHandler{Repo: repo}
}

// Pointer fields tell a missing key apart from a zero value.
type createOrderRequest struct {
	Item  *string `json:"item"`
	Price *int    `json:"price"`
}

type createOrderResponse struct {
	OrderID int64  `json:"order_id"`
	Item    string `json:"item"`
	Price   int    `json:"price"`
	User    string `json:"user"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return webutil.ErrUnprocessableEntity("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.Item == nil || req.Price == nil {
		return webutil.ErrUnprocessableEntity("Missing required fields (item, price)")
	}

	id, err := h.Repo.Create(r.Context(), *req.Item, *req.Price)
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to create order", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, createOrderResponse{
		OrderID: id,
		Item:    *req.Item,
		Price:   *req.Price,
		User:    user,
	})
	return nil
}

func (h *OrderHandler) HandleGetOrders(w http.ResponseWriter, r *http.Request) error {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to retrieve orders", err)
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, items)
	return nil
}

func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) error {
	rawID := chi.URLParam(r, "id")
	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return webutil.ErrUnprocessableEntityWrap("Order ID must be an integer", err)
	}

	item, err := h.Repo.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap("Order not found", err)
		}
		return fmt.Errorf("failed to retrieve order %d: %w", orderID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, item)
	return nil
}

func (h *OrderHandler) HandleGetItemsByName(w http.ResponseWriter, r *http.Request) error {
	name := itemNameParam(r)

	items, err := h.Repo.FindByName(r.Context(), name)
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to retrieve items", err)
	}
	if len(items) == 0 {
		return webutil.ErrNotFound("Item not found")
	}

	webutil.RespondWithJSON(w, http.StatusOK, items)
	return nil
}

func (h *OrderHandler) HandleDeleteItemsByName(w http.ResponseWriter, r *http.Request) error {
	name := itemNameParam(r)

	removed, err := h.Repo.DeleteByName(r.Context(), name)
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to delete items", err)
	}
	if removed == 0 {
		return webutil.ErrNotFound("Item not found")
	}

	webutil.RespondWithJSON(w, http.StatusOK, detailResponse{
		Detail: fmt.Sprintf("Item '%s' deleted successfully", name),
	})
	return nil
}

// itemNameParam returns the decoded {name} path segment. chi matches on the
// raw path when it holds escapes such as %2F, so the value may still be encoded.
func itemNameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
