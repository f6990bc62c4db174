package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	cartmodel "pos/pkg/cart/domain/model"
	cartservice "pos/pkg/cart/domain/service"
	catalogmodel "pos/pkg/catalog/domain/model"
	catalogservice "pos/pkg/catalog/domain/service"
	checkoutservice "pos/pkg/checkout/domain/service"
	notifyservice "pos/pkg/notification/domain/service"
)

// How long boundary-raised notifications stay visible. Ledger-raised
// ones carry their own duration set at wiring time.
const notificationDuration = 3 * time.Second

type Handler struct {
	catalog   catalogservice.CatalogService
	carts     cartservice.CartService
	checkout  checkoutservice.CheckoutService
	presenter notifyservice.Presenter
}

func Router(catalog catalogservice.CatalogService, carts cartservice.CartService, checkout checkoutservice.CheckoutService, presenter notifyservice.Presenter) http.Handler {
	handler := &Handler{
		catalog:   catalog,
		carts:     carts,
		checkout:  checkout,
		presenter: presenter,
	}

	r := mux.NewRouter()

	r.HandleFunc("/products", handler.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", handler.createProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}/price", handler.changePriceHandler).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}/name", handler.renameProductHandler).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}/activate", handler.activateProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}/deactivate", handler.deactivateProductHandler).Methods(http.MethodPost)

	r.HandleFunc("/counters", handler.listCountersHandler).Methods(http.MethodGet)
	r.HandleFunc("/counters", handler.createCounterHandler).Methods(http.MethodPost)
	r.HandleFunc("/counters/{id}/status", handler.setCounterStatusHandler).Methods(http.MethodPut)
	r.HandleFunc("/counters/{id}/restriction", handler.setCounterRestrictionHandler).Methods(http.MethodPut)
	r.HandleFunc("/counters/{id}/products/{productID}", handler.assignProductHandler).Methods(http.MethodPut)
	r.HandleFunc("/counters/{id}/products/{productID}", handler.unassignProductHandler).Methods(http.MethodDelete)

	r.HandleFunc("/carts", handler.openCartHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}", handler.getCartHandler).Methods(http.MethodGet)
	r.HandleFunc("/carts/{id}", handler.closeCartHandler).Methods(http.MethodDelete)
	r.HandleFunc("/carts/{id}/items", handler.addItemHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}/items/{productID}", handler.removeItemHandler).Methods(http.MethodDelete)
	r.HandleFunc("/carts/{id}/counter", handler.selectCounterHandler).Methods(http.MethodPut)
	r.HandleFunc("/carts/{id}/payment-method", handler.setPaymentMethodHandler).Methods(http.MethodPut)
	r.HandleFunc("/carts/{id}/order-type", handler.setOrderTypeHandler).Methods(http.MethodPut)
	r.HandleFunc("/carts/{id}/clear", handler.clearCartHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}/checkout", handler.checkoutHandler).Methods(http.MethodPost)

	r.HandleFunc("/notification", handler.notificationHandler).Methods(http.MethodGet)
	r.HandleFunc("/notification", handler.dismissNotificationHandler).Methods(http.MethodDelete)

	return logMiddleware(r)
}

type productView struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Price    catalogmodel.Price `json:"price"`
	ImageRef string             `json:"imageRef,omitempty"`
	Active   bool               `json:"active"`
}

type groupView struct {
	Category string        `json:"category"`
	Products []productView `json:"products"`
}

type counterView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Status       string   `json:"status"`
	ProductIDs   []string `json:"productIds"`
	Unrestricted bool     `json:"unrestricted"`
}

func toProductView(p *catalogmodel.Product) productView {
	return productView{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		ImageRef: p.ImageRef,
		Active:   p.Active,
	}
}

func toCounterView(c *catalogmodel.Counter) counterView {
	status := "active"
	if c.Status == catalogmodel.CounterInactive {
		status = "inactive"
	}
	return counterView{
		ID:           c.ID,
		Name:         c.Name,
		Location:     c.Location,
		Status:       status,
		ProductIDs:   c.ProductIDs,
		Unrestricted: c.Unrestricted,
	}
}

func (h *Handler) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	counterID := r.URL.Query().Get("counter")
	search := r.URL.Query().Get("search")

	groups, err := h.catalog.GroupedProducts(counterID, search)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		view := groupView{Category: g.Category, Products: make([]productView, 0, len(g.Products))}
		for _, p := range g.Products {
			view.Products = append(view.Products, toProductView(p))
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

type productPayload struct {
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Price    catalogmodel.Price `json:"price"`
	ImageRef string             `json:"imageRef"`
}

func (h *Handler) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !readJSON(w, r, &payload) {
		return
	}

	product, err := h.catalog.CreateProduct(payload.Name, payload.Category, payload.Price, payload.ImageRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(product))
}

func (h *Handler) changePriceHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Price catalogmodel.Price `json:"price"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	if err := h.catalog.ChangeProductPrice(mux.Vars(r)["id"], payload.Price); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) renameProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	if err := h.catalog.RenameProduct(mux.Vars(r)["id"], payload.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activateProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ActivateProduct(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeactivateProduct(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCountersHandler(w http.ResponseWriter, r *http.Request) {
	counters, err := h.catalog.Counters()
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]counterView, 0, len(counters))
	for _, c := range counters {
		views = append(views, toCounterView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createCounterHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	counter, err := h.catalog.CreateCounter(payload.Name, payload.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCounterView(counter))
}

func (h *Handler) setCounterStatusHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	var status catalogmodel.CounterStatus
	switch payload.Status {
	case "active":
		status = catalogmodel.CounterActive
	case "inactive":
		status = catalogmodel.CounterInactive
	default:
		http.Error(w, "unknown counter status", http.StatusBadRequest)
		return
	}

	if err := h.catalog.SetCounterStatus(mux.Vars(r)["id"], status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setCounterRestrictionHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Unrestricted bool `json:"unrestricted"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	if err := h.catalog.SetCounterUnrestricted(mux.Vars(r)["id"], payload.Unrestricted); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assignProductHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.catalog.AssignProductToCounter(vars["id"], vars["productID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unassignProductHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.catalog.RemoveProductFromCounter(vars["id"], vars["productID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lineView struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type cartView struct {
	ID            uuid.UUID               `json:"id"`
	CounterID     string                  `json:"counterId,omitempty"`
	Lines         []lineView              `json:"lines"`
	PaymentMethod cartmodel.PaymentMethod `json:"paymentMethod"`
	OrderType     cartmodel.OrderType     `json:"orderType"`
	TotalQuantity int                     `json:"totalQuantity"`
	TotalAmount   float64                 `json:"totalAmount"`
	State         checkoutservice.State   `json:"checkoutState"`
}

func (h *Handler) cartView(cart *cartmodel.Cart) cartView {
	lines := make([]lineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return cartView{
		ID:            cart.ID,
		CounterID:     cart.CounterID,
		Lines:         lines,
		PaymentMethod: cart.PaymentMethod,
		OrderType:     cart.OrderType,
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalAmountDisplay(),
		State:         h.checkout.State(cart.ID),
	}
}

func (h *Handler) openCartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.OpenCart()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.cartView(cart))
}

func (h *Handler) getCartHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.Find(cartID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(cart))
}

func (h *Handler) closeCartHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.carts.CloseCart(cartID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItemHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	var payload struct {
		ProductID string `json:"productId"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	product, err := h.catalog.Product(payload.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.carts.AddProduct(cartID, product); err != nil {
		if errors.Is(err, cartservice.ErrProductInactive) {
			h.presenter.Show("Product is unavailable", 0, notificationDuration)
		}
		writeError(w, err)
		return
	}

	cart, err := h.carts.Find(cartID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(cart))
}

func (h *Handler) removeItemHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.carts.RemoveLine(cartID, mux.Vars(r)["productID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectCounterHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	var payload struct {
		CounterID string `json:"counterId"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	if payload.CounterID != "" {
		if _, err := h.catalog.Counter(payload.CounterID); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := h.carts.SelectCounter(cartID, payload.CounterID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	var payload struct {
		Method string `json:"method"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	method, err := cartmodel.ParsePaymentMethod(payload.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.carts.SetPaymentMethod(cartID, method); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setOrderTypeHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	var payload struct {
		OrderType string `json:"orderType"`
	}
	if !readJSON(w, r, &payload) {
		return
	}

	orderType, err := cartmodel.ParseOrderType(payload.OrderType)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.carts.SetOrderType(cartID, orderType); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCartHandler backs the "clear cart" shortcut. An empty cart is a
// silent no-op, matching the keyboard rule.
func (h *Handler) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.carts.Reset(cartID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.checkout.Checkout(cartID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type notificationView struct {
	Message     string `json:"message"`
	ItemCount   int    `json:"itemCount"`
	DurationMs  int64  `json:"durationMs"`
	RemainingMs int64  `json:"remainingMs"`
}

func (h *Handler) notificationHandler(w http.ResponseWriter, r *http.Request) {
	current := h.presenter.Current()
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, notificationView{
		Message:     current.Message,
		ItemCount:   current.ItemCount,
		DurationMs:  current.Duration.Milliseconds(),
		RemainingMs: current.Remaining(time.Now()).Milliseconds(),
	})
}

func (h *Handler) dismissNotificationHandler(w http.ResponseWriter, r *http.Request) {
	h.presenter.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

func cartIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cartID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid cart id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return cartID, true
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogmodel.ErrProductNotFound),
		errors.Is(err, catalogmodel.ErrCounterNotFound),
		errors.Is(err, cartmodel.ErrCartNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, cartservice.ErrProductInactive),
		errors.Is(err, cartmodel.ErrUnknownPayment),
		errors.Is(err, cartmodel.ErrUnknownOrderType),
		errors.Is(err, catalogservice.ErrEmptyProductName),
		errors.Is(err, catalogservice.ErrEmptyCounterName):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, checkoutservice.ErrCartEmpty),
		errors.Is(err, checkoutservice.ErrCheckoutInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Error("Request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
