package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api/handlers"
	"github.com/Cheertaboi/medicine-checkout-service/internal/api/middleware"
	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Carts     *service.CartStores
	Coupons   *service.CouponService
	Catalog   []models.Coupon
	Checkout  *service.CheckoutService
	Addresses service.AddressRepo
	Wallets   service.WalletRepo
	Orders    handlers.OrderReader
	Usage     handlers.UsageReader

	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter builds the HTTP router for the checkout-service
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cartHandler := handlers.NewCartHandler(d.Carts)
	couponHandler := handlers.NewCouponHandler(d.Carts, d.Coupons, d.Catalog, d.Usage)
	walletHandler := handlers.NewWalletHandler(d.Wallets, d.Carts, d.Coupons)
	addressHandler := handlers.NewAddressHandler(d.Addresses)
	checkoutHandler := handlers.NewCheckoutHandler(d.Checkout, logger)
	orderHandler := handlers.NewOrderHandler(d.Orders)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/coupons", couponHandler.ListCoupons)

	// Session scoped endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/count", cartHandler.GetCount)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{id}", cartHandler.UpdateItem)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})

		r.Post("/coupons/apply", couponHandler.ApplyCoupon)
		r.Delete("/coupons", couponHandler.RemoveCoupon)
	})

	// User scoped endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/wallet", walletHandler.GetWallet)
		r.Get("/addresses", addressHandler.ListAddresses)
		r.Get("/orders/{id}", orderHandler.GetOrder)
		r.Get("/checkout", checkoutHandler.GetStatus)
		r.Get("/coupons/usage", couponHandler.GetUsage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/wallet/toggle", walletHandler.ToggleWallet)
			r.Post("/checkout", checkoutHandler.Checkout)
		})
	})

	return r
}
