package handlers

import (
	"github.com/jmoiron/sqlx"

	"commerce/internal/clients"
	"commerce/internal/config"
	"commerce/internal/repos"
	"commerce/internal/services"
)

// Per-service dependency bundles, wired the same way in every binary:
// repos around the db handle, services around the repos, handlers around
// the services.

type AuthDeps struct {
	AuthHandler *AuthHandler
	AuthService *services.AuthService
}

func NewAuthDeps(db *sqlx.DB, cfg config.Config) *AuthDeps {
	authSvc := services.NewAuthService(repos.NewUserRepo(db), cfg.JWTSecret, cfg.JWTTTL)
	return &AuthDeps{
		AuthHandler: &AuthHandler{Auth: authSvc},
		AuthService: authSvc,
	}
}

type ProductDeps struct {
	ProductHandler *ProductHandler
	Verifier       IdentityVerifier
}

func NewProductDeps(db *sqlx.DB, cfg config.Config) *ProductDeps {
	productSvc := services.NewProductService(repos.NewProductRepo(db))
	return &ProductDeps{
		ProductHandler: &ProductHandler{Products: productSvc},
		Verifier:       clients.NewAuthClient(cfg.AuthServiceURL),
	}
}

type OrderDeps struct {
	OrderHandler *OrderHandler
	Verifier     IdentityVerifier
}

func NewOrderDeps(db *sqlx.DB, cfg config.Config) *OrderDeps {
	orderRepo := repos.NewOrderRepo(db)
	gateway := clients.NewProductClient(cfg.ProductServiceURL)
	return &OrderDeps{
		OrderHandler: &OrderHandler{
			Cart:   services.NewCartService(orderRepo),
			Orders: services.NewOrderService(orderRepo, gateway),
		},
		Verifier: clients.NewAuthClient(cfg.AuthServiceURL),
	}
}
