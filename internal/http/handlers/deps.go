package handlers

import (
	"github.com/jmoiron/sqlx"

	"stitchline/internal/config"
	"stitchline/internal/metrics"
	"stitchline/internal/payments"
	"stitchline/internal/repos"
	"stitchline/internal/services"
	"stitchline/internal/tasks"
)

type Deps struct {
	CatalogHandler     *CatalogHandler
	CartHandler        *CartHandler
	OrderHandler       *OrderHandler
	WebhookHandler     *WebhookHandler
	StaffHandler       *StaffHandler
	ConstructorHandler *ConstructorHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, pay payments.Provider, met *metrics.Registry, queue *tasks.Queue) *Deps {
	catalogRepo := repos.NewCatalogRepo(db)
	garmentRepo := repos.NewGarmentRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	constructorRepo := repos.NewConstructorRepo(db)

	catalogSvc := services.NewCatalogService(catalogRepo, garmentRepo)
	availSvc := services.NewAvailabilityService(garmentRepo)
	cartSvc := services.NewCartService(cartRepo, catalogRepo, garmentRepo)
	orderSvc := services.NewOrderService(db, cartRepo, garmentRepo, orderRepo, pay, cfg.SiteURL, met)
	webhookSvc := services.NewWebhookService(db, orderRepo, met)
	constructorSvc := services.NewConstructorService(constructorRepo, garmentRepo)

	return &Deps{
		CatalogHandler:     &CatalogHandler{Catalog: catalogSvc, Avail: availSvc},
		CartHandler:        &CartHandler{Cart: cartSvc},
		OrderHandler:       &OrderHandler{Order: orderSvc, Queue: queue},
		WebhookHandler:     &WebhookHandler{Webhooks: webhookSvc},
		StaffHandler:       &StaffHandler{Orders: orderRepo, Garments: garmentRepo, Constructor: constructorSvc},
		ConstructorHandler: &ConstructorHandler{Constructor: constructorSvc},
	}
}
