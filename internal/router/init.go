package router

import (
	app "github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/internal/container"
	pginfra "github.com/easypayhq/easypay/internal/infrastructure/postgres"
	handlers "github.com/easypayhq/easypay/internal/interface/http"
	"github.com/easypayhq/easypay/internal/router/modules"
	"github.com/easypayhq/easypay/pkg/blobstore"
)

// InitModules builds the application services from the container singletons
// and registers every feature module. Called once during startup, after the
// container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	accountRepo := pginfra.NewAccountRepository(container.GetPGPool())
	catalogRepo := pginfra.NewCatalogRepository(container.GetPGPool())

	accountSvc := app.NewAccountService(
		accountRepo,
		container.GetCipher(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetRabbitPub(),
		logger,
	)
	catalogSvc := app.NewCatalogService(catalogRepo, logger, container.GetES(), cfg.ESCatalogIndex)
	checkoutSvc := app.NewCheckoutService(accountSvc, catalogSvc, cfg.CheckoutSuccessURL, logger)
	imageSvc := app.NewImageService(blobstore.New(container.GetGCS(), cfg.GCSBucket), logger)

	accountHandler := handlers.NewAccountHandler(accountSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, logger)
	webhookHandler := handlers.NewWebhookHandler(cfg.StripeWebhookSecret, logger)
	imageHandler := handlers.NewImageHandler(imageSvc, logger)

	r.Add(modules.NewAccountModule(accountHandler, container.GetJWT()))
	r.Add(modules.NewCatalogModule(catalogHandler))
	r.Add(modules.NewCheckoutModule(checkoutHandler, webhookHandler))
	r.Add(modules.NewImageModule(imageHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
