package main

import (
	"net/http"

	"github.com/Brunomperetti/catalogo-repuestos/internal/handler"
	mid "github.com/Brunomperetti/catalogo-repuestos/internal/middleware"
	"github.com/Brunomperetti/catalogo-repuestos/internal/web"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/config"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"
	"github.com/Brunomperetti/catalogo-repuestos/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; missing file is fine, env vars may be set elsewhere
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalogo",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire handlers to configuration (file layout, placeholder image)
	handler.Init(appConfig)

	// Initialize Echo instance
	e := echo.New()
	e.Renderer = web.NewRenderer()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Static files (tenant images, placeholder)
	e.Static("/static", appConfig.Storage.StaticRoot)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Operator panel
	e.GET("/", handler.Panel)
	e.POST("/empresa/crear_panel", handler.CreateEmpresa)
	e.GET("/empresa/activar/:slug", handler.ActivateBySlug)
	e.POST("/empresa/activar_panel", handler.ActivatePanel)
	e.POST("/empresa/publicar/:id", handler.PublishEmpresa)
	e.POST("/empresa/borrar/:id", handler.DeleteEmpresa)

	// Bulk imports
	e.POST("/upload_excel", handler.UploadExcel)
	e.POST("/upload_zip", handler.UploadZip)
	e.POST("/delete_all_products", handler.DeleteAllProducts)

	// Public catalog and order quotes
	e.GET("/catalogo/:slug", handler.Catalogo)
	e.POST("/pedido/pdf", handler.PedidoPdf)

	// Admin
	e.GET("/admin/productos", handler.AdminProductos)
	e.POST("/admin/productos/:id/actualizar", handler.AdminActualizarProducto)
	e.GET("/admin/borrar_empresa/:id", handler.DeleteEmpresa)

	// Debug routes - operational inspection only
	e.GET("/debug/empresas", handler.DebugEmpresas)
	e.GET("/debug/imagenes/:slug", handler.DebugImagenes)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
