package router

import (
	"time"

	"github.com/CSKCREATIONS/ola-sub000/internal/config"
	"github.com/CSKCREATIONS/ola-sub000/internal/handler"
	"github.com/CSKCREATIONS/ola-sub000/internal/infra"
	"github.com/CSKCREATIONS/ola-sub000/internal/middleware"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
	"github.com/CSKCREATIONS/ola-sub000/internal/service"
	"github.com/CSKCREATIONS/ola-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, directorioCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	directorio := infra.NewDirectorioClient(cfg.DirectorioURL, directorioCB)
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	documentoRepo := repository.NewDocumentoRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)
	envioRepo := repository.NewEnvioCorreoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	catalogoSvc := service.NewCatalogoService(catalogoRepo)
	secuenciaSvc := service.NewSecuenciaService(secuenciaRepo)
	guard := service.NewStockGuard(productoRepo)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo, movimientoStockRepo, catalogoSvc, rdb)
	clienteSvc := service.NewClienteService(clienteRepo, directorio)
	proveedorSvc := service.NewProveedorService(proveedorRepo, productoRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	documentoSvc := service.NewDocumentoService(
		documentoRepo, productoRepo, movimientoStockRepo, envioRepo,
		secuenciaSvc, guard, mailer, dispatcher, cfg.StockBloqueante,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	documentosH := handler.NewDocumentosHandler(documentoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	consultaH := handler.NewConsultaCatalogoHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, directorio))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price lookup — no auth required, cache-aside over Redis
	r.GET("/v1/catalogo/precio/:id", consultaH.GetPrecio)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		lectura := middleware.RequireRole("vendedor", "supervisor", "administrador")

		// Documentos comerciales (cotización / pedido / remisión)
		v1.POST("/documentos", lectura, documentosH.Crear)
		v1.GET("/documentos", lectura, documentosH.Listar)
		v1.GET("/documentos/:id", lectura, documentosH.Obtener)
		v1.PUT("/documentos/:id", lectura, documentosH.Actualizar)
		v1.POST("/documentos/:id/transicion", lectura, documentosH.Transicionar)
		v1.DELETE("/documentos/:id", middleware.RequireRole("supervisor", "administrador"), documentosH.Eliminar)

		// Catálogo — lectura para todos los autenticados, escritura administrador
		v1.GET("/categorias", lectura, catalogoH.ListarCategorias)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", catalogoH.CrearCategoria)
			categorias.PUT("/:id", catalogoH.ActualizarCategoria)
			categorias.PATCH("/:id/activacion", catalogoH.ActivacionCategoria)
		}
		v1.GET("/subcategorias", lectura, catalogoH.ListarSubcategorias)
		subcategorias := v1.Group("/subcategorias", middleware.RequireRole("administrador"))
		{
			subcategorias.POST("", catalogoH.CrearSubcategoria)
			subcategorias.PUT("/:id", catalogoH.ActualizarSubcategoria)
			subcategorias.PATCH("/:id/activacion", catalogoH.ActivacionSubcategoria)
		}

		// Productos
		v1.GET("/productos", lectura, productosH.Listar)
		v1.GET("/productos/:id", lectura, productosH.Obtener)
		v1.GET("/productos/:id/historial-precios", lectura, productosH.HistorialPrecios)
		v1.POST("/productos/:id/ajuste-stock", middleware.RequireRole("supervisor", "administrador"), productosH.AjustarStock)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.PATCH("/:id/activacion", productosH.Activacion)
		}

		// Clientes — ?buscar= activa el autocompletado con el directorio externo
		v1.GET("/clientes", lectura, clientesH.Listar)
		v1.GET("/clientes/:id", lectura, clientesH.Obtener)
		v1.POST("/clientes", lectura, clientesH.Crear)
		v1.PUT("/clientes/:id", lectura, clientesH.Actualizar)
		v1.DELETE("/clientes/:id", middleware.RequireRole("supervisor", "administrador"), clientesH.Desactivar)

		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
