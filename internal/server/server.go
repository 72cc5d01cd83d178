package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suryashakti/partner-crm/internal/catalog"
	"github.com/suryashakti/partner-crm/internal/commission"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/customer"
	customerdomain "github.com/suryashakti/partner-crm/internal/customer/domain"
	"github.com/suryashakti/partner-crm/internal/incentive"
	incentivedomain "github.com/suryashakti/partner-crm/internal/incentive/domain"
	"github.com/suryashakti/partner-crm/internal/journey"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
	"github.com/suryashakti/partner-crm/internal/notify"
	"github.com/suryashakti/partner-crm/internal/observability"
	obslogger "github.com/suryashakti/partner-crm/internal/observability/logger"
	obsmetrics "github.com/suryashakti/partner-crm/internal/observability/metrics"
	obstracing "github.com/suryashakti/partner-crm/internal/observability/tracing"
	"github.com/suryashakti/partner-crm/internal/vendors"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	catalog.Module,
	notify.Module,
	customer.Module,
	vendor.Module,
	commission.Module,
	incentive.Module,
	journey.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	catalog      *catalog.Catalog
	customerSvc  customerdomain.Service
	journeySvc   journeydomain.Service
	vendorSvc    vendordomain.Service
	ledger       commissiondomain.Ledger
	incentiveSvc incentivedomain.Aggregator
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Catalog      *catalog.Catalog
	CustomerSvc  customerdomain.Service
	JourneySvc   journeydomain.Service
	VendorSvc    vendordomain.Service
	Ledger       commissiondomain.Ledger
	IncentiveSvc incentivedomain.Aggregator
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		catalog:      p.Catalog,
		customerSvc:  p.CustomerSvc,
		journeySvc:   p.JourneySvc,
		vendorSvc:    p.VendorSvc,
		ledger:       p.Ledger,
		incentiveSvc: p.IncentiveSvc,
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1", ActorMiddleware())

	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomerByID)
	v1.GET("/customers/:id/journey", s.GetJourney)
	v1.POST("/customers/:id/journey/:key/complete", s.CompleteMilestone)
	v1.GET("/customers/:id/vendor-assignments", s.ListVendorAssignments)
	v1.POST("/customers/:id/vendor-assignments", s.AssignVendor)

	v1.GET("/vendors/candidates", s.ListCandidateVendors)

	v1.GET("/partners/:id/commissions", s.ListPartnerCommissions)
	v1.POST("/partners/:id/commissions/inverter", s.RecordInverterCommission)
	v1.GET("/partners/:id/incentive-target", s.GetIncentiveTarget)

	v1.GET("/catalog/milestones", s.ListCatalog)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
