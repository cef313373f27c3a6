package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	cartApp "github.com/davicafu/hexaprojector/internal/cart/application"
	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	cartHttp "github.com/davicafu/hexaprojector/internal/cart/infra/inbound/http"
	cartMongo "github.com/davicafu/hexaprojector/internal/cart/infra/outbound/db/mongodb"
	cartSQL "github.com/davicafu/hexaprojector/internal/cart/infra/outbound/db/sqldb"
	"github.com/davicafu/hexaprojector/internal/config"
	fulfillmentApp "github.com/davicafu/hexaprojector/internal/fulfillment/application"
	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
	fulfillmentHttp "github.com/davicafu/hexaprojector/internal/fulfillment/infra/inbound/http"
	fulfillmentSQL "github.com/davicafu/hexaprojector/internal/fulfillment/infra/outbound/db/sqldb"
	"github.com/davicafu/hexaprojector/internal/projector"
	reportApp "github.com/davicafu/hexaprojector/internal/salesreport/application"
	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	reportHttp "github.com/davicafu/hexaprojector/internal/salesreport/infra/inbound/http"
	reportCH "github.com/davicafu/hexaprojector/internal/salesreport/infra/outbound/analytics/clickhouse"
	reportMongo "github.com/davicafu/hexaprojector/internal/salesreport/infra/outbound/db/mongodb"
	reportSQL "github.com/davicafu/hexaprojector/internal/salesreport/infra/outbound/db/sqldb"
	reportFile "github.com/davicafu/hexaprojector/internal/salesreport/infra/outbound/filesystem"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	opsHttp "github.com/davicafu/hexaprojector/internal/shared/infra/inbound/http"
	sharedCache "github.com/davicafu/hexaprojector/internal/shared/infra/platform/cache"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/redisstore"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/sqlstore"
	"github.com/davicafu/hexaprojector/internal/shared/infra/stream"
	rankingApp "github.com/davicafu/hexaprojector/internal/topproducts/application"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
	rankingHttp "github.com/davicafu/hexaprojector/internal/topproducts/infra/inbound/http"
	rankingRedis "github.com/davicafu/hexaprojector/internal/topproducts/infra/outbound/redisdb"
	"github.com/davicafu/hexaprojector/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init(os.Getenv("LOG_LEVEL")) // inicializa zap
	log := logger.Logger()              // obtiene logger estructurado
	defer log.Sync()                    // flush buffers al salir

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- DB ----------------
	dialect, err := sharedDB.ParseDialect(cfg.SQLDriver)
	if err != nil {
		log.Fatal("invalid sql driver", zap.Error(err))
	}
	db, err := sql.Open(dialect.DriverName(), cfg.SQLDSN)
	if err != nil {
		log.Fatal("failed to open SQL database", zap.Error(err))
	}
	defer db.Close()
	if dialect == sharedDB.SQLite {
		db.SetMaxOpenConns(1) // un único escritor
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQL database", zap.Error(err))
	}

	sqlStore := sqlstore.New(db, dialect, log)
	if err := sqlStore.InitCheckpointSchema(ctx); err != nil {
		log.Fatal("failed to initialize checkpoints", zap.Error(err))
	}
	if err := fulfillmentSQL.InitFulfillmentSchema(ctx, db, dialect); err != nil {
		log.Fatal("failed to initialize fulfillment schema", zap.Error(err))
	}

	// ---------------- Redis / Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	redisAvailable := rdb.Ping(ctx).Err() == nil
	if redisAvailable {
		cacheInstance = sharedCache.NewRedisCache(rdb, "cache:", cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	} else {
		log.Warn("⚠️ Redis no disponible, cache en memoria y sin top de productos")
		memCache := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer memCache.Stop()
		cacheInstance = memCache
	}
	cacheTTL := int(cfg.CacheTTL.Seconds())

	mongoConn := newMongoConnector(cfg, log)
	defer mongoConn.Close()

	// ---------------- Streams ----------------
	sources, err := newSources(ctx, cfg, db, dialect, log)
	if err != nil {
		log.Fatal("failed to open event sources", zap.Error(err))
	}
	defer sources.Close()

	notifier, closeNotifier := newNotifier(ctx, cfg, log)
	defer closeNotifier()

	base := projector.Config{
		RetryDelay:    cfg.RetryDelay,
		ApplyTimeout:  cfg.ApplyTimeout,
		DecodeFailure: projector.DecodeFailurePolicy(cfg.DecodeFailure),
	}
	withSelector := func(readModel, streamName, group string) projector.Config {
		c := base
		c.ReadModel = readModel
		c.Selector = stream.Selector{Stream: streamName, Group: group, ResolveLinks: true}
		return c
	}

	var projectors []*projector.Projector
	checkpoints := map[string]sharedDomain.CheckpointStore{}
	router := gin.Default()

	// ---------------- Carts ----------------
	var cartRepo cartDomain.CartReadRepository
	var cartStore sharedDomain.ProjectionStore
	switch cfg.CartStore {
	case config.StoreMongo:
		store, err := mongoConn.Store(ctx)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		repo := cartMongo.NewCartRepoMongoDB(store)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("⚠️ Failed to create cart indexes", zap.Error(err))
		}
		cartRepo, cartStore = repo, store
	default:
		if err := cartSQL.InitCartSchema(ctx, db, dialect); err != nil {
			log.Fatal("failed to initialize cart schema", zap.Error(err))
		}
		cartRepo, cartStore = cartSQL.NewCartRepoSQL(db, dialect), sqlStore
	}
	projectors = append(projectors, projector.New(
		withSelector(cartDomain.ReadModelName, cartDomain.SourceStream, ""),
		sources.catchUp, cartStore, cartApp.NewProjection(), log, projector.WithNotifier(notifier)))
	checkpoints[cartDomain.ReadModelName] = cartStore
	cartHttp.RegisterCartRoutes(router, cartHttp.NewCartHandler(cartApp.NewCartService(cartRepo, cacheInstance, cacheTTL, log)))

	// ---------------- Sales report ----------------
	reportCfg, err := config.LoadReportConfig(cfg.SalesTargets)
	if err != nil {
		log.Warn("⚠️ Sales targets not loaded, every target is 0", zap.Error(err))
	}

	var reportRepo reportDomain.ReportReadRepository
	var reportStore sharedDomain.ProjectionStore
	switch cfg.SalesStore {
	case config.StoreSQL:
		if err := reportSQL.InitReportSchema(ctx, db, dialect); err != nil {
			log.Fatal("failed to initialize sales report schema", zap.Error(err))
		}
		reportRepo, reportStore = reportSQL.NewReportRepoSQL(db, dialect), sqlStore
	case config.StoreMongo:
		store, err := mongoConn.Store(ctx)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		repo := reportMongo.NewReportRepoMongoDB(store)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("⚠️ Failed to create sales report indexes", zap.Error(err))
		}
		reportRepo, reportStore = repo, store
	default:
		store := reportFile.NewJSONReportStore(cfg.SalesReportPath, log)
		reportRepo, reportStore = store, store
	}
	projectors = append(projectors, projector.New(
		withSelector(reportDomain.ReadModelName, reportDomain.SourceStream, ""),
		sources.catchUp, reportStore, reportApp.NewProjection(reportDomain.NewMaterializer(reportCfg)), log, projector.WithNotifier(notifier)))
	checkpoints[reportDomain.ReadModelName] = reportStore

	// Hechos analíticos en ClickHouse (opcional)
	var trendRepo reportDomain.SalesTrendRepository
	if cfg.ClickHouseAddr != "" {
		facts, err := reportCH.NewSalesFactsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB, log)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, sin hechos de ventas", zap.Error(err))
		} else if err := facts.InitSchema(ctx); err != nil {
			log.Warn("⚠️ Failed to initialize ClickHouse schema", zap.Error(err))
		} else {
			defer facts.Close()
			trendRepo = facts
			projectors = append(projectors, projector.New(
				withSelector(reportDomain.FactsReadModelName, reportDomain.SourceStream, ""),
				sources.catchUp, facts, reportApp.NewFactsProjection(), log, projector.WithNotifier(notifier)))
			checkpoints[reportDomain.FactsReadModelName] = facts
		}
	}
	reportHttp.RegisterReportRoutes(router, reportHttp.NewReportHandler(
		reportApp.NewReportService(reportRepo, trendRepo, cacheInstance, cacheTTL, log)))

	// ---------------- Top products ----------------
	if redisAvailable {
		store := redisstore.New(rdb, log, rankingDomain.EntityRanking)
		projectors = append(projectors, projector.New(
			withSelector(rankingDomain.ReadModelName, rankingDomain.SourceStream, ""),
			sources.catchUp, store, rankingApp.NewProjection(), log, projector.WithNotifier(notifier)))
		checkpoints[rankingDomain.ReadModelName] = store
		rankingHttp.RegisterRankingRoutes(router, rankingHttp.NewRankingHandler(
			rankingApp.NewRankingService(rankingRedis.NewRankingRepoRedis(rdb), log)))
	}

	// ---------------- Fulfillment (suscripción durable) ----------------
	projectors = append(projectors, projector.New(
		withSelector(fulfillmentDomain.ReadModelName, fulfillmentDomain.SourceStream, fulfillmentDomain.SourceGroup),
		sources.durable, sqlStore, fulfillmentApp.NewProjection(), log, projector.WithNotifier(notifier)))
	checkpoints[fulfillmentDomain.ReadModelName] = sqlStore
	fulfillmentHttp.RegisterFulfillmentRoutes(router, fulfillmentHttp.NewFulfillmentHandler(
		fulfillmentApp.NewFulfillmentService(fulfillmentSQL.NewFulfillmentRepoSQL(db, dialect))))

	opsHttp.RegisterOpsRoutes(router, opsHttp.NewOpsHandler(checkpoints))

	// ---------------- Run ----------------
	done := make(chan error, 1)
	go func() { done <- projector.RunAll(ctx, log, projectors...) }()

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	if cfg.EventSource == config.SourceMemory {
		seedDemo(sources.memLog, time.Now().UTC(), log)
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown failed", zap.Error(err))
	}
	if err := <-done; err != nil {
		log.Error("Projectors stopped with errors", zap.Error(err))
	}
}
