package startup

import (
	"context"
	"fmt"
	"github.com/casbin/casbin"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"os"
	"os/signal"
	"roommate_service/authorization"
	"roommate_service/casbinAuthorization"
	"roommate_service/domain"
	"roommate_service/handlers"
	application "roommate_service/service"
	"roommate_service/startup/config"
	"roommate_service/store"
	"syscall"
	"time"
)

type Server struct {
	config *config.Config
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) Start() {
	initLogger(server.config.LogFilePath)

	ctx := context.Background()
	tp := server.initTracerProvider()
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer := tp.Tracer(serviceName)

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(ctx, httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			Logger.WithError(err).Error("Error disconnecting from MongoDB")
		}
	}(mongoClient, ctx)

	listingStore := server.initListingStore(ctx, mongoClient, tracer)
	listingCache := server.initListingCache(tracer)
	notifier := server.initLikeNotifier()
	verifier := server.initIdentityVerifier(ctx)
	enforcer := server.initEnforcer()

	listingService := server.initListingService(listingStore, listingCache, notifier, tracer)
	listingHandler := server.initListingHandler(listingService, tracer)

	server.start(listingHandler, verifier, enforcer)
}

func (server *Server) initTracerProvider() *sdktrace.TracerProvider {
	if server.config.JaegerAddress == "" {
		Logger.Info("JAEGER_ADDRESS not set, spans are not exported")
		return newTraceProvider(nil)
	}
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		Logger.Fatalf("Failed to Initialize Exporter: %v", err)
	}
	return newTraceProvider(exp)
}

func (server *Server) initMongoClient(ctx context.Context, httpClient *http.Client) *mongo.Client {
	client, err := store.GetClient(ctx, server.config.ListingDBURI, server.config.ListingDBHost, server.config.ListingDBPort, httpClient)
	if err != nil {
		Logger.Fatal(err)
	}
	return client
}

func (server *Server) initListingStore(ctx context.Context, client *mongo.Client, tracer trace.Tracer) domain.ListingStore {
	listingStore := store.NewListingMongoDBStore(client, server.config.ListingDBName, server.config.ListingCollection, tracer, Logger)
	if err := listingStore.EnsureIndexes(ctx); err != nil {
		Logger.WithError(err).Warn("could not create listing indexes")
	}
	return listingStore
}

func (server *Server) initListingCache(tracer trace.Tracer) domain.ListingCache {
	if server.config.ListingCacheHost == "" {
		return store.NopListingCache{}
	}
	cache := store.NewListingRedisCache(store.GetRedisClient(server.config.ListingCacheHost, server.config.ListingCachePort), server.config.ListingCacheTTL, tracer, Logger)
	if err := cache.Ping(); err != nil {
		Logger.WithError(err).Warn("redis unreachable, featured listings are not cached")
		return store.NopListingCache{}
	}
	return cache
}

func (server *Server) initLikeNotifier() domain.LikeNotifier {
	if server.config.SMTPHost == "" || server.config.SMTPEmail == "" {
		return application.NopLikeNotifier{Logger: Logger}
	}
	return application.NewMailLikeNotifier(server.config.SMTPHost, server.config.SMTPPort, server.config.SMTPEmail, server.config.SMTPPassword, Logger)
}

func (server *Server) initIdentityVerifier(ctx context.Context) domain.IdentityVerifier {
	if server.config.FirebaseProjectID != "" {
		verifier, err := authorization.NewFirebaseVerifier(ctx, server.config.FirebaseProjectID, server.config.FirebaseCredentialsFile)
		if err != nil {
			Logger.Fatalf("Failed to initialize firebase auth: %v", err)
		}
		return verifier
	}
	if server.config.SecretKey == "" {
		Logger.Fatal("SECRET_KEY or FIREBASE_PROJECT_ID must be set")
	}
	verifier, err := authorization.NewJWTVerifier([]byte(server.config.SecretKey))
	if err != nil {
		Logger.Fatal(err)
	}
	return verifier
}

func (server *Server) initEnforcer() *casbin.Enforcer {
	enforcer, err := casbinAuthorization.NewEnforcer(server.config.RbacModelPath, server.config.RbacPolicyPath)
	if err != nil {
		Logger.Fatal(err)
	}
	return enforcer
}

func (server *Server) initListingService(store domain.ListingStore, cache domain.ListingCache, notifier domain.LikeNotifier, tracer trace.Tracer) *application.ListingService {
	return application.NewListingService(store, cache, notifier, tracer, Logger)
}

func (server *Server) initListingHandler(service *application.ListingService, tracer trace.Tracer) *handlers.ListingHandler {
	return handlers.NewListingHandler(service, tracer, Logger)
}

// NewRouter builds the API router with its middleware chain.
func NewRouter(listingHandler *handlers.ListingHandler, verifier domain.IdentityVerifier, enforcer *casbin.Enforcer, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(handlers.MiddlewareContentTypeSet)
	router.Use(handlers.ExtractTraceInfoMiddleware)
	router.Use(authorization.Authenticate(verifier, logger))
	router.Use(casbinAuthorization.CasbinMiddleware(enforcer, logger))
	listingHandler.Init(router)
	return router
}

func (server *Server) start(listingHandler *handlers.ListingHandler, verifier domain.IdentityVerifier, enforcer *casbin.Enforcer) {
	router := NewRouter(listingHandler, verifier, enforcer, Logger)

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(server.config.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	accessLog := Logger.Writer()
	defer func() { _ = accessLog.Close() }()

	handler := gorillaHandlers.RecoveryHandler(gorillaHandlers.RecoveryLogger(Logger))(router)
	handler = gorillaHandlers.CombinedLoggingHandler(accessLog, cors(handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", server.config.Port),
		Handler:      handler,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	Logger.Infof("Server listening on port %s", server.config.Port)
	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Fatal(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		Logger.Fatalf("Error Shutting Down Server %s", err)
	}
	Logger.Info("Server Gracefully Stopped")
}
