package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/washdesk/internal/archive"
	"github.com/dukerupert/washdesk/internal/auth"
	"github.com/dukerupert/washdesk/internal/config"
	"github.com/dukerupert/washdesk/internal/email"
	"github.com/dukerupert/washdesk/internal/handler"
	"github.com/dukerupert/washdesk/internal/middleware"
	"github.com/dukerupert/washdesk/internal/notify"
	"github.com/dukerupert/washdesk/internal/payments"
	"github.com/dukerupert/washdesk/internal/push"
	"github.com/dukerupert/washdesk/internal/report"
	"github.com/dukerupert/washdesk/internal/store"
	"github.com/dukerupert/washdesk/internal/toast"
	ws "github.com/dukerupert/washdesk/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	issuer         *auth.Issuer
	dispatcher     *notify.Dispatcher
	notificationH  *handler.NotificationHandler
	bookingH       *handler.BookingHandler
	issueH         *handler.IssueHandler
	dashboardH     *handler.DashboardHandler
	authH          *handler.AuthHandler
	pushH          *handler.PushHandler
	webhookH       *handler.WebhookHandler
	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	logger         *slog.Logger
}

// New wires stores, delivery channels and handlers. Optional integrations
// (web push, Postmark, Stripe, report archive) are enabled when configured.
func New(cfg config.Config, db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	notificationStore := store.NewNotificationStore(db)
	bookingStore := store.NewBookingStore(db)
	paymentStore := store.NewPaymentStore(db)
	dashboardStore := store.NewDashboardStore(db)
	pushStore := store.NewPushStore(db)

	var opts []notify.Option

	// Push notification service
	var pushSvc handler.VAPIDKeyer
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		svc := push.NewService(cfg.Push.PublicKey, cfg.Push.PrivateKey, cfg.Push.Subscriber)
		opts = append(opts, notify.WithPusher(push.NewNotifier(svc, pushStore, logger.With("component", "push"))))
		pushSvc = svc
	}

	// Issue escalation email
	emailClient := email.NewClient(cfg.Postmark.ServerToken, cfg.Postmark.FromEmail, cfg.BaseURL)
	if emailClient.Configured() && cfg.Postmark.SupportEmail != "" {
		opts = append(opts, notify.WithIssueMailer(emailClient, cfg.Postmark.SupportEmail))
	}

	dispatcher := notify.NewDispatcher(notificationStore, hub, logger.With("component", "notify"), opts...)

	// Report archive
	var reportArchive handler.ReportArchive
	if cfg.Archive.Enabled() {
		reportArchive = archive.New(archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
	}
	reportLogger := logger.With("component", "report")
	exporter := report.New(toast.NewLog(reportLogger))

	var webhookH *handler.WebhookHandler
	if cfg.Stripe.WebhookSecret != "" {
		webhookH = handler.NewWebhookHandler(payments.NewVerifier(cfg.Stripe.WebhookSecret), paymentStore, dispatcher, logger.With("component", "webhook"))
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Error("ignoring trusted proxies", "error", err)
		proxies = nil
	}

	return &Server{
		db:             db,
		hub:            hub,
		issuer:         issuer,
		dispatcher:     dispatcher,
		notificationH:  handler.NewNotificationHandler(notificationStore, dispatcher, hub, logger.With("component", "notification")),
		bookingH:       handler.NewBookingHandler(bookingStore, dispatcher, logger.With("component", "booking")),
		issueH:         handler.NewIssueHandler(dispatcher, logger.With("component", "issue")),
		dashboardH:     handler.NewDashboardHandler(dashboardStore, exporter, reportArchive, reportLogger),
		authH:          handler.NewAuthHandler(issuer, cfg.Auth.Username, cfg.Auth.PasswordHash, logger.With("component", "auth")),
		pushH:          handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler")),
		webhookH:       webhookH,
		rateLimiter:    middleware.NewRateLimiter(middleware.WithTrustedProxies(proxies)),
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Shutdown waits for in-flight push and email deliveries.
func (s *Server) Shutdown() {
	s.dispatcher.Wait()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /admin/login", s.rateLimitedHandler(s.authH.Login, 10, time.Minute))

	// Stripe webhook (public, signature checked)
	if s.webhookH != nil {
		outerMux.HandleFunc("POST /webhooks/stripe", s.webhookH.HandleStripeWebhook)
	}

	// Protected routes, wrapped with RequireAdmin
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAdmin(s.issuer)
	outerMux.Handle("/admin/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": s.hub.ClientCount()})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc, limit int, per time.Duration) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, limit, per)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/me", s.authH.Me)

	// Notifications
	mux.HandleFunc("GET /admin/notifications/types", s.notificationH.Types)
	mux.HandleFunc("GET /admin/notifications/unread", s.notificationH.Unread)
	mux.HandleFunc("GET /admin/notifications", s.notificationH.List)
	mux.HandleFunc("POST /admin/notifications", s.notificationH.Create)
	mux.HandleFunc("PATCH /admin/notifications/read", s.notificationH.MarkAllRead)
	mux.HandleFunc("PATCH /admin/notifications/{id}/read", s.notificationH.MarkRead)

	// Bookings and issues
	mux.HandleFunc("GET /admin/bookings", s.bookingH.List)
	mux.HandleFunc("POST /admin/bookings", s.bookingH.Create)
	mux.HandleFunc("POST /admin/issues", s.issueH.Create)

	// Dashboard
	mux.HandleFunc("GET /admin/dashboard", s.dashboardH.Get)
	mux.HandleFunc("GET /admin/dashboard/export", s.rateLimitedHandler(s.dashboardH.Export, 20, time.Minute))
	mux.HandleFunc("GET /admin/reports/{year}/{month}/{file}", s.dashboardH.Report)

	// Push notifications
	mux.HandleFunc("GET /admin/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("GET /admin/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("POST /admin/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /admin/push/subscribe", s.pushH.Unsubscribe)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.allowedOrigins))
}
