package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/oauth2"

	"github.com/goodco/bankbot/internal/bank"
	"github.com/goodco/bankbot/internal/config"
)

// API is the admin HTTP surface: Discord OAuth2 login and read-only ledger
// queries plus dry-run payout computation.
type API struct {
	router      *mux.Router
	store       *bank.Store
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte

	// resolveName maps member IDs to display names for payout previews.
	resolveName func(memberID string) (string, bool)
}

func New(cfg *config.Config, store *bank.Store, resolveName func(memberID string) (string, bool)) *API {
	api := &API{
		router:      mux.NewRouter(),
		store:       store,
		config:      cfg,
		jwtSecret:   []byte(cfg.JWTSecret),
		resolveName: resolveName,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/bank/ledger", a.handleLedger).Methods("GET")
	protected.HandleFunc("/bank/members/{member_id}", a.handleMemberBalances).Methods("GET")
	protected.HandleFunc("/payout/dry-run", a.handleDryRunPayout).Methods("POST")
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)
	log.Printf("API server listening on %s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}
