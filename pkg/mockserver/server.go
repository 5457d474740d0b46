// Package mockserver is an in-memory stand-in for the application server
// that brokers custodial wallet access. It issues users, tokens, wallets and
// challenges, and records transfers without moving any value.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultAppID is served by GET /app_id unless overridden.
const DefaultAppID = "focussync-local"

// StartingBalance is the USDC balance, in base units, of every new wallet.
const StartingBalance = 1_000_000

// Wallet is a wallet as served by /get_wallets.
type Wallet struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Transfer is a recorded /create_transfer request.
type Transfer struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	WalletID            string    `json:"walletId"`
	Amount              int64     `json:"amount"`
	DestinationWalletID string    `json:"destinationWalletId"`
	ChallengeID         string    `json:"challengeId"`
	CreatedAt           time.Time `json:"createdAt"`
}

type user struct {
	id            string
	token         string
	encryptionKey string
	wallets       []Wallet
}

// Server holds the in-memory state. Use Handler to serve it.
type Server struct {
	appID string
	log   zerolog.Logger
	now   func() time.Time

	mu        sync.Mutex
	users     map[string]*user
	byToken   map[string]*user
	transfers []Transfer
}

// Option configures a Server.
type Option func(*Server)

func WithAppID(id string) Option {
	return func(s *Server) {
		s.appID = id
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithUser pre-registers a user so it can be imported by id.
func WithUser(id string) Option {
	return func(s *Server) {
		s.addUser(id)
	}
}

// New returns an empty Server.
func New(opts ...Option) *Server {
	s := &Server{
		appID:   DefaultAppID,
		log:     zerolog.Nop(),
		now:     time.Now,
		users:   make(map[string]*user),
		byToken: make(map[string]*user),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes with CORS enabled for local front-ends.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/app_id", s.appIDHandler)
	r.Post("/create_user", s.createUser)
	r.Post("/get_user_token", s.userToken)
	r.Post("/get_otp_tokens", s.otpTokens)
	r.Post("/initialize_wallet", s.initializeWallet)
	r.Post("/get_wallets", s.wallets)
	r.Get("/get_balance/{walletID}", s.balance)
	r.Post("/create_transfer", s.createTransfer)
	r.Post("/authenticate_google", s.authenticateGoogle)
	r.Get("/products", s.products)
	return r
}

// Transfers returns a copy of the recorded transfers.
func (s *Server) Transfers() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transfer(nil), s.transfers...)
}

// Wallets returns a copy of the wallets held by userID.
func (s *Server) Wallets(userID string) []Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]Wallet(nil), u.wallets...)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// addUser registers id with fresh credentials. Callers must not hold s.mu.
func (s *Server) addUser(id string) *user {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(id)
}

func (s *Server) addUserLocked(id string) *user {
	if u, ok := s.users[id]; ok {
		return u
	}
	u := &user{
		id:            id,
		token:         "utok_" + uuid.NewString(),
		encryptionKey: "ekey_" + uuid.NewString(),
	}
	s.users[id] = u
	s.byToken[u.token] = u
	return u
}

func (s *Server) userForToken(token string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byToken[token]
	return u, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return false
	}
	return true
}

func (s *Server) appIDHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"appId": s.appID})
}

func (s *Server) createUser(w http.ResponseWriter, _ *http.Request) {
	u := s.addUser(uuid.NewString())
	writeJSON(w, http.StatusOK, map[string]string{"userId": u.id})
}

func (s *Server) userToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "userId is required")
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.UserID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"userToken":     u.token,
		"encryptionKey": u.encryptionKey,
	})
}

// otpTokens registers a new user for the device; the device token doubles as
// the user token once the OTP is verified client side.
func (s *Server) otpTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "deviceId is required")
		return
	}
	u := s.addUser("device_" + req.DeviceID)
	writeJSON(w, http.StatusOK, map[string]string{
		"deviceToken":   u.token,
		"encryptionKey": u.encryptionKey,
		"otpToken":      "otp_" + uuid.NewString(),
	})
}

func (s *Server) initializeWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserToken string `json:"userToken"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, ok := s.userForToken(req.UserToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid user token")
		return
	}

	s.mu.Lock()
	u.wallets = append(u.wallets, Wallet{
		ID:          uuid.NewString(),
		Address:     fakeAddress(),
		Type:        "enduser",
		Description: "My dApp Wallet",
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"challengeId": uuid.NewString()})
}

func (s *Server) wallets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.UserID]
	var list []Wallet
	if ok {
		list = append([]Wallet{}, u.wallets...)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": list})
}

func (s *Server) findWallet(id string) (*user, bool) {
	for _, u := range s.users {
		for _, w := range u.wallets {
			if w.ID == id {
				return u, true
			}
		}
	}
	return nil, false
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "walletID")
	s.mu.Lock()
	_, ok := s.findWallet(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "wallet not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokenBalances": []map[string]any{{
			"token": map[string]any{
				"symbol":   "USDC",
				"name":     "USD Coin",
				"decimals": 6,
			},
			"amount": strconv.Itoa(StartingBalance),
			"type":   "fungible",
		}},
	})
}

func (s *Server) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserToken           string `json:"userToken"`
		WalletID            string `json:"walletId"`
		Amount              string `json:"amount"`
		DestinationWalletID string `json:"destinationWalletId"`
	}
	if !decode(w, r, &req) {
		return
	}
	amount, err := strconv.ParseInt(req.Amount, 10, 64)
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("invalid amount %q", req.Amount))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byToken[req.UserToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid user token")
		return
	}
	owner, ok := s.findWallet(req.WalletID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "wallet not found")
		return
	}
	if owner != u {
		writeError(w, http.StatusForbidden, "forbidden", "wallet belongs to another user")
		return
	}

	t := Transfer{
		ID:                  uuid.NewString(),
		UserID:              u.id,
		WalletID:            req.WalletID,
		Amount:              amount,
		DestinationWalletID: req.DestinationWalletID,
		ChallengeID:         uuid.NewString(),
		CreatedAt:           s.now(),
	}
	s.transfers = append(s.transfers, t)
	writeJSON(w, http.StatusOK, map[string]string{
		"challengeId":   t.ChallengeID,
		"transactionId": t.ID,
	})
}

func (s *Server) authenticateGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleID          string `json:"googleId"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		Picture           string `json:"picture"`
		GoogleAccessToken string `json:"googleAccessToken"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.GoogleID == "" || req.GoogleAccessToken == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "googleId and googleAccessToken are required")
		return
	}
	u := s.addUser("google_" + req.GoogleID)
	writeJSON(w, http.StatusOK, map[string]string{
		"userId":        u.id,
		"userToken":     u.token,
		"encryptionKey": u.encryptionKey,
	})
}

func (s *Server) products(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "Product A", "price": "1.0"},
		{"id": 2, "name": "Product B", "price": "2.5"},
	})
}

func fakeAddress() string {
	id := uuid.New()
	id2 := uuid.New()
	return fmt.Sprintf("0x%x%x", id[:], id2[:4])
}
