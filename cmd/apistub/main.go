// Command apistub is a self-contained stand-in for the external business API,
// meant for local development of the gateway without access to the real
// backend. It issues HS256 JWTs, rotates refresh tokens, and serves a fixed
// set of users and client businesses, one per vertical.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gestor/internal/platform/httpserver"
	"gestor/internal/platform/logger"
)

const tokenTTL = time.Hour

type user struct {
	ID            string
	TenantID      string
	Email         string
	Name          string
	Role          string
	Status        string
	EmailVerified bool
	PasswordHash  []byte
}

type client struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Type   string `json:"type"`
	Plan   string `json:"plan"`
}

type refreshRecord struct {
	UserID string
	Scope  string
}

type stub struct {
	secret  []byte
	users   map[string]*user // by email
	clients map[string]client

	mu        sync.Mutex
	refreshes map[string]refreshRecord
	revoked   map[string]struct{}
}

func main() {
	log := logger.New()
	addr := envOr("APISTUB_ADDR", ":9090")

	s := &stub{
		secret:    []byte(envOr("APISTUB_SECRET", "dev-secret")),
		users:     seedUsers(),
		clients:   seedClients(),
		refreshes: make(map[string]refreshRecord),
		revoked:   make(map[string]struct{}),
	}

	r := chi.NewRouter()
	r.Post("/auth/login", s.handleLogin)
	r.Get("/auth/me", s.handleMe)
	r.Post("/auth/refresh", s.handleRefresh)
	r.Post("/auth/switch-tenant", s.handleSwitchTenant)
	r.Post("/auth/logout", s.handleLogout)
	r.Get("/clients/{id}", s.handleFetchClient)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Info("starting api stub", "addr", addr)
	if err := httpserver.New(addr, r).ListenAndServe(); err != nil {
		log.Error("api stub stopped", "error", err)
		os.Exit(1)
	}
}

func seedUsers() map[string]*user {
	hash := func(pw string) []byte {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		return h
	}
	return map[string]*user{
		"a@b.com": {
			ID:            "u-1",
			TenantID:      "C1",
			Email:         "a@b.com",
			Name:          "Ana Souza",
			Role:          "admin",
			Status:        "active",
			EmailVerified: true,
			PasswordHash:  hash("secret1"),
		},
		"super@gestor.dev": {
			ID:            "u-2",
			TenantID:      "C1",
			Email:         "super@gestor.dev",
			Name:          "Admin Geral",
			Role:          "super_admin",
			Status:        "active",
			EmailVerified: true,
			PasswordHash:  hash("secret1"),
		},
	}
}

func seedClients() map[string]client {
	records := []client{
		{ID: "C1", Name: "Matriz Gestor", Slug: "matriz", Status: "active", Type: "comercio", Plan: "enterprise"},
		{ID: "c-1", Name: "Clínica Boa Saúde", Slug: "clinica-boa-saude", Status: "active", Type: "clinica", Plan: "pro"},
		{ID: "c-2", Name: "Salão Beleza Pura", Slug: "salao-beleza-pura", Status: "active", Type: "salao", Plan: "basic"},
		{ID: "c-3", Name: "Autopeças Silva", Slug: "autopecas-silva", Status: "trial", Type: "autopecas", Plan: "trial"},
		{ID: "c-4", Name: "Oficina do Zé", Slug: "oficina-do-ze", Status: "active", Type: "oficina", Plan: "pro"},
		{ID: "c-9", Name: "Petshop Alegria", Slug: "petshop-alegria", Status: "active", Type: "petshop", Plan: "pro"},
		{ID: "c-6", Name: "Mercadinho Central", Slug: "mercadinho-central", Status: "suspended", Type: "comercio", Plan: "basic"},
	}
	out := make(map[string]client, len(records))
	for _, rec := range records {
		out[rec.ID] = rec
	}
	return out
}

func (s *stub) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "corpo da requisição inválido"})
		return
	}

	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "credenciais inválidas"})
		return
	}

	token, err := s.issueToken(u, u.TenantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "falha ao emitir token"})
		return
	}
	refresh := s.issueRefresh(u.ID, u.TenantID)

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          s.principalPayload(u, u.TenantID),
		"token":         token,
		"refresh_token": refresh,
		"client_id":     u.TenantID,
	})
}

func (s *stub) handleMe(w http.ResponseWriter, r *http.Request) {
	u, scope, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token inválido ou expirado"})
		return
	}
	writeJSON(w, http.StatusOK, s.principalPayload(u, scope))
}

func (s *stub) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "corpo da requisição inválido"})
		return
	}

	s.mu.Lock()
	rec, ok := s.refreshes[req.RefreshToken]
	if ok {
		delete(s.refreshes, req.RefreshToken)
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token inválido"})
		return
	}

	u := s.userByID(rec.UserID)
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "usuário não encontrado"})
		return
	}

	token, err := s.issueToken(u, rec.Scope)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "falha ao emitir token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":         token,
		"refresh_token": s.issueRefresh(u.ID, rec.Scope),
	})
}

func (s *stub) handleSwitchTenant(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token inválido ou expirado"})
		return
	}
	var req struct {
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "corpo da requisição inválido"})
		return
	}
	if _, found := s.clients[req.ClientID]; !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "registro não encontrado"})
		return
	}

	token, err := s.issueToken(u, req.ClientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "falha ao emitir token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *stub) handleLogout(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw != "" {
		s.mu.Lock()
		s.revoked[raw] = struct{}{}
		s.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *stub) handleFetchClient(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token inválido ou expirado"})
		return
	}
	rec, found := s.clients[chi.URLParam(r, "id")]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "registro não encontrado"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *stub) issueToken(u *user, scope string) (string, error) {
	claims := jwt.MapClaims{
		"sub": u.ID,
		"tid": scope,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *stub) issueRefresh(userID, scope string) string {
	token := uuid.New().String()
	s.mu.Lock()
	s.refreshes[token] = refreshRecord{UserID: userID, Scope: scope}
	s.mu.Unlock()
	return token
}

// authenticate parses the bearer JWT and returns the user plus the tenant
// scope baked into the token.
func (s *stub) authenticate(r *http.Request) (*user, string, bool) {
	raw := bearerToken(r)
	if raw == "" {
		return nil, "", false
	}

	s.mu.Lock()
	_, revoked := s.revoked[raw]
	s.mu.Unlock()
	if revoked {
		return nil, "", false
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, "", false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", false
	}
	sub, _ := claims["sub"].(string)
	scope, _ := claims["tid"].(string)

	u := s.userByID(sub)
	if u == nil {
		return nil, "", false
	}
	return u, scope, true
}

func (s *stub) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *stub) principalPayload(u *user, scope string) map[string]any {
	return map[string]any{
		"id":             u.ID,
		"tenant_id":      scope,
		"email":          u.Email,
		"name":           u.Name,
		"role":           u.Role,
		"status":         u.Status,
		"email_verified": u.EmailVerified,
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
