package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kafs-api/auth"
	"kafs-api/middleware"
	"kafs-api/store"
	"kafs-api/usersync"
)

// UserController handles user-related requests
type UserController struct {
	Auth     *auth.Provider
	Sessions *usersync.Manager
}

// NewUserController creates a new UserController
func NewUserController(provider *auth.Provider, sessions *usersync.Manager) *UserController {
	return &UserController{
		Auth:     provider,
		Sessions: sessions,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil || body.Email == "" || body.Password == "" {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	_, err = uc.Auth.SignUp(ctx, body.Email, body.Password, body.FullName)
	if errors.Is(err, auth.ErrEmailTaken) {
		http.Error(w, "User already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode("User registered successfully. Please check your email to verify your account.")
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Verification token missing", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	err := uc.Auth.VerifyEmail(ctx, token)
	if errors.Is(err, auth.ErrInvalidToken) {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Error updating user verification status", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Email verified successfully. You can now log in.")
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	userID, token, err := uc.Auth.SignIn(ctx, creds.Email, creds.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrNotVerified):
		http.Error(w, "Email not verified", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "Error signing in", http.StatusInternalServerError)
		return
	}

	// Warm the session so the first authenticated read is served from state.
	core := uc.Sessions.Session(userID)
	if err := core.Load(ctx); err != nil {
		// The user can still proceed; their first profile read retries.
		core.Logout()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not parse user from context", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core, err := uc.Sessions.Loaded(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusBadGateway)
		return
	}

	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateProfile replaces the user's display name and address
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not parse user from context", http.StatusUnauthorized)
		return
	}

	var body struct {
		FullName string `json:"full_name"`
		Address  string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core, err := uc.Sessions.Loaded(ctx, claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusBadGateway)
		return
	}
	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if err := core.UpdateUser(ctx, user.WithProfile(body.FullName, body.Address)); err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	updated, _ := core.User()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// RefreshProfile re-runs the load step for the session and returns the
// freshly published user
func (uc *UserController) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not parse user from context", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core := uc.Sessions.Session(claims.UserID)
	if err := core.Refresh(ctx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to refresh user", http.StatusBadGateway)
		return
	}

	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Logout clears the session state
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not parse user from context", http.StatusUnauthorized)
		return
	}

	core := uc.Sessions.Session(claims.UserID)
	core.Logout()
	uc.Auth.SignOut(claims.UserID)
	uc.Sessions.Drop(claims.UserID)

	json.NewEncoder(w).Encode("Logged out")
}
