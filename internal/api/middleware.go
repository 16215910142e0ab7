package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

// Middleware is a function that wraps an HTTP handler
type Middleware func(http.Handler) http.Handler

// ChainMiddleware chains multiple middleware functions together
func ChainMiddleware(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// CORSMiddleware handles CORS headers
func CORSMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware tags each request with a unique id for log
// correlation.
func RequestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs HTTP requests and records request metrics
func LoggingMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			status := fmt.Sprintf("%d", wrapped.statusCode)
			logger.RequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			logger.RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration.Seconds())

			requestID, _ := r.Context().Value(requestIDKey).(string)
			logger.Info("HTTP request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("request_id", requestID),
				logger.Int("status", wrapped.statusCode),
				logger.Duration("duration", duration),
			)
		})
	}
}

// RecoveryMiddleware converts handler panics to JSON 500 responses
func RecoveryMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic in handler",
						logger.String("path", r.URL.Path),
						logger.Any("error", err),
					)
					respondWithError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware validates JWT bearer tokens. With no secret configured
// requests pass through as the default user.
func AuthMiddleware(jwtSecret string) Middleware {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" || r.URL.Path == "/live" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			if len(secret) == 0 {
				ctx := context.WithValue(r.Context(), userIDKey, "default")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}

			userID, err := validateToken(tokenString, secret)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateToken parses and validates a JWT token and returns the user ID
func validateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if userID, ok := claims["user_id"].(string); ok {
		return userID, nil
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub, nil
	}
	return "", fmt.Errorf("user_id not found in token")
}

// extractBearerToken extracts a JWT from an Authorization header
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 {
		if strings.ToLower(parts[0]) != "bearer" {
			return "", fmt.Errorf("invalid authorization header format")
		}
		return parts[1], nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "", fmt.Errorf("invalid authorization header format")
}

// RateLimitMiddleware implements simple per-client rate limiting
func RateLimitMiddleware(requestsPerSecond int) Middleware {
	type clientInfo struct {
		count     int
		lastReset time.Time
	}

	clients := make(map[string]*clientInfo)
	var mu sync.Mutex

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			now := time.Now()
			for key, info := range clients {
				if now.Sub(info.lastReset) > 1*time.Minute {
					delete(clients, key)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := clientAddr(r)
			now := time.Now()

			mu.Lock()
			info, exists := clients[clientIP]
			if !exists || now.Sub(info.lastReset) >= 1*time.Second {
				clients[clientIP] = &clientInfo{count: 1, lastReset: now}
				mu.Unlock()
				next.ServeHTTP(w, r)
				return
			}

			info.count++
			if info.count > requestsPerSecond {
				mu.Unlock()
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// responseWriter captures the status code written by a handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
