// Файл: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"timetracker/internal/constants"
	"timetracker/internal/metrics"
	"timetracker/internal/models"
	"timetracker/internal/report"
	"timetracker/internal/utils"
)

// AuthHeader - заголовок с подписанными данными пользователя.
const AuthHeader = "X-Worklog-Auth"

// RequestIDHeader - заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// Допустимый возраст auth_date и расхождение часов клиента.
const (
	authMaxAge    = 24 * time.Hour
	authClockSkew = 5 * time.Minute
)

// authNow подменяется в тестах.
var authNow = time.Now

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// UserLoader загружает пользователя по ID; db.Store реализует его.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// AuthMiddleware проверяет заголовок X-Worklog-Auth и кладет пользователя в контекст.
// Формат заголовка: "user_id=<id>&auth_date=<unix>&hash=<hex>", hash - HMAC-SHA256 от
// отсортированных пар "key=value", разделенных переводом строки.
func AuthMiddleware(secretKey string, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get(AuthHeader)
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Missing "+AuthHeader+" header")
				return
			}

			userID, err := validateAuthData(authHeader, secretKey)
			if err != nil {
				log.Printf("AuthMiddleware: Invalid auth data. Error: %v", err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Invalid auth data")
				return
			}

			user, err := users.UserByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					log.Printf("AuthMiddleware: ошибка загрузки пользователя ID %d: %v", userID, err)
				}
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: User not found")
				return
			}
			if !user.IsActive {
				writeJSONError(w, http.StatusForbidden, "Forbidden: User is inactive")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware проверяет, соответствует ли роль пользователя требуемой.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusForbidden, "Forbidden: User data not found in context")
				return
			}
			if !utils.IsRoleOrHigher(user.Role, requiredRole) {
				writeJSONError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware проставляет X-Request-ID в ответ, генерируя его при отсутствии.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = utils.GenerateUUID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// MetricsMiddleware считает запросы по методу и коду ответа.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}

// UserFromContext возвращает пользователя, сохраненного AuthMiddleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}

// requesterOf переводит пользователя в права доступа генератора отчетов.
func requesterOf(user models.User) report.Requester {
	return report.Requester{
		UserID:  user.ID,
		IsAdmin: utils.IsRoleOrHigher(user.Role, constants.ROLE_ADMIN),
	}
}

// validateAuthData проверяет подпись данных и возвращает user_id.
func validateAuthData(authData, secret string) (int64, error) {
	if secret == "" {
		return 0, fmt.Errorf("auth secret is not configured")
	}
	q, err := url.ParseQuery(authData)
	if err != nil {
		return 0, fmt.Errorf("failed to parse auth data: %w", err)
	}

	hash := q.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("hash is not present in auth data")
	}
	rawID := q.Get("user_id")
	if rawID == "" {
		return 0, fmt.Errorf("user_id is not present in auth data")
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid user_id %q", rawID)
	}

	expected := signAuthData(q, secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(hash))) {
		return 0, fmt.Errorf("hash mismatch")
	}

	rawDate := q.Get("auth_date")
	if rawDate == "" {
		return 0, fmt.Errorf("auth_date is not present in auth data")
	}
	unix, err := strconv.ParseInt(rawDate, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid auth_date %q", rawDate)
	}
	signedAt := time.Unix(unix, 0)
	now := authNow()
	if now.Sub(signedAt) > authMaxAge {
		return 0, fmt.Errorf("auth data expired at %s", signedAt.Add(authMaxAge).UTC().Format(time.RFC3339))
	}
	if signedAt.Sub(now) > authClockSkew {
		return 0, fmt.Errorf("auth_date %s is in the future", signedAt.UTC().Format(time.RFC3339))
	}
	return userID, nil
}

// signAuthData считает подпись всех пар, кроме hash.
func signAuthData(q url.Values, secret string) string {
	var pairs []string
	for k, v := range q {
		if k != "hash" && len(v) > 0 {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, v[0]))
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmac.New(sha256.New, []byte("WorklogAuth"))
	secretKey.Write([]byte(secret))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}
