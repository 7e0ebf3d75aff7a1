package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"timetracker/internal/report"
	"timetracker/internal/utils"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// --- Вспомогательные функции для JSON-ответов ---

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// statusForError сопоставляет вид ошибки отчета с HTTP-кодом.
func statusForError(err error) int {
	switch report.KindOf(err) {
	case report.KindInvalidParams:
		return http.StatusBadRequest
	case report.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeReportError отдает ошибку генерации отчета клиенту.
func writeReportError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), report.Message(err))
}

// writeDocument отдает файл отчета как вложение.
func writeDocument(w http.ResponseWriter, doc *report.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", utils.ContentDisposition(doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		log.Printf("writeDocument: ошибка записи файла %s: %v", doc.Filename, err)
	}
}

// HealthHandler отвечает на проверку живости сервиса.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, "ok", map[string]string{"service": "timetracker"})
}

// GetUserProfile возвращает текущего пользователя.
func GetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	writeJSONSuccess(w, "Profile retrieved successfully", map[string]interface{}{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.DisplayName(),
		"role":      user.Role,
	})
}
