package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const maxUploadSize = 32 << 20 // 32 MB

// Response - ответ эндпоинта загрузки; filePath потом передается как есть в createPost
type Response struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Handler принимает один бинарный файл в поле "file" и сохраняет его в Dir
type Handler struct {
	Dir string
}

func NewHandler(dir string) (*Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Handler{Dir: dir}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "No file uploaded"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	// уникальное имя: миллисекунды + исходное имя (без директорий)
	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(h.Dir, filename))
	if err != nil {
		log.Printf("failed to create upload file: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: "failed to store file"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("failed to write upload file: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: "failed to store file"})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success:  true,
		FilePath: "/uploads/" + filename,
	})
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode upload response: %v", err)
	}
}
