package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Brownie44l1/cmplot/internal/matrix"
	"github.com/Brownie44l1/cmplot/internal/render"
)

type Handler struct {
	renderer  *render.Renderer
	maxUpload int64
}

func NewHandler(renderer *render.Renderer, maxUploadBytes int64) *Handler {
	return &Handler{
		renderer:  renderer,
		maxUpload: maxUploadBytes,
	}
}

// Routes registers the service endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", withRequestID(enableCORS(h.Health)))
	mux.HandleFunc("/render", withRequestID(enableCORS(h.Render)))
	return mux
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next(w, r)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Render turns an uploaded confusion matrix CSV into a PNG heatmap. The CSV
// is either the raw request body or the "file" field of a multipart form.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := w.Header().Get("X-Request-ID")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	name, body, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("[%s] Received %s, size: %d bytes", reqID, name, len(body))

	m, err := matrix.Parse(bytes.NewReader(body), name)
	if err != nil {
		log.Printf("[%s] Parse error: %v", reqID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var out bytes.Buffer
	if err := h.renderer.Encode(&out, m, render.FormatPNG); err != nil {
		log.Printf("[%s] Render error: %v", reqID, err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
		return
	}

	log.Printf("[%s] Rendered %dx%d matrix, %d bytes", reqID, m.Rows(), m.Cols(), out.Len())

	w.Header().Set("Content-Type", "image/png")
	w.Write(out.Bytes())
}

// readUpload reads the whole capped body before looking inside it, so an
// oversized upload fails with *http.MaxBytesError whatever its encoding.
func (h *Handler) readUpload(r *http.Request) (string, []byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "request body", body, nil
	}

	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errors.New("no CSV file provided, use 'file' as the form field name")
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to read multipart body: %w", err)
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}
		name := part.FileName()
		if name == "" {
			name = "file"
		}
		return name, data, nil
	}
}
