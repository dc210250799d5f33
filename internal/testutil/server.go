// Package testutil provides test helpers for the clamav-sdk-go SDK.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Upload is one scan request received by a mock server.
type Upload struct {
	Path        string
	Filename    string
	ContentType string
	Data        []byte
}

// Recorder collects the uploads seen by ScanHandler.
type Recorder struct {
	mu      sync.Mutex
	uploads []Upload
}

// Uploads returns a copy of the recorded uploads in arrival order.
func (r *Recorder) Uploads() []Upload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Upload(nil), r.uploads...)
}

func (r *Recorder) add(u Upload) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.uploads = append(r.uploads, u)
	r.mu.Unlock()
}

// NewMockServer creates an httptest.Server that handles ClamAV API endpoints.
// The handlers map allows overriding behavior per endpoint path.
func NewMockServer(handlers map[string]http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	return httptest.NewServer(mux)
}

// JSONHandler returns an http.HandlerFunc that responds with the given status code and JSON body.
func JSONHandler(statusCode int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusCode, body)
	}
}

// TextHandler responds with a plain-text body, as a proxy in front of the API might.
func TextHandler(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode)
		io.WriteString(w, body) //nolint:errcheck
	}
}

// ScanHandler returns an http.HandlerFunc that reads the uploaded file and responds with a scan result.
// The checkFunc is called with the uploaded file data and can return a custom response.
// Uploads are recorded on rec when it is non-nil.
func ScanHandler(rec *Recorder, checkFunc func(data []byte, filename string) (int, interface{})) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := Upload{Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")}

		if u.ContentType == "application/octet-stream" {
			data, err := io.ReadAll(r.Body)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "failed to read body"})
				return
			}
			u.Data = data
			u.Filename = "stream"
		} else {
			file, header, err := r.FormFile("file")
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Provide a single file"})
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			u.Data = data
			u.Filename = header.Filename
		}

		rec.add(u)
		statusCode, body := checkFunc(u.Data, u.Filename)
		writeJSON(w, statusCode, body)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// CleanScanResponse returns a standard clean scan response.
func CleanScanResponse() map[string]interface{} {
	return map[string]interface{}{
		"status":  "OK",
		"message": "",
		"time":    0.001234,
	}
}

// InfectedScanResponse returns a standard infected scan response.
func InfectedScanResponse() map[string]interface{} {
	return map[string]interface{}{
		"status":  "FOUND",
		"message": "Eicar-Test-Signature",
		"time":    0.002342,
	}
}

// ErrorScanResponse returns a 200 response whose scan status is ERROR.
func ErrorScanResponse(msg string) map[string]interface{} {
	return map[string]interface{}{
		"status":  "ERROR",
		"message": msg,
		"time":    0,
	}
}
