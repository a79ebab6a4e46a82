package middleware

import (
	"net/http"
	"sync/atomic"
)

// ResponseWriter records the status code and body size written by the wrapped handler
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int32
	written     int64
	wroteHeader atomic.Bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader forwards the first status code only, as net/http does
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader.CompareAndSwap(false, true) {
		return
	}
	atomic.StoreInt32(&rw.statusCode, int32(code))
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(data []byte) (int, error) {
	if !rw.wroteHeader.Load() {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(data)
	if n > 0 {
		atomic.AddInt64(&rw.written, int64(n))
	}
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *ResponseWriter) StatusCode() int {
	return int(atomic.LoadInt32(&rw.statusCode))
}

func (rw *ResponseWriter) BytesWritten() int64 {
	return atomic.LoadInt64(&rw.written)
}

func (rw *ResponseWriter) HasBody() bool {
	return atomic.LoadInt64(&rw.written) > 0
}

// HeaderWritten reports whether the status line has been sent
func (rw *ResponseWriter) HeaderWritten() bool {
	return rw.wroteHeader.Load()
}
