package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadCapturer interface {
	Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error)
}

type LeadHandler struct {
	captureUC   LeadCapturer
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

func NewLeadHandler(captureUC LeadCapturer, limiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	if limiter == nil {
		limiter = NewRateLimiter(10, time.Minute) // 10 req/min por IP
	}
	return &LeadHandler{
		captureUC:   captureUC,
		rateLimiter: limiter,
		logger:      loggerOrNop(logger),
	}
}

type CaptureLeadResponse struct {
	Success   bool   `json:"success"`
	StudentID string `json:"student_id,omitempty"`
	Created   bool   `json:"created"`
	Message   string `json:"message,omitempty"`
}

// CaptureLead (POST /leads) é o formulário público da landing page.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var req usecase.CaptureLeadInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{Success: false, Message: "Email is required"})
		return
	}

	out, err := h.captureUC.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, CaptureLeadResponse{Success: true, StudentID: out.StudentID, Created: out.Created})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

// NewRateLimiter não sobe a limpeza sozinho; chame Cleanup numa goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Cleanup remove visitantes inativos até o contexto ser cancelado.
func (rl *RateLimiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}
