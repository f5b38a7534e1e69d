// Package api exposes the advisor over JSON HTTP endpoints.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniadvisor/uniadvisor/internal/advisor"
	"github.com/uniadvisor/uniadvisor/internal/ctxutil"
	"github.com/uniadvisor/uniadvisor/internal/currency"
	"github.com/uniadvisor/uniadvisor/internal/dataset"
	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/logger"
	"github.com/uniadvisor/uniadvisor/internal/metrics"
	"github.com/uniadvisor/uniadvisor/internal/scraper"
)

// Advisor is the subset of *advisor.Service the handlers call.
type Advisor interface {
	SubmitProfile(ctx context.Context, sub advisor.Submission) advisor.Result
	GetRecommendation(ctx context.Context, userID string) advisor.Result
	AskQuery(ctx context.Context, userID, query string) advisor.Result
	SubmitFeedback(ctx context.Context, userID, text string) advisor.Result
}

// Reloader swaps in a freshly loaded dataset. *dataset.Holder implements it.
type Reloader interface {
	Reload(ctx context.Context) (*dataset.Dataset, dataset.LoadStats, error)
}

// Saver persists scraped rows. *storage.DB implements it.
type Saver interface {
	ReplaceUniversities(ctx context.Context, source string, rows []dataset.University) error
}

// Config holds Handler dependencies. Saver and Metrics are optional.
type Config struct {
	Advisor       Advisor
	Datasets      Reloader
	Scraper       scraper.Scraper
	Saver         Saver
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	ReloadTimeout time.Duration
}

// Handler serves the public JSON endpoints.
type Handler struct {
	advisor       Advisor
	datasets      Reloader
	scraper       scraper.Scraper
	saver         Saver
	metrics       *metrics.Metrics
	logger        *logger.Logger
	reloadTimeout time.Duration
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	sc := cfg.Scraper
	if sc == nil {
		sc = scraper.Noop{}
	}
	return &Handler{
		advisor:       cfg.Advisor,
		datasets:      cfg.Datasets,
		scraper:       sc,
		saver:         cfg.Saver,
		metrics:       cfg.Metrics,
		logger:        log.WithModule("api"),
		reloadTimeout: cfg.ReloadTimeout,
	}
}

// Register mounts the public routes.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/get_countries", h.Countries)
	r.POST("/recommend", h.Recommend)
	r.POST("/chat", h.Chat)
	r.POST("/feedback", h.Feedback)
	r.POST("/scrape", h.Scrape)
}

type recommendRequest struct {
	UserID           string `json:"userId"`
	StudentName      string `json:"studentName"`
	HighestEducation string `json:"highestEducation"`
	OtherEducation   string `json:"otherEducation"`
	Subject          string `json:"subject"`
	IELTSScore       Number `json:"ieltsScore"`
	TargetCountry    string `json:"targetCountry"`
	StudyPursue      string `json:"studyPursue"`
	OtherStudy       string `json:"otherStudy"`
	Budget           Number `json:"budget"`
	Grades           Number `json:"grades"`
	StudyIdea        string `json:"studyIdea"`
}

func (r recommendRequest) submission() advisor.Submission {
	return advisor.Submission{
		UserID:           r.UserID,
		StudentName:      r.StudentName,
		HighestEducation: r.HighestEducation,
		OtherEducation:   r.OtherEducation,
		Subject:          r.Subject,
		IELTSScore:       float64(r.IELTSScore),
		TargetCountry:    r.TargetCountry,
		StudyPursue:      r.StudyPursue,
		OtherStudy:       r.OtherStudy,
		Budget:           float64(r.Budget),
		Grades:           float64(r.Grades),
		StudyIdea:        r.StudyIdea,
	}
}

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type feedbackRequest struct {
	UserID   string `json:"userId"`
	Feedback string `json:"feedback"`
}

// Countries returns the countries offered by the profile form.
func (h *Handler) Countries(c *gin.Context) {
	c.JSON(http.StatusOK, currency.Countries())
}

// Recommend stores the submitted profile and answers with
// recommendations (or study suggestions).
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if !h.bind(c, "recommend", &req) {
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)

	ctx := withUser(c, req.UserID)
	if res := h.advisor.SubmitProfile(ctx, req.submission()); res.Status == advisor.StatusError {
		h.respond(c, "recommend", res)
		return
	}
	h.respond(c, "recommend", h.advisor.GetRecommendation(ctx, req.UserID))
}

// Chat answers a free-text message.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if !h.bind(c, "chat", &req) {
		return
	}
	h.respond(c, "chat", h.advisor.AskQuery(withUser(c, req.UserID), req.UserID, req.Message))
}

// Feedback records free-text feedback.
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if !h.bind(c, "feedback", &req) {
		return
	}
	h.respond(c, "feedback", h.advisor.SubmitFeedback(withUser(c, req.UserID), req.UserID, req.Feedback))
}

// Scrape runs the scraping hook. Rows it returns are cleaned like CSV rows,
// then saved and loaded.
func (h *Handler) Scrape(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.scraper.Scrape(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Scrape failed")
		h.recordError("scrape_failed", "scrape")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := gin.H{}
	cleaned, stats := dataset.Clean(rows)
	if len(rows) > 0 {
		data["dropped"] = stats.Incomplete + stats.Duplicates
		h.logger.WithFields(map[string]any{
			"rows":       stats.Rows,
			"incomplete": stats.Incomplete,
			"duplicates": stats.Duplicates,
			"kept":       stats.Kept,
		}).Info("Scraped rows cleaned")
	}
	if len(cleaned) > 0 && h.saver != nil {
		if err := h.saver.ReplaceUniversities(ctx, "scrape", cleaned); err != nil {
			h.logger.WithError(err).Error("Saving scraped rows failed")
			h.recordError("scrape_failed", "scrape")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		reloadCtx, cancel := h.reloadContext(c)
		_, _, err := h.datasets.Reload(reloadCtx)
		cancel()
		if err != nil {
			h.logger.WithError(err).Warn("Reload after scrape failed")
		}
		data["rows"] = len(cleaned)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Data scraped and saved.",
		"data":    data,
	})
}

// reloadContext detaches a reload from the request. Concurrent reloads
// share one load, so a single client disconnecting must not abort it.
func (h *Handler) reloadContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := ctxutil.PreserveTracing(c.Request.Context())
	if h.reloadTimeout > 0 {
		return context.WithTimeout(ctx, h.reloadTimeout)
	}
	return context.WithCancel(ctx)
}

// Reload reloads the dataset from its sources.
func (h *Handler) Reload(c *gin.Context) {
	ctx, cancel := h.reloadContext(c)
	defer cancel()

	ds, stats, err := h.datasets.Reload(ctx)
	body := gin.H{
		"source": ds.Source(),
		"rows":   ds.Len(),
		"stats": gin.H{
			"read":         stats.Rows,
			"malformed":    stats.Malformed,
			"incomplete":   stats.Incomplete,
			"duplicates":   stats.Duplicates,
			"field_errors": stats.FieldErrors,
		},
	}
	if err != nil {
		h.recordError("reload_failed", "admin_reload")
		body["status"] = "error"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	c.JSON(http.StatusOK, body)
}

// withUser returns the request context tagged with the user ID for logs.
func withUser(c *gin.Context, userID string) context.Context {
	return ctxutil.WithUserID(c.Request.Context(), userID)
}

// bind decodes the JSON body, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, endpoint string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.recordError("bad_request", endpoint)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// respond writes a Result: replies as {"reply"}, failures as {"error"}.
func (h *Handler) respond(c *gin.Context, endpoint string, res advisor.Result) {
	if res.Status != advisor.StatusError {
		c.JSON(http.StatusOK, gin.H{"reply": res.Reply})
		return
	}

	status := http.StatusInternalServerError
	errorType := "service_error"
	switch {
	case errs.IsRateLimitExceeded(res.Err):
		status, errorType = http.StatusTooManyRequests, "rate_limited"
		c.Header("Retry-After", "60")
	case errs.IsInvalidInput(res.Err):
		status, errorType = http.StatusBadRequest, "invalid_input"
	}
	h.recordError(errorType, endpoint)
	c.JSON(status, gin.H{"error": res.Error})
}

func (h *Handler) recordError(errorType, endpoint string) {
	if h.metrics != nil {
		h.metrics.RecordHTTPError(errorType, endpoint)
	}
}
