package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"imageresizer/internal/config"
	"imageresizer/internal/domain"
	"imageresizer/internal/repository"
	"imageresizer/internal/service"
)

type Handler struct {
	service  service.ImageService
	sessions repository.SessionRepository
	cfg      *config.Config
	log      *zap.Logger
}

func NewHandler(service service.ImageService, sessions repository.SessionRepository, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type settingsRequest struct {
	Prefix     string `json:"prefix" form:"prefix"`
	Width      int    `json:"width" form:"width"`
	SkipResize bool   `json:"skip_resize" form:"skip_resize"`
}

type settingsResponse struct {
	Prefix      string   `json:"prefix"`
	Width       int      `json:"width"`
	SkipResize  bool     `json:"skip_resize"`
	MinWidth    int      `json:"min_width"`
	MaxWidth    int      `json:"max_width"`
	Labels      []string `json:"labels"`
	ArchiveName string   `json:"archive_name"`
}

func (h *Handler) GetUI(c *gin.Context) {
	batch := h.sessionDefaults(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Prefix":         batch.DefaultPrefix,
		"Width":          batch.TargetWidth,
		"SkipResize":     !batch.ResizeEnabled,
		"MinWidth":       h.cfg.App.MinWidth,
		"MaxWidth":       h.cfg.App.MaxWidth,
		"Labels":         h.service.Labels(),
		"ArchiveName":    h.cfg.App.ArchiveName,
		"AllowedFormats": strings.Join(h.cfg.App.AllowedFormats, ","),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) GetLabels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": h.service.Labels()})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsResponse(h.sessionDefaults(c)))
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings"})
		return
	}

	if req.Width == 0 {
		req.Width = h.sessionDefaults(c).TargetWidth
	}
	if !req.SkipResize && (req.Width < h.cfg.App.MinWidth || req.Width > h.cfg.App.MaxWidth) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Width must be between %d and %d", h.cfg.App.MinWidth, h.cfg.App.MaxWidth),
		})
		return
	}

	batch := domain.BatchConfig{
		DefaultPrefix: req.Prefix,
		TargetWidth:   req.Width,
		ResizeEnabled: !req.SkipResize,
	}
	if err := h.sessions.Save(c.Request.Context(), h.sessionID(c), batch); err != nil {
		h.log.Error("Failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, h.settingsResponse(batch))
}

// ResetSettings forgets the caller's saved defaults and returns the configured ones.
func (h *Handler) ResetSettings(c *gin.Context) {
	if id, err := c.Cookie(h.cfg.Session.CookieName); err == nil {
		err := h.sessions.Delete(c.Request.Context(), id)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			h.log.Error("Failed to reset settings", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset settings"})
			return
		}
	}

	c.JSON(http.StatusOK, h.settingsResponse(h.service.DefaultBatchConfig()))
}

// ProcessImages runs the batch and returns every image plus the archive,
// with binary payloads base64-encoded.
func (h *Handler) ProcessImages(c *gin.Context) {
	result, ok := h.runBatch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, result)
}

// DownloadArchive runs the batch and responds with the ZIP itself.
func (h *Handler) DownloadArchive(c *gin.Context) {
	result, ok := h.runBatch(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Archive.Name))
	c.Data(http.StatusOK, "application/zip", result.Archive.Data)
}

func (h *Handler) runBatch(c *gin.Context) (*domain.BatchResult, bool) {
	uploads, batch, overrides, err := h.parseBatch(c)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}

	result, err := h.service.ProcessBatch(uploads, batch, overrides)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}

	if err := h.sessions.Save(c.Request.Context(), h.sessionID(c), batch); err != nil {
		h.log.Warn("Failed to remember settings", zap.Error(err))
	}

	return result, true
}

func (h *Handler) parseBatch(c *gin.Context) ([]domain.RawUpload, domain.BatchConfig, []domain.ItemOverride, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.BatchConfig{}, nil, fmt.Errorf("%w: %v", domain.ErrEmptyBatch, err)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, domain.BatchConfig{}, nil, domain.ErrEmptyBatch
	}

	batch := h.sessionDefaults(c)
	if prefix, ok := c.GetPostForm("prefix"); ok {
		batch.DefaultPrefix = prefix
	}
	if raw, ok := c.GetPostForm("width"); ok && raw != "" {
		width, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, domain.BatchConfig{}, nil, fmt.Errorf("%w: %q", domain.ErrInvalidWidth, raw)
		}
		batch.TargetWidth = width
	}
	if raw, ok := c.GetPostForm("skip_resize"); ok {
		batch.ResizeEnabled = !parseCheckbox(raw)
	}

	uploads := make([]domain.RawUpload, 0, len(files))
	overrides := make([]domain.ItemOverride, 0, len(files))

	for i, file := range files {
		data, err := h.readUpload(file)
		if err != nil {
			return nil, domain.BatchConfig{}, nil, err
		}
		uploads = append(uploads, domain.RawUpload{Filename: file.Filename, Data: data})

		row := domain.ItemOverride{
			Index:       i,
			Label:       c.PostForm(fmt.Sprintf("label_%d", i)),
			CustomLabel: c.PostForm(fmt.Sprintf("custom_label_%d", i)),
		}
		if prefix, ok := c.GetPostForm(fmt.Sprintf("prefix_%d", i)); ok {
			row.Prefix = &prefix
		}
		overrides = append(overrides, row)
	}

	return uploads, batch, overrides, nil
}

func (h *Handler) readUpload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > h.cfg.App.MaxUploadSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", domain.ErrFileTooLarge, file.Filename, file.Size)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(h.cfg.App.AllowedFormats, ext) {
		return nil, fmt.Errorf("%w: %s. Allowed: %s", domain.ErrInvalidFormat, file.Filename, strings.Join(h.cfg.App.AllowedFormats, ", "))
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
	}

	return data, nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrInvalidWidth),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidLabel):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDecode),
		errors.Is(err, domain.ErrZeroWidth),
		errors.Is(err, domain.ErrZeroHeight),
		errors.Is(err, domain.ErrImageTooLarge),
		errors.Is(err, domain.ErrUnsupportedFormat):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.log.Error("Failed to process batch", zap.Error(err))
		c.JSON(status, gin.H{"error": "Failed to process images"})
		return
	}

	h.log.Warn("Rejected batch", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

// sessionID returns the caller's session id, issuing a new cookie if needed.
func (h *Handler) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(h.cfg.Session.CookieName); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.New().String()
	c.SetCookie(h.cfg.Session.CookieName, id, int(h.cfg.Session.TTL.Seconds()), "/", "", false, true)
	return id
}

func (h *Handler) sessionDefaults(c *gin.Context) domain.BatchConfig {
	id, err := c.Cookie(h.cfg.Session.CookieName)
	if err != nil {
		return h.service.DefaultBatchConfig()
	}

	batch, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		return h.service.DefaultBatchConfig()
	}
	return batch
}

func (h *Handler) settingsResponse(batch domain.BatchConfig) settingsResponse {
	return settingsResponse{
		Prefix:      batch.DefaultPrefix,
		Width:       batch.TargetWidth,
		SkipResize:  !batch.ResizeEnabled,
		MinWidth:    h.cfg.App.MinWidth,
		MaxWidth:    h.cfg.App.MaxWidth,
		Labels:      h.service.Labels(),
		ArchiveName: h.cfg.App.ArchiveName,
	}
}

func parseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
