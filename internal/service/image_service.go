package service

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"imageresizer/internal/config"
	"imageresizer/internal/domain"
	"imageresizer/pkg/utils"
)

type ImageService interface {
	ProcessImages(uploads []domain.RawUpload, batch domain.BatchConfig, overrides []domain.ItemOverride) ([]domain.ProcessedImage, error)
	BuildArchive(images []domain.ProcessedImage) (*domain.Archive, error)
	ProcessBatch(uploads []domain.RawUpload, batch domain.BatchConfig, overrides []domain.ItemOverride) (*domain.BatchResult, error)
	Labels() []string
	DefaultBatchConfig() domain.BatchConfig
}

type imageService struct {
	cfg  *config.Config
	log  *zap.Logger
	proc *utils.ImageProcessor
}

func NewImageService(cfg *config.Config, log *zap.Logger) ImageService {
	return &imageService{
		cfg:  cfg,
		log:  log,
		proc: utils.NewImageProcessor(log, cfg.App.Quality, cfg.App.MaxPixels),
	}
}

func (s *imageService) Labels() []string {
	return append([]string(nil), s.cfg.App.Labels...)
}

func (s *imageService) DefaultBatchConfig() domain.BatchConfig {
	return domain.BatchConfig{
		TargetWidth:   s.cfg.App.DefaultWidth,
		ResizeEnabled: true,
	}
}

func (s *imageService) validateBatch(uploads []domain.RawUpload, batch domain.BatchConfig, overrides []domain.ItemOverride) error {
	if len(uploads) == 0 {
		return domain.ErrEmptyBatch
	}
	if len(uploads) > s.cfg.App.MaxBatchSize {
		return fmt.Errorf("%w: %d exceeds limit of %d", domain.ErrBatchTooLarge, len(uploads), s.cfg.App.MaxBatchSize)
	}
	if batch.ResizeEnabled && (batch.TargetWidth < s.cfg.App.MinWidth || batch.TargetWidth > s.cfg.App.MaxWidth) {
		return fmt.Errorf("%w: %d is outside [%d, %d]", domain.ErrInvalidWidth, batch.TargetWidth, s.cfg.App.MinWidth, s.cfg.App.MaxWidth)
	}
	for _, o := range overrides {
		if o.Label != "" && !slices.Contains(s.cfg.App.Labels, o.Label) {
			return fmt.Errorf("%w %q for image %d", domain.ErrInvalidLabel, o.Label, o.Index+1)
		}
	}
	return nil
}

// ProcessImages resizes and renames every upload in order. The first failing
// item aborts the whole batch and no partial results are returned.
func (s *imageService) ProcessImages(uploads []domain.RawUpload, batch domain.BatchConfig, overrides []domain.ItemOverride) ([]domain.ProcessedImage, error) {
	if err := s.validateBatch(uploads, batch, overrides); err != nil {
		return nil, err
	}

	rows := make(map[int]domain.ItemOverride, len(overrides))
	for _, o := range overrides {
		rows[o.Index] = o
	}

	start := time.Now()
	results := make([]domain.ProcessedImage, 0, len(uploads))

	for i, upload := range uploads {
		processed, err := s.processOne(i, upload, batch, rows[i])
		if err != nil {
			s.log.Error("Failed to process image",
				zap.Int("index", i),
				zap.String("file", upload.Filename),
				zap.Error(err))
			return nil, fmt.Errorf("image %d (%s): %w", i+1, upload.Filename, err)
		}
		results = append(results, processed)
	}

	s.log.Info("Batch processed",
		zap.Int("count", len(results)),
		zap.Bool("resize", batch.ResizeEnabled),
		zap.Int("width", batch.TargetWidth),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

func (s *imageService) processOne(i int, upload domain.RawUpload, batch domain.BatchConfig, row domain.ItemOverride) (domain.ProcessedImage, error) {
	src, err := s.proc.Decode(upload.Filename, upload.Data)
	if err != nil {
		return domain.ProcessedImage{}, err
	}

	out := src.Image
	if batch.ResizeEnabled {
		out, err = s.proc.Resize(src.Image, batch.TargetWidth)
		if err != nil {
			return domain.ProcessedImage{}, err
		}
	}

	prefix := batch.DefaultPrefix
	if row.Prefix != nil {
		prefix = *row.Prefix
	}
	label := row.Label
	if label == "" {
		label = s.cfg.App.Labels[0]
	}

	name := ResolveName(domain.NamingRequest{
		OriginalName: src.OriginalName,
		Prefix:       prefix,
		Label:        label,
		CustomLabel:  row.CustomLabel,
		Extension:    Extension(src.OriginalName),
	})

	data, err := s.proc.Encode(out, src.Format)
	if err != nil {
		return domain.ProcessedImage{}, err
	}

	s.log.Debug("Image processed",
		zap.Int("index", i),
		zap.String("original", src.OriginalName),
		zap.String("final", name),
		zap.Int("size", len(data)))

	b := out.Bounds()
	return domain.ProcessedImage{
		Index:        i,
		OriginalName: src.OriginalName,
		FinalName:    name,
		Format:       src.Format,
		ContentType:  utils.ContentType(src.Format),
		Width:        b.Dx(),
		Height:       b.Dy(),
		Data:         data,
	}, nil
}

// BuildArchive bundles processed images into one ZIP keyed by final name.
func (s *imageService) BuildArchive(images []domain.ProcessedImage) (*domain.Archive, error) {
	entries := make([]utils.ArchiveEntry, 0, len(images))
	for _, img := range images {
		entries = append(entries, utils.ArchiveEntry{Name: img.FinalName, Data: img.Data})
	}

	data, overwritten, err := utils.BuildZip(entries)
	if err != nil {
		return nil, err
	}

	if len(overwritten) > 0 {
		s.log.Warn("Duplicate filenames in batch, keeping last",
			zap.Strings("names", overwritten))
	}

	return &domain.Archive{
		Name:        s.cfg.App.ArchiveName,
		Entries:     distinctNames(entries),
		Overwritten: overwritten,
		Data:        data,
	}, nil
}

func distinctNames(entries []utils.ArchiveEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Name] = struct{}{}
	}
	return len(seen)
}

func (s *imageService) ProcessBatch(uploads []domain.RawUpload, batch domain.BatchConfig, overrides []domain.ItemOverride) (*domain.BatchResult, error) {
	images, err := s.ProcessImages(uploads, batch, overrides)
	if err != nil {
		return nil, err
	}

	archive, err := s.BuildArchive(images)
	if err != nil {
		return nil, err
	}

	return &domain.BatchResult{
		Images:  images,
		Archive: *archive,
	}, nil
}
