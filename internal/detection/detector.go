package detection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"patchforge/internal/catalog"
	"patchforge/internal/logging"
	"patchforge/internal/provenance"
	"patchforge/internal/services"
	"patchforge/internal/services/vision"
)

// Capability is the external inference surface the detector drives. It is
// satisfied by *vision.Client; tests substitute fakes.
type Capability interface {
	InferModules(ctx context.Context, photo []byte, mimeType string) ([]vision.Observation, error)
}

// Detected is one module sighting with provenance attached. Name holds the
// raw "Brand Model" string as reported; identity normalization happens during
// resolution, not here.
type Detected struct {
	Index        int                                `json:"index"`
	Name         provenance.Value[string]           `json:"name"`
	Category     provenance.Value[catalog.Category] `json:"category"`
	RawBrand     string                             `json:"raw_brand"`
	RawModel     string                             `json:"raw_model"`
	PositionHint string                             `json:"position_hint,omitempty"`
}

// Detection is the result of one photo pass: every sighting the capability
// reported, in reported order, with nothing filtered out. Low-confidence
// sightings survive so a human can confirm or reject them later.
type Detection struct {
	BatchID string     `json:"batch_id"`
	Source  string     `json:"source"`
	Modules []Detected `json:"modules"`
}

// Detector turns raw capability output into provenanced sightings.
type Detector struct {
	capability Capability
	source     string
	logger     *slog.Logger
}

// NewDetector constructs a detector. Source labels the provenance of every
// sighting, typically the inference model identifier.
func NewDetector(capability Capability, source string, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Detector{
		capability: capability,
		source:     strings.TrimSpace(source),
		logger:     logging.NewComponentLogger(logger, "detection"),
	}
}

// Detect runs photo inference and attaches provenance to every sighting.
// Out-of-range confidences are clamped to [0,1]; sightings are never dropped.
func (d *Detector) Detect(ctx context.Context, photo []byte, mimeType string) (Detection, error) {
	if d.capability == nil {
		return Detection{}, services.Wrap(services.ErrInference, "detection", "detect", "no capability configured", nil)
	}

	observations, err := d.capability.InferModules(ctx, photo, mimeType)
	if err != nil {
		if errors.Is(err, services.ErrInference) || errors.Is(err, services.ErrValidation) {
			return Detection{}, fmt.Errorf("detect: %w", err)
		}
		return Detection{}, services.Wrap(services.ErrInference, "detection", "detect", "", err)
	}

	detection := Detection{
		BatchID: uuid.NewString(),
		Source:  d.source,
		Modules: make([]Detected, 0, len(observations)),
	}

	for i, obs := range observations {
		confidence := clamp01(obs.Confidence)
		displayName := strings.TrimSpace(strings.TrimSpace(obs.Brand) + " " + strings.TrimSpace(obs.Model))

		name, err := provenance.Inferred(displayName, d.source, confidence)
		if err != nil {
			return Detection{}, services.Wrap(services.ErrInference, "detection", "detect",
				fmt.Sprintf("sighting %d", i), err)
		}
		category, err := provenance.Inferred(catalog.ParseCategory(obs.Category), d.source, confidence)
		if err != nil {
			return Detection{}, services.Wrap(services.ErrInference, "detection", "detect",
				fmt.Sprintf("sighting %d", i), err)
		}

		detection.Modules = append(detection.Modules, Detected{
			Index:        i,
			Name:         name,
			Category:     category,
			RawBrand:     strings.TrimSpace(obs.Brand),
			RawModel:     strings.TrimSpace(obs.Model),
			PositionHint: strings.TrimSpace(obs.PositionHint),
		})
	}

	d.logger.InfoContext(ctx, "photo inference complete",
		logging.String("batch_id", detection.BatchID),
		logging.Int("sightings", len(detection.Modules)))
	return detection, nil
}

// DetectFile reads a photo from disk and runs Detect, sniffing the MIME type
// from the file contents.
func (d *Detector) DetectFile(ctx context.Context, path string) (Detection, error) {
	photo, err := os.ReadFile(path)
	if err != nil {
		return Detection{}, fmt.Errorf("read photo %s: %w", path, err)
	}
	return d.Detect(ctx, photo, http.DetectContentType(photo))
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
