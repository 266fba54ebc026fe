package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wavewall-mockups/models"
	"wavewall-mockups/utils"
)

// PreGenerator fans one design out across every matching template,
// rendering them concurrently through the cached generator. A single
// broken template never fails the batch: failures are logged and omitted
// from the result.
type PreGenerator struct {
	generator *MaskGenerator
	templates *TemplateManager
	workers   int
}

// NewPreGenerator creates a batch pre-generator with a bounded worker
// pool.
func NewPreGenerator(generator *MaskGenerator, templates *TemplateManager, workers int) *PreGenerator {
	if workers <= 0 {
		workers = 4
	}
	return &PreGenerator{generator: generator, templates: templates, workers: workers}
}

// GenerateAll renders the design against every template matching the
// request's category and product filters. The design is hashed once and
// reused for every per-template cache key. Apparel batches restrict to
// front-facing black/white variants to limit combinatorial explosion.
func (p *PreGenerator) GenerateAll(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	if len(req.Design) == 0 {
		return nil, models.ErrMissingDesign
	}

	candidates := p.selectTemplates(req)
	result := &models.BatchResult{
		RunID:     uuid.NewString(),
		Requested: len(candidates),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	designHash := req.DesignHash
	if designHash == "" {
		designHash = utils.HashBuffer(req.Design)
	}

	log := logrus.WithFields(logrus.Fields{
		"run_id":      result.RunID,
		"templates":   len(candidates),
		"design_hash": designHash[:12],
	})
	log.Info("Batch pre-generation started")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, tpl := range candidates {
		tpl := tpl
		g.Go(func() error {
			out, err := p.generator.Generate(gctx, models.GenerateRequest{
				TemplateID:   tpl.ID,
				Design:       req.Design,
				DesignHash:   designHash,
				Config:       req.Config,
				OutputFormat: models.FormatPNG,
				RunID:        result.RunID,
			})
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"run_id":      result.RunID,
					"template_id": tpl.ID,
				}).Warn("Batch item failed, omitting from results")
				return nil
			}

			mu.Lock()
			result.Mockups = append(result.Mockups, models.GeneratedMockup{
				TemplateID:  tpl.ID,
				Name:        tpl.Name,
				Category:    models.CategoryOf(tpl.ProductType),
				ProductType: tpl.ProductType,
				Buffer:      out.Data,
				Cached:      out.Cached,
				RenderTime:  out.RenderTime.Milliseconds(),
			})
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	result.Succeeded = len(result.Mockups)
	log.WithFields(logrus.Fields{
		"succeeded": result.Succeeded,
		"failed":    result.Requested - result.Succeeded,
	}).Info("Batch pre-generation completed")
	return result, nil
}

// GenerateWallArt is a convenience wrapper pre-applying the wall-art
// category filter.
func (p *PreGenerator) GenerateWallArt(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	req.Category = models.CategoryWallArt
	return p.GenerateAll(ctx, req)
}

// GenerateApparel is a convenience wrapper pre-applying the apparel
// category filter.
func (p *PreGenerator) GenerateApparel(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	req.Category = models.CategoryApparel
	return p.GenerateAll(ctx, req)
}

// selectTemplates resolves batch candidates: product-type filter first,
// then category, then the apparel business rule (front angle, black or
// white color only).
func (p *PreGenerator) selectTemplates(req models.BatchRequest) []models.MockupTemplate {
	all := p.templates.FindTemplates(models.TemplateCriteria{ProductType: req.ProductType})

	var selected []models.MockupTemplate
	for _, t := range all {
		if !req.Category.Includes(t.ProductType) {
			continue
		}
		if models.CategoryOf(t.ProductType) == models.CategoryApparel {
			if t.Angle != models.AngleFront {
				continue
			}
			if t.Color != "black" && t.Color != "white" {
				continue
			}
		}
		selected = append(selected, t)
	}
	return selected
}
