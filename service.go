package blocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/media"
)

// Normalizer turns pasted input into a markup tree
type Normalizer interface {
	Normalize(input string) (markup.Node, error)
}

// Service combines a frozen registry with paste normalization, metrics and
// logging
type Service struct {
	Registry   *Registry
	normalizer Normalizer
	metrics    *Metrics
	logger     *slog.Logger
}

// NewService freezes the registry. normalizer and metrics are optional.
func NewService(registry *Registry, normalizer Normalizer, metrics *Metrics, logger *slog.Logger) *Service {
	registry.Freeze()
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Registry:   registry,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Paste converts pasted input to blocks, unmatched content stays freeform
func (s *Service) Paste(ctx context.Context, input string) ([]Block, error) {
	var root markup.Node
	var err error
	if s.normalizer != nil {
		root, err = s.normalizer.Normalize(input)
	} else {
		root, err = markup.ParseString(input)
	}
	if err != nil {
		return nil, err
	}
	result := s.Registry.MatchRawAll(root)
	for _, b := range result {
		if b.Freeform() {
			s.metrics.missed(PipelineRaw)
			continue
		}
		s.metrics.transformed(PipelineRaw, b.Name)
	}
	s.logger.DebugContext(ctx, "pasted", "blocks", len(result))
	return result, nil
}

// Drop converts dropped files to a block. ok is false when no transform
// accepts the files. A cancelled ctx cancels the transform.
func (s *Service) Drop(ctx context.Context, files []media.File) (b Block, ok bool, err error) {
	future, ok := s.Registry.TransformFiles(ctx, files)
	if !ok {
		s.metrics.missed(PipelineFiles)
		return Block{}, false, nil
	}
	start := time.Now()
	b, err = future.Wait(ctx)
	if ctx.Err() != nil {
		future.Cancel()
	}
	s.metrics.ingested(start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "file transform failed", "files", len(files), "err", err)
		return Block{}, true, err
	}
	s.metrics.transformed(PipelineFiles, b.Name)
	s.logger.InfoContext(ctx, "file transform", "files", len(files), "block", b.Name, "duration", time.Since(start))
	return b, true, nil
}

// Render the final markup of a block, dynamic blocks are rendered at request
// time, all others are serialized
func (s *Service) Render(ctx context.Context, b Block) (markup.Fragment, error) {
	if b.Freeform() {
		return b.Raw, nil
	}
	bt, err := s.Registry.Lookup(b.Name)
	if err != nil {
		return "", err
	}
	attrs := bt.Schema.Defaults().Merge(b.Attributes)
	if !bt.Dynamic() {
		return bt.Serialize(attrs), nil
	}
	fragment, err := bt.Render(ctx, attrs)
	if err != nil {
		return "", fmt.Errorf("could not render %q: %w", b.Name, err)
	}
	return fragment, nil
}
