// Package analyze implements the dual-backend analysis aggregator.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// Service dispatches the same content to every configured backend
// concurrently and merges the responses. A single backend failing becomes an
// inline error marker for that backend only; the operation errors only when
// every backend fails.
type Service struct {
	ProviderFactory ports.ProviderFactory
	Models          []domain.ModelDefinition
	Logger          ports.Logger
}

// Analyze implements ports.Analyzer.
func (s *Service) Analyze(ctx context.Context, req ports.ProviderRequest) (domain.Analysis, error) {
	if s.ProviderFactory == nil {
		return domain.Analysis{}, errors.New("analyze.Service dependencies not satisfied")
	}
	if len(s.Models) == 0 {
		return domain.Analysis{}, errors.New("no analysis backends configured")
	}

	results := make([]domain.AnalysisResult, len(s.Models))
	var wg sync.WaitGroup
	for i, model := range s.Models {
		wg.Add(1)
		go func(i int, model domain.ModelDefinition) {
			defer wg.Done()
			results[i] = s.generate(ctx, model, req)
		}(i, model)
	}
	wg.Wait()

	return merge(results)
}

func (s *Service) generate(ctx context.Context, model domain.ModelDefinition, req ports.ProviderRequest) domain.AnalysisResult {
	result := domain.AnalysisResult{Backend: model.Name, Model: model.ModelID}

	provider, err := s.ProviderFactory.ForModel(model)
	if err != nil {
		result.Err = err.Error()
		result.Text = errorMarker(model.Name, err)
		return result
	}

	if s.Logger != nil {
		s.Logger.Debug("calling backend", map[string]interface{}{
			"backend": model.Name,
			"model":   model.ModelID,
		})
	}

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("backend failed", map[string]interface{}{
				"backend": model.Name,
				"error":   err.Error(),
			})
		}
		result.Err = err.Error()
		result.Text = errorMarker(model.Name, err)
		return result
	}

	result.Text = resp.Text
	return result
}

// merge keeps every backend's result under its own name and concatenates the
// texts under per-backend headings. Nothing is overwritten, so conflicting
// structured fields cannot arise.
func merge(results []domain.AnalysisResult) (domain.Analysis, error) {
	analysis := domain.Analysis{
		Results: make(map[string]domain.AnalysisResult, len(results)),
	}

	failures := 0
	var sections []string
	for _, res := range results {
		analysis.Results[res.Backend] = res
		if res.Failed() {
			failures++
			continue
		}
		sections = append(sections, fmt.Sprintf("### %s\n%s", res.Backend, res.Text))
	}
	analysis.Merged = strings.Join(sections, "\n\n")

	if failures == len(results) {
		return analysis, errors.New("all analysis backends failed")
	}
	return analysis, nil
}

func errorMarker(backend string, err error) string {
	return fmt.Sprintf("[backend %s unavailable: %v]", backend, err)
}

var _ ports.Analyzer = (*Service)(nil)
