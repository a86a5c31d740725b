// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/models"
)

// LowConfidence is the confidence below which explanations carry a caveat.
const LowConfidence = 0.8

const explanationTemplate = `{{headline .Score.Quality}} ({{score .Score.OverallScore}}/100).` +
	`{{with .Best}} You line up best on {{label .Type}} ({{score .Score}}){{end}}` +
	`{{with .Worst}}, while {{label .Type}} ({{score .Score}}) is where you differ most{{end}}` +
	`{{if .Best}}.{{end}}` +
	`{{if .LowConfidence}} Some profile answers were missing, so treat this as an estimate.{{end}}` +
	`{{if .Detailed}}{{range .Score.Dimensions}}
- {{label .Type}}: {{score .Score}} (weight {{percent .Weight}}){{if .UsedFallback}}, estimated{{end}}{{end}}{{end}}`

var headlines = map[models.Quality]string{
	models.QualityExcellent:    "Excellent travel match",
	models.QualityGood:         "Good travel match",
	models.QualityFair:         "Fair travel match",
	models.QualityPoor:         "Challenging travel match",
	models.QualityIncompatible: "Unlikely travel match",
}

var labels = map[models.DimensionType]string{
	models.DimensionPersonality: "personality",
	models.DimensionTravel:      "travel style",
	models.DimensionExperience:  "travel experience",
	models.DimensionBudget:      "budget",
	models.DimensionActivity:    "activities",
}

// templateData is the view a TemplateExplainer renders.
type templateData struct {
	Score         *models.CompatibilityScore
	Best          *models.CompatibilityDimension
	Worst         *models.CompatibilityDimension
	LowConfidence bool
	Detailed      bool
}

// TemplateExplainer renders a plain-language summary of a score. It needs no
// external provider.
type TemplateExplainer struct {
	tmpl *template.Template
}

// NewTemplateExplainer parses the explanation template.
func NewTemplateExplainer() (*TemplateExplainer, error) {
	tmpl, err := template.New("explanation").Funcs(template.FuncMap{
		"headline": func(q models.Quality) string {
			if h, ok := headlines[q]; ok {
				return h
			}
			return "Travel match"
		},
		"label": func(t models.DimensionType) string {
			if l, ok := labels[t]; ok {
				return l
			}
			return strings.ReplaceAll(string(t), "_", " ")
		},
		"score":   func(v float64) string { return fmt.Sprintf("%.0f", v) },
		"percent": func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	}).Parse(explanationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse explanation template: %w", err)
	}
	return &TemplateExplainer{tmpl: tmpl}, nil
}

// GenerateExplanation implements compat.Explainer.
func (e *TemplateExplainer) GenerateExplanation(ctx context.Context, score *models.CompatibilityScore, opts compat.ExplainOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if score == nil {
		return "", errors.New("explain: nil score")
	}

	data := templateData{
		Score:         score,
		LowConfidence: score.Confidence < LowConfidence,
		Detailed:      opts.Detailed,
	}
	data.Best, data.Worst = extremes(score.Dimensions)

	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return sb.String(), nil
}

// extremes returns the highest and lowest scoring dimensions. Ties keep the
// earlier dimension. worst is nil when fewer than two dimensions differ.
func extremes(dims []models.CompatibilityDimension) (best, worst *models.CompatibilityDimension) {
	for i := range dims {
		d := &dims[i]
		if best == nil || d.Score > best.Score {
			best = d
		}
		if worst == nil || d.Score < worst.Score {
			worst = d
		}
	}
	if best == worst || (best != nil && worst != nil && best.Score == worst.Score) {
		worst = nil
	}
	return best, worst
}
