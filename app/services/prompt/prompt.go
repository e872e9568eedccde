// Package prompt renders the generation instructions for a newsletter edition
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

var (
	ErrMissingAudience  = errors.New("audience description is required")
	ErrMissingPainPoint = errors.New("pain point is required")
)

var tmpl = template.Must(template.New("newsletter").Parse(newsletterTemplate))

// Input holds the values interpolated into the instruction text
type Input struct {
	AudienceDescription string
	PainPoint           string
	AdditionalContext   string
	SourceMaterials     string
}

// Build renders the instruction text. The output depends only on in.
func Build(in Input) (string, error) {
	if strings.TrimSpace(in.AudienceDescription) == "" {
		return "", ErrMissingAudience
	}
	if strings.TrimSpace(in.PainPoint) == "" {
		return "", ErrMissingPainPoint
	}

	if strings.TrimSpace(in.AdditionalContext) == "" {
		in.AdditionalContext = ""
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
