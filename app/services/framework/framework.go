// Package framework pulls the practical method section out of a generated newsletter
package framework

import "strings"

var (
	// StartKeywords open the method section when found in a line
	StartKeywords = []string{"técnica", "protocolo", "método", "passo 1", "etapa 1"}
	// EndKeywords close the method section; the closing line is excluded
	EndKeywords = []string{"resumindo", "próxima", "semana que vem", "alex dantas"}
)

// Fallback is returned when no method section can be located
const Fallback = "Framework extraído do conteúdo principal"

type state int

const (
	stateSearching state = iota
	stateCollecting
)

// Extractor finds the first line containing a start keyword and collects
// lines until a later line contains an end keyword. Matching ignores case.
type Extractor struct {
	start    []string
	end      []string
	fallback string
}

// New creates an extractor with custom keyword sets
func New(start, end []string, fallback string) *Extractor {
	return &Extractor{
		start:    lowerAll(start),
		end:      lowerAll(end),
		fallback: fallback,
	}
}

var defaultExtractor = New(StartKeywords, EndKeywords, Fallback)

// Extract runs the default extractor
func Extract(text string) string {
	return defaultExtractor.Extract(text)
}

// Extract never fails; it returns the fallback when nothing is collected
func (e *Extractor) Extract(text string) string {
	var (
		current   = stateSearching
		collected []string
	)

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		switch current {
		case stateSearching:
			if containsAny(lower, e.start) {
				current = stateCollecting
				collected = append(collected, line)
			}
		case stateCollecting:
			if containsAny(lower, e.end) {
				return e.result(collected)
			}
			collected = append(collected, line)
		}
	}

	return e.result(collected)
}

func (e *Extractor) result(lines []string) string {
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if out == "" {
		return e.fallback
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
