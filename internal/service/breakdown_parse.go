package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
)

var roundNumberPrefix = regexp.MustCompile(`(?i)^(round|phase|stage)?\s*\d+\s*[:.)\-]\s*`)

// ParseBreakdown decodes a model response into a breakdown. With the coerce
// policy the output is normalized to the allowed shape and only unusable
// payloads fail. With the strict policy any deviation fails.
func ParseBreakdown(raw, policy string) (*domain.Breakdown, error) {
	payload := extractJSON(raw)

	var b domain.Breakdown
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedBreakdown, err)
	}

	if policy == config.PolicyStrict {
		if err := validateStrict(&b); err != nil {
			return nil, err
		}
		return &b, nil
	}
	return coerce(&b)
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func coerce(in *domain.Breakdown) (*domain.Breakdown, error) {
	title := truncateRunes(cleanText(in.Title), config.MaxTitleLen)
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", domain.ErrMalformedBreakdown)
	}

	out := &domain.Breakdown{Title: title, Rounds: make([]domain.BreakdownRound, 0, len(in.Rounds))}
	for _, r := range in.Rounds {
		if len(out.Rounds) == config.MaxRounds {
			break
		}

		steps := make([]string, 0, len(r.Steps))
		for _, st := range r.Steps {
			st = cleanText(st)
			if st == "" {
				continue
			}
			steps = append(steps, st)
			if len(steps) == config.MaxStepsPerRound {
				break
			}
		}
		if len(steps) == 0 {
			continue
		}

		name := cleanText(r.Name)
		name = strings.TrimSpace(roundNumberPrefix.ReplaceAllString(name, ""))
		if name == "" {
			name = fmt.Sprintf("Phase %d", len(out.Rounds)+1)
		}
		out.Rounds = append(out.Rounds, domain.BreakdownRound{Name: name, Steps: steps})
	}

	if len(out.Rounds) == 0 {
		return nil, fmt.Errorf("%w: no usable rounds", domain.ErrMalformedBreakdown)
	}
	return out, nil
}

func validateStrict(b *domain.Breakdown) error {
	b.Title = strings.TrimSpace(b.Title)
	switch {
	case b.Title == "":
		return fmt.Errorf("%w: missing title", domain.ErrMalformedBreakdown)
	case utf8.RuneCountInString(b.Title) > config.MaxTitleLen:
		return fmt.Errorf("%w: title longer than %d characters", domain.ErrMalformedBreakdown, config.MaxTitleLen)
	case len(b.Rounds) < config.MinRounds || len(b.Rounds) > config.MaxRounds:
		return fmt.Errorf("%w: %d rounds, want %d-%d", domain.ErrMalformedBreakdown, len(b.Rounds), config.MinRounds, config.MaxRounds)
	}

	for i := range b.Rounds {
		r := &b.Rounds[i]
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return fmt.Errorf("%w: round %d has no name", domain.ErrMalformedBreakdown, i)
		}
		if len(r.Steps) < config.MinStepsPerRound || len(r.Steps) > config.MaxStepsPerRound {
			return fmt.Errorf("%w: round %d has %d steps, want %d-%d",
				domain.ErrMalformedBreakdown, i, len(r.Steps), config.MinStepsPerRound, config.MaxStepsPerRound)
		}
		for j, st := range r.Steps {
			r.Steps[j] = strings.TrimSpace(st)
			if r.Steps[j] == "" {
				return fmt.Errorf("%w: round %d step %d is blank", domain.ErrMalformedBreakdown, i, j)
			}
		}
	}
	return nil
}

// cleanText removes HTML markup and collapses runs of whitespace.
func cleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = strings.ReplaceAll(s, "**", "")
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
