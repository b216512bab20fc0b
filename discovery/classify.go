package discovery

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Confidence tags how a file's class was decided.
type Confidence string

const (
	// ConfidenceHigh means an explicit rule matched.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow means the configured default class was used.
	ConfidenceLow Confidence = "low"
	// ConfidenceUnknown means no rule and no default applied.
	ConfidenceUnknown Confidence = "unknown"
	// ConfidenceIgnored means an ignore pattern matched; the file is skipped.
	ConfidenceIgnored Confidence = "ignored"
)

// Classification is the outcome of classifying one file.
type Classification struct {
	Class      string
	Confidence Confidence
}

// Rule maps files whose relative path matches Pattern to an ontology class.
type Rule struct {
	Class   string
	Pattern string
}

type compiledRule struct {
	class string
	re    *regexp.Regexp
}

// Classifier decides the ontology class of a file, or that it is ignored.
type Classifier struct {
	rules        []compiledRule
	ignore       []string
	defaultClass string
}

// NewClassifier compiles rules and validates ignore patterns.
func NewClassifier(rules []Rule, ignorePatterns []string, defaultClass string) (*Classifier, error) {
	c := &Classifier{defaultClass: defaultClass}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("classifier rule for %s: %w", r.Class, err)
		}
		c.rules = append(c.rules, compiledRule{class: r.Class, re: re})
	}
	for _, p := range ignorePatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
		c.ignore = append(c.ignore, p)
	}
	return c, nil
}

// Classify checks ignore patterns first, then rules in order, then the
// default class.
func (c *Classifier) Classify(filename, relPath string) Classification {
	for _, p := range c.ignore {
		if matchGlob(p, filename) || matchGlob(p, relPath) {
			return Classification{Confidence: ConfidenceIgnored}
		}
	}
	for _, r := range c.rules {
		if r.re.MatchString(relPath) {
			return Classification{Class: r.class, Confidence: ConfidenceHigh}
		}
	}
	if c.defaultClass != "" {
		return Classification{Class: c.defaultClass, Confidence: ConfidenceLow}
	}
	return Classification{Confidence: ConfidenceUnknown}
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
