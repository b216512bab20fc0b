package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Precedence(t *testing.T) {
	classifier, err := NewClassifier(
		[]Rule{
			{Class: "TestFile", Pattern: `(^|/)test_[^/]*\.py$`},
			{Class: "SourceCodeFile", Pattern: `\.py$`},
		},
		[]string{"*.lock", "generated/**"},
		"DataFile",
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		relPath  string
		want     Classification
	}{
		{"first rule wins", "test_a.py", "pkg/test_a.py", Classification{"TestFile", ConfidenceHigh}},
		{"second rule", "a.py", "pkg/a.py", Classification{"SourceCodeFile", ConfidenceHigh}},
		{"default class", "a.csv", "a.csv", Classification{"DataFile", ConfidenceLow}},
		{"ignore by filename", "poetry.lock", "sub/poetry.lock", Classification{"", ConfidenceIgnored}},
		{"ignore beats rule", "x.py", "generated/x.py", Classification{"", ConfidenceIgnored}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.filename, tt.relPath))
		})
	}
}

func TestClassify_NoDefault(t *testing.T) {
	classifier, err := NewClassifier(nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, Classification{Confidence: ConfidenceUnknown}, classifier.Classify("a.bin", "a.bin"))
}

func TestNewClassifier_Invalid(t *testing.T) {
	_, err := NewClassifier([]Rule{{Class: "X", Pattern: "("}}, nil, "")
	assert.Error(t, err)

	_, err = NewClassifier(nil, []string{"[unclosed"}, "")
	assert.Error(t, err)
}
