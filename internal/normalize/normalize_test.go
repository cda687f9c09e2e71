package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLinter map[string][]string

func (l mapLinter) Suggest(token string) ([]string, error) {
	return l[token], nil
}

func TestCorrectAppliesSuggestions(t *testing.T) {
	n := New(Config{
		NewLinter: func() (Linter, error) {
			return mapLinter{"recieve": {"receive"}}, nil
		},
	}, nil)

	res := n.Correct("please recieve this")
	assert.Equal(t, "please receive this", res.CorrectedText)
	require.Len(t, res.Corrections, 1)
	assert.Equal(t, "recieve -> receive", res.Corrections[0])
}

func TestCorrectKeepsCustomWords(t *testing.T) {
	n := New(Config{
		CustomWords: []string{"recieve"},
		NewLinter: func() (Linter, error) {
			return mapLinter{"recieve": {"receive"}}, nil
		},
	}, nil)

	res := n.Correct("recieve")
	assert.Equal(t, "recieve", res.CorrectedText)
	assert.Empty(t, res.Corrections)
}

func TestCorrectWithoutLinterIsPassThrough(t *testing.T) {
	n := New(Config{}, nil)
	res := n.Correct("van  ban")
	assert.Equal(t, "van ban", res.CorrectedText, "tokens rejoin with single spaces")
	assert.Empty(t, res.Corrections)
}

func TestLinterInitFailureDegradesToNoOp(t *testing.T) {
	n := New(Config{
		NewLinter: func() (Linter, error) {
			return nil, errors.New("service down")
		},
	}, nil)
	res := n.Correct("some text")
	assert.Equal(t, "some text", res.CorrectedText)
}

func TestApplyDictionary(t *testing.T) {
	dict := map[string]string{"ban": "bản", "hoa": "hóa"}

	assert.Equal(t, "văn bản", ApplyDictionary("văn ban", dict))
	assert.Equal(t, "banana", ApplyDictionary("banana", dict), "only exact token matches")
	assert.Equal(t, "", ApplyDictionary("", dict))
	assert.Equal(t, "untouched", ApplyDictionary("untouched", nil))
}
