package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caserag/internal/domain"
	"caserag/internal/format"
)

type fakeSearcher struct {
	results []domain.SimilarityResult
	queries []string
	topKs   []int
}

func (f *fakeSearcher) FindSimilar(_ context.Context, query string, topK int) []domain.SimilarityResult {
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	return f.results
}

func (f *fakeSearcher) LabelDistribution() map[domain.Label]int {
	dist := map[domain.Label]int{}
	for _, r := range f.results {
		dist[r.Label]++
	}
	return dist
}

type firstSentence struct{}

func (firstSentence) Summarize(text string, _ int) string {
	return splitSentences(text)[0]
}

func twoResults() []domain.SimilarityResult {
	return []domain.SimilarityResult{
		{ReferenceDocument: domain.ReferenceDocument{ID: 4, Author: "u4", Label: domain.LabelAttempt, Text: "I could not sleep. Then I took the pills."}, Score: 0.9},
		{ReferenceDocument: domain.ReferenceDocument{ID: 1, Author: "u1", Label: domain.LabelSupportive, Text: "Friends helped me."}, Score: 0.4},
	}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func search(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	return press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNew_ShowsDistribution(t *testing.T) {
	m := New(&fakeSearcher{results: twoResults()}, nil, Options{})
	assert.Contains(t, m.distribution, "Supportive 1")
	assert.Contains(t, m.distribution, "Attempt 1")
	assert.Less(t, strings.Index(m.distribution, "Supportive"), strings.Index(m.distribution, "Attempt"))
	assert.Equal(t, "Loaded. Type to search.", m.status)
}

func TestNew_EmptyIndex(t *testing.T) {
	m := New(&fakeSearcher{}, nil, Options{Status: "custom"})
	assert.Equal(t, "No cases indexed.", m.distribution)
	assert.Equal(t, "custom", m.status)
}

func TestView_LoadingUntilSized(t *testing.T) {
	m := New(&fakeSearcher{}, nil, Options{})
	assert.Equal(t, "Loading...", m.View())

	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, m.View(), "Similar Case Search")
}

func TestUpdate_EnterRunsQuery(t *testing.T) {
	fs := &fakeSearcher{results: twoResults()}
	m := New(fs, nil, Options{TopK: 5})

	m = search(t, m, "  cannot sleep  ")

	require.Equal(t, []string{"cannot sleep"}, fs.queries)
	assert.Equal(t, []int{5}, fs.topKs)
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.status, "2 similar cases")
	assert.Contains(t, m.renderCurrentResult(), "Case 4")
	assert.Contains(t, m.renderCurrentResult(), "User: u4")
}

func TestUpdate_EnterIgnoresBlankInput(t *testing.T) {
	fs := &fakeSearcher{results: twoResults()}
	m := search(t, New(fs, nil, Options{}), "   ")
	assert.Empty(t, fs.queries)
	assert.Empty(t, m.results)
}

func TestUpdate_NoResults(t *testing.T) {
	m := search(t, New(&fakeSearcher{}, nil, Options{}), "anything")
	assert.Equal(t, format.NoResults, m.status)
	assert.Equal(t, format.NoResults, m.renderCurrentResult())
}

func TestUpdate_BrowseWraps(t *testing.T) {
	m := search(t, New(&fakeSearcher{results: twoResults()}, nil, Options{}), "sleep")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.renderCurrentResult(), "Case 1")
}

func TestUpdate_TabTogglesDigest(t *testing.T) {
	m := search(t, New(&fakeSearcher{results: twoResults()}, firstSentence{}, Options{}), "sleep")
	assert.Contains(t, m.renderCurrentResult(), "pills")
	assert.Contains(t, m.renderCurrentResult(), "[full post]")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	out := m.renderCurrentResult()
	assert.NotContains(t, out, "pills")
	assert.Contains(t, out, "[digest]")
}

func TestUpdate_TabWithoutDigesterIsIgnored(t *testing.T) {
	m := search(t, New(&fakeSearcher{results: twoResults()}, nil, Options{}), "sleep")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.digest)
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := New(&fakeSearcher{}, nil, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSplitSentences_KeepsTrailingFragment(t *testing.T) {
	assert.Equal(t, []string{"One.", " Two!", "three"}, splitSentences("One. Two! three"))
	assert.Equal(t, []string{"no punctuation"}, splitSentences("no punctuation"))
}

func TestHighlightBestSentence(t *testing.T) {
	assert.Equal(t, "", highlightBestSentence("", "q"))
	assert.Equal(t, "A b. C d.", highlightBestSentence("A b.  C d.", ""))

	out := highlightBestSentence("The weather is fine. I cannot sleep at night.", "sleep")
	assert.Contains(t, out, "The weather is fine.")
	assert.Contains(t, out, "I cannot sleep at night.")
}

func TestTokenOverlapScore_CountsDistinctWords(t *testing.T) {
	q := toTokenSet("sleep night")
	assert.Equal(t, 2, tokenOverlapScore(q, "Sleep, sleep, sleep at night"))
	assert.Equal(t, 0, tokenOverlapScore(q, "nothing relevant"))
}
