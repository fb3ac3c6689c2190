package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caserag/internal/domain"
	"caserag/internal/format"
)

// Digester condenses a post into a few sentences.
type Digester interface {
	Summarize(text string, maxSentences int) string
}

// Options tune the initial state of the model.
type Options struct {
	TopK   int
	Status string
	// DigestSentences bounds the digest view. Zero means 3.
	DigestSentences int
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	searcher     domain.SimilaritySearcher
	digester     Digester
	opts         Options
	input        textinput.Model
	viewport     viewport.Model
	results      []domain.SimilarityResult
	distribution string
	status       string
	cursor       int
	ready        bool
	digest       bool
	lastQuery    string
}

// New creates a new TUI model instance. digester may be nil, which disables
// the digest view.
func New(searcher domain.SimilaritySearcher, digester Digester, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the situation and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	if opts.DigestSentences <= 0 {
		opts.DigestSentences = 3
	}
	status := opts.Status
	if status == "" {
		status = "Loaded. Type to search."
	}
	return Model{
		searcher:     searcher,
		digester:     digester,
		opts:         opts,
		input:        ti,
		viewport:     viewport.New(0, 0),
		distribution: renderDistribution(searcher.LabelDistribution()),
		status:       status,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and distribution, status, spacer
		vh := max(3, msg.Height-reserved)
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.results = m.searcher.FindSimilar(context.Background(), q, m.opts.TopK)
				m.cursor = 0
				m.lastQuery = q
				if len(m.results) == 0 {
					m.status = format.NoResults
				} else {
					m.status = fmt.Sprintf("%d similar cases for %q", len(m.results), q)
				}
				m.viewport.SetContent(m.renderCurrentResult())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "tab":
			if m.digester != nil {
				m.digest = !m.digest
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Similar Case Search")
	dist := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.distribution)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + dist + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		if m.lastQuery != "" {
			return format.NoResults
		}
		return "No results yet."
	}
	r := m.results[m.cursor]
	label := labelStyle(r.Label).Render(fmt.Sprintf("%s %s", format.LabelIcon(r.Label), r.Label))
	title := fmt.Sprintf("Case %d  (%d/%d)  %s  %d%% similar", r.ID, m.cursor+1, len(m.results), label, format.SimilarityPercent(r.Score))
	meta := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("User: " + r.Author)

	text := r.Text
	mode := "full post"
	if m.digest && m.digester != nil {
		text = m.digester.Summarize(r.Text, m.opts.DigestSentences)
		mode = "digest"
	}
	body := highlightBestSentence(text, m.lastQuery)
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("[" + mode + "]")
	return title + "\n" + meta + "\n\n" + body + "\n\n" + footer
}

func renderDistribution(dist map[domain.Label]int) string {
	if len(dist) == 0 {
		return "No cases indexed."
	}
	parts := make([]string, 0, len(dist))
	for _, l := range format.SortedLabels(dist) {
		parts = append(parts, fmt.Sprintf("%s %s %d", format.LabelIcon(l), l, dist[l]))
	}
	return strings.Join(parts, "  ")
}

var labelColors = map[domain.Label]lipgloss.Color{
	domain.LabelSupportive: lipgloss.Color("10"),
	domain.LabelIndicator:  lipgloss.Color("11"),
	domain.LabelIdeation:   lipgloss.Color("214"),
	domain.LabelBehavior:   lipgloss.Color("9"),
	domain.LabelAttempt:    lipgloss.Color("196"),
}

func labelStyle(l domain.Label) lipgloss.Style {
	c, ok := labelColors[l]
	if !ok {
		c = lipgloss.Color("8")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(l == domain.LabelAttempt)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing the most distinct
// words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := splitSentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(trimAll(sentences), " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences = trimAll(sentences)
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

// splitSentences keeps a trailing fragment without end punctuation as its
// own sentence.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		out = append(out, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func trimAll(sentences []string) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
