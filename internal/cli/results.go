package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/render"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const MsgGenerationFailed = "Failed to generate roadmap. Please try again."

// LoadingStages are revealed one after another while the request is in flight.
var LoadingStages = []string{
	"Retrieving country-specific rules",
	"Generating personalized guidance",
	"Preparing your roadmap",
}

const stageInterval = 300 * time.Millisecond

type outcome int

const (
	outcomeNone outcome = iota
	outcomeQuit
	outcomeReset
	outcomeFailed
)

type generatedMsg struct {
	roadmap string
	err     error
}

type stageMsg struct{}

type resultsKeyMap struct {
	Toggle []key.Binding
	Export key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func defaultResultsKeys() resultsKeyMap {
	km := resultsKeyMap{
		Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i := range render.Sections {
		k := fmt.Sprintf("%d", i+1)
		km.Toggle = append(km.Toggle, key.NewBinding(key.WithKeys(k), key.WithHelp(k, "")))
	}
	return km
}

// resultsModel owns one generation request and the view built from its
// response. A new model is created for every submission.
type resultsModel struct {
	ctx       context.Context
	generator Generator
	profile   models.Profile
	exporter  render.Exporter
	exportDir string
	keys      resultsKeyMap

	spinner spinner.Model
	stage   int
	loading bool

	view   *render.View
	vp     viewport.Model
	status string

	outcome outcome
	err     error
}

func newResultsModel(ctx context.Context, gen Generator, p models.Profile, exporter render.Exporter, exportDir string) resultsModel {
	vp := viewport.New(80, 20)
	vp.KeyMap = resultsViewportKeyMap()
	return resultsModel{
		ctx:       ctx,
		generator: gen,
		profile:   p,
		exporter:  exporter,
		exportDir: exportDir,
		keys:      defaultResultsKeys(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleHeader)),
		loading:   true,
		vp:        vp,
	}
}

func (m resultsModel) Init() tea.Cmd {
	return tea.Batch(m.generate(), m.spinner.Tick, stageTick())
}

// generate issues the single request for this model's profile.
func (m resultsModel) generate() tea.Cmd {
	ctx, gen, p := m.ctx, m.generator, m.profile
	return func() tea.Msg {
		roadmap, err := gen.Generate(ctx, p)
		return generatedMsg{roadmap: roadmap, err: err}
	}
}

func stageTick() tea.Cmd {
	return tea.Tick(stageInterval, func(time.Time) tea.Msg { return stageMsg{} })
}

func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-3, 1)
		return m, nil

	case generatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.outcome = outcomeFailed
			return m, tea.Quit
		}
		m.view = render.NewView(m.profile.DestinationCountry, msg.roadmap)
		m.refresh()
		m.vp.GotoTop()
		return m, nil

	case stageMsg:
		if m.loading && m.stage < len(LoadingStages)-1 {
			m.stage++
			return m, stageTick()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m resultsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.outcome = outcomeQuit
		return m, tea.Quit
	}
	// Nothing else is possible until the request settles.
	if m.loading || m.view == nil {
		return m, nil
	}

	if key.Matches(msg, m.keys.Reset) {
		m.outcome = outcomeReset
		return m, tea.Quit
	}
	if !m.view.Found() {
		return m, nil
	}

	for i, b := range m.keys.Toggle {
		if key.Matches(msg, b) {
			m.view.Toggle(render.Sections[i])
			m.refresh()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Export) {
		path, err := render.SaveExport(m.exporter, m.view, m.exportDir)
		if err != nil {
			m.status = styleError.Render(render.MsgExportFailed)
		} else {
			m.status = styleGood.Render(render.MsgExportSucceeded) + " " + styleDim.Render(path)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *resultsModel) refresh() {
	if m.view != nil {
		m.vp.SetContent(render.Terminal(m.view))
	}
}

func (m resultsModel) View() string {
	if m.loading {
		var b strings.Builder
		b.WriteString(styleHeader.Render("Analyzing your profile...") + "\n\n")
		for i := 0; i <= m.stage && i < len(LoadingStages); i++ {
			b.WriteString("  " + styleDim.Render("•") + " " + LoadingStages[i] + "\n")
		}
		b.WriteString("\n  " + m.spinner.View() + "\n")
		return b.String()
	}
	if m.view == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.vp.View() + "\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(m.helpLine())
	return b.String()
}

func (m resultsModel) helpLine() string {
	if !m.view.Found() {
		return styleDim.Render("r " + render.StartOverLabel + " • q quit")
	}
	parts := []string{"1-5 toggle section"}
	for _, b := range []key.Binding{m.keys.Export, m.keys.Reset, m.keys.Quit} {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return styleDim.Render(strings.Join(parts, " • "))
}

func resultsViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
}
