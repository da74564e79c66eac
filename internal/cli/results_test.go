package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu       sync.Mutex
	roadmap  string
	err      error
	profiles []models.Profile
}

func (f *fakeGenerator) Generate(_ context.Context, p models.Profile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, p)
	return f.roadmap, f.err
}

func testProfile(dest string) models.Profile {
	return models.Profile{
		CurrentCountry:     "india",
		DestinationCountry: dest,
		EducationLevel:     "postgraduate",
		FieldOfStudy:       "engineering",
		BudgetRange:        "moderate",
	}
}

func keyRune(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func update(t *testing.T, m resultsModel, msg tea.Msg) (resultsModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	next, ok := model.(resultsModel)
	require.True(t, ok)
	return next, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func loadedModel(t *testing.T, dest string, gen *fakeGenerator, dir string) resultsModel {
	t.Helper()
	m := newResultsModel(context.Background(), gen, testProfile(dest), render.HTMLExporter{}, dir)
	m, _ = update(t, m, m.generate()())
	return m
}

func TestResultsModel_LoadingShowsStages(t *testing.T) {
	m := newResultsModel(context.Background(), &fakeGenerator{}, testProfile("canada"), render.HTMLExporter{}, t.TempDir())
	assert.Contains(t, m.View(), LoadingStages[0])
	assert.NotContains(t, m.View(), LoadingStages[1])

	for range LoadingStages {
		m, _ = update(t, m, stageMsg{})
	}
	for _, s := range LoadingStages {
		assert.Contains(t, m.View(), s)
	}
}

func TestResultsModel_KeysIgnoredWhileLoading(t *testing.T) {
	m := newResultsModel(context.Background(), &fakeGenerator{}, testProfile("canada"), render.HTMLExporter{}, t.TempDir())

	m, cmd := update(t, m, keyRune("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, outcomeNone, m.outcome)
	assert.True(t, m.loading)
}

func TestResultsModel_Success(t *testing.T) {
	gen := &fakeGenerator{roadmap: "## 📋 Required Documents Checklist\n- Passport"}
	m := loadedModel(t, "canada", gen, t.TempDir())

	require.Len(t, gen.profiles, 1)
	assert.Equal(t, "canada", gen.profiles[0].DestinationCountry)
	assert.False(t, m.loading)
	require.NotNil(t, m.view)
	assert.True(t, m.view.Found())

	m.vp.Height = 500
	m.refresh()
	view := m.View()
	assert.Contains(t, view, render.TitleRoadmap)
	assert.NotContains(t, view, render.NotFoundMessage)
}

func TestResultsModel_FailureQuitsWithOutcome(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	m := newResultsModel(context.Background(), gen, testProfile("canada"), render.HTMLExporter{}, t.TempDir())

	m, cmd := update(t, m, m.generate()())
	assert.True(t, isQuit(cmd))
	assert.Equal(t, outcomeFailed, m.outcome)
	assert.EqualError(t, m.err, "boom")
	assert.Nil(t, m.view)
}

func TestResultsModel_ToggleSections(t *testing.T) {
	m := loadedModel(t, "germany", &fakeGenerator{roadmap: "ok"}, t.TempDir())

	m, _ = update(t, m, keyRune("3"))
	assert.False(t, m.view.Expanded(render.SectionCosts))
	assert.True(t, m.view.Expanded(render.SectionDocuments))

	m, _ = update(t, m, keyRune("1"))
	assert.False(t, m.view.Expanded(render.SectionDocuments))

	m, _ = update(t, m, keyRune("3"))
	assert.True(t, m.view.Expanded(render.SectionCosts))
}

func TestResultsModel_Export(t *testing.T) {
	dir := t.TempDir()
	m := loadedModel(t, "japan", &fakeGenerator{roadmap: "## Tips\n- Start early"}, dir)

	m, _ = update(t, m, keyRune("e"))
	assert.Contains(t, m.status, render.MsgExportSucceeded)

	_, err := os.Stat(filepath.Join(dir, "visa-roadmap-Japan.html"))
	assert.NoError(t, err)
}

func TestResultsModel_ExportFailureKeepsView(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	m := loadedModel(t, "japan", &fakeGenerator{roadmap: "text"}, dir)
	m, _ = update(t, m, keyRune("2"))

	m, cmd := update(t, m, keyRune("e"))
	assert.False(t, isQuit(cmd))
	assert.Contains(t, m.status, render.MsgExportFailed)
	assert.Equal(t, "text", m.view.Roadmap)
	assert.False(t, m.view.Expanded(render.SectionTimeline))
}

func TestResultsModel_ResetAndQuit(t *testing.T) {
	m := loadedModel(t, "canada", &fakeGenerator{roadmap: "x"}, t.TempDir())
	reset, cmd := update(t, m, keyRune("r"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, outcomeReset, reset.outcome)

	quit, cmd := update(t, m, keyRune("q"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, outcomeQuit, quit.outcome)
}

func TestResultsModel_NotFoundOnlyOffersReset(t *testing.T) {
	dir := t.TempDir()
	m := loadedModel(t, "atlantis", &fakeGenerator{roadmap: "x"}, dir)
	assert.False(t, m.view.Found())
	assert.Contains(t, m.View(), render.NotFoundMessage)
	assert.Contains(t, m.View(), render.StartOverLabel)

	m, _ = update(t, m, keyRune("e"))
	assert.Empty(t, m.status)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)

	m, cmd := update(t, m, keyRune("r"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, outcomeReset, m.outcome)
}

func TestResultsModel_FreshModelPerSubmission(t *testing.T) {
	gen := &fakeGenerator{roadmap: "first"}
	first := loadedModel(t, "canada", gen, t.TempDir())
	assert.Equal(t, "first", first.view.Roadmap)

	gen.roadmap = "second"
	second := newResultsModel(context.Background(), gen, testProfile("canada"), render.HTMLExporter{}, t.TempDir())
	assert.Nil(t, second.view, "no roadmap before the second response")
	assert.True(t, second.loading)

	second, _ = update(t, second, second.generate()())
	assert.Equal(t, "second", second.view.Roadmap)
	assert.Len(t, gen.profiles, 2)
}

func TestCountriesCmd(t *testing.T) {
	root := NewRootCmd(&App{Generator: &fakeGenerator{}})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"countries"})

	require.NoError(t, root.Execute())
	for _, code := range []string{"canada", "australia", "germany", "united-kingdom", "japan"} {
		assert.Contains(t, out.String(), code)
	}
	assert.Contains(t, out.String(), "Student Visa (Subclass 500)")
}

func TestShowCmd(t *testing.T) {
	dir := t.TempDir()
	root := NewRootCmd(&App{Generator: &fakeGenerator{}})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show", "united-kingdom", "--export", "--export-dir", dir})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), render.TitleDocuments)
	assert.Contains(t, out.String(), render.MsgExportSucceeded)
	_, err := os.Stat(filepath.Join(dir, "visa-roadmap-United Kingdom.html"))
	assert.NoError(t, err)
}

func TestShowCmd_UnknownCountry(t *testing.T) {
	root := NewRootCmd(&App{Generator: &fakeGenerator{}})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show", "atlantis"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.Contains(out.String(), render.NotFoundMessage))
}

func TestPlanCmd_RequiresTerminal(t *testing.T) {
	root := NewRootCmd(&App{
		Generator:     &fakeGenerator{},
		IsInteractive: func() bool { return false },
	})
	root.SetArgs([]string{"plan", "--to", "canada"})

	err := root.Execute()
	assert.True(t, errors.Is(err, ErrNotInteractive))
}

func TestResultsExitErr(t *testing.T) {
	live := context.Background()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, resultsExitErr(live, tea.ErrProgramKilled))
	assert.NoError(t, resultsExitErr(cancelled, errors.New("program was killed: context canceled")))

	err := resultsExitErr(live, errors.New("bad terminal"))
	require.Error(t, err)
	assert.Equal(t, "results view: bad terminal", err.Error())
}
