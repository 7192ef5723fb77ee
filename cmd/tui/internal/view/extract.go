package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/gemini"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

type Source int

const (
	SourceReceipt Source = iota
	SourceAudio
)

type extractState int

const (
	extractStateForm extractState = iota
	extractStateRunning
	extractStateResult
)

type ExtractModel struct {
	CommonModel
	session   *chat.Session
	formatter normalize.Formatter
	source    Source

	state   extractState
	form    *huh.Form
	uri     *string
	spinner spinner.Model

	tx  extraction.Transaction
	err error
}

type extractedMsg struct {
	tx  extraction.Transaction
	err error
}

func NewExtractModel(session *chat.Session, source Source, formatter normalize.Formatter) ExtractModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := ExtractModel{
		session:   session,
		formatter: formatter,
		source:    source,
		spinner:   s,
	}
	m.resetForm()

	return m
}

func (m *ExtractModel) resetForm() {
	m.uri = new(string)
	m.state = extractStateForm
	m.err = nil

	title := "Caminho ou URL do comprovante"
	if m.source == SourceAudio {
		title = "Caminho ou URL do áudio"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("uri").
				Title(title).
				Placeholder("./recibo.jpg, https://..., data:...").
				Value(m.uri).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("informe um caminho ou URL")
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExtractModel) Title() string {
	if m.source == SourceAudio {
		return "Add from audio"
	}

	return "Add from receipt"
}

func (m ExtractModel) ShortHelp() string {
	if m.state == extractStateResult {
		return "Enter: another | Esc: back"
	}

	return "Enter: submit | Esc: back"
}

func (m ExtractModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExtractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != extractStateRunning {
			return m, Back
		}

		if msg.Type == tea.KeyEnter && m.state == extractStateResult {
			m.resetForm()
			return m, m.form.Init()
		}

	case extractedMsg:
		m.state = extractStateResult
		m.tx, m.err = msg.tx, msg.err

		return m, nil

	case spinner.TickMsg:
		if m.state != extractStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state != extractStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = extractStateRunning

	return m, tea.Batch(m.spinner.Tick, m.extractCmd(strings.TrimSpace(*m.uri)))
}

func (m ExtractModel) extractCmd(uri string) tea.Cmd {
	session, source := m.session, m.source

	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		var (
			tx  extraction.Transaction
			err error
		)

		if source == SourceAudio {
			tx, err = session.AddFromAudio(ctx, uri)
		} else {
			tx, err = session.AddFromReceipt(ctx, uri)
		}

		return extractedMsg{tx: tx, err: err}
	}
}

func (m ExtractModel) View() string {
	var body string

	switch m.state {
	case extractStateForm:
		body = m.form.View()
	case extractStateRunning:
		body = fmt.Sprintf("%s Analisando %s...", m.spinner.View(), *m.uri)
	case extractStateResult:
		if m.err != nil {
			body = errStyle.Render(describeError(m.err))
		} else {
			body = "Transação extraída:\n\n" + FormatTransaction(m.tx, m.formatter)
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		titleStyle.Render(m.Title()) + "\n\n" +
			body + "\n\n" +
			helpStyle.Render(m.ShortHelp()),
	)
}

func describeError(err error) string {
	var (
		gwErr    *gemini.GatewayError
		parseErr *extraction.ParseError
	)

	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		return "GEMINI_API_KEY não configurada."
	case errors.As(err, &gwErr):
		return fmt.Sprintf("O serviço de IA respondeu com status %d.", gwErr.StatusCode)
	case errors.Is(err, gemini.ErrEmptyResponse):
		return "O serviço de IA não retornou resposta."
	case errors.As(err, &parseErr):
		return "Não foi possível interpretar a resposta:\n" + parseErr.Reply
	case errors.Is(err, media.ErrTooLarge):
		return "Arquivo grande demais."
	case errors.Is(err, media.ErrUnsupportedScheme):
		return "Esquema de URL não suportado."
	}

	return fmt.Sprintf("Erro: %v", err)
}
