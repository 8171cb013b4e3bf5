package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"slotwatch/internal/logging"
	"slotwatch/internal/logsync"
)

// Controller is the part of a sync session the viewer drives.
type Controller interface {
	Refresh(ctx context.Context) error
	StartTail() error
	StopTail()
	Clear()
	SetDescriptor(desc logsync.Descriptor) error
	Descriptor() logsync.Descriptor
	Mode() logsync.Mode
	View() logsync.View
	Updates() <-chan struct{}
	Done() <-chan struct{}
}

// Options configure the viewer.
type Options struct {
	// Tail starts polling once the first snapshot lands.
	Tail   bool
	Logger *slog.Logger
}

type (
	// updatedMsg means the session changed.
	updatedMsg struct{}
	// closedMsg means the session was closed underneath the viewer.
	closedMsg struct{}
	// opDoneMsg reports a session call made outside Update.
	opDoneMsg struct {
		op  string
		err error
	}
)

// Model is the bubbletea model for the viewer.
type Model struct {
	ctx    context.Context
	src    Controller
	logger *slog.Logger
	styles styles
	tail   bool

	view     logsync.View
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	follow   bool
	notice   string
	rendered uint64
}

// New builds a viewer over src. ctx bounds every session call it issues.
func New(ctx context.Context, src Controller, opts Options) Model {
	return Model{
		ctx:    ctx,
		src:    src,
		logger: logging.NewComponentLogger(opts.Logger, "tui"),
		styles: defaultStyles(),
		tail:   opts.Tail,
		view:   src.View(),
		follow: true,
	}
}

// Init requests the first snapshot and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("slotwatch "+m.view.Descriptor.StreamID),
		refreshCmd(m.ctx, m.src, m.tail),
		waitForUpdate(m.src),
	)
}

func waitForUpdate(src Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-src.Updates():
			return updatedMsg{}
		case <-src.Done():
			return closedMsg{}
		}
	}
}

// refreshCmd snapshots and, when tail is set, resumes polling afterwards.
func refreshCmd(ctx context.Context, src Controller, tail bool) tea.Cmd {
	return func() tea.Msg {
		if err := src.Refresh(ctx); err != nil {
			return opDoneMsg{op: "refresh", err: err}
		}
		if tail {
			if err := src.StartTail(); err != nil {
				return opDoneMsg{op: "tail", err: err}
			}
		}
		return opDoneMsg{op: "refresh"}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case updatedMsg:
		m.view = m.src.View()
		m.syncContent()
		return m, waitForUpdate(m.src)

	case closedMsg:
		return m, tea.Quit

	case opDoneMsg:
		if msg.err != nil && m.ctx.Err() == nil {
			m.notice = msg.op + ": " + msg.err.Error()
			m.logger.Warn("viewer operation failed", logging.String("op", msg.op), logging.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Refresh):
		return m, refreshCmd(m.ctx, m.src, m.src.Mode() == logsync.ModeTailing)

	case key.Matches(msg, keys.Tail):
		if m.src.Mode() == logsync.ModeTailing {
			m.src.StopTail()
			return m, nil
		}
		if err := m.src.StartTail(); err != nil {
			m.notice = "tail: " + err.Error()
		}
		return m, nil

	case key.Matches(msg, keys.Level):
		wasTailing := m.src.Mode() == logsync.ModeTailing
		desc := m.src.Descriptor()
		if err := m.src.SetDescriptor(desc.WithLevel(desc.Level.Next())); err != nil {
			m.notice = "level: " + err.Error()
			return m, nil
		}
		m.follow = true
		if wasTailing {
			// The cursor was reset, so the first tail fetch has no since.
			if err := m.src.StartTail(); err != nil {
				m.notice = "tail: " + err.Error()
			}
			return m, nil
		}
		return m, refreshCmd(m.ctx, m.src, false)

	case key.Matches(msg, keys.Clear):
		m.src.Clear()
		return m, nil

	case key.Matches(msg, keys.Top):
		if m.ready {
			m.viewport.GotoTop()
		}
		m.follow = false
		return m, nil

	case key.Matches(msg, keys.Bottom):
		if m.ready {
			m.viewport.GotoBottom()
		}
		m.follow = true
		return m, nil
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()
	return m, cmd
}

// chromeHeight is the header, status bar, and help line.
const chromeHeight = 3

func (m *Model) resize() {
	height := max(m.height-chromeHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
		m.rendered = 0
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}
	m.syncContent()
}

func (m *Model) syncContent() {
	if !m.ready {
		return
	}
	if m.rendered != 0 && m.rendered == m.view.Revision {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.rendered = m.view.Revision
	if m.follow {
		m.viewport.GotoBottom()
	}
}
