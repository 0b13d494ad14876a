package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/profile"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/shared/id"
)

// DefaultExitDelay is how long exit waits before restoring the default theme.
const DefaultExitDelay = time.Second

// Config wires a session to its collaborators.
type Config struct {
	Profile   *profile.Profile
	Theme     ThemeController
	Projects  ProjectSource
	Scheduler Scheduler
	Clock     func() time.Time
	Logger    *zap.Logger
	ExitDelay time.Duration

	// OnCommand observes every dispatch. name is "unknown" for names outside
	// the command set.
	OnCommand func(name string)
}

// Result describes what one Execute call changed.
type Result struct {
	Entry   *Entry // appended entry, nil when nothing was appended
	Cleared bool   // the log was emptied
}

// Session is one mounted terminal: its log, input history, recall cursor,
// staged input buffer and project cache.
type Session struct {
	id        id.TerminalID
	profile   *profile.Profile
	theme     ThemeController
	source    ProjectSource
	scheduler Scheduler
	now       func() time.Time
	logger    *zap.Logger
	exitDelay time.Duration
	onCommand func(string)
	commands  map[string]Command
	ordered   []Command

	mu          sync.Mutex
	log         []Entry
	history     history
	buffer      string
	projects    []project.Project
	mountedAt   time.Time
	mounted     bool
	closed      bool
	pending     map[uint64]Cancel
	nextTask    uint64
	cancelFetch context.CancelFunc
	ready       chan struct{}
}

// NewSession creates an unmounted session. Theme is required.
func NewSession(cfg Config) *Session {
	if cfg.Profile == nil {
		cfg.Profile = profile.Default()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ExitDelay <= 0 {
		cfg.ExitDelay = DefaultExitDelay
	}
	if cfg.Theme == nil {
		cfg.Theme = NewThemeState(ThemeCmd, nil)
	}

	sessionID := id.NewTerminalID()
	ordered := builtinCommands()
	commands := make(map[string]Command, len(ordered))
	for _, c := range ordered {
		commands[c.Name] = c
	}

	return &Session{
		id:        sessionID,
		profile:   cfg.Profile,
		theme:     cfg.Theme,
		source:    cfg.Projects,
		scheduler: cfg.Scheduler,
		now:       cfg.Clock,
		logger:    cfg.Logger.With(zap.String("terminal_id", sessionID.String())),
		exitDelay: cfg.ExitDelay,
		onCommand: cfg.OnCommand,
		commands:  commands,
		ordered:   ordered,
		history:   newHistory(),
		pending:   make(map[uint64]Cancel),
		ready:     make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() id.TerminalID {
	return s.id
}

// Mount seeds the log with the welcome entry and starts the one-time
// project fetch. Mounting twice returns the existing welcome entry.
func (s *Session) Mount(ctx context.Context) Entry {
	s.mu.Lock()
	if s.mounted {
		defer s.mu.Unlock()
		if len(s.log) > 0 {
			return s.log[0]
		}
		return Entry{}
	}
	s.mounted = true
	s.mountedAt = s.now()
	welcome := Entry{Output: welcomeOutput(s.profile), Timestamp: s.mountedAt}
	s.log = []Entry{welcome}

	if s.source == nil {
		close(s.ready)
		s.mu.Unlock()
		return welcome
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.mu.Unlock()

	go s.fetchProjects(fetchCtx, cancel)
	return welcome
}

func (s *Session) fetchProjects(ctx context.Context, cancel context.CancelFunc) {
	defer close(s.ready)
	defer cancel()

	items, err := s.source.ListProjects(ctx)
	if err != nil {
		s.logger.Warn("project fetch failed, terminal keeps an empty project list", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.projects = items
	s.logger.Debug("projects loaded", zap.Int("count", len(items)))
}

// Ready is closed once the project fetch has finished, successfully or not.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Execute interprets one submitted line. Theme changes requested by the
// command reach the ThemeController after the session lock is released.
func (s *Session) Execute(raw string) Result {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return Result{}
	}
	name, args := fields[0], fields[1:]
	current := s.theme.Current()

	res, env := s.execute(raw, name, args, current)
	if env != nil && env.requested != nil {
		s.theme.SetTheme(*env.requested)
	}
	return res
}

func (s *Session) execute(raw, name string, args []string, current Theme) (Result, *Env) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, nil
	}

	env := s.env(current)
	var out Output
	cmd, known := s.commands[name]
	if known {
		out = cmd.Handler(args, env)
	} else {
		out = Error(fmt.Sprintf("command not found: %s. Type 'help' to see available commands.", name))
	}
	if s.onCommand != nil {
		if known {
			s.onCommand(name)
		} else {
			s.onCommand("unknown")
		}
	}

	s.history.push(raw)
	s.buffer = ""

	if env.cleared {
		s.log = nil
		return Result{Cleared: true}, env
	}
	entry := Entry{Input: raw, Output: out, Timestamp: env.Now}
	s.log = append(s.log, entry)
	return Result{Entry: &entry}, env
}

// RecallPrevious stages the next older history entry in the input buffer.
// It returns the buffer and whether it changed.
func (s *Session) RecallPrevious() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.history.previous()
	if ok {
		s.buffer = line
	}
	return s.buffer, ok
}

// RecallNext stages the next newer history entry, or clears the buffer when
// recall returns to the present.
func (s *Session) RecallNext() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.history.next()
	if ok {
		s.buffer = line
	}
	return s.buffer, ok
}

// SetBuffer replaces the staged input, as when the user types.
func (s *Session) SetBuffer(v string) {
	s.mu.Lock()
	s.buffer = v
	s.mu.Unlock()
}

// Buffer returns the staged input.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// Cursor returns the recall cursor.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.cursor
}

// Log returns a copy of the session log.
func (s *Session) Log() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.log))
	copy(out, s.log)
	return out
}

// History returns a copy of the submitted lines, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.snapshot()
}

// Projects returns the cached project list.
func (s *Session) Projects() []project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]project.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Commands lists the command set in help order.
func (s *Session) Commands() []Command {
	out := make([]Command, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Close tears the session down: pending timers are cancelled and the
// project fetch is abandoned. Later calls to Execute are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for key, cancel := range s.pending {
		cancel()
		delete(s.pending, key)
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
}

// schedule registers delayed work. The caller holds s.mu.
func (s *Session) schedule(d time.Duration, fn func()) {
	key := s.nextTask
	s.nextTask++
	s.pending[key] = s.scheduler.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()
		fn()
	})
}

// env snapshots session state for a handler. The caller holds s.mu.
func (s *Session) env(theme Theme) *Env {
	now := s.now()
	return &Env{
		Profile:   s.profile,
		Theme:     theme,
		Projects:  s.projects,
		Commands:  s.ordered,
		Now:       now,
		Uptime:    now.Sub(s.mountedAt),
		ExitDelay: s.exitDelay,
		session:   s,
	}
}

// Env is what a command handler may read and do.
type Env struct {
	Profile   *profile.Profile
	Theme     Theme // active when the line was submitted
	Projects  []project.Project
	Commands  []Command
	Now       time.Time
	Uptime    time.Duration
	ExitDelay time.Duration

	session   *Session
	cleared   bool
	requested *Theme
}

// ClearLog empties the session log instead of appending an entry.
func (e *Env) ClearLog() {
	e.cleared = true
}

// SetTheme asks the host to switch to t once the command returns.
func (e *Env) SetTheme(t Theme) {
	e.requested = &t
}

// SetThemeAfter asks the host to switch to t after d unless the session
// closes first.
func (e *Env) SetThemeAfter(d time.Duration, t Theme) {
	theme := e.session.theme
	e.After(d, func() { theme.SetTheme(t) })
}

// After schedules fn on the session's cancelable scheduler. fn runs without
// the session lock held.
func (e *Env) After(d time.Duration, fn func()) {
	e.session.schedule(d, fn)
}
