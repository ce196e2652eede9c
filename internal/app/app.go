package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/diegok/airhockey/internal/audio"
	"github.com/diegok/airhockey/internal/config"
	"github.com/diegok/airhockey/internal/game"
	"github.com/diegok/airhockey/internal/netsync"
	"github.com/diegok/airhockey/internal/session"
	"github.com/diegok/airhockey/internal/ui"
)

// NoticeDisconnected is shown on the menu after the peer went away
const NoticeDisconnected = "disconnected"

// App is the main application controller. It owns the menu, the session and
// the tick loop of the running match.
type App struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	screen   *ui.Screen
	renderer *ui.Renderer
	session  *session.Session
	sync     *netsync.Synchronizer

	// State
	intent game.Intent
	notice string
	addrs  []string
	lost   bool // the peer dropped; the last frame stays up until a key press

	ctx     context.Context
	cancel  context.CancelFunc
	quit    chan struct{}
	sigChan chan os.Signal
}

// NewApp creates a new App instance with the given configuration.
func NewApp(cfg *config.Config, log logrus.FieldLogger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:     cfg,
		log:     log,
		session: session.New(log),
		ctx:     ctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
	}
}

// Run is the main entry point for the application.
// It initializes the screen, sets up signal handling, and runs the loop
// until the player quits.
func (a *App) Run() error {
	defer func() {
		if r := recover(); r != nil {
			a.cleanup()
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
			panic(r)
		}
	}()

	if !a.cfg.Mute {
		if err := audio.Init(); err != nil {
			a.log.WithError(err).Warn("sound disabled")
		}
	}

	screen, err := ui.InitScreen()
	if err != nil {
		return errors.Wrap(err, "failed to initialize screen")
	}
	a.screen = screen
	a.renderer = ui.NewRenderer(screen)

	a.sigChan = make(chan os.Signal, 1)
	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-a.sigChan:
			close(a.quit)
		case <-a.ctx.Done():
		}
	}()

	if !a.cfg.Offline() {
		if a.cfg.IsHost {
			err = a.host()
		} else {
			err = a.join()
		}
	}
	if err != nil {
		a.log.WithError(err).Error("could not open session")
		a.notice = err.Error()
	}

	runErr := a.mainLoop()
	a.cleanup()
	return runErr
}

// mainLoop handles input and, while a match is running, ticks it at the
// simulation rate. In the menu there is no tick and the loop only wakes up
// for input.
func (a *App) mainLoop() error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.quit:
				return
			case <-a.ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / game.TickRate)
	defer ticker.Stop()

	a.render()
	for {
		var tick <-chan time.Time
		if a.sync != nil && !a.lost {
			tick = ticker.C
		}

		select {
		case <-a.quit:
			return nil

		case ev := <-events:
			if a.handleEvent(ev) {
				return nil
			}
			if a.sync == nil {
				a.render()
			}

		case <-tick:
			a.tick()
		}
	}
}

// tick runs one synchronizer tick with the input gathered since the last one.
func (a *App) tick() {
	ev, err := a.sync.Tick(a.intent)
	a.intent = game.Intent{}
	audio.Play(ev)
	if err != nil {
		a.handleError(err)
	}
	a.render()
}

func (a *App) handleError(err error) {
	var terr *session.TransportError
	switch {
	case errors.As(err, &terr):
		a.log.WithError(err).Warn("peer lost")
		if a.hasResult() {
			a.lost = true
			a.notice = NoticeDisconnected
			return
		}
		a.leave(NoticeDisconnected)
	case errors.Is(err, game.ErrSimulationInvariant):
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("mode", a.sync.Mode().String())
			scope.SetTag("session", a.session.ID().String())
		})
		hub.CaptureException(err)
	default:
		a.log.WithError(err).Error("tick failed")
	}
}

// handleEvent processes keyboard, mouse and resize events.
// Returns true if the application should quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		if a.sync != nil && !a.lost {
			a.aim(ui.MouseTarget(ev, a.layout()))
		}

	case *tcell.EventResize:
		a.screen.Clear()
		a.render()
	}

	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	action := ui.KeyToAction(ev.Key(), ev.Rune())
	if action == ui.ActionQuit {
		return true
	}
	if a.sync == nil {
		return a.handleMenuKey(action)
	}
	if a.lost {
		a.leave(NoticeDisconnected)
		return false
	}

	if nudge, ok := ui.KeyToNudge(ev.Key()); ok {
		base := a.sync.World.Paddle(game.Paddle2).Target
		if a.intent.HasTarget {
			base = a.intent.Target
		}
		a.aim(base.Add(nudge))
		return false
	}

	switch action {
	case ui.ActionBack, ui.ActionDisconnect:
		a.leave("")
	case ui.ActionPause:
		a.intent.Pause = true
	case ui.ActionRestart:
		a.intent.Restart = true
	}
	return false
}

// handleMenuKey handles keys while no match is set up.
func (a *App) handleMenuKey(action ui.Action) bool {
	var err error
	switch action {
	case ui.ActionBack:
		return true
	case ui.ActionConfirm, ui.ActionOffline:
		a.offline()
	case ui.ActionHost:
		err = a.host()
	case ui.ActionJoin:
		err = a.join()
	}
	if err != nil {
		a.log.WithError(err).Error("could not open session")
		a.notice = err.Error()
	}
	return false
}

func (a *App) aim(target mgl64.Vec2) {
	a.intent.Target = target
	a.intent.HasTarget = true
}

func (a *App) settings() game.Settings {
	s := game.DefaultSettings()
	s.PointsToWin = a.cfg.PointsToWin
	s.Difficulty = a.cfg.Difficulty
	return s
}

// offline starts a match against the AI right away.
func (a *App) offline() {
	w := game.NewWorld(a.settings())
	w.Start()
	a.sync = netsync.NewOffline(w, a.log)
	a.notice = ""
	a.log.WithField("difficulty", a.cfg.Difficulty).Info("offline match started")
}

// host listens for a guest. The match starts when the guest joins.
func (a *App) host() error {
	if err := a.session.Listen(a.ctx, a.cfg.ListenAddr()); err != nil {
		return err
	}
	a.addrs = append(session.LocalAddresses(a.cfg.Port), fmt.Sprintf("localhost:%d", a.cfg.Port))
	a.sync = netsync.NewHost(game.NewWorld(a.settings()), a.session, a.log)
	a.notice = ""
	return nil
}

// join dials the host in the background and mirrors its match.
func (a *App) join() error {
	if err := a.session.Connect(a.ctx, a.cfg.DialAddr()); err != nil {
		return err
	}
	a.sync = netsync.NewGuest(game.NewWorld(a.settings()), a.session, a.log)
	a.notice = ""
	return nil
}

// hasResult reports whether the match shows a goal or a final score the
// player has not had a chance to see go away.
func (a *App) hasResult() bool {
	phase := a.sync.World.Match.Phase
	return phase == game.PhaseGoalPause || phase == game.PhaseFinished
}

// leave drops the match and the session and goes back to the menu.
func (a *App) leave(notice string) {
	a.session.Close()
	a.sync = nil
	a.lost = false
	a.intent = game.Intent{}
	a.addrs = nil
	a.notice = notice
	a.log.WithField("notice", notice).Info("back to menu")
}

func (a *App) layout() ui.Layout {
	return a.renderer.Layout(a.sync.World.Rink)
}

// render calls the appropriate renderer method based on the current state.
func (a *App) render() {
	switch {
	case a.sync == nil:
		a.renderer.RenderMenu(ui.MenuView{
			Notice:      a.notice,
			JoinAddr:    a.cfg.DialAddr(),
			Port:        a.cfg.Port,
			PointsToWin: a.cfg.PointsToWin,
			Difficulty:  a.cfg.Difficulty,
		})
	case a.waiting():
		a.renderer.RenderWaiting(ui.WaitingView{
			Hosting:   a.sync.Mode() == netsync.Host,
			Addr:      a.cfg.DialAddr(),
			Addresses: a.addrs,
			State:     a.session.State().String(),
		})
	default:
		a.renderer.RenderMatch(a.matchView())
	}
}

func (a *App) waiting() bool {
	return !a.lost && a.sync.Mode() != netsync.Offline && a.session.State() != session.Active
}

func (a *App) matchView() ui.MatchView {
	v := ui.MatchView{
		World:      a.sync.World,
		Labels:     [2]string{"THEM", "YOU"},
		CanRestart: a.sync.Mode() != netsync.Guest,
	}
	switch a.sync.Mode() {
	case netsync.Offline:
		v.Labels[game.Paddle1] = "CPU"
		v.Status = fmt.Sprintf("Offline, difficulty %d | p pause | r restart | q menu", a.cfg.Difficulty)
	case netsync.Host:
		v.Status = fmt.Sprintf("Hosting on port %d | p pause | r restart | q menu", a.cfg.Port)
	case netsync.Guest:
		v.Status = fmt.Sprintf("Joined %s | q menu", a.cfg.DialAddr())
	}
	if a.lost {
		v.CanRestart = false
		v.Disconnected = true
		v.Status = "Disconnected | any key for the menu"
	}
	return v
}

// cleanup shuts down all resources.
func (a *App) cleanup() {
	audio.Close()

	a.session.Close()
	a.cancel()

	if a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}

	if a.sigChan != nil {
		signal.Stop(a.sigChan)
	}
}
