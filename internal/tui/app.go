// Package tui renders the admin pages. All data access goes through the
// api client and the query cache; views keep only interaction state.
package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/polidex/cli/config"
	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
	"github.com/polidex/cli/internal/session"
)

// view is one page: mounted when shown, unmounted when navigated away.
// Unmounting cancels subscriptions so late results never touch a hidden
// page.
type view interface {
	Primitive() tview.Primitive
	Mount()
	Unmount()
}

// App represents the admin TUI application
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	cfg     *config.Config
	client  *api.Client
	session session.Store
	cache   *cache.Cache

	views   map[string]view
	current string

	// Views
	loginView     *LoginView
	dashboardView *DashboardView
	spacesView    *SpacesView
	documentsView *DocumentsView
	chatView      *ChatView
	apiKeysView   *APIKeysView
	usageView     *UsageView
}

// NewApp creates the TUI application
func NewApp(cfg *config.Config, sess session.Store) *App {
	a := &App{
		cfg:     cfg,
		session: sess,
		client:  api.New(cfg.Backend.BaseURL, sess),
		cache:   cache.New(cfg.StaleAfter()),
		views:   make(map[string]view),
	}

	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	a.loginView = NewLoginView(a)
	a.dashboardView = NewDashboardView(a)
	a.spacesView = NewSpacesView(a)
	a.documentsView = NewDocumentsView(a)
	a.chatView = NewChatView(a)
	a.apiKeysView = NewAPIKeysView(a)
	a.usageView = NewUsageView(a)

	a.addPage("login", a.loginView)
	a.addPage("dashboard", a.dashboardView)
	a.addPage("spaces", a.spacesView)
	a.addPage("documents", a.documentsView)
	a.addPage("chat", a.chatView)
	a.addPage("apikeys", a.apiKeysView)
	a.addPage("usage", a.usageView)

	start := "dashboard"
	if _, ok := sess.Get(); !ok {
		start = "login"
	}
	a.app.SetRoot(a.pages, true).SetFocus(a.pages)
	a.switchTo(start)

	a.setupGlobalKeys()
	return a
}

// addPage registers a view without showing it.
func (a *App) addPage(name string, v view) {
	a.views[name] = v
	a.pages.AddPage(name, v.Primitive(), true, false)
}

// switchTo shows a page, unmounting the previous one.
func (a *App) switchTo(name string) {
	if a.current == name {
		return
	}
	if prev, ok := a.views[a.current]; ok {
		prev.Unmount()
	}
	a.current = name
	a.pages.SwitchToPage(name)
	if next, ok := a.views[name]; ok {
		next.Mount()
	}
}

// requireLogin clears the rejected session and returns to the login
// page. Called by views on Unauthenticated/Forbidden results.
func (a *App) requireLogin(message string) {
	a.session.Clear()
	a.loginView.SetMessage(message)
	a.switchTo("login")
	a.app.SetFocus(a.loginView.Primitive())
}

// authFailed routes 401/403 to the login page and reports whether it
// consumed the error.
func (a *App) authFailed(err error) bool {
	if api.HasKind(err, api.KindUnauthenticated) || api.HasKind(err, api.KindForbidden) {
		a.requireLogin("[red]Session rejected. Enter a valid admin token.")
		return true
	}
	return false
}

// setupGlobalKeys sets up global keyboard shortcuts
func (a *App) setupGlobalKeys() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.app.Stop()
			return nil
		}

		// Text widgets own their keys; only Ctrl+C is global there.
		switch a.app.GetFocus().(type) {
		case *tview.InputField, *tview.TextArea:
			return event
		}

		if event.Key() == tcell.KeyEsc {
			if a.current == "dashboard" || a.current == "login" {
				a.app.Stop()
				return nil
			}
			a.switchTo("dashboard")
			return nil
		}

		if a.current == "login" {
			return event
		}

		switch event.Rune() {
		case '0':
			a.switchTo("dashboard")
			return nil
		case '1':
			a.switchTo("spaces")
			return nil
		case '2':
			a.switchTo("documents")
			return nil
		case '3':
			a.switchTo("chat")
			return nil
		case '4':
			a.switchTo("apikeys")
			return nil
		case '5':
			a.switchTo("usage")
			return nil
		}

		return event
	})
}

// Run starts the TUI application
func (a *App) Run() error {
	return a.app.Run()
}

// Fetch funcs shared by views; cache values are the typed list structs.

func (a *App) fetchSpaces(ctx context.Context) (any, error) {
	return a.client.ListSpaces(ctx)
}

func (a *App) fetchDocuments(spaceID *int) cache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		return a.client.ListDocuments(ctx, spaceID)
	}
}

func (a *App) fetchAPIKeys(spaceID *int) cache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		return a.client.ListAPIKeys(ctx, spaceID)
	}
}

func (a *App) fetchOverview(ctx context.Context) (any, error) {
	return a.client.Overview(ctx)
}

func (a *App) fetchUsage(limit, offset int) cache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		return a.client.Usage(ctx, limit, offset)
	}
}
