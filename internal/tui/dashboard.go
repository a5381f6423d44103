package tui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"

	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
)

// DashboardView shows overview statistics and navigation.
type DashboardView struct {
	app   *App
	flex  *tview.Flex
	stats *tview.TextView
	menu  *tview.List

	cancelSub  func()
	cancelPoll func()
}

// NewDashboardView creates the dashboard view
func NewDashboardView(app *App) *DashboardView {
	dv := &DashboardView{app: app}

	dv.stats = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	dv.stats.SetBorder(true).SetTitle(" Overview ")

	dv.menu = tview.NewList().
		AddItem("Spaces", "Manage document collections", '1', func() {
			app.switchTo("spaces")
		}).
		AddItem("Documents", "Upload and organize files", '2', func() {
			app.switchTo("documents")
		}).
		AddItem("Chat", "Run test queries against a space", '3', func() {
			app.switchTo("chat")
		}).
		AddItem("API Keys", "Mint and revoke space credentials", '4', func() {
			app.switchTo("apikeys")
		}).
		AddItem("Usage", "Inspect cost and token telemetry", '5', func() {
			app.switchTo("usage")
		}).
		AddItem("Sign out", "Clear the stored admin token", 's', func() {
			app.requireLogin("Signed out.")
		}).
		AddItem("Quit", "Exit the application", 'q', func() {
			app.app.Stop()
		})
	dv.menu.SetBorder(true).SetTitle(" Navigation ")

	dv.flex = tview.NewFlex().
		AddItem(dv.stats, 0, 1, false).
		AddItem(dv.menu, 0, 1, true)

	return dv
}

// Primitive returns the tview primitive
func (dv *DashboardView) Primitive() tview.Primitive {
	return dv.flex
}

// Mount subscribes to the overview stats and starts the refresh poll.
func (dv *DashboardView) Mount() {
	key := cache.NewKey(cache.ResourceStats, "overview")
	dv.cancelSub = dv.app.cache.Subscribe(key, dv.app.fetchOverview, func(v any) {
		dv.app.app.QueueUpdateDraw(func() {
			dv.render(v.(*api.Stats))
		})
	})
	dv.cancelPoll = dv.app.cache.Poll(key, dv.app.cfg.PollInterval(), dv.app.fetchOverview)

	go dv.load(key)
	dv.app.app.SetFocus(dv.menu)
}

// Unmount cancels the subscription and the poll.
func (dv *DashboardView) Unmount() {
	if dv.cancelSub != nil {
		dv.cancelSub()
	}
	if dv.cancelPoll != nil {
		dv.cancelPoll()
	}
}

// load resolves the stats, surfacing errors in the stats pane.
func (dv *DashboardView) load(key cache.Key) {
	v, err := dv.app.cache.Resolve(context.Background(), key, dv.app.fetchOverview)
	dv.app.app.QueueUpdateDraw(func() {
		if err != nil {
			if dv.app.authFailed(err) {
				return
			}
			dv.stats.SetText(fmt.Sprintf("[red]Error loading stats: %v", err))
			return
		}
		dv.render(v.(*api.Stats))
	})
}

// render updates the overview pane.
func (dv *DashboardView) render(stats *api.Stats) {
	dv.stats.SetText(fmt.Sprintf(`Spaces: [yellow]%d[white]
Documents: [yellow]%d[white]
Chunks: [yellow]%d[white]

Queries: [yellow]%d[white]
Avg latency: [yellow]%.0f ms[white]
Avg chunks/query: [yellow]%.1f[white]`,
		stats.TotalSpaces,
		stats.TotalDocuments,
		stats.TotalChunks,
		stats.TotalQueries,
		stats.AvgLatencyMs,
		stats.AvgChunksRetrieved,
	))
}
