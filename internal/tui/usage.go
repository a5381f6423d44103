package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
	"github.com/polidex/cli/internal/controller"
)

// UsageView shows cost telemetry and the paginated request history.
type UsageView struct {
	app    *App
	flex   *tview.Flex
	cards  *tview.TextView
	table  *tview.Table
	footer *tview.TextView

	pager      *controller.Pager
	cancelSub  func()
	cancelPoll func()
}

// NewUsageView creates the usage view
func NewUsageView(app *App) *UsageView {
	uv := &UsageView{
		app:   app,
		pager: controller.NewPager(app.cfg.UI.PageSize),
	}

	uv.cards = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	uv.cards.SetBorder(true).SetTitle(" Totals ")

	uv.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	uv.table.SetBorder(true).SetTitle(" Request History ")

	uv.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	uv.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case ']', 'l':
			uv.turnPage(+1)
			return nil
		case '[', 'h':
			uv.turnPage(-1)
			return nil
		}
		switch event.Key() {
		case tcell.KeyRight:
			uv.turnPage(+1)
			return nil
		case tcell.KeyLeft:
			uv.turnPage(-1)
			return nil
		}
		return event
	})

	uv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(uv.cards, 6, 0, false).
		AddItem(uv.table, 0, 1, true).
		AddItem(uv.footer, 1, 0, false)

	return uv
}

// Primitive returns the tview primitive
func (uv *UsageView) Primitive() tview.Primitive {
	return uv.flex
}

// Mount subscribes to the current page and starts the refresh poll.
func (uv *UsageView) Mount() {
	uv.subscribe()
	uv.app.app.SetFocus(uv.table)
}

// Unmount cancels the subscription and the poll.
func (uv *UsageView) Unmount() {
	if uv.cancelSub != nil {
		uv.cancelSub()
		uv.cancelSub = nil
	}
	if uv.cancelPoll != nil {
		uv.cancelPoll()
		uv.cancelPoll = nil
	}
}

// key returns the cache key for the current page.
func (uv *UsageView) key() cache.Key {
	return cache.NewKey(cache.ResourceUsage,
		fmt.Sprintf("limit=%d", uv.pager.Limit()),
		fmt.Sprintf("offset=%d", uv.pager.Offset()),
	)
}

// subscribe swaps subscription and poll to the current page key.
func (uv *UsageView) subscribe() {
	uv.Unmount()

	key := uv.key()
	fetch := uv.app.fetchUsage(uv.pager.Limit(), uv.pager.Offset())
	uv.cancelSub = uv.app.cache.Subscribe(key, fetch, func(v any) {
		uv.app.app.QueueUpdateDraw(func() {
			uv.render(v.(*api.UsageData))
		})
	})
	uv.cancelPoll = uv.app.cache.Poll(key, uv.app.cfg.PollInterval(), fetch)

	go func() {
		v, err := uv.app.cache.Resolve(context.Background(), key, fetch)
		uv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if uv.app.authFailed(err) {
					return
				}
				uv.footer.SetText(fmt.Sprintf("[red]Error loading usage: %v", err))
				return
			}
			uv.render(v.(*api.UsageData))
		})
	}()
}

// turnPage moves one page in either direction; bounds are no-ops.
func (uv *UsageView) turnPage(delta int) {
	before := uv.pager.Page()
	if delta > 0 {
		uv.pager.Next()
	} else {
		uv.pager.Prev()
	}
	if uv.pager.Page() == before {
		return
	}
	uv.subscribe()
}

// render redraws totals and the current page of logs.
func (uv *UsageView) render(data *api.UsageData) {
	uv.pager.SetTotal(data.TotalRequests)

	uv.cards.SetText(fmt.Sprintf(`Total spent: [yellow]%s[white]
Total requests: [yellow]%d[white]
Tokens: [yellow]%s[white] in / [yellow]%s[white] out`,
		formatCost(data.TotalCost),
		data.TotalRequests,
		formatTokens(data.TotalPromptTokens),
		formatTokens(data.TotalCompletionTokens),
	))

	uv.table.Clear()
	headers := []string{"Time", "Question", "Model", "Tokens", "Cost"}
	for col, h := range headers {
		uv.table.SetCell(0, col, tview.NewTableCell("[::b]"+h).SetSelectable(false))
	}
	for row, log := range data.Logs {
		uv.table.SetCell(row+1, 0, tview.NewTableCell(log.CreatedAt))
		uv.table.SetCell(row+1, 1, tview.NewTableCell(truncate(log.QueryText, 48)))
		uv.table.SetCell(row+1, 2, tview.NewTableCell(modelBase(log.ModelUsed)))
		uv.table.SetCell(row+1, 3, tview.NewTableCell(fmt.Sprintf("%d/%d", log.PromptTokens, log.CompletionTokens)))
		uv.table.SetCell(row+1, 4, tview.NewTableCell(formatCost(log.Cost)))
	}

	totalPages := uv.pager.TotalPages()
	if totalPages == 0 {
		uv.footer.SetText("[yellow]No requests yet")
		return
	}
	uv.footer.SetText(fmt.Sprintf(
		"Page [yellow]%d[white]/%d | [yellow]←/→[white] to page | refreshed every %s",
		uv.pager.Page()+1, totalPages, uv.app.cfg.PollInterval(),
	))
}

// formatCost renders sub-cent costs with extra precision.
func formatCost(cost float64) string {
	if cost < 0.01 {
		return fmt.Sprintf("$%.6f", cost)
	}
	return fmt.Sprintf("$%.4f", cost)
}

// formatTokens formats large token counts with K/M suffixes.
func formatTokens(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// truncate shortens text to maxLen runes with an ellipsis.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// modelBase strips the provider prefix from a model identifier.
func modelBase(model string) string {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		return model[i+1:]
	}
	return model
}
