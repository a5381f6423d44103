package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
)

// SpacesView lists spaces and creates or deletes them.
type SpacesView struct {
	app    *App
	flex   *tview.Flex
	list   *tview.List
	detail *tview.TextView
	form   *tview.Form

	spaces    []api.Space
	cancelSub func()
}

// NewSpacesView creates the spaces view
func NewSpacesView(app *App) *SpacesView {
	sv := &SpacesView{app: app}

	sv.list = tview.NewList().
		ShowSecondaryText(true).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			sv.showDetail(index)
		})
	sv.list.SetBorder(true).SetTitle(" Spaces ")

	sv.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	sv.detail.SetBorder(true).SetTitle(" Detail ")

	sv.form = tview.NewForm().
		AddInputField("Name", "", 0, nil, nil).
		AddInputField("Description", "", 0, nil, nil).
		AddButton("Create", func() {
			sv.createSpace()
		})
	sv.form.SetBorder(true).SetTitle(" New Space ")

	sv.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'd', 'D':
			sv.deleteSelected()
			return nil
		case 'n', 'N':
			sv.app.app.SetFocus(sv.form)
			return nil
		}
		return event
	})

	sv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(
			tview.NewFlex().
				AddItem(sv.list, 0, 2, true).
				AddItem(sv.detail, 0, 1, false),
			0, 2, true,
		).
		AddItem(sv.form, 7, 0, false).
		AddItem(
			tview.NewTextView().
				SetText("[yellow]n[white]: New | [yellow]d[white]: Delete | [yellow]Esc[white]: Dashboard").
				SetDynamicColors(true),
			1, 0, false,
		)

	return sv
}

// Primitive returns the tview primitive
func (sv *SpacesView) Primitive() tview.Primitive {
	return sv.flex
}

// Mount subscribes to the space listing.
func (sv *SpacesView) Mount() {
	key := cache.NewKey(cache.ResourceSpaces)
	sv.cancelSub = sv.app.cache.Subscribe(key, sv.app.fetchSpaces, func(v any) {
		sv.app.app.QueueUpdateDraw(func() {
			sv.render(v.(*api.SpaceList))
		})
	})
	go sv.load(key)
	sv.app.app.SetFocus(sv.list)
}

// Unmount cancels the subscription.
func (sv *SpacesView) Unmount() {
	if sv.cancelSub != nil {
		sv.cancelSub()
	}
}

func (sv *SpacesView) load(key cache.Key) {
	v, err := sv.app.cache.Resolve(context.Background(), key, sv.app.fetchSpaces)
	sv.app.app.QueueUpdateDraw(func() {
		if err != nil {
			if sv.app.authFailed(err) {
				return
			}
			sv.detail.SetText(fmt.Sprintf("[red]Error loading spaces: %v", err))
			return
		}
		sv.render(v.(*api.SpaceList))
	})
}

// render rebuilds the listing.
func (sv *SpacesView) render(result *api.SpaceList) {
	sv.spaces = result.Spaces
	sv.list.Clear()
	for i, space := range result.Spaces {
		secondary := space.Description
		if secondary == "" {
			secondary = "No description"
		}
		sv.list.AddItem(fmt.Sprintf("%d. %s", i+1, space.Name), secondary, 0, nil)
	}
	if len(result.Spaces) == 0 {
		sv.detail.SetText("[yellow]No spaces yet. Press 'n' to create one.")
		return
	}
	sv.showDetail(sv.list.GetCurrentItem())
}

// showDetail fetches counts for the selected space.
func (sv *SpacesView) showDetail(index int) {
	if index < 0 || index >= len(sv.spaces) {
		return
	}
	space := sv.spaces[index]
	sv.detail.SetText(fmt.Sprintf("[white]%s\n[gray]Loading detail...", space.Name))

	go func() {
		detail, err := sv.app.client.GetSpace(context.Background(), space.ID)
		sv.app.app.QueueUpdateDraw(func() {
			// The selection may have moved while the detail loaded.
			if sv.list.GetCurrentItem() != index {
				return
			}
			if err != nil {
				if sv.app.authFailed(err) {
					return
				}
				sv.detail.SetText(fmt.Sprintf("[red]Error: %v", err))
				return
			}
			sv.detail.SetText(fmt.Sprintf(`[white]%s
[gray]%s[white]

Documents: [yellow]%d[white]
API keys: [yellow]%d[white]
Created: [gray]%s[white]
Updated: [gray]%s[white]`,
				detail.Name,
				detail.Description,
				detail.DocumentCount,
				detail.APIKeyCount,
				detail.CreatedAt,
				detail.UpdatedAt,
			))
		})
	}()
}

// createSpace submits the form and invalidates the space listing.
func (sv *SpacesView) createSpace() {
	name := strings.TrimSpace(sv.form.GetFormItem(0).(*tview.InputField).GetText())
	description := strings.TrimSpace(sv.form.GetFormItem(1).(*tview.InputField).GetText())
	if name == "" {
		sv.detail.SetText("[red]Space name must not be empty")
		return
	}

	go func() {
		_, err := sv.app.client.CreateSpace(context.Background(), api.CreateSpaceRequest{
			Name:        name,
			Description: description,
		})
		sv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if sv.app.authFailed(err) {
					return
				}
				sv.detail.SetText(fmt.Sprintf("[red]Error creating space: %v", err))
				return
			}
			sv.form.GetFormItem(0).(*tview.InputField).SetText("")
			sv.form.GetFormItem(1).(*tview.InputField).SetText("")
			sv.detail.SetText("[green]Space created")
			sv.app.app.SetFocus(sv.list)
		})
		if err == nil {
			sv.app.cache.Invalidate(cache.ResourceSpaces)
		}
	}()
}

// deleteSelected deletes the selected space.
func (sv *SpacesView) deleteSelected() {
	index := sv.list.GetCurrentItem()
	if index < 0 || index >= len(sv.spaces) {
		return
	}
	space := sv.spaces[index]

	go func() {
		err := sv.app.client.DeleteSpace(context.Background(), space.ID)
		sv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if sv.app.authFailed(err) {
					return
				}
				sv.detail.SetText(fmt.Sprintf("[red]Error deleting space: %v", err))
				return
			}
			sv.detail.SetText("[green]Space deleted")
		})
		if err == nil {
			sv.app.cache.Invalidate(cache.ResourceSpaces)
		}
	}()
}
