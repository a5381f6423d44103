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

// APIKeysView lists, mints, revokes and deletes space credentials.
type APIKeysView struct {
	app    *App
	flex   *tview.Flex
	filter *tview.DropDown
	list   *tview.List
	info   *tview.TextView
	form   *tview.Form
	modal  *tview.Modal

	reveal    controller.KeyReveal
	keys      []api.APIKey
	spaces    []api.Space
	spaceID   *int
	cancelSub func()
}

// NewAPIKeysView creates the API keys view
func NewAPIKeysView(app *App) *APIKeysView {
	kv := &APIKeysView{app: app}

	kv.filter = tview.NewDropDown().
		SetLabel("Space: ").
		SetOptions([]string{"All"}, nil)
	kv.filter.SetSelectedFunc(func(text string, index int) {
		kv.setFilter(index)
	})

	kv.list = tview.NewList().
		ShowSecondaryText(true).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			kv.showInfo(index)
		})
	kv.list.SetBorder(true).SetTitle(" API Keys ")

	kv.info = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	kv.info.SetBorder(true).SetTitle(" Info ")

	kv.form = tview.NewForm().
		AddInputField("Name", "", 0, nil, nil).
		AddDropDown("Space", nil, -1, nil).
		AddButton("Create", func() {
			kv.createKey()
		})
	kv.form.SetBorder(true).SetTitle(" New Key ")

	// The plaintext key is shown exactly once; closing this modal
	// discards it for good.
	kv.modal = tview.NewModal().
		AddButtons([]string{"I have copied the key"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			kv.reveal.Dismiss()
			kv.app.pages.HidePage("key-reveal")
			kv.app.app.SetFocus(kv.list)
		})
	kv.app.pages.AddPage("key-reveal", kv.modal, true, false)

	kv.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'n', 'N':
			kv.app.app.SetFocus(kv.form)
			return nil
		case 'r', 'R':
			kv.revokeSelected()
			return nil
		case 'd', 'D':
			kv.deleteSelected()
			return nil
		case 'f', 'F':
			kv.app.app.SetFocus(kv.filter)
			return nil
		}
		return event
	})

	kv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(kv.filter, 1, 0, false).
		AddItem(
			tview.NewFlex().
				AddItem(kv.list, 0, 2, true).
				AddItem(kv.info, 0, 1, false),
			0, 2, true,
		).
		AddItem(kv.form, 7, 0, false).
		AddItem(
			tview.NewTextView().
				SetText("[yellow]n[white]: New | [yellow]r[white]: Revoke | [yellow]d[white]: Delete | [yellow]f[white]: Filter").
				SetDynamicColors(true),
			1, 0, false,
		)

	return kv
}

// Primitive returns the tview primitive
func (kv *APIKeysView) Primitive() tview.Primitive {
	return kv.flex
}

// Mount subscribes to the key listing and loads space options.
func (kv *APIKeysView) Mount() {
	kv.subscribe()
	go kv.loadSpaces()
	kv.app.app.SetFocus(kv.list)
}

// Unmount cancels the subscription and drops any open reveal.
func (kv *APIKeysView) Unmount() {
	if kv.cancelSub != nil {
		kv.cancelSub()
		kv.cancelSub = nil
	}
	kv.reveal.Dismiss()
	kv.app.pages.HidePage("key-reveal")
}

func (kv *APIKeysView) key() cache.Key {
	if kv.spaceID == nil {
		return cache.NewKey(cache.ResourceAPIKeys)
	}
	return cache.NewKey(cache.ResourceAPIKeys, fmt.Sprintf("space=%d", *kv.spaceID))
}

// subscribe swaps the listing subscription to the current filter key.
func (kv *APIKeysView) subscribe() {
	if kv.cancelSub != nil {
		kv.cancelSub()
	}
	key := kv.key()
	fetch := kv.app.fetchAPIKeys(kv.spaceID)
	kv.cancelSub = kv.app.cache.Subscribe(key, fetch, func(v any) {
		kv.app.app.QueueUpdateDraw(func() {
			kv.render(v.(*api.APIKeyList))
		})
	})

	go func() {
		v, err := kv.app.cache.Resolve(context.Background(), key, fetch)
		kv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if kv.app.authFailed(err) {
					return
				}
				kv.info.SetText(fmt.Sprintf("[red]Error loading keys: %v", err))
				return
			}
			kv.render(v.(*api.APIKeyList))
		})
	}()
}

func (kv *APIKeysView) setFilter(index int) {
	if index <= 0 || index > len(kv.spaces) {
		kv.spaceID = nil
	} else {
		id := kv.spaces[index-1].ID
		kv.spaceID = &id
	}
	kv.subscribe()
	kv.app.app.SetFocus(kv.list)
}

// loadSpaces fills the filter and the creation form's space dropdown.
func (kv *APIKeysView) loadSpaces() {
	v, err := kv.app.cache.Resolve(context.Background(), cache.NewKey(cache.ResourceSpaces), kv.app.fetchSpaces)
	if err != nil {
		return
	}
	result := v.(*api.SpaceList)
	kv.app.app.QueueUpdateDraw(func() {
		kv.spaces = result.Spaces
		names := make([]string, len(result.Spaces))
		for i, space := range result.Spaces {
			names[i] = space.Name
		}
		kv.filter.SetOptions(append([]string{"All"}, names...), func(text string, index int) {
			kv.setFilter(index)
		})
		kv.form.GetFormItem(1).(*tview.DropDown).SetOptions(names, nil)
	})
}

// render rebuilds the key listing. Only prefixes ever appear here.
func (kv *APIKeysView) render(result *api.APIKeyList) {
	kv.keys = result.APIKeys
	kv.list.Clear()
	for i, key := range result.APIKeys {
		status := "[green]active"
		if !key.IsActive {
			status = "[red]revoked"
		}
		kv.list.AddItem(
			fmt.Sprintf("%d. %s", i+1, key.Name),
			fmt.Sprintf("%s... | %s[white] | %s", key.KeyPrefix, status, key.SpaceName),
			0, nil,
		)
	}
	if len(result.APIKeys) == 0 {
		kv.info.SetText("[yellow]No API keys. Press 'n' to create one.")
		return
	}
	kv.showInfo(kv.list.GetCurrentItem())
}

// showInfo displays details for the selected key.
func (kv *APIKeysView) showInfo(index int) {
	if index < 0 || index >= len(kv.keys) {
		return
	}
	key := kv.keys[index]
	status := "[green]active[white]"
	if !key.IsActive {
		status = "[red]revoked[white]"
	}
	lastUsed := key.LastUsedAt
	if lastUsed == "" {
		lastUsed = "never"
	}
	kv.info.SetText(fmt.Sprintf(`[white]Name: [yellow]%s[white]
Space: [cyan]%s[white]
Prefix: [gray]%s...[white]
Status: %s
Requests: [yellow]%d[white]
Last used: [gray]%s[white]
Created: [gray]%s[white]`,
		key.Name, key.SpaceName, key.KeyPrefix, status,
		key.RequestCount, lastUsed, key.CreatedAt,
	))
}

// createKey mints a key and opens the one-time reveal modal.
func (kv *APIKeysView) createKey() {
	name := strings.TrimSpace(kv.form.GetFormItem(0).(*tview.InputField).GetText())
	spaceIndex, _ := kv.form.GetFormItem(1).(*tview.DropDown).GetCurrentOption()
	if name == "" {
		kv.info.SetText("[red]Key name must not be empty")
		return
	}
	if spaceIndex < 0 || spaceIndex >= len(kv.spaces) {
		kv.info.SetText("[red]Select a space for the key")
		return
	}
	spaceID := kv.spaces[spaceIndex].ID

	go func() {
		created, err := kv.app.client.CreateAPIKey(context.Background(), api.CreateAPIKeyRequest{
			Name:    name,
			SpaceID: spaceID,
		})
		if err == nil {
			kv.app.cache.Invalidate(cache.ResourceAPIKeys, cache.ResourceSpaces)
		}
		kv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if kv.app.authFailed(err) {
					return
				}
				kv.info.SetText(fmt.Sprintf("[red]Error creating key: %v", err))
				return
			}
			kv.form.GetFormItem(0).(*tview.InputField).SetText("")
			kv.reveal.Show(created)
			kv.modal.SetText(fmt.Sprintf(
				"API key created.\n\nThis is the only time the full key is shown:\n\n%s\n\nCopy it now.",
				created.Key,
			))
			kv.app.pages.ShowPage("key-reveal")
			kv.app.app.SetFocus(kv.modal)
		})
	}()
}

// revokeSelected deactivates the selected key without deleting it.
func (kv *APIKeysView) revokeSelected() {
	index := kv.list.GetCurrentItem()
	if index < 0 || index >= len(kv.keys) {
		return
	}
	key := kv.keys[index]

	go func() {
		err := kv.app.client.RevokeAPIKey(context.Background(), key.ID)
		if err == nil {
			kv.app.cache.Invalidate(cache.ResourceAPIKeys)
		}
		kv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if kv.app.authFailed(err) {
					return
				}
				kv.info.SetText(fmt.Sprintf("[red]Error revoking key: %v", err))
				return
			}
			kv.info.SetText("[green]Key revoked")
		})
	}()
}

// deleteSelected removes the selected key permanently.
func (kv *APIKeysView) deleteSelected() {
	index := kv.list.GetCurrentItem()
	if index < 0 || index >= len(kv.keys) {
		return
	}
	key := kv.keys[index]

	go func() {
		err := kv.app.client.DeleteAPIKey(context.Background(), key.ID)
		if err == nil {
			kv.app.cache.Invalidate(cache.ResourceAPIKeys, cache.ResourceSpaces)
		}
		kv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if kv.app.authFailed(err) {
					return
				}
				kv.info.SetText(fmt.Sprintf("[red]Error deleting key: %v", err))
				return
			}
			kv.info.SetText("[green]Key deleted")
		})
	}()
}
