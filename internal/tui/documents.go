package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
	"github.com/polidex/cli/internal/controller"
)

// DocumentsView lists documents, uploads files and edits space links.
type DocumentsView struct {
	app    *App
	flex   *tview.Flex
	filter *tview.DropDown
	list   *tview.List
	info   *tview.TextView
	form   *tview.Form

	uploader  *controller.Uploader
	documents []api.Document
	spaces    []api.Space
	spaceID   *int // nil = all spaces
	cancelSub func()
	uploading bool
}

// NewDocumentsView creates the documents view
func NewDocumentsView(app *App) *DocumentsView {
	dv := &DocumentsView{
		app:      app,
		uploader: controller.NewUploader(app.client, app.cache),
	}

	dv.filter = tview.NewDropDown().
		SetLabel("Space: ").
		SetOptions([]string{"All"}, nil)
	dv.filter.SetSelectedFunc(func(text string, index int) {
		dv.setFilter(index)
	})

	dv.list = tview.NewList().
		ShowSecondaryText(true).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			dv.showInfo(index)
		})
	dv.list.SetBorder(true).SetTitle(" Documents ")

	dv.info = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	dv.info.SetBorder(true).SetTitle(" Info ")

	dv.form = tview.NewForm().
		AddInputField("Files (comma-separated paths)", "", 0, nil, nil).
		AddInputField("Space ids (comma-separated)", "", 0, nil, nil).
		AddButton("Upload", func() {
			dv.uploadBatch()
		}).
		AddButton("Link", func() {
			dv.linkSelected(true)
		}).
		AddButton("Unlink", func() {
			dv.linkSelected(false)
		})
	dv.form.SetBorder(true).SetTitle(" Upload / Link ")

	dv.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'd', 'D':
			dv.deleteSelected()
			return nil
		case 'u', 'U':
			dv.app.app.SetFocus(dv.form)
			return nil
		case 'f', 'F':
			dv.app.app.SetFocus(dv.filter)
			return nil
		}
		return event
	})

	dv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(dv.filter, 1, 0, false).
		AddItem(
			tview.NewFlex().
				AddItem(dv.list, 0, 2, true).
				AddItem(dv.info, 0, 1, false),
			0, 2, true,
		).
		AddItem(dv.form, 7, 0, false).
		AddItem(
			tview.NewTextView().
				SetText("[yellow]u[white]: Upload | [yellow]d[white]: Delete | [yellow]f[white]: Filter | [yellow]Esc[white]: Dashboard").
				SetDynamicColors(true),
			1, 0, false,
		)

	return dv
}

// Primitive returns the tview primitive
func (dv *DocumentsView) Primitive() tview.Primitive {
	return dv.flex
}

// Mount subscribes to the document listing for the active filter and
// refreshes the space options for the filter dropdown.
func (dv *DocumentsView) Mount() {
	dv.subscribe()
	go dv.loadSpaces()
	dv.app.app.SetFocus(dv.list)
}

// Unmount cancels the listing subscription.
func (dv *DocumentsView) Unmount() {
	if dv.cancelSub != nil {
		dv.cancelSub()
		dv.cancelSub = nil
	}
}

// key returns the cache key for the current filter.
func (dv *DocumentsView) key() cache.Key {
	if dv.spaceID == nil {
		return cache.NewKey(cache.ResourceDocuments)
	}
	return cache.NewKey(cache.ResourceDocuments, fmt.Sprintf("space=%d", *dv.spaceID))
}

// subscribe swaps the listing subscription to the current filter key.
// Responses for the old key stop reaching this view the moment the old
// subscription is cancelled.
func (dv *DocumentsView) subscribe() {
	if dv.cancelSub != nil {
		dv.cancelSub()
	}
	key := dv.key()
	fetch := dv.app.fetchDocuments(dv.spaceID)
	dv.cancelSub = dv.app.cache.Subscribe(key, fetch, func(v any) {
		dv.app.app.QueueUpdateDraw(func() {
			dv.render(v.(*api.DocumentList))
		})
	})

	go func() {
		v, err := dv.app.cache.Resolve(context.Background(), key, fetch)
		dv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if dv.app.authFailed(err) {
					return
				}
				dv.info.SetText(fmt.Sprintf("[red]Error loading documents: %v", err))
				return
			}
			dv.render(v.(*api.DocumentList))
		})
	}()
}

// setFilter applies the dropdown selection: index 0 is all spaces.
func (dv *DocumentsView) setFilter(index int) {
	if index <= 0 || index > len(dv.spaces) {
		dv.spaceID = nil
	} else {
		id := dv.spaces[index-1].ID
		dv.spaceID = &id
	}
	dv.subscribe()
	dv.app.app.SetFocus(dv.list)
}

// loadSpaces fills the filter dropdown from the space listing.
func (dv *DocumentsView) loadSpaces() {
	v, err := dv.app.cache.Resolve(context.Background(), cache.NewKey(cache.ResourceSpaces), dv.app.fetchSpaces)
	if err != nil {
		return
	}
	result := v.(*api.SpaceList)
	dv.app.app.QueueUpdateDraw(func() {
		dv.spaces = result.Spaces
		options := []string{"All"}
		for _, space := range result.Spaces {
			options = append(options, space.Name)
		}
		dv.filter.SetOptions(options, func(text string, index int) {
			dv.setFilter(index)
		})
	})
}

// render rebuilds the document listing.
func (dv *DocumentsView) render(result *api.DocumentList) {
	dv.documents = result.Documents
	dv.list.Clear()
	for i, doc := range result.Documents {
		names := make([]string, len(doc.Spaces))
		for j, ref := range doc.Spaces {
			names[j] = ref.Name
		}
		dv.list.AddItem(
			fmt.Sprintf("%d. %s", i+1, doc.Filename),
			fmt.Sprintf("%s | %d chunks | %s", doc.FileType, doc.ChunkCount, strings.Join(names, ", ")),
			0, nil,
		)
	}
	if len(result.Documents) == 0 {
		dv.info.SetText("[yellow]No documents. Press 'u' to upload files.")
		return
	}
	dv.showInfo(dv.list.GetCurrentItem())
}

// showInfo displays details for the selected document.
func (dv *DocumentsView) showInfo(index int) {
	if index < 0 || index >= len(dv.documents) {
		return
	}
	doc := dv.documents[index]
	var b strings.Builder
	fmt.Fprintf(&b, "[white]File: [yellow]%s[white]\n", doc.Filename)
	fmt.Fprintf(&b, "Type: [cyan]%s[white]\n", doc.FileType)
	fmt.Fprintf(&b, "Size: [gray]%d bytes[white]\n", doc.FileSize)
	fmt.Fprintf(&b, "Chunks: [yellow]%d[white]\n", doc.ChunkCount)
	fmt.Fprintf(&b, "Added: [gray]%s[white]\n\nSpaces:\n", doc.CreatedAt)
	for _, ref := range doc.Spaces {
		fmt.Fprintf(&b, "  [gray]- %s (id %d)[white]\n", ref.Name, ref.ID)
	}
	dv.info.SetText(b.String())
}

// uploadBatch queues the entered files and uploads them one at a time.
func (dv *DocumentsView) uploadBatch() {
	if dv.uploading {
		return
	}
	paths := splitCommaList(dv.form.GetFormItem(0).(*tview.InputField).GetText())
	spaceIDs, err := parseIDList(dv.form.GetFormItem(1).(*tview.InputField).GetText())
	if err != nil {
		dv.info.SetText(fmt.Sprintf("[red]%v", err))
		return
	}
	if len(paths) == 0 {
		dv.info.SetText("[red]Enter at least one file path")
		return
	}
	if len(spaceIDs) == 0 {
		dv.info.SetText("[red]Enter at least one target space id")
		return
	}

	items := make([]controller.UploadItem, 0, len(paths))
	for _, path := range paths {
		item, err := controller.NewFileItem(path)
		if err != nil {
			dv.info.SetText(fmt.Sprintf("[red]%v", err))
			return
		}
		items = append(items, item)
	}

	dv.uploading = true
	dv.info.SetText(fmt.Sprintf("[yellow]Uploading %d file(s)...", len(items)))

	go func() {
		var failed []string
		done := 0
		outcomes, err := dv.uploader.Run(context.Background(), items, spaceIDs, func(o controller.UploadOutcome) {
			done++
			if o.Err != nil {
				failed = append(failed, o.Item.Filename)
			}
			dv.app.app.QueueUpdateDraw(func() {
				dv.info.SetText(fmt.Sprintf("[yellow]Uploading %d/%d: %s", done, len(items), o.Item.Filename))
			})
		})

		dv.app.app.QueueUpdateDraw(func() {
			dv.uploading = false
			if err != nil {
				dv.info.SetText(fmt.Sprintf("[red]%v", err))
				return
			}
			succeeded := len(outcomes) - len(failed)
			if len(failed) == 0 {
				dv.info.SetText(fmt.Sprintf("[green]Uploaded %d file(s)", succeeded))
			} else {
				dv.info.SetText(fmt.Sprintf("[green]Uploaded: %d  [red]Failed: %s", succeeded, strings.Join(failed, ", ")))
			}
			dv.form.GetFormItem(0).(*tview.InputField).SetText("")
			dv.app.app.SetFocus(dv.list)
		})
	}()
}

// linkSelected links or unlinks the selected document and the space ids
// from the form.
func (dv *DocumentsView) linkSelected(link bool) {
	index := dv.list.GetCurrentItem()
	if index < 0 || index >= len(dv.documents) {
		dv.info.SetText("[red]Select a document first")
		return
	}
	doc := dv.documents[index]
	spaceIDs, err := parseIDList(dv.form.GetFormItem(1).(*tview.InputField).GetText())
	if err != nil || len(spaceIDs) == 0 {
		dv.info.SetText("[red]Enter the space id(s) to link or unlink")
		return
	}

	go func() {
		var firstErr error
		for _, spaceID := range spaceIDs {
			if link {
				firstErr = dv.app.client.AddDocumentToSpace(context.Background(), doc.ID, spaceID)
			} else {
				firstErr = dv.app.client.RemoveDocumentFromSpace(context.Background(), doc.ID, spaceID)
			}
			if firstErr != nil {
				break
			}
		}
		dv.app.app.QueueUpdateDraw(func() {
			if firstErr != nil {
				if dv.app.authFailed(firstErr) {
					return
				}
				dv.info.SetText(fmt.Sprintf("[red]Error: %v", firstErr))
				return
			}
			dv.info.SetText("[green]Space links updated")
		})
		if firstErr == nil {
			dv.app.cache.Invalidate(cache.ResourceDocuments, cache.ResourceSpaces)
		}
	}()
}

// deleteSelected deletes the selected document.
func (dv *DocumentsView) deleteSelected() {
	index := dv.list.GetCurrentItem()
	if index < 0 || index >= len(dv.documents) {
		return
	}
	doc := dv.documents[index]

	go func() {
		err := dv.app.client.DeleteDocument(context.Background(), doc.ID)
		dv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if dv.app.authFailed(err) {
					return
				}
				dv.info.SetText(fmt.Sprintf("[red]Error deleting document: %v", err))
				return
			}
			dv.info.SetText("[green]Document deleted")
		})
		if err == nil {
			dv.app.cache.Invalidate(cache.ResourceDocuments, cache.ResourceSpaces)
		}
	}()
}

// splitCommaList splits a comma-separated input, dropping blanks.
func splitCommaList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseIDList parses comma-separated numeric ids.
func parseIDList(text string) ([]int, error) {
	var ids []int
	for _, part := range splitCommaList(text) {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
