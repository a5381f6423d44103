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

// ChatView runs ad-hoc test queries against one space.
type ChatView struct {
	app      *App
	flex     *tview.Flex
	selector *tview.DropDown
	topK     *tview.InputField
	messages *tview.TextView
	status   *tview.TextView
	input    *tview.TextArea

	chat   *controller.Chat
	spaces []api.Space
}

// NewChatView creates the chat view
func NewChatView(app *App) *ChatView {
	cv := &ChatView{
		app:  app,
		chat: controller.NewChat(app.client),
	}

	cv.selector = tview.NewDropDown().
		SetLabel("Space: ").
		SetOptions([]string{"(select a space)"}, nil)

	// Blank keeps the backend's default retrieval depth.
	cv.topK = tview.NewInputField().
		SetLabel("  Top-k: ").
		SetFieldWidth(4).
		SetAcceptanceFunc(tview.InputFieldInteger).
		SetChangedFunc(func(text string) {
			k, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil || k < 0 {
				k = 0
			}
			cv.chat.SetTopK(k)
		})

	cv.messages = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetScrollable(true)
	cv.messages.SetBorder(true).SetTitle(" Chat ")

	cv.status = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	cv.input = tview.NewTextArea().
		SetPlaceholder("Ask the knowledge base... (Ctrl+Enter to send)").
		SetWrap(true)

	cv.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter && event.Modifiers()&tcell.ModCtrl != 0 {
			cv.sendMessage()
			return nil
		}
		return event
	})

	cv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(
			tview.NewFlex().
				AddItem(cv.selector, 0, 1, false).
				AddItem(cv.topK, 14, 0, false),
			1, 0, false,
		).
		AddItem(cv.messages, 0, 1, false).
		AddItem(cv.status, 1, 0, false).
		AddItem(cv.input, 3, 0, true)

	return cv
}

// Primitive returns the tview primitive
func (cv *ChatView) Primitive() tview.Primitive {
	return cv.flex
}

// Mount loads the space options and focuses the input.
func (cv *ChatView) Mount() {
	go cv.loadSpaces()
	cv.app.app.SetFocus(cv.input)
}

// Unmount clears the transcript; it only lives while the page is open.
func (cv *ChatView) Unmount() {
	cv.chat.Reset()
	cv.messages.SetText("")
	cv.status.SetText("")
}

// loadSpaces fills the space selector.
func (cv *ChatView) loadSpaces() {
	v, err := cv.app.cache.Resolve(context.Background(), cache.NewKey(cache.ResourceSpaces), cv.app.fetchSpaces)
	if err != nil {
		cv.app.app.QueueUpdateDraw(func() {
			if cv.app.authFailed(err) {
				return
			}
			cv.status.SetText(fmt.Sprintf("[red]Error loading spaces: %v", err))
		})
		return
	}
	result := v.(*api.SpaceList)
	cv.app.app.QueueUpdateDraw(func() {
		cv.spaces = result.Spaces
		options := make([]string, len(result.Spaces))
		for i, space := range result.Spaces {
			options[i] = space.Name
		}
		cv.selector.SetOptions(options, func(text string, index int) {
			if index >= 0 && index < len(cv.spaces) {
				cv.chat.SelectSpace(cv.spaces[index].ID)
			}
			cv.app.app.SetFocus(cv.input)
		})
	})
}

// sendMessage submits the input if the controller allows it.
func (cv *ChatView) sendMessage() {
	text := cv.input.GetText()
	if !cv.chat.CanSubmit(text) {
		if cv.chat.SpaceID() == 0 {
			cv.status.SetText("[red]Select a space first")
		}
		return
	}

	cv.input.SetText("", false)
	cv.renderTranscriptWith(controller.ChatMessage{Role: "user", Content: text})
	cv.status.SetText("[yellow]Thinking...")

	go func() {
		_, err := cv.chat.Submit(context.Background(), text)
		cv.app.app.QueueUpdateDraw(func() {
			if err != nil {
				if cv.app.authFailed(err) {
					return
				}
				cv.status.SetText(fmt.Sprintf("[red]Error: %v", err))
			} else {
				cv.status.SetText("")
			}
			cv.renderTranscript()
		})
	}()
}

// renderTranscript redraws the full transcript.
func (cv *ChatView) renderTranscript() {
	cv.renderTranscriptWith()
}

// renderTranscriptWith appends pending entries not yet in the
// controller transcript, so the user turn shows while a query runs.
func (cv *ChatView) renderTranscriptWith(pending ...controller.ChatMessage) {
	transcript := cv.chat.Transcript()
	transcript = append(transcript, pending...)

	var lines []string
	for _, msg := range transcript {
		if msg.Role == "user" {
			lines = append(lines, fmt.Sprintf("[cyan]You: %s[white]", msg.Content))
			continue
		}
		lines = append(lines, fmt.Sprintf("[white]AI: %s[white]", msg.Content))
		if len(msg.Sources) > 0 {
			lines = append(lines, "", "[yellow]Sources:[white]")
			for _, src := range msg.Sources {
				lines = append(lines, fmt.Sprintf("  [gray]- %s (chunk %d, score %.2f)[white]",
					src.Filename, src.ChunkIndex, src.Score))
			}
			lines = append(lines, "")
		}
	}
	cv.messages.SetText(strings.Join(lines, "\n"))
	cv.messages.ScrollToEnd()
}
