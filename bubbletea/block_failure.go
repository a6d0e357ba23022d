package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FailurePlaceholder is shown in place of an answer whose stream failed.
const FailurePlaceholder = "The answer could not be loaded. Please try again."

var _ MessageBlock = (*FailureBlock)(nil)

// FailureBlock stands in for an answer that failed to arrive. The cause, when
// known, is shown underneath in muted text.
type FailureBlock struct {
	err    error
	styles Styles
}

// NewFailureBlock creates a FailureBlock. err may be nil.
func NewFailureBlock(err error, styles Styles) *FailureBlock {
	return &FailureBlock{err: err, styles: styles}
}

func (b *FailureBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *FailureBlock) View(width int) string {
	content := b.styles.Error.Render("⚠ " + FailurePlaceholder)
	if b.err != nil {
		content += "\n" + b.styles.Muted.Render(b.err.Error())
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
