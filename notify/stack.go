package notify

import (
	"strings"
	"time"

	"memepi-dapp/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stack holds the toasts currently on screen. It lives in the model and is
// only touched from the UI loop.
type Stack struct {
	items    []Notification
	duration time.Duration
}

// NewStack returns an empty stack using DisplayDuration.
func NewStack() Stack {
	return Stack{duration: DisplayDuration}
}

// Push shows n and schedules its removal.
func (s *Stack) Push(n Notification) tea.Cmd {
	s.items = append(s.items, n)
	id := n.ID
	d := s.duration
	if d <= 0 {
		d = DisplayDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ExpiredMsg{ID: id}
	})
}

// Dismiss removes a toast early. The pending ExpiredMsg for it becomes a no-op.
func (s *Stack) Dismiss(id uint64) bool {
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Newest returns the most recently pushed toast.
func (s Stack) Newest() (Notification, bool) {
	if len(s.items) == 0 {
		return Notification{}, false
	}
	return s.items[len(s.items)-1], true
}

// Items returns a copy of the visible toasts, oldest first.
func (s Stack) Items() []Notification {
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many toasts are visible.
func (s Stack) Len() int { return len(s.items) }

// Update handles ShowMsg, ExpiredMsg and DismissMsg. Other messages are ignored.
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ShowMsg:
		return s.Push(msg.Notification)
	case ExpiredMsg:
		s.Dismiss(msg.ID)
	case DismissMsg:
		s.Dismiss(msg.ID)
	}
	return nil
}

func toastColor(sev Severity) lipgloss.Color {
	switch sev {
	case Success:
		return styles.CToastSuccess
	case Error:
		return styles.CToastError
	default:
		return styles.CToastInfo
	}
}

func toastIcon(sev Severity) string {
	switch sev {
	case Success:
		return "✓"
	case Error:
		return "✗"
	default:
		return "ℹ"
	}
}

// View renders the toasts newest first, right-aligned within width.
func (s Stack) View(width int) string {
	if len(s.items) == 0 {
		return ""
	}

	boxWidth := 44
	if width > 0 && width-4 < boxWidth {
		boxWidth = max(10, width-4)
	}

	var boxes []string
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		box := lipgloss.NewStyle().
			Width(boxWidth).
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(toastColor(n.Severity))

		title := lipgloss.NewStyle().Bold(true).Render(toastIcon(n.Severity) + " " + n.Title)
		boxes = append(boxes, box.Render(title+"\n"+n.Message))
	}

	stack := strings.Join(boxes, "\n")
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
