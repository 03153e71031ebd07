package conversation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// Console is a line-oriented transport for local development. Plain lines
// arrive as text events; lines starting with ':' are button presses using the
// button's data payload (":confirm_yes").
type Console struct {
	userID int64
	in     io.Reader
	out    io.Writer

	mu     sync.Mutex
	nextID int
}

func NewConsole(userID int64, in io.Reader, out io.Writer) *Console {
	return &Console{userID: userID, in: in, out: out}
}

// Events reads lines until EOF or cancellation.
func (c *Console) Events(ctx context.Context) (<-chan models.Event, error) {
	events := make(chan models.Event)
	scanner := bufio.NewScanner(c.in)

	go func() {
		defer close(events)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			ev := models.Event{UserID: c.userID, Kind: models.EventText, Text: line}
			if strings.HasPrefix(line, ":") {
				ev = models.Event{UserID: c.userID, Kind: models.EventButtonPress, Button: strings.TrimPrefix(line, ":")}
			}

			select {
			case <-ctx.Done():
				return
			case events <- ev:
			}
		}
	}()
	return events, nil
}

func (c *Console) Reply(_ context.Context, _ int64, text string, keyboard Keyboard) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.print(c.nextID, text, keyboard)
	return c.nextID, nil
}

func (c *Console) EditMessage(_ context.Context, _ int64, messageID int, text string, keyboard Keyboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.print(messageID, text, keyboard)
	return nil
}

func (c *Console) print(messageID int, text string, keyboard Keyboard) {
	fmt.Fprintf(c.out, "#%d %s\n", messageID, text)
	for _, row := range keyboard {
		for _, button := range row {
			if button.URL != "" {
				fmt.Fprintf(c.out, "  [%s] %s\n", button.Label, button.URL)
				continue
			}
			fmt.Fprintf(c.out, "  [%s] :%s\n", button.Label, button.Data)
		}
	}
}
