package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"lunar/internal/driver"
)

// RunWithProgress runs work while rendering its file events to out.
// work receives the sink to pass to the driver; the model quits when work
// returns. The work error wins over a UI error.
func RunWithProgress(out io.Writer, title, baseDir string, work func(driver.EventSink) error) error {
	events := make(chan driver.FileEvent, 256)
	errCh := make(chan error, 1)

	go func() {
		err := work(driver.ChannelSink(events))
		close(events)
		errCh <- err
	}()

	model := NewProgressModel(title, baseDir, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал: дочитываем, чтобы воркеры не встали
		for range events {
		}
	}
	if err := <-errCh; err != nil {
		return err
	}
	return uiErr
}
