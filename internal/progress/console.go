package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var (
	errorColor   = color.New(color.FgWhite, color.BgRed)
	warningColor = color.New(color.FgBlack, color.BgYellow)
	trackColor   = color.New(color.FgWhite, color.BgBlue)
	doneColor    = color.New(color.FgGreen)
)

// Console renders tracker events for a terminal.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	barOut      io.Writer
	interactive bool
	bar         *progressbar.ProgressBar
}

// NewConsole writes status lines to out. The download bar is only drawn when out is a
// terminal. Fatal errors are left to the caller, see PrintError.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:         out,
		barOut:      barWriter(out),
		interactive: isTerminal(out),
	}
}

// barWriter wraps the standard streams so escape codes also render on Windows consoles.
func barWriter(out io.Writer) io.Writer {
	switch out {
	case os.Stdout:
		return ansi.NewAnsiStdout()
	case os.Stderr:
		return ansi.NewAnsiStderr()
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Handle is a ProgressTracker listener.
func (c *Console) Handle(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case event.Stage == StageError:
		c.finishBar()
	case event.Warning:
		warningColor.Fprint(c.out, event.Message)
		fmt.Fprintln(c.out)
	case event.Stage == StageDownloading:
		c.updateBar(event)
	case event.Stage == StageRipping && event.TrackDetails != nil:
		c.finishBar()
		trackColor.Fprintf(c.out, "Ripping song %d of %d", event.TrackDetails.TrackNumber, event.TrackDetails.TotalTracks)
		fmt.Fprintf(c.out, " %s\n", event.TrackDetails.CurrentTrack)
	case event.Stage == StageComplete:
		c.finishBar()
		doneColor.Fprintln(c.out, event.Message)
	default:
		if event.Message != "" {
			fmt.Fprintln(c.out, event.Message)
		}
	}
}

func (c *Console) updateBar(event Event) {
	if !c.interactive {
		if event.Progress == 0 && event.Message != "" {
			fmt.Fprintln(c.out, event.Message)
		}
		return
	}

	if c.bar == nil {
		c.bar = progressbar.NewOptions(
			100,
			progressbar.OptionSetWriter(c.barOut),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetDescription("[cyan][1/2][reset] Downloading..."),
		)
	}
	_ = c.bar.Set(int(event.Progress))
	if event.Progress >= 100 {
		c.finishBar()
	}
}

func (c *Console) finishBar() {
	if c.bar == nil {
		return
	}
	_ = c.bar.Finish()
	fmt.Fprintln(c.out)
	c.bar = nil
}

// PrintError writes a fatal error message in white on red.
func PrintError(w io.Writer, message string) {
	errorColor.Fprint(w, message)
	fmt.Fprintln(w)
}
