// Command hud renders a live caption overlay in the terminal. It follows a
// relay's event stream (or tails a local text file), keeps a bounded
// scrollback of everything it has seen, and lets the operator type replies
// back into the relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/hudview/internal/datasource"
	"github.com/daviddao/hudview/internal/display"
	"github.com/daviddao/hudview/internal/eventstream"
	"github.com/daviddao/hudview/internal/publish"
	"github.com/daviddao/hudview/internal/speech"
	"github.com/daviddao/hudview/internal/upload"
)

var version = "0.3.0"

func main() {
	var (
		subURL      = flag.String("sub", "http://127.0.0.1:8008/sub", "event stream URL to follow")
		pubURL      = flag.String("pub", "http://127.0.0.1:8008/pub", "URL replies are posted to")
		inputPath   = flag.String("i", "", "tail this text file instead of following the stream")
		outputPath  = flag.String("o", "", "append replies to this file in file mode (default <input dir>/_pub.txt)")
		framesPath  = flag.String("frames", "", "screenshot file to upload alongside the stream")
		speechOn    = flag.Bool("speech", false, "narrate new captions out loud")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("hud", version)
		return
	}

	state := &display.State{}
	fileMode := *inputPath != ""

	var inputFile *datasource.File
	var submitter publish.Submitter
	if fileMode {
		inputFile = &datasource.File{Path: *inputPath}
		out := *outputPath
		if out == "" {
			out = datasource.DefaultOutputPath(*inputPath)
		}
		submitter = &publish.FileAppender{Path: out}
	} else {
		submitter = &publish.HTTPPublisher{URL: *pubURL}
	}

	narrator := &speech.Narrator{}
	if *speechOn {
		narrator.Toggle()
	}

	m := newModel(state, fileMode, inputFile, submitter, narrator)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if fileMode {
		watcher, err := datasource.NewWatcher(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hud: watch %s: %v\n", *inputPath, err)
			os.Exit(1)
		}
		defer watcher.Close()
		go func() {
			for range watcher.Changes() {
				p.Send(fileChangedMsg{})
			}
		}()
	} else {
		client := &eventstream.Client{
			URL: *subURL,
			Sink: eventstream.SinkFunc(func(ev eventstream.Event) {
				state.PublishStamped(display.HumanTime(ev.ID), ev.Text)
			}),
		}
		go client.Run(ctx)

		if *framesPath != "" {
			up := &upload.Uploader{
				BaseURL: relayBase(*pubURL),
				Source:  &upload.FileFrameSource{Path: *framesPath},
			}
			go up.Run(ctx)
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "hud: %v\n", err)
		os.Exit(1)
	}
	narrator.Stop()
}

// relayBase strips the /pub path so sibling endpoints can be derived from the
// publish URL.
func relayBase(pubURL string) string {
	return strings.TrimSuffix(strings.TrimSuffix(pubURL, "/"), "/pub")
}
