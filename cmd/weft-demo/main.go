package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/term"

	"weft"
)

// Config is the optional demo configuration, loaded from weft-demo.toml.
type Config struct {
	LogFile string `toml:"log_file"`
	Theme   struct {
		Accent string `toml:"accent"`
		Dim    string `toml:"dim"`
		Focus  string `toml:"focus"`
	} `toml:"theme"`
}

func loadConfig() Config {
	cfg := Config{LogFile: "weft-demo.log"}
	cfg.Theme.Accent = "12"
	cfg.Theme.Dim = "8"
	cfg.Theme.Focus = "10"
	if _, err := toml.DecodeFile("weft-demo.toml", &cfg); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	return cfg
}

type label string

func (l label) Text() string { return string(l) }

type counterProps struct {
	Title string
}

func (p counterProps) Text() string { return p.Title }

func main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "weft-demo: stdout is not a terminal")
		os.Exit(1)
	}

	cfg := loadConfig()

	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{cfg.LogFile}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Accent))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Dim))
	focused := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Focus)).Bold(true)

	reg := weft.NewRegistry()
	in := weft.NewInstance(reg, weft.WithLogger(logger))

	// Counter keeps its count in retained state and bumps it on click.
	reg.Register("counter", weft.Widget{
		Render: func(props, state any, ctx *weft.BuildContext) []weft.ChildDesc {
			count, _ := state.(int)
			p, _ := props.(counterProps)
			node := ctx.Node()
			in.Dispatcher().Handle(node, func(ev *weft.Event) {
				if ev.Kind == weft.EventClick {
					count++
					ctx.SetState(count)
				}
			})
			return []weft.ChildDesc{
				{Kind: "text", Key: "title", Props: label(p.Title), Style: weft.Style{Height: 1}},
				{Kind: "text", Key: "value", Props: label(fmt.Sprintf("count: %d", count)), Style: weft.Style{Height: 1}},
			}
		},
	})

	items := []string{"overview", "deploys", "logs", "settings"}

	view := func() weft.ChildDesc {
		var rows []weft.ChildDesc
		for _, it := range items {
			rows = append(rows, weft.ChildDesc{
				Kind:  "text",
				Key:   it,
				Props: label(it),
				Style: weft.Style{Height: 1, Focusable: true},
			})
		}
		return weft.ChildDesc{
			Kind: "app", Key: "root",
			Style: weft.Style{Direction: weft.Row},
			Children: []weft.ChildDesc{
				{
					Kind: "sidebar", Key: "side",
					Style:    weft.Style{Width: 20, Border: true, Padding: 1, Direction: weft.Column},
					Children: rows,
				},
				{
					Kind: "counter", Key: "main",
					Style: weft.Style{Grow: 1, Border: true, Padding: 1, Focusable: true},
					Props: counterProps{Title: "dashboard"},
				},
			},
		}
	}

	renderer := weft.NewRenderer(weft.Theme{
		"sidebar": &dim,
		"counter": &accent,
		"text":    &accent,
	})
	renderer.SetFocusedStyle(&focused)

	app := weft.NewApp(in, renderer, view).SetLogger(logger)

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		in.Resize(w, h)
	}

	if err := app.Run(); err != nil {
		logger.Error("run", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
