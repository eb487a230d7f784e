package media

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/flick/internal/config"
)

type Type int

const (
	TypePage Type = iota
	TypeImage
)

func (t Type) String() string {
	if t == TypeImage {
		return "image"
	}
	return "page"
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

// Launcher opens movie pages and posters with an external application.
type Launcher struct {
	opener string
	start  func(name string, args ...string) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = cfg.Media.Darwin
	case "linux":
		candidates = cfg.Media.Linux
	case "windows":
		candidates = cfg.Media.Windows
	default:
		candidates = cfg.Media.Darwin
	}

	opener := findCommand(candidates...)
	if opener == "" {
		opener = cfg.Media.DefaultOpener
	}

	return &Launcher{opener: opener, start: startDetached}
}

// Opener is the command Open runs, or "" when none was found.
func (l *Launcher) Opener() string {
	return l.opener
}

// Open hands rawURL to the opener without waiting for it to exit.
func (l *Launcher) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q", rawURL)
	}
	if l.opener == "" {
		return fmt.Errorf("no application found to open URL")
	}

	if l.opener == "start" {
		// start is a cmd.exe builtin; the empty argument is the window title.
		return l.start("cmd", "/c", "start", "", rawURL)
	}
	return l.start(l.opener, rawURL)
}

// DetectType classifies rawURL by its path extension.
func DetectType(rawURL string) Type {
	u, err := url.Parse(rawURL)
	if err != nil {
		return TypePage
	}
	if imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return TypeImage
	}
	return TypePage
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
