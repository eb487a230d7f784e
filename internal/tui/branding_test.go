package tui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/flick/internal/config"
)

func TestShowBanner(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	ShowBanner("1.0.0-test")

	w.Close()
	os.Stdout = old
	out := <-outC

	if !strings.Contains(out, "Movie Search") {
		t.Errorf("Expected banner to contain 'Movie Search', got: %s", out)
	}
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("Expected banner to contain border characters, got: %s", out)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("Expected banner to contain version 'v1.0.0-test', got: %s", out)
	}
}

func TestBannerDevVersion(t *testing.T) {
	out := Banner("dev")
	if strings.Contains(out, "vdev") {
		t.Errorf("dev builds should not print a version, got: %s", out)
	}
	if !strings.Contains(out, "Movie Search") {
		t.Errorf("Expected banner tagline, got: %s", out)
	}
}

func TestLogoConstants(t *testing.T) {
	if len(LogoLines) != 4 {
		t.Errorf("Expected LogoLines to have 4 lines, got %d", len(LogoLines))
	}
	width := lipgloss.Width(LogoLines[0])
	for i, line := range LogoLines {
		if lipgloss.Width(line) != width {
			t.Errorf("Logo line %d has width %d, want %d", i, lipgloss.Width(line), width)
		}
	}
	if AppName != "flick" {
		t.Errorf("Expected AppName to be 'flick', got %s", AppName)
	}
}

func TestApplyTheme(t *testing.T) {
	oldPrimary, oldError := PrimaryColor, ErrorColor
	t.Cleanup(func() {
		PrimaryColor, ErrorColor = oldPrimary, oldError
		buildStyles()
	})

	ApplyTheme(config.UIColors{Primary: "#123456"})

	if PrimaryColor != lipgloss.Color("#123456") {
		t.Errorf("Expected primary color to be overridden, got %v", PrimaryColor)
	}
	if ErrorColor != oldError {
		t.Errorf("Empty values must keep the default, got %v", ErrorColor)
	}
	if LogoStyle.GetForeground() != lipgloss.Color("#123456") {
		t.Errorf("Expected styles to be rebuilt with the new color")
	}
}
