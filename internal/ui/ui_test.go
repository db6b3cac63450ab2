package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestOutput() (*Output, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	out := NewOutput(buf)
	out.SetNoColor(true)
	return out, buf
}

func TestOutput_Messages(t *testing.T) {
	out, buf := newTestOutput()

	out.Success("done %d", 1)
	out.Error("broke")
	out.Warning("careful")
	out.Info("note")
	out.Print("plain")

	got := buf.String()
	assert.Contains(t, got, SymbolSuccess+" done 1")
	assert.Contains(t, got, SymbolError+" broke")
	assert.Contains(t, got, SymbolWarning+" careful")
	assert.Contains(t, got, SymbolInfo+" note")
	assert.Contains(t, got, "plain\n")
}

func TestOutput_Quiet(t *testing.T) {
	out, buf := newTestOutput()
	out.SetQuiet(true)

	out.Success("hidden")
	out.Info("hidden")
	out.Warning("hidden")
	out.Print("hidden")
	out.Field("Label", "hidden")

	assert.Empty(t, buf.String())

	// Errors always print.
	out.Error("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestOutput_Debug(t *testing.T) {
	out, buf := newTestOutput()

	out.Debug("invisible")
	assert.Empty(t, buf.String())

	out.SetVerbose(true)
	out.Debug("visible")
	assert.Contains(t, buf.String(), "[DEBUG] visible")
}

func TestOutput_ErrorWithHint(t *testing.T) {
	out, buf := newTestOutput()

	out.ErrorWithHint("bad config", "run musicpaper init")

	got := buf.String()
	assert.Contains(t, got, "bad config")
	assert.Contains(t, got, "Hint: run musicpaper init")
}

func TestOutput_MatchInfo(t *testing.T) {
	out, buf := newTestOutput()

	out.MatchInfo("Sad Song (remix)", "Artist", "sad song", "/wp/sad.jpg")

	got := buf.String()
	assert.Contains(t, got, `Matched "Sad Song (remix)" by Artist`)
	assert.Contains(t, got, "Song key: sad song")
	assert.Contains(t, got, "Wallpaper: /wp/sad.jpg")
}

func TestOutput_Table(t *testing.T) {
	out, buf := newTestOutput()

	out.Table([]string{"Song", "Wallpaper"}, [][]string{
		{"sad song", "sad.jpg"},
		{"happy song", "happy.jpg"},
	})

	got := buf.String()
	assert.Contains(t, got, "Song")
	assert.Contains(t, got, "sad song    sad.jpg")
	assert.Contains(t, got, "happy song  happy.jpg")
}
