package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"orbit/internal/controls"
	"orbit/internal/render"
	"orbit/internal/scene"

	"github.com/atotto/clipboard"
	imgclip "golang.design/x/clipboard"
)

var (
	imgclipOnce sync.Once
	imgclipErr  error
)

func readClipboardText() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return strings.TrimSpace(s), nil
}

func copyFill(store *controls.Store) error {
	if err := clipboard.WriteAll(store.Get(scene.FillControl)); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func pasteFill(store *controls.Store) error {
	s, err := readClipboardText()
	if err != nil {
		return err
	}
	if s == "" {
		return errors.New("clipboard is empty")
	}
	return store.Set(scene.FillControl, s)
}

// copyFrame puts the backing store on the clipboard as a PNG image.
func copyFrame(s *render.Surface) error {
	imgclipOnce.Do(func() { imgclipErr = imgclip.Init() })
	if imgclipErr != nil {
		return fmt.Errorf("image clipboard unavailable: %w", imgclipErr)
	}
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return err
	}
	imgclip.Write(imgclip.FmtImage, buf.Bytes())
	return nil
}

// SaveFramePNG writes the backing store to path, adding a .png extension when
// missing. It returns the path written.
func SaveFramePNG(path string, s *render.Surface) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("no file selected")
	}
	path = filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		path += ".png"
	}
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return path, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, fmt.Errorf("write frame: %w", err)
	}
	return path, nil
}
