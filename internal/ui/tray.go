package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"github.com/storyreel/storyreel-agent/internal/studio"
)

type Tray struct {
	studio *studio.Studio
	logger *slog.Logger

	statusItem *systray.MenuItem
	scenesItem *systray.MenuItem

	mu sync.Mutex

	onExportPackage func() error
	onQuit          func()
}

type TrayConfig struct {
	Studio          *studio.Studio
	Logger          *slog.Logger
	OnExportPackage func() error
	OnQuit          func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		studio:          cfg.Studio,
		logger:          cfg.Logger,
		onExportPackage: cfg.OnExportPackage,
		onQuit:          cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Storyreel")
	systray.SetTooltip("Storyreel Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.scenesItem = systray.AddMenuItem("Scenes: 0", "Scenes in the current project")
	t.scenesItem.Disable()

	systray.AddSeparator()

	exportItem := systray.AddMenuItem("Export Package...", "Write the project package to disk")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Storyreel Agent")

	go func() {
		for {
			select {
			case <-exportItem.ClickedCh:
				t.handleExportPackage()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleExportPackage() {
	if t.onExportPackage != nil {
		if err := t.onExportPackage(); err != nil {
			t.logger.Error("failed to export package", "error", err)
		}
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateScenesCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scenesItem.SetTitle(fmt.Sprintf("Scenes: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
