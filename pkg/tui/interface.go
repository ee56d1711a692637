// Package tui drives the interactive follow-mode display: a refresh
// ticker plus single-key shortcuts for switching views.
package tui

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/kaede/loglens/pkg/analyze"
)

type Tui struct {
	collector *analyze.Collector
	panel     analyze.Panel

	ticker      *time.Ticker
	refreshChan chan struct{}
	inputChan   chan byte
	noPrint     atomic.Bool
}

func New(collector *analyze.Collector) *Tui {
	return &Tui{
		collector:   collector,
		panel:       analyze.PanelAll,
		refreshChan: make(chan struct{}),
		inputChan:   make(chan byte),
	}
}

func (t *Tui) Run() {
	go t.timerRoutine()
	go t.waitForOneByte()

	for {
		select {
		case k := <-t.inputChan:
			switch k {
			case 'G', 'g':
				granularity := t.collector.ToggleGranularity()
				fmt.Printf("Switched traffic buckets to %s\n", granularity)
			case 'P', 'p':
				t.panel = (t.panel + 1) % 4
				fmt.Printf("Showing %s\n", t.panel)
			case '?':
				fmt.Println("Available shortcuts:")
				fmt.Println("g/G: toggle hourly/daily traffic buckets")
				fmt.Println("p/P: cycle displayed panel (all/traffic/clients/browsers)")
				fmt.Println("?: help")
				fmt.Println()
			}
			// This shall always run after input is handled.
			// Don't write "continue" above!
			go t.waitForOneByte()
		case <-t.refreshChan:
			if err := t.collector.PrintSummary(os.Stdout, t.panel); err != nil {
				fmt.Println("render error:", err)
			}
			fmt.Println()
		}
	}
}
