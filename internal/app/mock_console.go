// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/relabs-tech/run_tracker/internal/gps"
	"github.com/relabs-tech/run_tracker/internal/panel"
	"github.com/relabs-tech/run_tracker/internal/timer"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// RunMockConsole runs the tracker against the synthetic jogger and prints
// to stdout. Commands are read from stdin, one per line:
//
//	r      reset
//	u      toggle unit
//	p      pause / resume
//	d on   developer mode on (or "d off")
//	f 75   font slider position
//	h      help
func RunMockConsole() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := NewLoop(gps.NewMockProvider(time.Second), timer.SystemClock, tracker.Modes{UseMPH: true}, time.Second)
	loop.AddSink(NewConsoleSink(os.Stdout))
	loop.AddSink(SinkFunc(func(s panel.Screen) error {
		if s.Help != "" {
			_, err := io.WriteString(os.Stdout, s.Help+"\n")
			return err
		}
		return nil
	}))

	go readConsoleCommands(os.Stdin, loop.Submit)

	return loop.Run(ctx)
}

func readConsoleCommands(r io.Reader, submit func(panel.Command)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd, ok := ParseConsoleCommand(scanner.Text())
		if !ok {
			log.Printf("console: unknown command %q", scanner.Text())
			continue
		}
		submit(cmd)
	}
}

// ParseConsoleCommand maps a console line to a command.
func ParseConsoleCommand(line string) (panel.Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return panel.Command{}, false
	}

	switch fields[0] {
	case "r":
		return panel.Command{Action: panel.ActionReset}, true
	case "u":
		return panel.Command{Action: panel.ActionToggleUnit}, true
	case "p":
		return panel.Command{Action: panel.ActionPause}, true
	case "h":
		return panel.Command{Action: panel.ActionHelp}, true
	case "d":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return panel.Command{}, false
		}
		return panel.Command{Action: panel.ActionDevMode, On: fields[1] == "on"}, true
	case "f":
		if len(fields) != 2 {
			return panel.Command{}, false
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return panel.Command{}, false
		}
		return panel.Command{Action: panel.ActionFontSize, Position: pos}, true
	}
	return panel.Command{}, false
}
