// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/config"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/storage"
	"github.com/AleutianAI/sleepdebt/pkg/logging"
	"github.com/AleutianAI/sleepdebt/pkg/ux"
)

// Exit codes for the CLI.
const (
	ExitSuccess = 0 // Session recorded, or cancelled by the user
	ExitFault   = 1 // Storage, config or unexpected failure
)

// app carries what PersistentPreRunE sets up for the subcommands.
type app struct {
	in      io.Reader
	console *ux.Console

	// flags
	configPath       string
	personalityLevel string

	cfg    config.SleepDebtConfig
	logger *logging.Logger
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:      in,
		console: ux.NewConsole(out, errOut),
	}
}

// newRootCmd builds the command tree.
func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sleepdebt",
		Short: "Track your cumulative sleep debt from the terminal",
		Long: `sleepdebt records how long you slept each night against an ideal
target derived from your age, carries the running debt (or surplus)
forward from night to night, and suggests how to catch up.

Run it once a day, after waking up.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runSession, // Defined in cmd_session.go
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.console.Out)
	rootCmd.SetErr(a.console.Err)

	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show the recorded nights and the running debt",
		Aliases: []string{"h", "log"},
		Args:    cobra.NoArgs,
		RunE:    a.runHistory, // Defined in cmd_history.go
	}
	historyCmd.Flags().IntP("limit", "n", 0, "Only show the most recent N nights (0 = all)")

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default ~/.sleepdebt/sleepdebt.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.personalityLevel, "personality", "",
		"Output style: full, standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(historyCmd)
	return rootCmd
}

// setup loads the config, picks the output personality and opens the
// logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	cfg, created, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	// Flag beats env beats config file.
	if a.personalityLevel != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(a.personalityLevel))
	} else {
		ux.InitPersonality(cfg.UI.Personality)
	}
	personality := ux.GetPersonality()
	personality.ShowTips = cfg.UI.Tips
	ux.SetPersonality(personality)

	if created {
		a.console.Muted(fmt.Sprintf("First run detected, created the config at %s", path))
	}

	a.logger = logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "sleepdebt",
		JSON:    cfg.Logging.JSON,
		Quiet:   cfg.Logging.Quiet,
	})
	a.logger.Debug("config loaded", "path", path, "backend", cfg.Storage.Backend)
	return nil
}

// close releases the logger. Safe to call when setup never ran.
func (a *app) close() {
	if a.logger != nil {
		a.logger.Close()
	}
}

// openStore opens the configured backend.
func (a *app) openStore() (storage.Store, error) {
	path := a.cfg.Storage.ResolvedPath()
	store, err := storage.Open(storage.Config{
		Backend: a.cfg.Storage.Backend,
		Path:    path,
		Logger:  a.logger.Slog(),
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("store opened", "backend", a.cfg.Storage.Backend, "path", path)
	return store, nil
}
