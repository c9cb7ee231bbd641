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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/prompt"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/tracker"
)

// runSession records tonight's sleep.
//
// A user cancellation is a normal ending: it prints the farewell and
// returns nil so the process exits 0. Anything else is returned and
// becomes exit code 1.
func (a *app) runSession(cmd *cobra.Command, args []string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	t, err := tracker.New(tracker.Config{
		Store:    store,
		Prompter: prompt.NewPrompter(a.in, a.console.Out),
		Reporter: a.console,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	if _, err := t.Run(cmd.Context()); err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			a.console.Farewell()
			return nil
		}
		return fmt.Errorf("session failed: %w", err)
	}
	return nil
}
