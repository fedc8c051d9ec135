package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/secmentor/internal/api"
	"github.com/abhisek/secmentor/internal/app"
)

// runApp opens the store and the log, builds the API client and launches
// the TUI.
func runApp(cmd *cobra.Command) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	logPath := cfg.Log.Path
	if logPath == "" {
		if logPath, err = app.DefaultLogPath(); err != nil {
			return err
		}
	}
	level, _ := cfg.LogLevel()
	logger, logFile, err := app.OpenLogger(logPath, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
	} else {
		defer logFile.Close()
	}

	client, err := api.New(cfg.Server.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}
	if logger != nil {
		logger.Info("starting", "server", client.BaseURL(), "version", resolvedVersion())
	}

	return app.Run(app.Options{
		Client:     client,
		Prefs:      st.PrefRepo(),
		Journal:    st.JournalRepo(),
		Thresholds: cfg.ThresholdTable(),
		XPDuration: cfg.Notify.XPDuration,
		Logger:     logger,

		MarkdownStyle: cfg.UI.MarkdownStyle,
	})
}
