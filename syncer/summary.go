package syncer

import "log"

// LogSummary prints the end-of-run report through the standard
// logger, which the command layer tees to the run log file.
func LogSummary(summary *Summary, opts Options, logPath string) {
	if summary == nil {
		return
	}

	log.Printf("INFO: run_summary command=%s playlists=%d downloaded=%d skipped=%d failed=%d",
		opts.Command, len(summary.Playlists),
		summary.Totals.Downloaded, summary.Totals.Skipped, summary.Totals.Failed)

	if summary.Discovered > 0 {
		log.Printf("INFO: run_summary_discovered new_playlists=%d", summary.Discovered)
	}
	if opts.DryRun {
		log.Printf("INFO: run_summary_dry_run no files were written")
	}
	if summary.CapReached {
		log.Printf("INFO: run_summary_cap_reached max_downloads=%d remaining tracks deferred to the next run", opts.MaxDownloads)
	}

	for _, outcome := range summary.Playlists {
		if outcome.Status != OutcomeFailed {
			continue
		}
		log.Printf("WARN: run_summary_playlist_failed folder=%s reason=%q retry=\"--playlist %s\"",
			outcome.Folder, outcome.Reason, outcome.Folder)
	}

	if logPath != "" {
		log.Printf("INFO: run_summary_log path=%s", logPath)
	}
}
