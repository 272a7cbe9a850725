package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"jobshield-engine/internal/analyze"
	"jobshield-engine/internal/config"
	"jobshield-engine/internal/secrets"
	"jobshield-engine/internal/store"
)

// RunOnce scans unseen mailbox messages, analyzes each one and persists
// the results. Per-message failures are logged and skipped; only setup
// failures (config, auth, connection) abort the run. Successfully
// handled messages are marked \Seen so they are not reprocessed.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, onAnalyzed func(id int64)) (analyzed int, err error) {
	if !cfg.Intake.Enabled {
		return 0, nil
	}
	if db == nil {
		return 0, errors.New("db is nil")
	}
	if cfg.Intake.IMAPHost == "" || cfg.Intake.Username == "" {
		return 0, errors.New("intake enabled but missing imap_host/username")
	}

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
	if err != nil {
		return 0, err
	}

	addr := cfg.Intake.IMAPHost
	if !strings.Contains(addr, ":") {
		port := cfg.Intake.IMAPPort
		if port == 0 {
			port = 993
		}
		addr = fmt.Sprintf("%s:%d", addr, port)
	}

	mailbox := cfg.Intake.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := dialAndLogin(runCtx, addr, cfg.Intake.Username, password, cfg.Intake.IMAPHost)
	if err != nil {
		return 0, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return 0, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(runCtx, c, cfg.Intake.MaxMessages)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	eng := analyze.New(cfg.Rules)
	processed := make([]imap.UID, 0, len(msgs))

	for _, m := range msgs {
		posting, perr := PostingFromMessage(m)
		if perr != nil {
			log.Printf("[intake] uid=%d skip: %v", m.UID, perr)
			processed = append(processed, m.UID)
			continue
		}

		res, aerr := eng.Analyze(posting)
		if aerr != nil {
			log.Printf("[intake] uid=%d analyze: %v", m.UID, aerr)
			processed = append(processed, m.UID)
			continue
		}

		id, serr := store.InsertAnalysis(runCtx, db, posting, res)
		if serr != nil {
			// leave unseen so the next run retries it
			log.Printf("[intake] uid=%d store: %v", m.UID, serr)
			continue
		}

		log.Printf("[intake] uid=%d analyzed company=%q score=%d tier=%s id=%d",
			m.UID, posting.CompanyName, res.RiskScore, res.Classification, id)
		processed = append(processed, m.UID)
		analyzed++
		if onAnalyzed != nil {
			onAnalyzed(id)
		}
	}

	if err := markSeen(c, processed); err != nil {
		log.Printf("[intake] mark seen: %v", err)
	}
	return analyzed, nil
}
