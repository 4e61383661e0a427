package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memclean/internal/config"
	"memclean/internal/connectors"
	gmailconnector "memclean/internal/connectors/gmail"
	imapconnector "memclean/internal/connectors/imap"
	"memclean/internal/pipeline"
	"memclean/internal/storage"
)

// Service polls a mailbox for emailed membership exports and runs each new
// one through the cleaner. Cleaned CSVs land in the output directory as part
// of processing; there is no separate export pass.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedFiles, cleanedTables, err := processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d processed=%d tables=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, processedFiles, cleanedTables)
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
