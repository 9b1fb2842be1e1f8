package service

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vargak/pennyflow-backend/internal/domain/categorizer"
	"github.com/vargak/pennyflow-backend/internal/domain/fuzzy"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/config"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

// ProcessingService turns uploaded files into staged transactions.
// Processing runs in a background goroutine; the session row in storage
// is the job record, so progress survives restarts and can be polled.
type ProcessingService struct {
	storage storage.Repository
	cfg     *config.Config
	logger  *slog.Logger

	// One active session per raw file at a time
	activeFiles map[string]bool
	activeMutex sync.Mutex
}

// NewProcessingService creates a processing service
func NewProcessingService(store storage.Repository, cfg *config.Config, logger *slog.Logger) *ProcessingService {
	return &ProcessingService{
		storage:     store,
		cfg:         cfg,
		logger:      logger,
		activeFiles: make(map[string]bool),
	}
}

// ProcessingOptions configures one run over a raw file. Every field is
// optional: without datasets rows get no suggestions, without a column
// mapping the file format is auto-detected.
type ProcessingOptions struct {
	TrainingDatasetIDs []string
	ColumnMapping      map[string]string
	ProcessingRules    map[string]string
}

// Processing rules honored by runSession. Unknown rules are persisted on
// the session but otherwise ignored.
const (
	RuleInvertAmounts   = "invert_amounts"
	RuleDefaultCurrency = "default_currency"
)

// StartProcessing creates a queued session and kicks off background
// processing. All referenced training datasets must belong to the user
// and an explicit column mapping must bind date and amount.
func (s *ProcessingService) StartProcessing(userID, fileID string, opts ProcessingOptions) (*storage.ProcessingSession, error) {
	file, err := s.storage.GetRawFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	for _, datasetID := range opts.TrainingDatasetIDs {
		if _, err := s.storage.GetTrainingDataset(userID, datasetID); err != nil {
			return nil, err
		}
	}

	if len(opts.ColumnMapping) > 0 {
		if err := ingest.ValidateMapping(opts.ColumnMapping); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
		}
	}

	if !s.tryLockFile(fileID) {
		return nil, ErrSessionActive
	}

	now := time.Now().UTC()
	session := &storage.ProcessingSession{
		ID:                 uuid.NewString(),
		UserID:             userID,
		RawFileID:          fileID,
		TrainingDatasetIDs: opts.TrainingDatasetIDs,
		ColumnMapping:      opts.ColumnMapping,
		ProcessingRules:    opts.ProcessingRules,
		Status:             storage.SessionStatusQueued,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.storage.CreateSession(session); err != nil {
		s.unlockFile(fileID)
		return nil, err
	}

	go s.runSession(session, file)

	s.logger.Info("processing session started",
		"session_id", session.ID,
		"user_id", userID,
		"file_id", fileID,
		"dataset_count", len(opts.TrainingDatasetIDs),
		"explicit_mapping", len(opts.ColumnMapping) > 0,
	)

	return session, nil
}

// GetSession returns a session for status polling
func (s *ProcessingService) GetSession(userID, sessionID string) (*storage.ProcessingSession, error) {
	return s.storage.GetSession(userID, sessionID)
}

// ListSessions returns the user's sessions, newest first
func (s *ProcessingService) ListSessions(userID string, limit int) ([]*storage.ProcessingSession, error) {
	return s.storage.ListSessions(userID, limit)
}

// runSession does the actual parse/categorize work
func (s *ProcessingService) runSession(session *storage.ProcessingSession, file *storage.RawFile) {
	defer s.unlockFile(file.ID)

	fail := func(err error) {
		s.logger.Error("processing session failed",
			"session_id", session.ID,
			"error", err,
		)
		_ = s.storage.UpdateSessionStatus(session.ID, storage.SessionStatusFailed, 0, err.Error())
	}

	parsed, err := ingest.Parse(file.Content, file.Filename)
	if err != nil {
		fail(fmt.Errorf("could not parse file: %w", err))
		return
	}

	// An explicit column mapping beats header detection
	mapRow := func(row ingest.Row) (*ingest.Mapped, error) {
		return ingest.MapRowWithMapping(row, session.ColumnMapping)
	}
	if len(session.ColumnMapping) == 0 {
		format := ingest.DetectFormat(parsed.Columns)
		mapRow = func(row ingest.Row) (*ingest.Mapped, error) {
			return ingest.MapRow(row, format)
		}
	}

	if err := s.storage.UpdateSessionStatus(session.ID, storage.SessionStatusProcessing, len(parsed.Rows), ""); err != nil {
		fail(err)
		return
	}

	suggester, err := s.buildCategorizer(session)
	if err != nil {
		fail(err)
		return
	}

	confirmed, err := s.loadConfirmedKeys(session.UserID)
	if err != nil {
		fail(err)
		return
	}

	var (
		batch          []*storage.StagedTransaction
		processed      int
		suggested      int
		highConfidence int
		skipped        int
	)

	flush := func() error {
		if err := s.storage.SaveStagedTransactions(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return s.storage.UpdateSessionProgress(session.ID, processed, suggested, highConfidence)
	}

	for i, row := range parsed.Rows {
		mapped, err := mapRow(row)
		if err != nil {
			// Unparseable rows are skipped, not fatal; statements often
			// carry summary or balance lines
			skipped++
			continue
		}

		applyRules(mapped, session.ProcessingRules)

		if confirmed[transactionKey(mapped.Date, mapped.Amount, mapped.Beneficiary)] {
			// Row already exists as a confirmed transaction
			skipped++
			continue
		}

		staged := &storage.StagedTransaction{
			ID:          uuid.NewString(),
			SessionID:   session.ID,
			UserID:      session.UserID,
			RowIndex:    i,
			Date:        mapped.Date,
			Amount:      mapped.Amount,
			Currency:    mapped.Currency,
			Beneficiary: mapped.Beneficiary,
			Description: mapped.Description,
			Status:      storage.StagedStatusPending,
			CreatedAt:   time.Now().UTC(),
		}

		if suggester != nil {
			if suggestion := suggester.Suggest(mapped.Beneficiary); suggestion != nil {
				staged.SuggestedCategory = suggestion.Category
				staged.Confidence = suggestion.Confidence
				staged.ConfidenceLevel = suggestion.Level
				suggested++
				if suggestion.Level == categorizer.LevelVeryHigh || suggestion.Level == categorizer.LevelHigh {
					highConfidence++
				}
			}
		}

		batch = append(batch, staged)
		processed++

		if processed%s.cfg.Upload.ProgressEvery == 0 {
			if err := flush(); err != nil {
				fail(err)
				return
			}
		}
	}

	if err := flush(); err != nil {
		fail(err)
		return
	}

	if err := s.storage.UpdateSessionStatus(session.ID, storage.SessionStatusProcessed, len(parsed.Rows), ""); err != nil {
		fail(err)
		return
	}

	s.logger.Info("processing session completed",
		"session_id", session.ID,
		"rows_processed", processed,
		"rows_skipped", skipped,
		"rows_with_suggestions", suggested,
		"high_confidence_suggestions", highConfidence,
	)
}

// applyRules adjusts a mapped row per the session's processing rules
func applyRules(mapped *ingest.Mapped, rules map[string]string) {
	if rules[RuleInvertAmounts] == "true" {
		mapped.Amount = mapped.Amount.Neg()
	}
	if currency := rules[RuleDefaultCurrency]; currency != "" && mapped.Currency == "" {
		mapped.Currency = strings.ToUpper(currency)
	}
}

// buildCategorizer merges the training patterns of every dataset the
// session references, if any.
func (s *ProcessingService) buildCategorizer(session *storage.ProcessingSession) (*categorizer.Categorizer, error) {
	if len(session.TrainingDatasetIDs) == 0 {
		return nil, nil
	}

	var stored []*storage.TrainingPattern
	for _, datasetID := range session.TrainingDatasetIDs {
		patterns, err := s.storage.GetTrainingPatterns(datasetID)
		if err != nil {
			return nil, fmt.Errorf("could not load training patterns: %w", err)
		}
		stored = append(stored, patterns...)
	}

	return categorizer.New(toDomainPatterns(stored), s.cfg.Categorizer.FuzzyFloor), nil
}

// loadConfirmedKeys indexes the user's confirmed transactions so rows
// that were already approved in an earlier upload are not staged again
func (s *ProcessingService) loadConfirmedKeys(userID string) (map[string]bool, error) {
	txs, _, err := s.storage.ListTransactions(userID, storage.TransactionFilters{Limit: 1 << 30})
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool, len(txs))
	for _, tx := range txs {
		keys[transactionKey(tx.Date, tx.Amount, tx.Beneficiary)] = true
	}
	return keys, nil
}

func transactionKey(date time.Time, amount decimal.Decimal, beneficiary string) string {
	return date.Format("2006-01-02") + "|" + amount.String() + "|" + fuzzy.Normalize(beneficiary)
}

func (s *ProcessingService) tryLockFile(fileID string) bool {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	if s.activeFiles[fileID] {
		return false
	}
	s.activeFiles[fileID] = true
	return true
}

func (s *ProcessingService) unlockFile(fileID string) {
	s.activeMutex.Lock()
	defer s.activeMutex.Unlock()
	delete(s.activeFiles, fileID)
}
