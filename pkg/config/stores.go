package config

import (
	"fmt"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/directory/badgerdir"
	"github.com/musterio/muster/pkg/directory/memdir"
	"github.com/musterio/muster/pkg/directory/sqldir"
	"github.com/musterio/muster/pkg/journal"
	journalbadger "github.com/musterio/muster/pkg/journal/badger"
)

// OpenDirectory opens the configured account directory backend.
//
// The machine name is the local domain records are qualified with; callers
// resolve it once (cfg.Machine.ResolveName) and pass it here so every
// backend qualifies accounts the same way.
//
// Parameters:
//   - cfg: Directory section of the configuration
//   - machine: Machine (local domain) name
//
// Returns:
//   - directory.Store: Opened store; caller owns Close
//   - error: If the backend is unknown or opening fails
func OpenDirectory(cfg DirectoryConfig, machine string) (directory.Store, error) {
	logger.Debug("opening directory store", "backend", cfg.Backend, "machine", machine)

	switch cfg.Backend {
	case BackendMemory:
		return memdir.New(machine), nil
	case BackendBadger:
		store, err := badgerdir.Open(cfg.Badger.Path, machine)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger directory: %w", err)
		}
		return store, nil
	case BackendSQL:
		store, err := sqldir.New(&cfg.SQL, machine)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql directory: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown directory backend: %q", cfg.Backend)
	}
}

// OpenJournal opens the reconciliation journal.
//
// With no path configured the journal lives in process memory; entries are
// lost on restart but recording and listing behave identically, so callers
// never special-case a disabled journal.
func OpenJournal(cfg JournalConfig) (journal.Log, error) {
	if cfg.Path == "" {
		logger.Debug("journal is in-memory; set journal.path to persist it")
		return journal.NewMemory(), nil
	}

	log, err := journalbadger.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return log, nil
}
