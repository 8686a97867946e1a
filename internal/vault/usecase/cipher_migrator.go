package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

// migrationStep upgrades data by at least one version.
type migrationStep func(
	ctx context.Context,
	data vaultDomain.CipherData,
	key *cryptoDomain.SymmetricCryptoKey,
) (vaultDomain.CipherData, error)

// cipherMigrator implements CipherMigrator.
type cipherMigrator struct {
	txManager      database.TxManager
	repo           CipherRepository
	encryptService cryptoService.EncryptService
	workers        int
	steps          map[int]migrationStep
	now            func() time.Time
}

// ToLatestVersion walks the step table until the data is latest.
func (m *cipherMigrator) ToLatestVersion(
	ctx context.Context,
	data vaultDomain.CipherData,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	current := data
	for {
		switch d := current.(type) {
		case nil:
			return nil, apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "no cipher data")
		case *vaultDomain.CipherDataLatest:
			return d, nil
		case *vaultDomain.CipherDataUnknownVersion:
			return nil, apperrors.Wrapf(vaultDomain.ErrUnsupportedVersion, "version %d", d.Version())
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step, ok := m.steps[current.Version()]
		if !ok {
			return nil, apperrors.Wrapf(vaultDomain.ErrUnsupportedVersion, "no migration from version %d", current.Version())
		}
		next, err := step(ctx, current, key)
		if err != nil {
			return nil, err
		}
		if next == nil || next.Version() <= current.Version() {
			return nil, apperrors.Wrapf(vaultDomain.ErrVersionRegression, "migration from version %d", current.Version())
		}
		current = next
	}
}

// migrateV1 folds the legacy login URI and adds URI checksums.
func (m *cipherMigrator) migrateV1(
	_ context.Context,
	data vaultDomain.CipherData,
	key *cryptoDomain.SymmetricCryptoKey,
) (vaultDomain.CipherData, error) {
	v1, ok := data.(*vaultDomain.CipherDataV1)
	if !ok {
		return nil, apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "expected version 1 data")
	}
	v2, err := v1.MigrateToV2(func(uri cryptoDomain.EncString) (cryptoDomain.EncString, error) {
		return encryptURIChecksum(m.encryptService, uri, key)
	})
	if err != nil {
		return nil, err
	}
	return v2, nil
}

// MigrateAll parses every record, then migrates them in parallel.
func (m *cipherMigrator) MigrateAll(
	ctx context.Context,
	session *cryptoDomain.Session,
	records []*vaultDomain.CipherRecord,
) ([]*vaultDomain.CipherDataLatest, error) {
	parsed := make([]vaultDomain.CipherData, len(records))
	for i, record := range records {
		data, err := parseRecord(i, record)
		if err != nil {
			return nil, err
		}
		parsed[i] = data
	}
	return m.migrate(ctx, session, records, parsed)
}

// MigrateStored migrates the stored ciphers of userID that are behind.
func (m *cipherMigrator) MigrateStored(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) (*vaultDomain.MigrationReport, error) {
	sessionUserID, err := session.UserID()
	if err != nil {
		return nil, err
	}
	if sessionUserID != userID {
		return nil, cryptoDomain.ErrSessionAccountMismatch
	}
	gen := session.Generation()

	records, err := m.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &vaultDomain.MigrationReport{Total: len(records)}
	var (
		pending     []*vaultDomain.CipherRecord
		pendingData []vaultDomain.CipherData
		indexes     []int
	)
	for i, record := range records {
		data, err := parseRecord(i, record)
		if err != nil {
			return nil, err
		}
		switch data.(type) {
		case *vaultDomain.CipherDataUnknownVersion:
			return nil, &vaultDomain.RecordError{
				Index: i,
				ID:    record.ID,
				Err:   apperrors.Wrapf(vaultDomain.ErrUnsupportedVersion, "version %d", data.Version()),
			}
		case *vaultDomain.CipherDataLatest:
			report.UpToDate++
			continue
		}
		pending = append(pending, record)
		pendingData = append(pendingData, data)
		indexes = append(indexes, i)
	}
	if len(pending) == 0 {
		return report, nil
	}

	migrated, err := m.migrate(ctx, session, pending, pendingData)
	if err != nil {
		var recordErr *vaultDomain.RecordError
		if apperrors.As(err, &recordErr) {
			recordErr.Index = indexes[recordErr.Index]
		}
		return nil, err
	}

	now := m.now()
	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Results computed under keys that were locked away are discarded.
		if session.Generation() != gen {
			return cryptoDomain.ErrSessionLocked
		}
		for i, data := range migrated {
			raw, err := vaultDomain.MarshalCipherData(data)
			if err != nil {
				return &vaultDomain.RecordError{Index: indexes[i], ID: pending[i].ID, Err: err}
			}
			updated := *pending[i]
			updated.Version = vaultDomain.LatestVersion
			updated.Data = raw
			updated.UpdatedAt = now
			if err := m.repo.Update(ctx, &updated); err != nil {
				return &vaultDomain.RecordError{Index: indexes[i], ID: pending[i].ID, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Migrated = len(migrated)
	return report, nil
}

// migrate runs ToLatestVersion over parsed with at most m.workers in flight.
func (m *cipherMigrator) migrate(
	ctx context.Context,
	session *cryptoDomain.Session,
	records []*vaultDomain.CipherRecord,
	parsed []vaultDomain.CipherData,
) ([]*vaultDomain.CipherDataLatest, error) {
	keys, err := loadRecordKeys(session, records)
	if err != nil {
		return nil, err
	}
	defer keys.zero()

	results := make([]*vaultDomain.CipherDataLatest, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, record := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			latest, err := m.ToLatestVersion(gctx, parsed[i], keys.forRecord(record))
			if err != nil {
				return &vaultDomain.RecordError{Index: i, ID: record.ID, Err: err}
			}
			results[i] = latest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early on a cancelled parent context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseRecord(index int, record *vaultDomain.CipherRecord) (vaultDomain.CipherData, error) {
	if record == nil {
		return nil, &vaultDomain.RecordError{
			Index: index,
			Err:   apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "nil record"),
		}
	}
	data, err := record.Parse()
	if err != nil {
		return nil, &vaultDomain.RecordError{Index: index, ID: record.ID, Err: err}
	}
	return data, nil
}

// recordKeys holds the session keys a batch needs, cloned once up front.
type recordKeys struct {
	user *cryptoDomain.SymmetricCryptoKey
	orgs map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey
}

func loadRecordKeys(session *cryptoDomain.Session, records []*vaultDomain.CipherRecord) (*recordKeys, error) {
	userKey, err := session.UserKey()
	if err != nil {
		return nil, err
	}
	keys := &recordKeys{user: userKey, orgs: make(map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey)}

	for i, record := range records {
		if record.OrganizationID == nil {
			continue
		}
		orgID := *record.OrganizationID
		if _, ok := keys.orgs[orgID]; ok {
			continue
		}
		orgKey, err := session.OrgKey(orgID)
		if err != nil {
			keys.zero()
			return nil, &vaultDomain.RecordError{Index: i, ID: record.ID, Err: err}
		}
		keys.orgs[orgID] = orgKey
	}
	return keys, nil
}

func (k *recordKeys) forRecord(record *vaultDomain.CipherRecord) *cryptoDomain.SymmetricCryptoKey {
	if record.OrganizationID != nil {
		return k.orgs[*record.OrganizationID]
	}
	return k.user
}

func (k *recordKeys) zero() {
	k.user.Zero()
	for _, key := range k.orgs {
		key.Zero()
	}
}

// NewCipherMigrator creates a new CipherMigrator running at most workers
// record migrations at once.
func NewCipherMigrator(
	txManager database.TxManager,
	repo CipherRepository,
	encryptService cryptoService.EncryptService,
	workers int,
) CipherMigrator {
	if workers < 1 {
		workers = 1
	}
	m := &cipherMigrator{
		txManager:      txManager,
		repo:           repo,
		encryptService: encryptService,
		workers:        workers,
		now:            func() time.Time { return time.Now().UTC() },
	}
	m.steps = map[int]migrationStep{
		1: m.migrateV1,
	}
	return m
}
