package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/metrics"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
)

// portingUseCaseWithMetrics decorates PortingUseCase with metrics instrumentation.
type portingUseCaseWithMetrics struct {
	next    PortingUseCase
	metrics metrics.BusinessMetrics
}

// NewPortingUseCaseWithMetrics wraps a PortingUseCase with metrics recording.
func NewPortingUseCaseWithMetrics(useCase PortingUseCase, m metrics.BusinessMetrics) PortingUseCase {
	return &portingUseCaseWithMetrics{next: useCase, metrics: m}
}

func (p *portingUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, p.metrics, metrics.DomainPorting, operation, start, err)
}

// EncryptImport records metrics for import encryption.
func (p *portingUseCaseWithMetrics) EncryptImport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	export *portingDomain.Export,
) (*portingDomain.ImportRequest, error) {
	start := time.Now()
	req, err := p.next.EncryptImport(ctx, session, orgID, export)
	p.record(ctx, "sm_encrypt_import", start, err)
	return req, err
}

// DecryptExport records metrics for export decryption.
func (p *portingUseCaseWithMetrics) DecryptExport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	response *portingDomain.ExportResponse,
) (*portingDomain.Export, error) {
	start := time.Now()
	export, err := p.next.DecryptExport(ctx, session, orgID, response)
	p.record(ctx, "sm_decrypt_export", start, err)
	return export, err
}
