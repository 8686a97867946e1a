package usecase

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
)

// portingUseCase implements PortingUseCase.
type portingUseCase struct {
	encryptService cryptoService.EncryptService
	workers        int
}

// run calls fn for every project and then every secret on a bounded errgroup.
// A failure is wrapped in a RecordError of the given kind.
func (p *portingUseCase) run(
	ctx context.Context,
	projects, secrets int,
	projectID, secretID func(i int) uuid.UUID,
	project, secret func(i int) error,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	submit := func(kind string, n int, id func(int) uuid.UUID, fn func(int) error) {
		for i := 0; i < n; i++ {
			if gctx.Err() != nil {
				return
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return &portingDomain.RecordError{Kind: kind, Index: i, ID: id(i), Err: err}
				}
				return nil
			})
		}
	}
	submit(portingDomain.KindProject, projects, projectID, project)
	submit(portingDomain.KindSecret, secrets, secretID, secret)

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// EncryptImport encrypts project names and secret key, value and note.
func (p *portingUseCase) EncryptImport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	export *portingDomain.Export,
) (*portingDomain.ImportRequest, error) {
	if export == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "export is required")
	}
	key, err := session.OrgKey(orgID)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	req := &portingDomain.ImportRequest{
		Projects: make([]portingDomain.ImportedProject, len(export.Projects)),
		Secrets:  make([]portingDomain.ImportedSecret, len(export.Secrets)),
	}

	err = p.run(ctx, len(export.Projects), len(export.Secrets),
		func(i int) uuid.UUID { return export.Projects[i].ID },
		func(i int) uuid.UUID { return export.Secrets[i].ID },
		func(i int) error {
			project := &export.Projects[i]
			if err := project.Validate(); err != nil {
				return err
			}
			name, err := p.encryptService.EncryptString(project.Name, key)
			if err != nil {
				return err
			}
			req.Projects[i] = portingDomain.ImportedProject{ID: project.ID, Name: name}
			return nil
		},
		func(i int) error {
			secret := &export.Secrets[i]
			if err := secret.Validate(); err != nil {
				return err
			}
			out := portingDomain.ImportedSecret{
				ID:         secret.ID,
				ProjectIDs: append([]uuid.UUID{}, secret.ProjectIDs...),
			}
			for _, f := range []struct {
				dst       *cryptoDomain.EncString
				plaintext string
			}{
				{&out.Key, secret.Key},
				{&out.Value, secret.Value},
				{&out.Note, secret.Note},
			} {
				enc, err := p.encryptService.EncryptString(f.plaintext, key)
				if err != nil {
					return err
				}
				*f.dst = enc
			}
			req.Secrets[i] = out
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DecryptExport decrypts project names and secret key, value and note.
func (p *portingUseCase) DecryptExport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	response *portingDomain.ExportResponse,
) (*portingDomain.Export, error) {
	if response == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "export response is required")
	}
	key, err := session.OrgKey(orgID)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	export := &portingDomain.Export{
		Projects: make([]portingDomain.ExportProject, len(response.Projects)),
		Secrets:  make([]portingDomain.ExportSecret, len(response.Secrets)),
	}

	err = p.run(ctx, len(response.Projects), len(response.Secrets),
		func(i int) uuid.UUID { return response.Projects[i].ID },
		func(i int) uuid.UUID { return response.Secrets[i].ID },
		func(i int) error {
			project := &response.Projects[i]
			name, err := p.encryptService.DecryptString(project.Name, key)
			if err != nil {
				return err
			}
			export.Projects[i] = portingDomain.ExportProject{ID: project.ID, Name: name}
			return nil
		},
		func(i int) error {
			secret := &response.Secrets[i]
			out := portingDomain.ExportSecret{
				ID:             secret.ID,
				OrganizationID: secret.OrganizationID,
				ProjectIDs:     append([]uuid.UUID{}, secret.ProjectIDs...),
			}
			for _, f := range []struct {
				dst *string
				enc cryptoDomain.EncString
			}{
				{&out.Key, secret.Key},
				{&out.Value, secret.Value},
				{&out.Note, secret.Note},
			} {
				plaintext, err := p.encryptService.DecryptString(f.enc, key)
				if err != nil {
					return err
				}
				*f.dst = plaintext
			}
			export.Secrets[i] = out
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return export, nil
}

// NewPortingUseCase creates a new PortingUseCase running at most workers
// records at a time.
func NewPortingUseCase(encryptService cryptoService.EncryptService, workers int) PortingUseCase {
	if workers < 1 {
		workers = 1
	}
	return &portingUseCase{encryptService: encryptService, workers: workers}
}
