package app

import (
	"fmt"

	portingUseCase "github.com/allisson/vaultkeys/internal/porting/usecase"
	vaultRepository "github.com/allisson/vaultkeys/internal/vault/repository"
	vaultUseCase "github.com/allisson/vaultkeys/internal/vault/usecase"
)

// CipherRepository returns the cipher repository for the configured driver.
func (c *Container) CipherRepository() (vaultUseCase.CipherRepository, error) {
	err := c.lazy(&c.cipherRepoInit, "cipherRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for cipher repository: %w", err)
		}

		switch c.config.DBDriver {
		case "postgres":
			c.cipherRepo = vaultRepository.NewPostgreSQLCipherRepository(db)
		case "mysql":
			c.cipherRepo = vaultRepository.NewMySQLCipherRepository(db)
		default:
			return c.unsupportedDriver()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.cipherRepo, nil
}

// CipherMigrator returns the cipher data migrator.
func (c *Container) CipherMigrator() (vaultUseCase.CipherMigrator, error) {
	err := c.lazy(&c.cipherMigratorInit, "cipherMigrator", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for cipher migrator: %w", err)
		}
		repo, err := c.CipherRepository()
		if err != nil {
			return fmt.Errorf("failed to get cipher repository for cipher migrator: %w", err)
		}

		migrator := vaultUseCase.NewCipherMigrator(txManager, repo, c.EncryptService(), c.config.MigrationWorkers)

		// Wrap with metrics if enabled
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for cipher migrator: %w", err)
			}
			migrator = vaultUseCase.NewCipherMigratorWithMetrics(migrator, businessMetrics)
		}
		c.cipherMigrator = migrator
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.cipherMigrator, nil
}

// CipherEncryptor returns the cipher view encryptor.
func (c *Container) CipherEncryptor() (vaultUseCase.CipherEncryptor, error) {
	err := c.lazy(&c.cipherEncryptorInit, "cipherEncryptor", func() error {
		encryptor := vaultUseCase.NewCipherEncryptor(c.EncryptService())

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for cipher encryptor: %w", err)
			}
			encryptor = vaultUseCase.NewCipherEncryptorWithMetrics(encryptor, businessMetrics)
		}
		c.cipherEncryptor = encryptor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.cipherEncryptor, nil
}

// PortingUseCase returns the Secrets Manager import and export use case.
func (c *Container) PortingUseCase() (portingUseCase.PortingUseCase, error) {
	err := c.lazy(&c.portingUseCaseInit, "portingUseCase", func() error {
		useCase := portingUseCase.NewPortingUseCase(c.EncryptService(), c.config.MigrationWorkers)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for porting use case: %w", err)
			}
			useCase = portingUseCase.NewPortingUseCaseWithMetrics(useCase, businessMetrics)
		}
		c.portingUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.portingUseCase, nil
}
