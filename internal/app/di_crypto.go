package app

import (
	"context"
	"fmt"

	cryptoRepository "github.com/allisson/vaultkeys/internal/crypto/repository"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
)

// KeyGenerator returns the key generation service.
func (c *Container) KeyGenerator() cryptoService.KeyGenerator {
	c.keyGeneratorInit.Do(func() {
		c.keyGenerator = cryptoService.NewKeyGenerator()
	})
	return c.keyGenerator
}

// RSAService returns the RSA-OAEP service.
func (c *Container) RSAService() cryptoService.AsymmetricCipher {
	c.rsaServiceInit.Do(func() {
		c.rsaService = cryptoService.NewRSAService()
	})
	return c.rsaService
}

// EncryptService returns the EncString encryption service.
func (c *Container) EncryptService() cryptoService.EncryptService {
	c.encryptServiceInit.Do(func() {
		c.encryptService = cryptoService.NewEncryptService(cryptoService.NewCipherManager(), c.RSAService())
	})
	return c.encryptService
}

// PasswordVerifier returns the local password verifier service.
func (c *Container) PasswordVerifier() cryptoService.PasswordVerifier {
	c.passwordVerifierInit.Do(func() {
		c.passwordVerifier = cryptoService.NewPasswordVerifier()
	})
	return c.passwordVerifier
}

// KMSService returns the KMS service used to seal device keys.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// DeviceKeeper returns the KMS keeper for KMS_KEY_URI, or nil when no URI is
// configured.
func (c *Container) DeviceKeeper(ctx context.Context) (cryptoService.KMSKeeper, error) {
	err := c.lazy(&c.deviceKeeperInit, "deviceKeeper", func() (err error) {
		if c.config.KMSKeyURI == "" {
			return nil
		}
		c.deviceKeeper, err = c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.deviceKeeper, nil
}

// AccountKeysRepository returns the account keys repository for the configured driver.
func (c *Container) AccountKeysRepository() (cryptoUseCase.AccountKeysRepository, error) {
	err := c.lazy(&c.accountKeysRepoInit, "accountKeysRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for account keys repository: %w", err)
		}

		switch c.config.DBDriver {
		case "postgres":
			c.accountKeysRepo = cryptoRepository.NewPostgreSQLAccountKeysRepository(db)
		case "mysql":
			c.accountKeysRepo = cryptoRepository.NewMySQLAccountKeysRepository(db)
		default:
			return c.unsupportedDriver()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.accountKeysRepo, nil
}

// KeyHierarchyUseCase returns the key hierarchy use case.
func (c *Container) KeyHierarchyUseCase(ctx context.Context) (cryptoUseCase.KeyHierarchyUseCase, error) {
	err := c.lazy(&c.keyHierarchyInit, "keyHierarchy", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for key hierarchy use case: %w", err)
		}
		repo, err := c.AccountKeysRepository()
		if err != nil {
			return fmt.Errorf("failed to get account keys repository for key hierarchy use case: %w", err)
		}
		keeper, err := c.DeviceKeeper(ctx)
		if err != nil {
			return fmt.Errorf("failed to open device keeper for key hierarchy use case: %w", err)
		}

		var useCase cryptoUseCase.KeyHierarchyUseCase = cryptoUseCase.NewKeyHierarchyUseCase(
			txManager,
			repo,
			c.KeyGenerator(),
			c.EncryptService(),
			c.RSAService(),
			c.PasswordVerifier(),
			keeper,
		)

		// Wrap with metrics if enabled
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for key hierarchy use case: %w", err)
			}
			useCase = cryptoUseCase.NewKeyHierarchyUseCaseWithMetrics(useCase, businessMetrics)
		}
		c.keyHierarchy = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.keyHierarchy, nil
}
