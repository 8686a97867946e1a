package app

import (
	"context"
	"fmt"

	authRequestClient "github.com/allisson/vaultkeys/internal/authrequest/client"
	authRequestHTTP "github.com/allisson/vaultkeys/internal/authrequest/http"
	authRequestRepository "github.com/allisson/vaultkeys/internal/authrequest/repository"
	authRequestUseCase "github.com/allisson/vaultkeys/internal/authrequest/usecase"
)

// AuthRequestRepository returns the auth request repository for the configured driver.
func (c *Container) AuthRequestRepository() (authRequestUseCase.AuthRequestRepository, error) {
	err := c.lazy(&c.authRequestRepoInit, "authRequestRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for auth request repository: %w", err)
		}

		switch c.config.DBDriver {
		case "postgres":
			c.authRequestRepo = authRequestRepository.NewPostgreSQLAuthRequestRepository(db)
		case "mysql":
			c.authRequestRepo = authRequestRepository.NewMySQLAuthRequestRepository(db)
		default:
			return c.unsupportedDriver()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.authRequestRepo, nil
}

// RelayUseCase returns the relay server use case.
func (c *Container) RelayUseCase() (authRequestUseCase.RelayUseCase, error) {
	err := c.lazy(&c.relayUseCaseInit, "relayUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for relay use case: %w", err)
		}
		repo, err := c.AuthRequestRepository()
		if err != nil {
			return fmt.Errorf("failed to get auth request repository for relay use case: %w", err)
		}

		useCase := authRequestUseCase.NewRelayUseCase(txManager, repo, c.config.AuthRequestTTL)

		// Wrap with metrics if enabled
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for relay use case: %w", err)
			}
			useCase = authRequestUseCase.NewRelayUseCaseWithMetrics(useCase, businessMetrics)
		}
		c.relayUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.relayUseCase, nil
}

// AuthRequestHandler returns the relay HTTP handler.
func (c *Container) AuthRequestHandler() (*authRequestHTTP.AuthRequestHandler, error) {
	err := c.lazy(&c.authRequestHandlerInit, "authRequestHandler", func() error {
		useCase, err := c.RelayUseCase()
		if err != nil {
			return fmt.Errorf("failed to get relay use case for auth request handler: %w", err)
		}
		c.authRequestHandler = authRequestHTTP.NewAuthRequestHandler(useCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.authRequestHandler, nil
}

// RelayClient returns the HTTP client for the relay at RELAY_URL.
func (c *Container) RelayClient() *authRequestClient.RelayClient {
	c.relayClientInit.Do(func() {
		c.relayClient = authRequestClient.NewRelayClient(authRequestClient.Config{
			BaseURL:        c.config.RelayURL,
			Timeout:        c.config.RelayTimeout,
			ResponderToken: c.config.RelayResponderToken,
		})
	})
	return c.relayClient
}

// AuthRequestService returns the client side of the auth request exchange.
func (c *Container) AuthRequestService(ctx context.Context) (authRequestUseCase.AuthRequestService, error) {
	err := c.lazy(&c.authRequestServiceInit, "authRequestService", func() error {
		keyHierarchy, err := c.KeyHierarchyUseCase(ctx)
		if err != nil {
			return fmt.Errorf("failed to get key hierarchy for auth request service: %w", err)
		}
		accountKeys, err := c.AccountKeysRepository()
		if err != nil {
			return fmt.Errorf("failed to get account keys repository for auth request service: %w", err)
		}

		c.authRequestService = authRequestUseCase.NewAuthRequestService(
			keyHierarchy,
			accountKeys,
			c.EncryptService(),
			c.RSAService(),
			c.RelayClient(),
			c.config.DeviceIdentifier,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.authRequestService, nil
}
