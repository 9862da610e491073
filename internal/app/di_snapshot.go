package app

import (
	"fmt"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	snapshotHTTP "github.com/hash066/biavault/internal/snapshot/http"
	snapshotRepository "github.com/hash066/biavault/internal/snapshot/repository"
	snapshotUsecase "github.com/hash066/biavault/internal/snapshot/usecase"
)

// SnapshotRepository returns the snapshot repository based on the database driver.
func (c *Container) SnapshotRepository() (snapshotUsecase.SnapshotRepository, error) {
	var err error
	c.snapshotRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for snapshot repository: %w", dbErr)
			c.initErrors["snapshotRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.snapshotRepo = snapshotRepository.NewMySQLSnapshotRepository(db)
		case "postgres":
			c.snapshotRepo = snapshotRepository.NewPostgreSQLSnapshotRepository(db)
		default:
			err = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
			c.initErrors["snapshotRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["snapshotRepo"]; exists {
		return nil, storedErr
	}
	return c.snapshotRepo, nil
}

// TenantKeyRepository returns the tenant key repository based on the database driver.
func (c *Container) TenantKeyRepository() (snapshotUsecase.TenantKeyRepository, error) {
	var err error
	c.tenantKeyRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for tenant key repository: %w", dbErr)
			c.initErrors["tenantKeyRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.tenantKeyRepo = snapshotRepository.NewMySQLTenantKeyRepository(db)
		case "postgres":
			c.tenantKeyRepo = snapshotRepository.NewPostgreSQLTenantKeyRepository(db)
		default:
			err = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
			c.initErrors["tenantKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.tenantKeyRepo, nil
}

// SnapshotUseCase returns the snapshot use case with all its dependencies,
// wrapped with business metrics when metrics are enabled.
func (c *Container) SnapshotUseCase() (snapshotUsecase.SnapshotUseCase, error) {
	var err error
	c.snapshotUseCaseInit.Do(func() {
		c.snapshotUseCase, err = c.initSnapshotUseCase()
		if err != nil {
			c.initErrors["snapshotUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["snapshotUseCase"]; exists {
		return nil, storedErr
	}
	return c.snapshotUseCase, nil
}

func (c *Container) initSnapshotUseCase() (snapshotUsecase.SnapshotUseCase, error) {
	snapshotRepo, err := c.SnapshotRepository()
	if err != nil {
		return nil, err
	}

	tenantKeyRepo, err := c.TenantKeyRepository()
	if err != nil {
		return nil, err
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for snapshot use case: %w", err)
	}

	viewCache, err := c.ViewCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get view cache for snapshot use case: %w", err)
	}

	keyDeriver, err := c.KeyDeriver()
	if err != nil {
		return nil, err
	}

	useCase := snapshotUsecase.NewSnapshotUseCase(
		snapshotRepo,
		tenantKeyRepo,
		auditUseCase,
		viewCache,
		keyDeriver,
		c.EnvelopeCipher(),
		snapshotUsecase.Options{
			Algorithm:         cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
			DefaultKeyVersion: c.config.DefaultKeyVersion,
			MaxPayloadBytes:   c.config.MaxPayloadBytes,
			RetryMaxAttempts:  c.config.SaveRetryMaxAttempts,
			RetryBaseBackoff:  c.config.SaveRetryBaseBackoff,
		},
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for snapshot use case: %w", err)
	}

	return snapshotUsecase.NewSnapshotUseCaseWithMetrics(useCase, businessMetrics), nil
}

// SnapshotHandler returns the snapshot HTTP handler.
func (c *Container) SnapshotHandler() (*snapshotHTTP.SnapshotHandler, error) {
	useCase, err := c.SnapshotUseCase()
	if err != nil {
		return nil, err
	}
	return snapshotHTTP.NewSnapshotHandler(useCase, c.Logger()), nil
}
