package app

import (
	"fmt"

	auditHTTP "github.com/hash066/biavault/internal/audit/http"
	auditRepository "github.com/hash066/biavault/internal/audit/repository"
	auditUsecase "github.com/hash066/biavault/internal/audit/usecase"
)

// AuditRepository returns the audit repository based on the database driver.
func (c *Container) AuditRepository() (auditUsecase.AuditRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for audit repository: %w", dbErr)
			c.initErrors["auditRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.auditRepo = auditRepository.NewMySQLAuditRepository(db)
		case "postgres":
			c.auditRepo = auditRepository.NewPostgreSQLAuditRepository(db)
		default:
			err = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditUseCase returns the audit use case with all its dependencies.
func (c *Container) AuditUseCase() (auditUsecase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		repo, repoErr := c.AuditRepository()
		if repoErr != nil {
			err = repoErr
			c.initErrors["auditUseCase"] = repoErr
			return
		}

		signer, signerErr := c.AuditSigner()
		if signerErr != nil {
			err = signerErr
			c.initErrors["auditUseCase"] = signerErr
			return
		}

		c.auditUseCase = auditUsecase.NewAuditUseCase(repo, signer)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	useCase, err := c.AuditUseCase()
	if err != nil {
		return nil, err
	}
	return auditHTTP.NewAuditHandler(useCase, c.Logger()), nil
}
