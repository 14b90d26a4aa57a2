package seed

import (
	"context"

	"backend/internal/embedding"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/service"

	"go.uber.org/zap"
)

// Seeder populates an empty database with the default users and sample
// compliance rules. Safe to run on every startup: it only seeds when the
// corresponding table is empty.
type Seeder struct {
	users  repository.AuthRepository
	rules  repository.RuleRepository
	index  embedding.Index
	logger *zap.Logger
}

func New(users repository.AuthRepository, rules repository.RuleRepository,
	index embedding.Index, logger *zap.Logger) *Seeder {
	return &Seeder{users: users, rules: rules, index: index, logger: logger}
}

// Run seeds users and rules. The seed password is shared by all default
// accounts and comes from configuration.
func (s *Seeder) Run(ctx context.Context, seedPassword string) error {
	if err := s.seedUsers(seedPassword); err != nil {
		return err
	}
	return s.seedRules(ctx)
}

func (s *Seeder) seedUsers(password string) error {
	count, err := s.users.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Users already exist, skipping user seed", zap.Int("count", count))
		return nil
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	defaults := []*models.User{
		{Username: "agent_user", Email: "agent@compliance.ai", PasswordHash: hash, Role: models.RoleAgent},
		{Username: "admin_user", Email: "admin@compliance.ai", PasswordHash: hash, Role: models.RoleAdmin},
		{Username: "superadmin_user", Email: "superadmin@compliance.ai", PasswordHash: hash, Role: models.RoleSuperAdmin},
	}

	for _, user := range defaults {
		if err := s.users.CreateUser(user); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded default users", zap.Int("count", len(defaults)))
	return nil
}

func (s *Seeder) seedRules(ctx context.Context) error {
	existing, err := s.rules.ListAll(true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("Rules already exist, skipping rule seed", zap.Int("count", len(existing)))
		return nil
	}

	superAdmin, err := s.users.GetUserByUsername("superadmin_user")
	if err != nil {
		return err
	}

	samples := []struct {
		text     string
		severity models.RuleSeverity
	}{
		{`Content must not include prohibited terms such as "guaranteed returns", "risk-free", or "no risk"`, models.SeverityHard},
		{`All financial content must include the disclaimer: "Past performance does not guarantee future results. Investments carry risk."`, models.SeverityHard},
		{"Content must maintain a professional, neutral tone without emotional language or urgency tactics", models.SeveritySoft},
		{"Personal data and PII must never be included in generated content examples", models.SeverityHard},
		{"Content should use clear, accessible language avoiding excessive jargon when possible", models.SeveritySoft},
	}

	for _, sample := range samples {
		rule := &models.Rule{
			RuleText:  sample.text,
			Severity:  sample.severity,
			Version:   1,
			CreatedBy: superAdmin.ID,
		}
		if err := s.rules.Create(rule); err != nil {
			return err
		}
		// Embeddings are derived data; a failure here never blocks seeding.
		if err := s.index.Upsert(ctx, rule.ID, rule.RuleText); err != nil {
			s.logger.Warn("Failed to store embedding for seeded rule",
				zap.Int64("rule_id", rule.ID), zap.Error(err))
		}
	}

	s.logger.Info("Seeded sample compliance rules", zap.Int("count", len(samples)))
	return nil
}
