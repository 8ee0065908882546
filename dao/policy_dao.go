// dao/policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
)

const (
	conditionTargetPrincipal = "principal"
	conditionTargetResource  = "resource"
)

type policyRecord struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"uniqueIndex;not null"`
	Version       string `gorm:"not null"`
	Description   string
	DefaultEffect string       `gorm:"not null"`
	RegisteredAt  time.Time    `gorm:"autoCreateTime"`
	Rules         []ruleRecord `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
}

func (policyRecord) TableName() string { return "policies" }

type ruleRecord struct {
	ID          uint   `gorm:"primaryKey"`
	PolicyID    uint   `gorm:"index;not null"`
	Position    int    `gorm:"not null"`
	Name        string `gorm:"not null"`
	Description string
	Effect      string            `gorm:"not null"`
	ActionsJSON string            `gorm:"column:actions_json;not null"`
	Conditions  []conditionRecord `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
}

func (ruleRecord) TableName() string { return "policy_rules" }

type conditionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	RuleID    uint   `gorm:"index;not null"`
	Target    string `gorm:"not null"`
	Position  int    `gorm:"not null"`
	Path      string `gorm:"not null"`
	Operator  string `gorm:"not null"`
	ValueJSON string `gorm:"column:value_json;not null"`
}

func (conditionRecord) TableName() string { return "policy_conditions" }

// PolicyDAO persists policies as one row per policy, rule and condition.
type PolicyDAO struct {
	DB *gorm.DB
}

func NewPolicyDAO(db *gorm.DB) (*PolicyDAO, error) {
	dao := &PolicyDAO{DB: db}
	if err := dao.EnsureSchema(); err != nil {
		return nil, err
	}
	return dao, nil
}

// EnsureSchema creates the policy tables if they are missing.
func (dao *PolicyDAO) EnsureSchema() error {
	logger.Info("Ensuring policy schema")
	if err := dao.DB.AutoMigrate(&policyRecord{}, &ruleRecord{}, &conditionRecord{}); err != nil {
		logger.Error("Failed to migrate policy schema", zap.Error(err))
		return fmt.Errorf("%w: migrate policies: %v", themis_errors.ErrDatabaseOperation, err)
	}
	return nil
}

// CreatePolicy stores policy in one transaction. An existing name is
// ErrPolicyConflict.
func (dao *PolicyDAO) CreatePolicy(ctx context.Context, policy model.Policy) error {
	start := time.Now()
	logger.Info("Persisting policy", zap.String("policyName", policy.Name))

	record, err := toPolicyRecord(policy)
	if err != nil {
		return err
	}

	err = dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&policyRecord{}).Where("name = ?", policy.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", themis_errors.ErrPolicyConflict, policy.Name)
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to persist policy", zap.Error(err), zap.String("policyName", policy.Name))
		return err
	}

	logger.Info("Policy persisted",
		zap.String("policyName", policy.Name),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// DeletePolicy removes the policy and its rules and conditions.
func (dao *PolicyDAO) DeletePolicy(ctx context.Context, name string) (bool, error) {
	deleted := false
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record policyRecord
		if err := tx.Where("name = ?", name).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}

		ruleIDs := tx.Model(&ruleRecord{}).Select("id").Where("policy_id = ?", record.ID)
		if err := tx.Where("rule_id IN (?)", ruleIDs).Delete(&conditionRecord{}).Error; err != nil {
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}
		if err := tx.Where("policy_id = ?", record.ID).Delete(&ruleRecord{}).Error; err != nil {
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}
		if err := tx.Delete(&record).Error; err != nil {
			return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete policy", zap.Error(err), zap.String("policyName", name))
		return false, err
	}
	return deleted, nil
}

// ListPolicies returns every stored policy in creation order.
func (dao *PolicyDAO) ListPolicies(ctx context.Context) ([]model.Policy, error) {
	var records []policyRecord
	err := dao.DB.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Rules.Conditions", func(db *gorm.DB) *gorm.DB { return db.Order("target, position") }).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
	}

	policies := make([]model.Policy, 0, len(records))
	for _, record := range records {
		policy, err := fromPolicyRecord(record)
		if err != nil {
			logger.Warn("Skipping unreadable policy row", zap.String("policyName", record.Name), zap.Error(err))
			continue
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

func toPolicyRecord(policy model.Policy) (policyRecord, error) {
	record := policyRecord{
		Name:          policy.Name,
		Version:       policy.Version,
		Description:   policy.Description,
		DefaultEffect: string(policy.DefaultEffect),
	}
	for i, rule := range policy.Rules {
		actions, err := json.Marshal(rule.Actions)
		if err != nil {
			return policyRecord{}, err
		}
		rr := ruleRecord{
			Position:    i,
			Name:        rule.Name,
			Description: rule.Description,
			Effect:      string(rule.Effect),
			ActionsJSON: string(actions),
		}
		for target, conditions := range map[string][]model.Condition{
			conditionTargetPrincipal: rule.PrincipalConditions,
			conditionTargetResource:  rule.ResourceConditions,
		} {
			for j, condition := range conditions {
				value, err := json.Marshal(condition.Value)
				if err != nil {
					return policyRecord{}, err
				}
				rr.Conditions = append(rr.Conditions, conditionRecord{
					Target:    target,
					Position:  j,
					Path:      condition.Path,
					Operator:  string(condition.Operator),
					ValueJSON: string(value),
				})
			}
		}
		record.Rules = append(record.Rules, rr)
	}
	return record, nil
}

func fromPolicyRecord(record policyRecord) (model.Policy, error) {
	policy := model.Policy{
		Version:       record.Version,
		Name:          record.Name,
		Description:   record.Description,
		DefaultEffect: model.Effect(record.DefaultEffect),
		Rules:         make([]model.Rule, 0, len(record.Rules)),
	}
	for _, rr := range record.Rules {
		rule := model.Rule{
			Name:                rr.Name,
			Description:         rr.Description,
			Effect:              model.Effect(rr.Effect),
			PrincipalConditions: []model.Condition{},
			ResourceConditions:  []model.Condition{},
		}
		if err := json.Unmarshal([]byte(rr.ActionsJSON), &rule.Actions); err != nil {
			return model.Policy{}, fmt.Errorf("rule %s actions: %w", rr.Name, err)
		}
		for _, cr := range rr.Conditions {
			value, err := model.ParseValue(cr.ValueJSON)
			if err != nil {
				return model.Policy{}, fmt.Errorf("rule %s condition %s: %w", rr.Name, cr.Path, err)
			}
			condition := model.Condition{Path: cr.Path, Operator: model.Operator(cr.Operator), Value: value}
			if cr.Target == conditionTargetPrincipal {
				rule.PrincipalConditions = append(rule.PrincipalConditions, condition)
			} else {
				rule.ResourceConditions = append(rule.ResourceConditions, condition)
			}
		}
		policy.Rules = append(policy.Rules, rule)
	}
	return policy, nil
}
