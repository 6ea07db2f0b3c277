package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/dto"
	"github.com/procardhq/procard-backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionService ingests RevenueCat webhook events and moves owners
// between tiers. Cards inherit the owner's tier at creation time, so tier
// changes only affect future creates and entitlement checks.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) HandleWebhookEvent(event *dto.RevenueCatEvent) error {
	switch event.Type {
	case "INITIAL_PURCHASE":
		return s.handlePurchase(event)
	case "RENEWAL":
		return s.handleRenewal(event)
	case "CANCELLATION":
		return s.handleDowngrade(event, "cancelled")
	case "EXPIRATION":
		return s.handleDowngrade(event, "expired")
	default:
		return nil
	}
}

func (s *SubscriptionService) handlePurchase(event *dto.RevenueCatEvent) error {
	userID, err := uuid.Parse(event.AppUserID)
	if err != nil {
		return fmt.Errorf("invalid app_user_id %q: %w", event.AppUserID, err)
	}

	tier := tierForProduct(event.ProductID)
	expiry := msToTime(event.ExpirationAtMs)

	sub := models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		RevenueCatID:       event.AppUserID,
		ProductID:          event.ProductID,
		Tier:               tier,
		Status:             "active",
		CurrentPeriodStart: msToTime(event.PurchasedAtMs),
		CurrentPeriodEnd:   expiry,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return s.setUserTier(tx, userID, tier, &expiry)
	})
}

func (s *SubscriptionService) handleRenewal(event *dto.RevenueCatEvent) error {
	var sub models.Subscription
	if err := s.db.Where("revenuecat_id = ?", event.AppUserID).First(&sub).Error; err != nil {
		return fmt.Errorf("subscription not found for renewal: %w", err)
	}

	expiry := msToTime(event.ExpirationAtMs)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":               "active",
			"current_period_end":   expiry,
			"current_period_start": msToTime(event.PurchasedAtMs),
		}).Error; err != nil {
			return err
		}
		return s.setUserTier(tx, sub.UserID, sub.Tier, &expiry)
	})
}

func (s *SubscriptionService) handleDowngrade(event *dto.RevenueCatEvent, status string) error {
	var sub models.Subscription
	if err := s.db.Where("revenuecat_id = ?", event.AppUserID).First(&sub).Error; err != nil {
		return fmt.Errorf("subscription not found: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sub).Update("status", status).Error; err != nil {
			return err
		}
		return s.setUserTier(tx, sub.UserID, models.TierFree, nil)
	})
}

func (s *SubscriptionService) setUserTier(tx *gorm.DB, userID uuid.UUID, tier models.Tier, expiry *time.Time) error {
	result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"tier":        tier,
		"tier_expiry": expiry,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		slog.Warn("tier update matched no user", "user_id", userID.String(), "tier", tier)
	}
	return nil
}

// tierForProduct maps a RevenueCat product id to a tier by naming
// convention: product ids contain "agency" or "pro".
func tierForProduct(productID string) models.Tier {
	p := strings.ToLower(productID)
	switch {
	case strings.Contains(p, "agency"):
		return models.TierAgency
	case strings.Contains(p, "pro"):
		return models.TierPro
	default:
		return models.TierFree
	}
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
