// Package entitlement maps subscription tiers to numeric limits and
// capability tags. Everything here is a pure table lookup.
package entitlement

import "github.com/procardhq/procard-backend/internal/models"

// Unlimited is the sentinel card limit for tiers without a quantity cap.
const Unlimited = -1

var cardLimits = map[models.Tier]int{
	models.TierFree:   1,
	models.TierPro:    10,
	models.TierAgency: Unlimited,
}

// capabilities are literal per-tier sets. They are deliberately not
// cumulative: Pro does not include Free's tags and Agency carries an
// "all_pro_features" marker instead of the Pro list. Downstream checks rely
// on exact tag membership.
var capabilities = map[models.Tier][]string{
	models.TierFree:   {"basic_qr", "basic_analytics", "max_socials_5"},
	models.TierPro:    {"custom_qr", "advanced_analytics", "unlimited_socials", "password_protection", "custom_domain"},
	models.TierAgency: {"all_pro_features", "white_labeling", "hide_branding", "bulk_management"},
}

// CardLimit returns the maximum number of live cards for the tier, or
// Unlimited. Unknown tiers get the Free limit.
func CardLimit(tier models.Tier) int {
	if limit, ok := cardLimits[tier]; ok {
		return limit
	}
	return cardLimits[models.TierFree]
}

// MaxSocialLinks returns the social link cap for the tier, or Unlimited.
func MaxSocialLinks(tier models.Tier) int {
	if tier == models.TierPro || tier == models.TierAgency {
		return Unlimited
	}
	return 5
}

// PasswordProtectionAllowed reports whether the tier may enable password
// protection on a card.
func PasswordProtectionAllowed(tier models.Tier) bool {
	return tier == models.TierPro || tier == models.TierAgency
}

// PoweredByRemovalAllowed reports whether the tier may hide the "powered by"
// footer on the public page.
func PoweredByRemovalAllowed(tier models.Tier) bool {
	return tier == models.TierPro || tier == models.TierAgency
}

// BrandingRemovalAllowed reports whether the tier may hide platform branding.
func BrandingRemovalAllowed(tier models.Tier) bool {
	return tier == models.TierAgency
}

// Capabilities returns the literal capability set for the tier.
func Capabilities(tier models.Tier) []string {
	return capabilities[tier]
}

// HasCapability reports exact membership of tag in the tier's literal set.
func HasCapability(tier models.Tier, tag string) bool {
	for _, t := range capabilities[tier] {
		if t == tag {
			return true
		}
	}
	return false
}
